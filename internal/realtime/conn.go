package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 90 * time.Second
	maxMessageSize = 4 << 20 // media chunks arrive base64-encoded
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 << 10,
	WriteBufferSize: 16 << 10,
	// Browser clients connect cross-origin during local development;
	// access control happens at the session level.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Conn is one client websocket. Writes are serialized with a mutex so
// background tasks and the read loop can emit concurrently.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	// sessionID is set on join and read only from the read loop.
	sessionID string
}

func (c *Conn) Emit(event string, payload any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(ServerMessage{Event: event, Data: payload}); err != nil {
		log.Debug().Err(err).Str("event", event).Msg("websocket write failed")
	}
}

func (c *Conn) Ack(id int64, ok bool, message string) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(ServerMessage{Event: EventAck, ID: id, Data: AckPayload{OK: ok, Message: message}}); err != nil {
		log.Debug().Err(err).Int64("id", id).Msg("websocket ack failed")
	}
}

// ServeWS upgrades the request and runs the read loop until the client
// goes away.
func (o *Orchestrator) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &Conn{ws: ws}
	defer func() {
		o.Disconnect(c.sessionID, c)
		ws.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))

	ctx := r.Context()
	for {
		var msg ClientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("session_id", c.sessionID).Msg("websocket closed unexpectedly")
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))
		o.dispatch(ctx, c, msg)
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, c *Conn, msg ClientMessage) {
	switch msg.Event {
	case EventJoinInterview:
		c.sessionID = msg.SessionID
		o.Join(ctx, c, msg.SessionID, msg.SpeechMode)
	case EventStartRecording:
		o.StartRecording(ctx, c, o.boundSession(c, msg))
	case EventVideoChunk:
		o.VideoChunk(ctx, c, msg.ID, o.boundSession(c, msg), msg.Data)
	case EventAudioChunk:
		o.AudioChunk(ctx, c, msg.ID, o.boundSession(c, msg), msg.Data)
	case EventStopRecording:
		o.StopRecording(ctx, c, o.boundSession(c, msg))
	case EventFinishSpeaking:
		o.FinishSpeaking(ctx, c, o.boundSession(c, msg), msg.Answer)
	case EventEndInterview:
		o.EndInterview(ctx, c, o.boundSession(c, msg))
	case EventPing:
		// Liveness only; no join required.
		o.Ping(c, msg.Timestamp)
	default:
		log.Warn().Str("event", msg.Event).Msg("unknown websocket event")
	}
}

// boundSession prefers the session bound at join time, falling back to
// the id carried on the message itself.
func (o *Orchestrator) boundSession(c *Conn, msg ClientMessage) string {
	if c.sessionID != "" {
		return c.sessionID
	}
	return msg.SessionID
}
