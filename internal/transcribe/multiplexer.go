package transcribe

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// maxPendingChunks bounds the audio buffered for a session whose
// recognizer has not started yet.
const maxPendingChunks = 256

type stream struct {
	recognizer Recognizer
	lastActive time.Time
}

// Multiplexer fans audio from many sessions into per-session recognizers.
// Chunks arriving before a session's recognizer is ready are buffered and
// flushed in arrival order once it starts, so the opening words of an
// answer are not dropped.
type Multiplexer struct {
	mu      sync.Mutex
	factory Factory
	streams map[string]*stream
	pending map[string][][]byte
	now     func() time.Time
}

// NewMultiplexer builds a multiplexer creating recognizers via factory.
func NewMultiplexer(factory Factory) *Multiplexer {
	return &Multiplexer{
		factory: factory,
		streams: make(map[string]*stream),
		pending: make(map[string][][]byte),
		now:     time.Now,
	}
}

// Start creates and starts a recognizer for the session, then flushes any
// buffered audio in order. Reports whether a new stream was started;
// starting an already-active session is a no-op.
func (m *Multiplexer) Start(ctx context.Context, sessionID string, onEvent func(Event)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.factory == nil {
		return false
	}
	if _, ok := m.streams[sessionID]; ok {
		log.Warn().Str("session_id", sessionID).Msg("transcription stream already active")
		return false
	}

	recognizer := m.factory(sessionID, onEvent)
	if err := recognizer.Start(ctx); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to start transcription stream")
		return false
	}

	m.streams[sessionID] = &stream{recognizer: recognizer, lastActive: m.now()}

	if buffered := m.pending[sessionID]; len(buffered) > 0 {
		for _, chunk := range buffered {
			if err := recognizer.Push(chunk); err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Msg("failed to flush buffered audio")
				break
			}
		}
		log.Info().Str("session_id", sessionID).Int("chunks", len(buffered)).Msg("flushed buffered audio")
		delete(m.pending, sessionID)
	}

	return true
}

// Push routes an audio chunk to the session's recognizer. Audio for a
// session with no active stream is buffered for the flush at Start; the
// return value reports whether the chunk reached a live recognizer.
func (m *Multiplexer) Push(sessionID string, chunk []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.streams[sessionID]
	if !ok {
		buf := m.pending[sessionID]
		if len(buf) >= maxPendingChunks {
			log.Warn().Str("session_id", sessionID).Msg("pending audio buffer full, dropping chunk")
			return false
		}
		m.pending[sessionID] = append(buf, chunk)
		return false
	}

	if err := st.recognizer.Push(chunk); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to push audio")
		return false
	}
	st.lastActive = m.now()
	return true
}

// Stop ends the session's stream and returns its transcript. Stopping an
// absent stream returns "" so callers need not track stream state.
func (m *Multiplexer) Stop(sessionID string) string {
	m.mu.Lock()
	st, ok := m.streams[sessionID]
	delete(m.streams, sessionID)
	delete(m.pending, sessionID)
	m.mu.Unlock()

	if !ok {
		return ""
	}

	transcript := st.recognizer.Transcript()
	if err := st.recognizer.Stop(); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("error stopping transcription stream")
	}
	log.Info().Str("session_id", sessionID).Msg("transcription stream stopped")
	return transcript
}

// Active reports whether the session has a live stream.
func (m *Multiplexer) Active(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.streams[sessionID]
	return ok
}

// CleanupInactive stops streams that have been idle longer than maxIdle
// and returns how many were reaped.
func (m *Multiplexer) CleanupInactive(maxIdle time.Duration) int {
	m.mu.Lock()
	cutoff := m.now().Add(-maxIdle)
	var stale []string
	for sessionID, st := range m.streams {
		if st.lastActive.Before(cutoff) {
			stale = append(stale, sessionID)
		}
	}
	m.mu.Unlock()

	for _, sessionID := range stale {
		m.Stop(sessionID)
		log.Info().Str("session_id", sessionID).Msg("reaped inactive transcription stream")
	}
	return len(stale)
}
