package transcribe

import "context"

// Event is one recognition result pushed toward the client. Interim
// events replace each other; final events are appended to the transcript.
type Event struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	IsFinal   bool   `json:"is_final"`
}

// Recognizer is one streaming speech-recognition session. Implementations
// wrap a vendor SDK; the rest of the system only sees this interface.
type Recognizer interface {
	// Start begins continuous recognition.
	Start(ctx context.Context) error
	// Push feeds an audio chunk to the recognizer.
	Push(audio []byte) error
	// Transcript returns the finalized parts joined with spaces, plus
	// any trailing interim text.
	Transcript() string
	// Stop ends recognition and releases vendor resources.
	Stop() error
}

// Factory creates a recognizer for a session. Recognition results are
// delivered through onEvent, which must be safe to call from SDK
// callback goroutines.
type Factory func(sessionID string, onEvent func(Event)) Recognizer
