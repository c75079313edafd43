package realtime

// Wire envelope for messages in both directions. Chunk uploads carry an
// ID so the client can correlate the ack.
type ClientMessage struct {
	Event       string `json:"event"`
	ID          int64  `json:"id,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
	SpeechMode  string `json:"speech_mode,omitempty"`
	Answer      string `json:"answer,omitempty"`
	ChunkNumber int    `json:"chunkNumber,omitempty"`
	Data        []byte `json:"data,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

type ServerMessage struct {
	Event string `json:"event"`
	ID    int64  `json:"id,omitempty"`
	Data  any    `json:"data"`
}

const (
	EventJoinInterview  = "joinInterview"
	EventStartRecording = "startRecording"
	EventVideoChunk     = "videoChunk"
	EventAudioChunk     = "audioChunk"
	EventStopRecording  = "stopRecording"
	EventFinishSpeaking = "finishSpeaking"
	EventEndInterview   = "endInterview"
	EventPing           = "ping"

	EventQuestion             = "question"
	EventAISpeaking           = "aiSpeaking"
	EventAnswerReceived       = "answer_received"
	EventRecordingStarted     = "recordingStarted"
	EventRecordingStopped     = "recordingStopped"
	EventInterviewComplete    = "interviewComplete"
	EventTranscriptionInterim = "transcription_interim"
	EventTranscriptionFinal   = "transcription_final"
	EventError                = "error"
	EventPong                 = "pong"
	EventAck                  = "ack"
)

type QuestionPayload struct {
	Question       string `json:"question"`
	QuestionNumber int    `json:"question_number"`
}

type AISpeakingPayload struct {
	Question       string `json:"question"`
	IsSpeaking     bool   `json:"is_speaking"`
	QuestionNumber int    `json:"question_number"`
	IsFinal        bool   `json:"is_final"`
}

type AnswerReceivedPayload struct {
	Success       bool `json:"success"`
	AnswerLength  int  `json:"answer_length"`
	QuestionCount int  `json:"question_count"`
}

type RecordingStartedPayload struct {
	SessionID            string `json:"session_id"`
	TranscriptionEnabled bool   `json:"transcription_enabled"`
	Provider             string `json:"provider"`
}

type FinalizedPayload struct {
	VideoFinalized bool `json:"video_finalized"`
	AudioFinalized bool `json:"audio_finalized"`
}

type RecordingStoppedPayload struct {
	SessionID           string           `json:"session_id"`
	FinalTranscript     string           `json:"final_transcript"`
	TranscriptLength    int              `json:"transcript_length"`
	RecordingsFinalized FinalizedPayload `json:"recordings_finalized"`
}

type InterviewCompletePayload struct {
	Completed        bool   `json:"completed"`
	Message          string `json:"message"`
	SessionID        string `json:"session_id,omitempty"`
	QuestionsAsked   int    `json:"questions_asked"`
	ProcessingStatus string `json:"processing_status,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PongPayload struct {
	Timestamp int64 `json:"timestamp"`
}

type AckPayload struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
