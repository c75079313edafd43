package realtime

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/interview"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/recording"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/transcribe"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/worker"
)

const (
	msgSessionNotFound   = "Session not found. Please restart the interview."
	msgAlreadyCompleted  = "Interview already completed. Redirecting to results..."
	msgInterviewEnded    = "Interview ended"
	msgSubmitted         = "Interview submitted successfully."
	msgClosing           = "Thank you! Interview complete."
	msgNoVerbalResponse  = "[No verbal response detected]"
	fallbackJoinQuestion = "Tell me about yourself and why you're interested in this position."
	fallbackNextQuestion = "Tell me about a recent project you're proud of."
	fallbackErrQuestion  = "Tell me about a challenge you overcame."
)

// Emitter pushes server events to one client connection. Chunk uploads
// are acknowledged by id so the client can pace its sender.
type Emitter interface {
	Emit(event string, payload any)
	Ack(id int64, ok bool, message string)
}

// Orchestrator drives a live interview over a websocket connection:
// question flow, chunked media capture, streaming transcription and the
// end-of-interview processing pipeline.
type Orchestrator struct {
	store       domain.SessionStore
	interviews  domain.InterviewRepository
	questions   *interview.QuestionEngine
	evaluator   *interview.Evaluator
	writer      *recording.Writer
	transcriber *transcribe.Multiplexer
	pool        *worker.Pool

	interviewCfg  config.InterviewConfig
	speechEnabled bool
	provider      string

	mu    sync.Mutex
	conns map[string]Emitter
}

func NewOrchestrator(
	store domain.SessionStore,
	interviews domain.InterviewRepository,
	questions *interview.QuestionEngine,
	evaluator *interview.Evaluator,
	writer *recording.Writer,
	transcriber *transcribe.Multiplexer,
	pool *worker.Pool,
	interviewCfg config.InterviewConfig,
	speechEnabled bool,
	provider string,
) *Orchestrator {
	return &Orchestrator{
		store:         store,
		interviews:    interviews,
		questions:     questions,
		evaluator:     evaluator,
		writer:        writer,
		transcriber:   transcriber,
		pool:          pool,
		interviewCfg:  interviewCfg,
		speechEnabled: speechEnabled,
		provider:      provider,
		conns:         make(map[string]Emitter),
	}
}

func (o *Orchestrator) register(sessionID string, em Emitter) {
	o.mu.Lock()
	o.conns[sessionID] = em
	o.mu.Unlock()
}

func (o *Orchestrator) unregister(sessionID string, em Emitter) {
	o.mu.Lock()
	if o.conns[sessionID] == em {
		delete(o.conns, sessionID)
	}
	o.mu.Unlock()
}

// emitTo reaches the session's current connection, which may have been
// replaced since the caller captured the session id.
func (o *Orchestrator) emitTo(sessionID, event string, payload any) {
	o.mu.Lock()
	em := o.conns[sessionID]
	o.mu.Unlock()
	if em != nil {
		em.Emit(event, payload)
	}
}

// Join binds the connection to a session and replays the current
// question. A join on an ended session re-emits the completion event so
// stale tabs redirect instead of hanging.
func (o *Orchestrator) Join(ctx context.Context, em Emitter, sessionID, speechMode string) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Emit(EventError, ErrorPayload{Message: msgSessionNotFound})
		return
	}
	if s.InterviewEnded {
		em.Emit(EventInterviewComplete, InterviewCompletePayload{
			Completed:      true,
			Message:        msgAlreadyCompleted,
			SessionID:      sessionID,
			QuestionsAsked: len(s.History),
		})
		return
	}

	if speechMode != "" {
		s.SpeechMode = speechMode
	}
	o.register(sessionID, em)

	if s.CurrentQuestion == "" {
		q := o.questions.FirstQuestion(ctx, s)
		if q == "" {
			q = fallbackJoinQuestion
		}
		s.CurrentQuestion = q
		if s.QuestionCount == 0 {
			s.QuestionCount = 1
		}
	}
	s.Touch()
	if err := o.store.Put(ctx, s); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store session on join")
	}

	number := s.QuestionCount
	if number < 1 {
		number = 1
	}
	em.Emit(EventQuestion, QuestionPayload{Question: s.CurrentQuestion, QuestionNumber: number})
	em.Emit(EventAISpeaking, AISpeakingPayload{
		Question:       s.CurrentQuestion,
		IsSpeaking:     true,
		QuestionNumber: number,
	})
	log.Info().Str("session_id", sessionID).Str("speech_mode", s.SpeechMode).Msg("client joined interview")
}

// StartRecording arms the media writers and, in server speech mode,
// starts a streaming recognizer. Audio chunks arriving before the
// recognizer is live are buffered by the multiplexer and flushed in
// order once it starts.
func (o *Orchestrator) StartRecording(ctx context.Context, em Emitter, sessionID string) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Emit(EventError, ErrorPayload{Message: msgSessionNotFound})
		return
	}

	if s.SpeechMode != "server" || !o.speechEnabled || o.transcriber == nil {
		provider := "none"
		if s.SpeechMode == "browser" {
			provider = "browser"
		}
		em.Emit(EventRecordingStarted, RecordingStartedPayload{
			SessionID: sessionID,
			Provider:  provider,
		})
		return
	}

	submitted := o.pool.Submit("start-transcription", func(taskCtx context.Context) {
		started := o.transcriber.Start(taskCtx, sessionID, func(ev transcribe.Event) {
			event := EventTranscriptionInterim
			if ev.IsFinal {
				event = EventTranscriptionFinal
			}
			o.emitTo(sessionID, event, ev)
		})
		o.emitTo(sessionID, EventRecordingStarted, RecordingStartedPayload{
			SessionID:            sessionID,
			TranscriptionEnabled: started,
			Provider:             o.provider,
		})
	})
	if !submitted {
		em.Emit(EventRecordingStarted, RecordingStartedPayload{
			SessionID: sessionID,
			Provider:  "none",
		})
	}
}

// VideoChunk appends one chunk of the client's video stream and acks it.
func (o *Orchestrator) VideoChunk(ctx context.Context, em Emitter, id int64, sessionID string, data []byte) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Ack(id, false, "Session not found")
		return
	}
	if len(data) == 0 {
		em.Ack(id, false, "Empty data")
		return
	}
	if err := o.writer.AppendVideo(sessionID, s.VideoFile, data); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("video chunk append failed")
		em.Ack(id, false, "Write failed")
		return
	}
	em.Ack(id, true, "")
}

// AudioChunk appends one chunk of the audio stream and, in server speech
// mode, feeds it to the recognizer as well.
func (o *Orchestrator) AudioChunk(ctx context.Context, em Emitter, id int64, sessionID string, data []byte) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Ack(id, false, "Session not found")
		return
	}
	if len(data) == 0 {
		em.Ack(id, false, "Empty data")
		return
	}
	if err := o.writer.AppendAudio(sessionID, s.AudioFile, data); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("audio chunk append failed")
		em.Ack(id, false, "Write failed")
		return
	}
	if s.SpeechMode == "server" && o.transcriber != nil {
		o.transcriber.Push(sessionID, data)
	}
	em.Ack(id, true, "")
}

// StopRecording closes the media streams, folds any server-side
// transcript into the session and finalizes both recordings in place.
func (o *Orchestrator) StopRecording(ctx context.Context, em Emitter, sessionID string) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Emit(EventError, ErrorPayload{Message: msgSessionNotFound})
		return
	}

	final := ""
	if o.transcriber != nil {
		final = strings.TrimSpace(o.transcriber.Stop(sessionID))
	}
	if final != "" {
		s.FullTranscript = append(s.FullTranscript, final)
		if err := o.store.Put(ctx, s); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store transcript")
		}
	}

	o.writer.Close(sessionID)

	videoDone := o.finalizeFile(ctx, sessionID, s.VideoFile, "video")
	audioDone := o.finalizeFile(ctx, sessionID, s.AudioFile, "audio")

	em.Emit(EventRecordingStopped, RecordingStoppedPayload{
		SessionID:        sessionID,
		FinalTranscript:  final,
		TranscriptLength: len(final),
		RecordingsFinalized: FinalizedPayload{
			VideoFinalized: videoDone,
			AudioFinalized: audioDone,
		},
	})
}

// FinishSpeaking records the candidate's answer and moves the interview
// forward. Question generation runs on the worker pool so the answer ack
// is not delayed by the model call.
func (o *Orchestrator) FinishSpeaking(ctx context.Context, em Emitter, sessionID, answer string) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Emit(EventError, ErrorPayload{Message: msgSessionNotFound})
		return
	}
	if s.InterviewEnded {
		return
	}

	answer = strings.TrimSpace(answer)
	if len(answer) < 2 {
		answer = msgNoVerbalResponse
	}

	s.AddExchange(s.CurrentQuestion, answer)
	s.QuestionCount++
	interview.ApplySignals(s, interview.AnalyzeAnswer(answer))
	s.Touch()
	if err := o.store.Put(ctx, s); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store answer")
	}

	em.Emit(EventAnswerReceived, AnswerReceivedPayload{
		Success:       true,
		AnswerLength:  len(answer),
		QuestionCount: s.QuestionCount,
	})

	if s.QuestionCount > o.interviewCfg.MaxQuestions || s.ShouldEnd(o.interviewCfg.MaxQuestions, o.interviewCfg.MaxDuration) {
		em.Emit(EventAISpeaking, AISpeakingPayload{
			Question:       msgClosing,
			IsSpeaking:     true,
			QuestionNumber: s.QuestionCount,
			IsFinal:        true,
		})
		return
	}

	if !o.pool.Submit("generate-question", func(taskCtx context.Context) {
		o.generateNext(taskCtx, sessionID, answer)
	}) {
		// Pool only refuses on shutdown; still answer off the read loop.
		go o.generateNext(context.Background(), sessionID, answer)
	}
}

func (o *Orchestrator) generateNext(ctx context.Context, sessionID, answer string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("session_id", sessionID).Msg("question generation panicked")
			o.deliverQuestion(ctx, sessionID, fallbackErrQuestion)
		}
	}()

	s, ok := o.store.Get(ctx, sessionID)
	if !ok || s.InterviewEnded {
		return
	}

	q := o.questions.NextQuestion(ctx, s, answer)
	if len(strings.TrimSpace(q)) < 10 {
		q = fallbackNextQuestion
	}
	s.CurrentQuestion = q
	if err := o.store.Put(ctx, s); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store next question")
	}

	o.emitTo(sessionID, EventQuestion, QuestionPayload{Question: q, QuestionNumber: s.QuestionCount})
	o.emitTo(sessionID, EventAISpeaking, AISpeakingPayload{
		Question:       q,
		IsSpeaking:     true,
		QuestionNumber: s.QuestionCount,
	})
}

func (o *Orchestrator) deliverQuestion(ctx context.Context, sessionID, q string) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok || s.InterviewEnded {
		return
	}
	s.CurrentQuestion = q
	if err := o.store.Put(ctx, s); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store fallback question")
	}
	o.emitTo(sessionID, EventQuestion, QuestionPayload{Question: q, QuestionNumber: s.QuestionCount})
	o.emitTo(sessionID, EventAISpeaking, AISpeakingPayload{
		Question:       q,
		IsSpeaking:     true,
		QuestionNumber: s.QuestionCount,
	})
}

// EndInterview marks the session complete, updates the durable interview
// record and kicks off finalization and evaluation in the background.
// The completion event goes out immediately so the client can redirect.
func (o *Orchestrator) EndInterview(ctx context.Context, em Emitter, sessionID string) {
	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		em.Emit(EventInterviewComplete, InterviewCompletePayload{
			Completed: true,
			Message:   msgInterviewEnded,
		})
		return
	}

	s.End()
	if err := o.store.Put(ctx, s); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store ended session")
	}

	if o.transcriber != nil {
		if t := strings.TrimSpace(o.transcriber.Stop(sessionID)); t != "" {
			s.FullTranscript = append(s.FullTranscript, t)
			if err := o.store.Put(ctx, s); err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Msg("failed to store final transcript")
			}
		}
	}
	o.writer.Close(sessionID)

	if o.interviews != nil {
		url := "/recordings/" + sessionID + "/video_stream.mp4"
		if err := o.interviews.MarkCompleted(ctx, s.InterviewID, url); err != nil {
			log.Error().Err(err).Int64("interview_id", s.InterviewID).Msg("failed to mark interview completed")
		}
	}

	em.Emit(EventInterviewComplete, InterviewCompletePayload{
		Completed:        true,
		Message:          msgSubmitted,
		SessionID:        sessionID,
		QuestionsAsked:   len(s.History),
		ProcessingStatus: "background",
	})

	if !o.pool.Submit("finalize-interview", func(taskCtx context.Context) {
		o.processEndedInterview(taskCtx, sessionID)
	}) {
		go o.processEndedInterview(context.Background(), sessionID)
	}
}

// Ping answers a liveness probe with the server clock.
func (o *Orchestrator) Ping(em Emitter, _ int64) {
	em.Emit(EventPong, PongPayload{Timestamp: time.Now().UnixMilli()})
}

// Disconnect releases connection-scoped resources. The interview itself
// stays live so the candidate can rejoin after a network drop.
func (o *Orchestrator) Disconnect(sessionID string, em Emitter) {
	if sessionID == "" {
		return
	}
	o.unregister(sessionID, em)
	if o.transcriber != nil {
		o.transcriber.Stop(sessionID)
	}
	log.Info().Str("session_id", sessionID).Msg("client disconnected")
}

func (o *Orchestrator) finalizeFile(ctx context.Context, sessionID, path, kind string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if _, err := o.writer.Finalize(ctx, path); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("kind", kind).Msg("recording finalize failed")
		return false
	}
	return true
}
