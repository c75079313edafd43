package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/interview"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/recording"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/repository/memory"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/transcribe"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/worker"
)

type fakeRecognizer struct {
	mu         sync.Mutex
	chunks     [][]byte
	transcript string
}

func (r *fakeRecognizer) Start(context.Context) error { return nil }

func (r *fakeRecognizer) Push(audio []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, audio)
	return nil
}

func (r *fakeRecognizer) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript
}

func (r *fakeRecognizer) Stop() error { return nil }

type orchestratorFixture struct {
	orch  *Orchestrator
	store *memory.SessionStore
	repo  *MockInterviewRepository
	root  string
	rec   *fakeRecognizer
	pool  *worker.Pool
}

func newFixture(t *testing.T, gen interview.Generator) *orchestratorFixture {
	t.Helper()

	root := t.TempDir()
	store := memory.NewSessionStore(time.Hour)
	repo := new(MockInterviewRepository)
	writer := recording.NewWriter(config.RecordingConfig{
		Folder:         root,
		FFmpegPath:     filepath.Join(root, "ffmpeg-missing"),
		FFmpegTimeout:  2 * time.Second,
		VideoFrameRate: 30,
	})

	rec := &fakeRecognizer{transcript: "streamed transcript"}
	mux := transcribe.NewMultiplexer(func(string, func(transcribe.Event)) transcribe.Recognizer {
		return rec
	})

	pool := worker.NewPool(2)
	t.Cleanup(pool.Shutdown)

	engine := interview.NewQuestionEngine(gen, 10, time.Second)
	eval := interview.NewEvaluator(gen, time.Second)

	orch := NewOrchestrator(store, repo, engine, eval, writer, mux, pool, config.InterviewConfig{
		MaxQuestions: 10,
		MaxDuration:  30 * time.Minute,
		SessionTTL:   time.Hour,
	}, true, "stream")
	return &orchestratorFixture{orch: orch, store: store, repo: repo, root: root, rec: rec, pool: pool}
}

func (f *orchestratorFixture) newSession(t *testing.T) *domain.InterviewSession {
	t.Helper()
	s := domain.NewInterviewSession(42, "Backend Engineer", "Go and PostgreSQL services", domain.CandidateBackground{Name: "Jordan"}, "")
	dir, err := recording.EnsureSessionDir(f.root, s.SessionID)
	require.NoError(t, err)
	s.SetRecordingPath(dir)
	require.NoError(t, f.store.Put(context.Background(), s))
	return s
}

func TestJoinUnknownSession(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	em := new(recordingEmitter)

	f.orch.Join(context.Background(), em, "missing", "browser")

	errs := em.byEvent(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, msgSessionNotFound, errs[0].(ErrorPayload).Message)
	assert.Empty(t, em.byEvent(EventQuestion))
}

func TestJoinEndedSessionReplaysCompletion(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.AddExchange("Q1", "A1")
	s.End()
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.Join(context.Background(), em, s.SessionID, "browser")

	done := em.byEvent(EventInterviewComplete)
	require.Len(t, done, 1)
	payload := done[0].(InterviewCompletePayload)
	assert.True(t, payload.Completed)
	assert.Equal(t, msgAlreadyCompleted, payload.Message)
	assert.Equal(t, 1, payload.QuestionsAsked)
	assert.Empty(t, em.byEvent(EventQuestion))
}

func TestJoinGeneratesFirstQuestion(t *testing.T) {
	f := newFixture(t, &stubGenerator{text: "What draws you to backend work with Go specifically?"})
	s := f.newSession(t)

	em := new(recordingEmitter)
	f.orch.Join(context.Background(), em, s.SessionID, "server")

	questions := em.byEvent(EventQuestion)
	require.Len(t, questions, 1)
	q := questions[0].(QuestionPayload)
	assert.Equal(t, "What draws you to backend work with Go specifically?", q.Question)
	assert.Equal(t, 1, q.QuestionNumber)

	speaking := em.byEvent(EventAISpeaking)
	require.Len(t, speaking, 1)
	assert.True(t, speaking[0].(AISpeakingPayload).IsSpeaking)
	assert.False(t, speaking[0].(AISpeakingPayload).IsFinal)

	stored, ok := f.store.Get(context.Background(), s.SessionID)
	require.True(t, ok)
	assert.Equal(t, "server", stored.SpeechMode)
	assert.Equal(t, q.Question, stored.CurrentQuestion)
	assert.Equal(t, 1, stored.QuestionCount)
}

func TestJoinReplaysExistingQuestion(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.CurrentQuestion = "Walk me through your current project."
	s.QuestionCount = 4
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.Join(context.Background(), em, s.SessionID, "")

	questions := em.byEvent(EventQuestion)
	require.Len(t, questions, 1)
	q := questions[0].(QuestionPayload)
	assert.Equal(t, "Walk me through your current project.", q.Question)
	assert.Equal(t, 4, q.QuestionNumber)
}

func TestFinishSpeakingRecordsAnswerAndAsksNext(t *testing.T) {
	f := newFixture(t, &stubGenerator{text: "Can you describe the hardest bug you chased down recently?"})
	s := f.newSession(t)
	s.CurrentQuestion = "Tell me about yourself."
	s.QuestionCount = 1
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)
	f.orch.FinishSpeaking(context.Background(), em, s.SessionID, "I have five years of Go experience building payment APIs.")

	received := em.byEvent(EventAnswerReceived)
	require.Len(t, received, 1)
	ar := received[0].(AnswerReceivedPayload)
	assert.True(t, ar.Success)
	assert.Equal(t, 2, ar.QuestionCount)

	assert.Eventually(t, func() bool {
		return len(em.byEvent(EventQuestion)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	q := em.byEvent(EventQuestion)[0].(QuestionPayload)
	assert.Equal(t, 2, q.QuestionNumber)
	assert.NotEmpty(t, q.Question)

	stored, ok := f.store.Get(context.Background(), s.SessionID)
	require.True(t, ok)
	require.Len(t, stored.History, 1)
	assert.Equal(t, "Tell me about yourself.", stored.History[0].Question)
}

func TestFinishSpeakingReturnsPromptlyWhenPoolSaturated(t *testing.T) {
	f := newFixture(t, &stubGenerator{text: "What part of that system would you redesign today?"})
	s := f.newSession(t)
	s.CurrentQuestion = "Tell me about yourself."
	s.QuestionCount = 1
	require.NoError(t, f.store.Put(context.Background(), s))

	release := make(chan struct{})
	defer close(release)
	for i := 0; i < 2; i++ {
		require.True(t, f.pool.Submit("hold", func(context.Context) { <-release }))
	}

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)

	done := make(chan struct{})
	go func() {
		f.orch.FinishSpeaking(context.Background(), em, s.SessionID, "I spent two years running our billing pipeline.")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FinishSpeaking blocked while the pool was busy")
	}

	assert.Eventually(t, func() bool {
		return len(em.byEvent(EventQuestion)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFinishSpeakingEmptyAnswerSubstituted(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.CurrentQuestion = "Tell me about yourself."
	s.QuestionCount = 1
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)
	f.orch.FinishSpeaking(context.Background(), em, s.SessionID, "  ")

	stored, ok := f.store.Get(context.Background(), s.SessionID)
	require.True(t, ok)
	require.Len(t, stored.History, 1)
	assert.Equal(t, msgNoVerbalResponse, stored.History[0].Answer)
}

func TestFinishSpeakingAtLimitCloses(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.CurrentQuestion = "Any final thoughts?"
	s.QuestionCount = 10
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)
	f.orch.FinishSpeaking(context.Background(), em, s.SessionID, "That covers everything from my side, thank you.")

	speaking := em.byEvent(EventAISpeaking)
	require.Len(t, speaking, 1)
	closing := speaking[0].(AISpeakingPayload)
	assert.Equal(t, msgClosing, closing.Question)
	assert.True(t, closing.IsFinal)
	assert.Equal(t, 11, closing.QuestionNumber)

	// No further question should be generated.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, em.byEvent(EventQuestion))
}

func TestFinishSpeakingEndedSessionIgnored(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.End()
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.FinishSpeaking(context.Background(), em, s.SessionID, "late answer")

	assert.Empty(t, em.byEvent(EventAnswerReceived))
	stored, _ := f.store.Get(context.Background(), s.SessionID)
	assert.Empty(t, stored.History)
}

func TestVideoChunkAppendsAndAcks(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)

	em := new(recordingEmitter)
	f.orch.VideoChunk(context.Background(), em, 7, s.SessionID, []byte("chunk-data"))

	a, ok := em.lastAck()
	require.True(t, ok)
	assert.Equal(t, int64(7), a.ID)
	assert.True(t, a.OK)

	data, err := os.ReadFile(s.VideoFile)
	require.NoError(t, err)
	assert.Equal(t, "chunk-data", string(data))
}

func TestChunkRejections(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)

	em := new(recordingEmitter)
	f.orch.VideoChunk(context.Background(), em, 1, "missing", []byte("x"))
	a, _ := em.lastAck()
	assert.False(t, a.OK)
	assert.Equal(t, "Session not found", a.Message)

	f.orch.AudioChunk(context.Background(), em, 2, s.SessionID, nil)
	a, _ = em.lastAck()
	assert.False(t, a.OK)
	assert.Equal(t, "Empty data", a.Message)
}

func TestAudioChunkFeedsRecognizerInServerMode(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.SpeechMode = "server"
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)
	f.orch.StartRecording(context.Background(), em, s.SessionID)

	assert.Eventually(t, func() bool {
		return len(em.byEvent(EventRecordingStarted)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	started := em.byEvent(EventRecordingStarted)[0].(RecordingStartedPayload)
	assert.True(t, started.TranscriptionEnabled)
	assert.Equal(t, "stream", started.Provider)

	f.orch.AudioChunk(context.Background(), em, 3, s.SessionID, []byte("pcm"))
	f.rec.mu.Lock()
	n := len(f.rec.chunks)
	f.rec.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestStartRecordingBrowserMode(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)

	em := new(recordingEmitter)
	f.orch.StartRecording(context.Background(), em, s.SessionID)

	started := em.byEvent(EventRecordingStarted)
	require.Len(t, started, 1)
	payload := started[0].(RecordingStartedPayload)
	assert.False(t, payload.TranscriptionEnabled)
	assert.Equal(t, "browser", payload.Provider)
}

func TestStartRecordingWithoutRecognizerFactory(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	f.orch.transcriber = transcribe.NewMultiplexer(nil)
	f.orch.provider = "none"

	s := f.newSession(t)
	s.SpeechMode = "server"
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)
	f.orch.StartRecording(context.Background(), em, s.SessionID)

	assert.Eventually(t, func() bool {
		return len(em.byEvent(EventRecordingStarted)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	started := em.byEvent(EventRecordingStarted)[0].(RecordingStartedPayload)
	assert.False(t, started.TranscriptionEnabled)
	assert.Equal(t, "none", started.Provider)
}

func TestStopRecordingFoldsTranscript(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.SpeechMode = "server"
	require.NoError(t, f.store.Put(context.Background(), s))

	em := new(recordingEmitter)
	f.orch.StartRecording(context.Background(), em, s.SessionID)
	assert.Eventually(t, func() bool {
		return f.orch.transcriber.Active(s.SessionID)
	}, 2*time.Second, 10*time.Millisecond)

	f.orch.StopRecording(context.Background(), em, s.SessionID)

	stopped := em.byEvent(EventRecordingStopped)
	require.Len(t, stopped, 1)
	payload := stopped[0].(RecordingStoppedPayload)
	assert.Equal(t, "streamed transcript", payload.FinalTranscript)
	assert.Equal(t, len("streamed transcript"), payload.TranscriptLength)
	// No media files were written, so nothing finalizes.
	assert.False(t, payload.RecordingsFinalized.VideoFinalized)
	assert.False(t, payload.RecordingsFinalized.AudioFinalized)

	stored, _ := f.store.Get(context.Background(), s.SessionID)
	assert.Contains(t, stored.FullTranscript, "streamed transcript")
}

func TestEndInterviewUnknownSession(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})

	em := new(recordingEmitter)
	f.orch.EndInterview(context.Background(), em, "missing")

	done := em.byEvent(EventInterviewComplete)
	require.Len(t, done, 1)
	payload := done[0].(InterviewCompletePayload)
	assert.True(t, payload.Completed)
	assert.Equal(t, msgInterviewEnded, payload.Message)
	assert.Zero(t, payload.QuestionsAsked)
}

func TestEndInterviewCompletesAndProcesses(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)
	s.AddExchange("Q1", "A1")
	s.AddExchange("Q2", "A2")
	require.NoError(t, f.store.Put(context.Background(), s))

	f.repo.On("MarkCompleted", mock.Anything, int64(42), "/recordings/"+s.SessionID+"/video_stream.mp4").Return(nil)

	em := new(recordingEmitter)
	f.orch.EndInterview(context.Background(), em, s.SessionID)

	done := em.byEvent(EventInterviewComplete)
	require.Len(t, done, 1)
	payload := done[0].(InterviewCompletePayload)
	assert.Equal(t, msgSubmitted, payload.Message)
	assert.Equal(t, 2, payload.QuestionsAsked)
	assert.Equal(t, "background", payload.ProcessingStatus)

	stored, _ := f.store.Get(context.Background(), s.SessionID)
	assert.True(t, stored.InterviewEnded)

	// The background pipeline writes evaluation artifacts even when the
	// model is unavailable, via the fallback scorecard.
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(s.RecordingPath, "evaluation.json"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
	_, err := os.Stat(filepath.Join(s.RecordingPath, "metadata.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.RecordingPath, "transcript.txt"))
	assert.NoError(t, err)

	f.repo.AssertExpectations(t)
}

func TestDisconnectKeepsInterviewAlive(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	s := f.newSession(t)

	em := new(recordingEmitter)
	f.orch.register(s.SessionID, em)
	f.orch.Disconnect(s.SessionID, em)

	stored, ok := f.store.Get(context.Background(), s.SessionID)
	require.True(t, ok)
	assert.False(t, stored.InterviewEnded)

	// Emits after disconnect go nowhere but must not panic.
	f.orch.emitTo(s.SessionID, EventQuestion, QuestionPayload{})
	assert.Empty(t, em.byEvent(EventQuestion))
}

func TestPing(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})
	em := new(recordingEmitter)

	f.orch.Ping(em, 123)

	pongs := em.byEvent(EventPong)
	require.Len(t, pongs, 1)
	assert.Positive(t, pongs[0].(PongPayload).Timestamp)
}

func TestPingBeforeJoinAnswered(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: context.DeadlineExceeded})

	srv := httptest.NewServer(http.HandlerFunc(f.orch.ServeWS))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteJSON(ClientMessage{Event: EventPing, Timestamp: 1}))

	var msg ServerMessage
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, EventPong, msg.Event)
}
