package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

// MockInterviewRepository mocks the InterviewRepository interface
type MockInterviewRepository struct {
	mock.Mock
}

func (m *MockInterviewRepository) GetContext(ctx context.Context, interviewID int64) (*domain.InterviewContext, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterviewContext), args.Error(1)
}

func (m *MockInterviewRepository) MarkCompleted(ctx context.Context, interviewID int64, recordingURL string) error {
	args := m.Called(ctx, interviewID, recordingURL)
	return args.Error(0)
}

// stubGenerator returns canned model output without the mock ceremony.
type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(context.Context, string, time.Duration) (string, error) {
	return g.text, g.err
}

type emitted struct {
	Event   string
	Payload any
}

type ack struct {
	ID      int64
	OK      bool
	Message string
}

// recordingEmitter captures everything the orchestrator sends so tests
// can assert on event order and payloads. Safe for concurrent use since
// background tasks emit from pool goroutines.
type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	acks   []ack
}

func (e *recordingEmitter) Emit(event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{Event: event, Payload: payload})
}

func (e *recordingEmitter) Ack(id int64, ok bool, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acks = append(e.acks, ack{ID: id, OK: ok, Message: message})
}

func (e *recordingEmitter) byEvent(event string) []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []any
	for _, ev := range e.events {
		if ev.Event == event {
			out = append(out, ev.Payload)
		}
	}
	return out
}

func (e *recordingEmitter) lastAck() (ack, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.acks) == 0 {
		return ack{}, false
	}
	return e.acks[len(e.acks)-1], true
}
