package service

import (
	"context"
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

// stubGenerator returns fixed model output.
type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(context.Context, string, time.Duration) (string, error) {
	return g.text, g.err
}
