package interview

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	args := m.Called(ctx, prompt, timeout)
	return args.String(0), args.Error(1)
}
