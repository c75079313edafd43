package ai

import (
	"context"
	"errors"
)

// ErrQuotaExhausted marks a provider error caused by rate or quota limits.
// The gateway skips remaining retries for the model and moves to the next
// one when it sees this.
var ErrQuotaExhausted = errors.New("model quota exhausted")

// ErrUnavailable is returned when the circuit breaker is open or every
// configured model failed. Callers are expected to fall back to canned
// content rather than surface this to candidates.
var ErrUnavailable = errors.New("ai generation unavailable")

// Provider generates text from a prompt against a named model.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate produces a completion for the prompt. Implementations
	// wrap quota and rate-limit failures with ErrQuotaExhausted.
	Generate(ctx context.Context, model, prompt string) (string, error)
}
