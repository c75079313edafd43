package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
)

// Gateway is the single entry point for AI text generation. It walks an
// ordered model ladder with per-model retries, skips ahead on quota
// errors, and sits behind a circuit breaker so a struggling upstream
// degrades to canned content instead of stalling interviews.
type Gateway struct {
	provider Provider
	models   []string
	retries  int
	breaker  *CircuitBreaker

	sleep func(time.Duration)
}

// NewGateway builds a gateway over the configured model ladder.
func NewGateway(provider Provider, cfg config.AIConfig) *Gateway {
	models := make([]string, 0, 1+len(cfg.FallbackModels))
	seen := make(map[string]struct{})
	for _, m := range append([]string{cfg.Model}, cfg.FallbackModels...) {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		models = append(models, m)
	}

	return &Gateway{
		provider: provider,
		models:   models,
		retries:  cfg.MaxRetries,
		breaker:  NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		sleep:    time.Sleep,
	}
}

// BreakerState exposes the breaker position for health reporting.
func (g *Gateway) BreakerState() BreakerState {
	return g.breaker.State()
}

// Generate tries each model in order, retrying transient failures with
// exponential backoff. A quota error abandons the current model
// immediately. Returns ErrUnavailable when the breaker is open or every
// model failed.
func (g *Gateway) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	if !g.provider.IsConfigured() {
		return "", fmt.Errorf("%w: provider %s not configured", ErrUnavailable, g.provider.Name())
	}
	if !g.breaker.Allow() {
		log.Warn().Str("breaker", g.breaker.State().String()).Msg("ai call rejected by circuit breaker")
		return "", fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}

	for _, model := range g.models {
		text, err := g.tryModel(ctx, model, prompt, timeout)
		if err == nil {
			g.breaker.RecordSuccess()
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Warn().Err(err).Str("model", model).Msg("model exhausted, trying next")
	}

	return "", fmt.Errorf("%w: all models failed", ErrUnavailable)
}

func (g *Gateway) tryModel(ctx context.Context, model, prompt string, timeout time.Duration) (string, error) {
	var lastErr error

	for attempt := 0; attempt < g.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := g.provider.Generate(attemptCtx, model, prompt)
		cancel()

		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = errors.New("empty response")
		}
		lastErr = err

		if errors.Is(err, ErrQuotaExhausted) {
			// A throttle is not an outage; retrying just burns time
			// and it does not count against the breaker.
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.breaker.RecordFailure()

		if attempt < g.retries-1 {
			backoff := time.Duration(1<<attempt) * 500 * time.Millisecond
			log.Debug().Err(err).Str("model", model).Int("attempt", attempt+1).Dur("backoff", backoff).
				Msg("ai attempt failed, backing off")
			g.sleep(backoff)
		}
	}

	return "", lastErr
}
