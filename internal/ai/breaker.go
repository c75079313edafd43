package ai

import (
	"sync"
	"time"
)

// BreakerState describes the circuit breaker position.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker gates upstream AI calls. It opens after a run of
// consecutive failures, lets a probe through once the cooldown has
// elapsed, and closes again on the first success.
type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration

	failures    int
	lastFailure time.Time

	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}
	// Open. Permit a probe once the cooldown has passed.
	return b.now().Sub(b.lastFailure) >= b.cooldown
}

// RecordSuccess closes the breaker and clears the failure count.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// RecordFailure counts a failure. A failed probe restarts the cooldown.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
}

// State returns the current breaker position.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return BreakerClosed
	}
	if b.now().Sub(b.lastFailure) >= b.cooldown {
		return BreakerHalfOpen
	}
	return BreakerOpen
}
