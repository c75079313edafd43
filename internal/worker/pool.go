package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Pool runs named background tasks with a soft concurrency limit.
// Interview finalization and question generation run here so a burst of
// finishing interviews does not normally spawn unbounded goroutines.
// Panics in tasks are recovered and logged; one bad task must not take
// the server down.
type Pool struct {
	sem  chan struct{}
	wg   sync.WaitGroup
	ctx  context.Context
	stop context.CancelFunc
}

// NewPool creates a pool allowing up to size concurrent tasks.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:  make(chan struct{}, size),
		ctx:  ctx,
		stop: cancel,
	}
}

// Submit schedules a task without ever blocking the caller. A saturated
// pool overflows to a goroutine outside the concurrency limit rather
// than stalling hot paths like the realtime read loop. Reports false
// only when the pool is shutting down.
func (p *Pool) Submit(name string, task func(ctx context.Context)) bool {
	select {
	case <-p.ctx.Done():
		log.Warn().Str("task", name).Msg("pool closed, task rejected")
		return false
	default:
	}

	select {
	case p.sem <- struct{}{}:
		p.spawn(name, task, true)
	default:
		log.Warn().Str("task", name).Msg("pool saturated, task running above the limit")
		p.spawn(name, task, false)
	}
	return true
}

func (p *Pool) spawn(name string, task func(ctx context.Context), held bool) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if held {
			defer func() { <-p.sem }()
		}
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("task", name).Msg("background task panicked")
			}
		}()

		task(p.ctx)
	}()
}

// Shutdown stops accepting tasks, cancels the pool context and waits for
// running tasks to finish.
func (p *Pool) Shutdown() {
	p.stop()
	p.wg.Wait()
}
