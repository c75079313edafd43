package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is one sweep the scheduler runs each interval. Run returns how
// many resources it reclaimed.
type Task struct {
	Name string
	Run  func(ctx context.Context) int
}

// Scheduler is the background janitor. It periodically runs its tasks to
// reap orphaned resources left behind by dropped connections: idle
// transcription streams, stale sessions. Stop returns promptly even
// mid-interval.
type Scheduler struct {
	interval time.Duration
	tasks    []Task

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewScheduler builds a scheduler running tasks every interval.
func NewScheduler(interval time.Duration, tasks ...Task) *Scheduler {
	return &Scheduler{interval: interval, tasks: tasks}
}

// Start launches the sweep loop. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		log.Warn().Msg("cleanup scheduler already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.loop(ctx, s.stopped)
	log.Info().Dur("interval", s.interval).Msg("cleanup scheduler started")
}

// Stop halts the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel = nil
	s.stopped = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	log.Info().Msg("cleanup scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTasks(ctx)
		}
	}
}

func (s *Scheduler) runTasks(ctx context.Context) {
	total := 0
	for _, task := range s.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("task", task.Name).Msg("cleanup task panicked")
				}
			}()
			if n := task.Run(ctx); n > 0 {
				log.Info().Str("task", task.Name).Int("cleaned", n).Msg("cleanup task reclaimed resources")
				total += n
			}
		}()
	}
	if total == 0 {
		log.Debug().Msg("cleanup complete, nothing to clean")
	}
}
