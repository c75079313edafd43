package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsTasksPeriodically(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(10*time.Millisecond, Task{
		Name: "counter",
		Run: func(context.Context) int {
			runs.Add(1)
			return 1
		},
	})

	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestSchedulerStopIsPrompt(t *testing.T) {
	s := NewScheduler(time.Hour, Task{
		Name: "never",
		Run:  func(context.Context) int { return 0 },
	})

	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return promptly mid-interval")
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(time.Minute)
	s.Stop()
}

func TestSchedulerDoubleStart(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(10*time.Millisecond, Task{
		Name: "counter",
		Run: func(context.Context) int {
			runs.Add(1)
			return 0
		},
	})

	s.Start()
	s.Start()
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	// A second Start must not double the tick rate.
	assert.LessOrEqual(t, runs.Load(), int32(4))
}

func TestSchedulerSurvivesPanickingTask(t *testing.T) {
	var after atomic.Int32
	s := NewScheduler(10*time.Millisecond,
		Task{Name: "explode", Run: func(context.Context) int { panic("boom") }},
		Task{Name: "after", Run: func(context.Context) int { after.Add(1); return 0 }},
	)

	s.Start()
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, after.Load(), int32(1), "tasks after a panicking one still run")
}
