package clock

import (
	"context"
	"sync"
	"time"
)

// Handle cancels work handed to a Scheduler.
type Handle interface {
	// Cancel stops future runs. It returns false if there was nothing left
	// to cancel.
	Cancel() bool
}

// Scheduler runs deferred and periodic work. A period of zero schedules a
// one-shot.
type Scheduler interface {
	Schedule(delay, period time.Duration, fn func()) Handle
}

type realScheduler struct {
	ctx context.Context
}

// NewScheduler returns a Scheduler backed by goroutines and the wall clock.
// All outstanding work is abandoned once ctx is done.
func NewScheduler(ctx context.Context) Scheduler {
	return &realScheduler{ctx: ctx}
}

func (s *realScheduler) Schedule(delay, period time.Duration, fn func()) Handle {
	if period <= 0 {
		timer := AfterFunc(delay, fn)
		timer.Start()
		return &timerHandle{
			timer: timer,
			stop:  context.AfterFunc(s.ctx, func() { timer.Stop() }),
		}
	}

	t := &ticker{stop: make(chan struct{})}
	go t.run(s.ctx, delay, period, fn)
	return t
}

type timerHandle struct {
	timer *Timer
	stop  func() bool
}

func (h *timerHandle) Cancel() bool {
	h.stop()
	return h.timer.Stop()
}

// ticker calls fn after delay and then every period until cancelled. Calls
// never overlap.
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func (t *ticker) run(ctx context.Context, delay, period time.Duration, fn func()) {
	first := time.NewTimer(delay)
	defer first.Stop()

	select {
	case <-first.C:
	case <-t.stop:
		return
	case <-ctx.Done():
		return
	}

	fn()

	tick := time.NewTicker(period)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			fn()
		case <-t.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *ticker) Cancel() bool {
	cancelled := false
	t.once.Do(func() {
		close(t.stop)
		cancelled = true
	})
	return cancelled
}
