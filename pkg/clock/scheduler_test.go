package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerStartStop(t *testing.T) {
	var fired atomic.Bool
	timer := AfterFunc(time.Hour, func() { fired.Store(true) })

	assert.True(t, timer.Start())
	assert.False(t, timer.Start())

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.False(t, timer.Start())
	assert.False(t, fired.Load())
}

func TestSchedulerOneShot(t *testing.T) {
	s := NewScheduler(context.Background())
	done := make(chan struct{})

	s.Schedule(10*time.Millisecond, 0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("one-shot never fired")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler(context.Background())
	var fired atomic.Bool

	handle := s.Schedule(50*time.Millisecond, 0, func() { fired.Store(true) })
	assert.True(t, handle.Cancel())

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestSchedulerPeriodic(t *testing.T) {
	s := NewScheduler(context.Background())
	var count atomic.Int32
	reached := make(chan struct{})

	var handle Handle
	handle = s.Schedule(0, 5*time.Millisecond, func() {
		if count.Add(1) == 3 {
			close(reached)
		}
	})

	select {
	case <-reached:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker never reached three runs")
	}

	assert.True(t, handle.Cancel())
	assert.False(t, handle.Cancel())

	stopped := count.Load()
	time.Sleep(50 * time.Millisecond)
	// at most one tick could have been in flight when we cancelled
	assert.LessOrEqual(t, count.Load(), stopped+1)
}

func TestSchedulerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(ctx)
	var fired atomic.Bool

	s.Schedule(50*time.Millisecond, 0, func() { fired.Store(true) })
	s.Schedule(50*time.Millisecond, time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
}
