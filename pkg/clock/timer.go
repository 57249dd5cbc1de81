package clock

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

const (
	stateIdle = iota
	stateActive
	stateExpired
)

// Timer runs a function once after a delay. Unlike time.AfterFunc it is
// created idle and only starts counting down once Start is called.
type Timer struct {
	t  *time.Timer
	fn func()

	l        *deadlock.Mutex // to synchronize access to the fields below
	state    int
	duration time.Duration
}

// AfterFunc returns an idle Timer that, once started, waits for the
// duration to elapse and then calls f in its own goroutine.
func AfterFunc(d time.Duration, f func()) *Timer {
	t := &Timer{
		duration: d,
		l:        new(deadlock.Mutex),
	}
	t.fn = func() {
		t.l.Lock()
		t.state = stateExpired
		t.l.Unlock()
		f()
	}
	return t
}

// Start starts the countdown. It returns false if the timer was already
// started, stopped or expired.
func (t *Timer) Start() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateIdle {
		return false
	}
	t.state = stateActive
	t.t = time.AfterFunc(t.duration, t.fn)
	return true
}

// Stop prevents the Timer from firing. It returns true if the call stops the timer,
// false if the timer has already expired or been stopped.
func (t *Timer) Stop() bool {
	t.l.Lock()
	defer t.l.Unlock()
	if t.state != stateActive {
		t.state = stateExpired
		return false
	}
	t.state = stateExpired
	return t.t.Stop()
}
