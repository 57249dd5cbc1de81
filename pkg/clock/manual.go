package clock

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Manual is a Scheduler driven by hand. Time only moves when Advance is
// called, which makes timer-heavy code deterministic under test.
type Manual struct {
	mutex   deadlock.Mutex
	now     time.Duration
	seq     uint64
	entries []*manualEntry
}

var _ Scheduler = (*Manual)(nil)

type manualEntry struct {
	m      *Manual
	at     time.Duration
	period time.Duration
	seq    uint64
	fn     func()
	done   bool
}

func NewManual() *Manual {
	return &Manual{}
}

// Now returns how much virtual time has passed.
func (m *Manual) Now() time.Duration {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.now
}

func (m *Manual) Schedule(delay, period time.Duration, fn func()) Handle {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if delay < 0 {
		delay = 0
	}

	m.seq++
	entry := &manualEntry{
		m:      m,
		at:     m.now + delay,
		period: period,
		seq:    m.seq,
		fn:     fn,
	}
	m.entries = append(m.entries, entry)
	return entry
}

// Pending returns the number of scheduled runs that have not been cancelled
// or completed.
func (m *Manual) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.entries)
}

// Advance moves virtual time forward by d, running everything that falls due
// in time order. Callbacks run on the calling goroutine without the
// scheduler lock held, so they may schedule or cancel work.
func (m *Manual) Advance(d time.Duration) {
	m.mutex.Lock()
	target := m.now + d
	m.mutex.Unlock()

	for {
		m.mutex.Lock()
		entry := m.next(target)
		if entry == nil {
			m.now = target
			m.mutex.Unlock()
			return
		}

		m.now = entry.at
		if entry.period > 0 {
			entry.at += entry.period
		} else {
			entry.done = true
			m.remove(entry)
		}
		fn := entry.fn
		m.mutex.Unlock()

		fn()
	}
}

func (m *Manual) next(target time.Duration) *manualEntry {
	var found *manualEntry
	for _, entry := range m.entries {
		if entry.at > target {
			continue
		}
		if found == nil || entry.at < found.at || (entry.at == found.at && entry.seq < found.seq) {
			found = entry
		}
	}
	return found
}

func (m *Manual) remove(target *manualEntry) {
	for i, entry := range m.entries {
		if entry == target {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

func (e *manualEntry) Cancel() bool {
	e.m.mutex.Lock()
	defer e.m.mutex.Unlock()
	if e.done {
		return false
	}
	e.done = true
	e.m.remove(e)
	return true
}
