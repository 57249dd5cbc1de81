package clock

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

// Task is a named unit of deferred or repeating work that can be started and
// cancelled any number of times, but never runs twice concurrently: Start on
// a running task is refused.
type Task struct {
	Name   string
	Delay  time.Duration
	Period time.Duration
	// Run does one iteration. For periodic tasks, returning false stops
	// the task.
	Run func() bool

	mutex      deadlock.Mutex
	handle     Handle
	running    bool
	generation uint64
}

func NewTask(name string, delay, period time.Duration, run func() bool) *Task {
	return &Task{
		Name:   name,
		Delay:  delay,
		Period: period,
		Run:    run,
	}
}

// Start schedules the task. It returns false if the task is already running.
func (t *Task) Start(s Scheduler) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running {
		return false
	}

	t.generation++
	generation := t.generation
	period := t.Period
	t.running = true
	t.handle = s.Schedule(t.Delay, period, func() {
		t.tick(generation, period)
	})

	log.Debug().Str("task", t.Name).Msg("task started")
	return true
}

// Cancel stops the task. An iteration already in progress finishes, but no
// later one will run. It returns false if the task was not running.
func (t *Task) Cancel() bool {
	t.mutex.Lock()
	if !t.running {
		t.mutex.Unlock()
		return false
	}
	t.running = false
	t.generation++
	handle := t.handle
	t.handle = nil
	t.mutex.Unlock()

	if handle != nil {
		handle.Cancel()
	}

	log.Debug().Str("task", t.Name).Msg("task cancelled")
	return true
}

func (t *Task) Running() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running
}

// SetTiming changes the delay and period used by the next Start.
func (t *Task) SetTiming(delay, period time.Duration) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.Delay = delay
	t.Period = period
}

func (t *Task) tick(generation uint64, period time.Duration) {
	if !t.current(generation) {
		return
	}

	again := t.Run()
	if period > 0 && again {
		return
	}

	t.mutex.Lock()
	if !t.running || t.generation != generation {
		t.mutex.Unlock()
		return
	}
	t.running = false
	handle := t.handle
	t.handle = nil
	t.mutex.Unlock()

	if handle != nil {
		handle.Cancel()
	}
}

func (t *Task) current(generation uint64) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running && t.generation == generation
}
