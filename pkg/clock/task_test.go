package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskNoDoubleStart(t *testing.T) {
	m := NewManual()
	count := 0
	task := NewTask("ticker", time.Second, time.Second, func() bool {
		count++
		return true
	})

	require.True(t, task.Start(m))
	assert.False(t, task.Start(m))
	assert.Equal(t, 1, m.Pending())

	m.Advance(3 * time.Second)
	assert.Equal(t, 3, count)
}

func TestTaskCancel(t *testing.T) {
	m := NewManual()
	count := 0
	task := NewTask("ticker", time.Second, time.Second, func() bool {
		count++
		return true
	})

	assert.False(t, task.Cancel())

	task.Start(m)
	m.Advance(2 * time.Second)
	assert.True(t, task.Cancel())
	assert.False(t, task.Running())
	assert.Equal(t, 0, m.Pending())

	m.Advance(10 * time.Second)
	assert.Equal(t, 2, count)

	// can be started again after a cancel
	assert.True(t, task.Start(m))
	m.Advance(time.Second)
	assert.Equal(t, 3, count)
}

func TestTaskCancelFromRun(t *testing.T) {
	m := NewManual()
	count := 0
	var task *Task
	task = NewTask("self", 0, time.Second, func() bool {
		count++
		task.Cancel()
		return true
	})

	task.Start(m)
	m.Advance(5 * time.Second)
	assert.Equal(t, 1, count)
	assert.False(t, task.Running())
}

func TestTaskOneShot(t *testing.T) {
	m := NewManual()
	count := 0
	task := NewTask("once", time.Second, 0, func() bool {
		count++
		return false
	})

	task.Start(m)
	assert.True(t, task.Running())
	m.Advance(time.Minute)
	assert.Equal(t, 1, count)
	assert.False(t, task.Running())

	assert.True(t, task.Start(m))
	m.Advance(time.Minute)
	assert.Equal(t, 2, count)
}

func TestTaskStopsItself(t *testing.T) {
	m := NewManual()
	count := 0
	task := NewTask("three", 0, time.Second, func() bool {
		count++
		return count < 3
	})

	task.Start(m)
	m.Advance(time.Minute)
	assert.Equal(t, 3, count)
	assert.False(t, task.Running())
	assert.Equal(t, 0, m.Pending())
}

func TestTaskStaleGeneration(t *testing.T) {
	m := NewManual()
	count := 0
	task := NewTask("restart", time.Second, 0, func() bool {
		count++
		return false
	})

	task.Start(m)
	task.Cancel()
	task.Start(m)

	m.Advance(time.Second)
	assert.Equal(t, 1, count)
}

func TestTaskSetTiming(t *testing.T) {
	m := NewManual()
	count := 0
	task := NewTask("later", 0, 0, func() bool {
		count++
		return false
	})

	task.SetTiming(10*time.Second, 0)
	task.Start(m)

	m.Advance(9 * time.Second)
	assert.Equal(t, 0, count)
	m.Advance(time.Second)
	assert.Equal(t, 1, count)
}
