package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualOrdering(t *testing.T) {
	m := NewManual()
	var order []string

	m.Schedule(3*time.Second, 0, func() { order = append(order, "c") })
	m.Schedule(time.Second, 0, func() { order = append(order, "a") })
	m.Schedule(time.Second, 0, func() { order = append(order, "b") })

	m.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, m.Pending())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 3*time.Second, m.Now())
}

func TestManualPeriodic(t *testing.T) {
	m := NewManual()
	count := 0

	handle := m.Schedule(0, time.Second, func() { count++ })

	m.Advance(0)
	assert.Equal(t, 1, count)

	m.Advance(5 * time.Second)
	assert.Equal(t, 6, count)

	assert.True(t, handle.Cancel())
	assert.False(t, handle.Cancel())

	m.Advance(5 * time.Second)
	assert.Equal(t, 6, count)
	assert.Equal(t, 0, m.Pending())
}

func TestManualReentrant(t *testing.T) {
	m := NewManual()
	fired := false

	m.Schedule(time.Second, 0, func() {
		m.Schedule(time.Second, 0, func() { fired = true })
	})

	m.Advance(2 * time.Second)
	assert.True(t, fired)
}
