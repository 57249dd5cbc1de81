package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTopicOrder(t *testing.T) {
	topic := NewTopic[int]("numbers")
	var got []string

	topic.Subscribe(func(v int) { got = append(got, "first") })
	topic.Subscribe(func(v int) { got = append(got, "second") })
	topic.Subscribe(func(v int) { got = append(got, "third") })

	topic.Publish(1)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestTopicPanicIsolation(t *testing.T) {
	topic := NewTopic[string]("words")
	var got []string

	topic.Subscribe(func(v string) { got = append(got, "before:"+v) })
	topic.Subscribe(func(v string) { panic("boom") })
	topic.Subscribe(func(v string) { got = append(got, "after:"+v) })

	assert.NotPanics(t, func() { topic.Publish("x") })
	assert.Equal(t, []string{"before:x", "after:x"}, got)
}

func TestTopicDone(t *testing.T) {
	topic := NewTopic[int]("numbers")
	count := 0

	sub := topic.Subscribe(func(int) { count++ })
	topic.Publish(1)
	sub.Done()
	sub.Done()
	topic.Publish(2)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, topic.NumSubscribers())
}

func TestTopicReentrant(t *testing.T) {
	topic := NewTopic[int]("numbers")
	var got []int

	topic.Subscribe(func(v int) {
		got = append(got, v)
		if v < 3 {
			topic.Publish(v + 1)
		}
	})

	topic.Publish(1)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestSession(t *testing.T) {
	session := NewSession(context.Background())
	assert.False(t, session.IsDone())
	assert.False(t, session.Started().IsZero())
	assert.GreaterOrEqual(t, session.Uptime(), time.Duration(0))
	session.Cancel()
	assert.True(t, session.IsDone())
	<-session.Done()
}
