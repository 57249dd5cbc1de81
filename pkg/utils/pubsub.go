package utils

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

// Topic delivers every published value to its subscribers synchronously, in
// the order they subscribed. Publish returns once all of them have run.
type Topic[T any] struct {
	name        string
	subscribers []*Subscriber[T]
	mutex       deadlock.RWMutex
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{
		name: name,
	}
}

func (t *Topic[T]) Name() string {
	return t.name
}

// Publish calls every subscriber with value. A subscriber that panics is
// logged and skipped; the rest still receive the value.
func (t *Topic[T]) Publish(value T) {
	t.mutex.RLock()
	subscribers := make([]*Subscriber[T], len(t.subscribers))
	copy(subscribers, t.subscribers)
	t.mutex.RUnlock()

	for _, subscriber := range subscribers {
		subscriber.deliver(value)
	}
}

type Subscriber[T any] struct {
	handler func(T)
	topic   *Topic[T]
}

func (t *Topic[T]) Subscribe(handler func(T)) *Subscriber[T] {
	subscriber := &Subscriber[T]{handler, t}
	t.mutex.Lock()
	t.subscribers = append(t.subscribers, subscriber)
	t.mutex.Unlock()
	return subscriber
}

func (t *Topic[T]) NumSubscribers() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.subscribers)
}

func (s *Subscriber[T]) deliver(value T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("topic", s.topic.name).
				Err(fmt.Errorf("%v", r)).
				Msg("subscriber panicked")
		}
	}()
	s.handler(value)
}

// Done unsubscribes. It is safe to call more than once.
func (s *Subscriber[T]) Done() {
	topic := s.topic
	topic.mutex.Lock()
	defer topic.mutex.Unlock()
	for i, other := range topic.subscribers {
		if other == s {
			topic.subscribers = append(topic.subscribers[:i:i], topic.subscribers[i+1:]...)
			return
		}
	}
}
