package events

import (
	"sync"
	"time"
)

const defaultBufSize = 256

// EventBus is a channel-based pub-sub bus keyed by topic.
// An empty topic subscribes to every topic.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Event
	closed bool
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]chan Event)}
}

// Subscribe returns a channel receiving events for topic, or for all topics
// when topic is empty. bufSize <= 0 uses a 256-event buffer.
func (b *EventBus) Subscribe(topic string, bufSize int) <-chan Event {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	ch := make(chan Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.subs[topic] = append(b.subs[topic], ch)
	return ch
}

// SubscribeAll is Subscribe for every topic.
func (b *EventBus) SubscribeAll(bufSize int) <-chan Event {
	return b.Subscribe("", bufSize)
}

// Publish delivers event to subscribers of its topic and to all-topic
// subscribers. A full subscriber drops the event rather than blocking.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	deliver := func(chs []chan Event) {
		for _, ch := range chs {
			select {
			case ch <- event:
			default:
			}
		}
	}
	deliver(b.subs[event.Topic()])
	if event.Topic() != "" {
		deliver(b.subs[""])
	}
}

// Close closes every subscriber channel. Safe to call more than once.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, chs := range b.subs {
		for _, ch := range chs {
			close(ch)
		}
	}
}

// Reporter publishes gatherer notifications on a bus.
// It satisfies contextgather.Reporter.
type Reporter struct {
	Bus *EventBus
	Now func() time.Time // nil uses time.Now
}

func (r Reporter) Error(msg string) {
	r.Bus.Publish(ContextErrorEvent{Message: msg, Timestamp: r.now()})
}

func (r Reporter) Warning(msg string) {
	r.Bus.Publish(ContextWarningEvent{Message: msg, Timestamp: r.now()})
}

func (r Reporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
