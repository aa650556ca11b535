// Package eventbus provides an in-memory publish/subscribe bus used to notify
// presentation code about state changes. Topics are dot-separated and
// subscriptions may use "*" for a single component or as the whole pattern.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
package eventbus

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Event is a single published event.
type Event struct {
	Topic string
	Data  any
}

type subscriber struct {
	id      string
	pattern string
	ch      chan Event

	mu     sync.Mutex
	closed bool
}

func (s *subscriber) send(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// EventBus routes events to subscribers by topic pattern.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*subscriber // pattern -> id -> subscriber
	counter     uint64
	dropped     atomic.Uint64
}

// New creates an empty EventBus.
func New() *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[string]*subscriber),
	}
}

// Subscribe registers a subscriber for pattern and returns its channel and an
// idempotent unsubscribe function that closes the channel.
func (bus *EventBus) Subscribe(pattern string, bufferSize int) (<-chan Event, func()) {
	if bufferSize < 1 {
		bufferSize = 1
	}
	id := fmt.Sprintf("sub-%d", atomic.AddUint64(&bus.counter, 1))
	sub := &subscriber{
		id:      id,
		pattern: pattern,
		ch:      make(chan Event, bufferSize),
	}

	bus.mu.Lock()
	if _, ok := bus.subscribers[pattern]; !ok {
		bus.subscribers[pattern] = make(map[string]*subscriber)
	}
	bus.subscribers[pattern][id] = sub
	bus.mu.Unlock()

	unsubscribe := func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()

		if subMap, ok := bus.subscribers[pattern]; ok {
			if s, ok := subMap[id]; ok {
				s.close()
				delete(subMap, id)
				if len(subMap) == 0 {
					delete(bus.subscribers, pattern)
				}
			}
		}
	}
	return sub.ch, unsubscribe
}

// Publish delivers an event to every subscriber whose pattern matches topic.
// It returns the number of subscribers that received it.
func (bus *EventBus) Publish(topic string, data any) int {
	event := Event{Topic: topic, Data: data}

	bus.mu.RLock()
	defer bus.mu.RUnlock()

	delivered := 0
	for pattern, subMap := range bus.subscribers {
		if !matchTopic(pattern, topic) {
			continue
		}
		for _, sub := range subMap {
			if sub.send(event) {
				delivered++
			} else {
				bus.dropped.Add(1)
			}
		}
	}
	return delivered
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (bus *EventBus) Dropped() uint64 {
	return bus.dropped.Load()
}

// Shutdown closes every subscriber channel and clears the bus.
func (bus *EventBus) Shutdown() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, subs := range bus.subscribers {
		for _, sub := range subs {
			sub.close()
		}
	}
	bus.subscribers = make(map[string]map[string]*subscriber)
}

func matchTopic(pattern, topic string) bool {
	if pattern == "" || topic == "" {
		return false
	}
	if pattern == "*" || pattern == topic {
		return true
	}
	patternParts := strings.Split(pattern, ".")
	topicParts := strings.Split(topic, ".")
	if len(patternParts) != len(topicParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] != "*" && patternParts[i] != topicParts[i] {
			return false
		}
	}
	return true
}
