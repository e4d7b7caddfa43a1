package generator

import (
	"sync"
	"time"
)

// EventType represents the type of generation event.
type EventType int

const (
	// EventAttemptStarted is emitted before each attempt.
	EventAttemptStarted EventType = iota
	// EventPlacement is emitted after each progression placement.
	EventPlacement
	// EventAttemptFailed is emitted when an attempt ends stuck or timed out.
	EventAttemptFailed
	// EventCompleted is emitted once a layout is accepted.
	EventCompleted
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAttemptStarted:
		return "AttemptStarted"
	case EventPlacement:
		return "Placement"
	case EventAttemptFailed:
		return "AttemptFailed"
	case EventCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Event is a progress update. Percent is the share of the current player's
// pool already placed.
type Event struct {
	Type      EventType `json:"type"`
	Player    int       `json:"player"`
	Attempt   int       `json:"attempt"`
	Percent   float64   `json:"percent"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventBus delivers generation events to subscribers.
type EventBus interface {
	// Subscribe registers a handler under name, replacing any previous one.
	Subscribe(name string, handler func(Event))

	// Unsubscribe removes the handler registered under name.
	Unsubscribe(name string)

	// Publish sends an event to every handler.
	Publish(event Event)
}

// SimpleEventBus is an in-memory event bus. Handlers run synchronously on
// the publishing goroutine, in subscription order.
type SimpleEventBus struct {
	mu       sync.RWMutex
	names    []string
	handlers map[string]func(Event)
}

// NewSimpleEventBus creates an empty event bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{handlers: make(map[string]func(Event))}
}

// Subscribe registers a handler under name.
func (bus *SimpleEventBus) Subscribe(name string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, exists := bus.handlers[name]; !exists {
		bus.names = append(bus.names, name)
	}
	bus.handlers[name] = handler
}

// Unsubscribe removes the handler registered under name.
func (bus *SimpleEventBus) Unsubscribe(name string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, exists := bus.handlers[name]; !exists {
		return
	}
	delete(bus.handlers, name)
	for i, n := range bus.names {
		if n == name {
			bus.names = append(bus.names[:i], bus.names[i+1:]...)
			break
		}
	}
}

// Publish calls every handler with event.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	handlers := make([]func(Event), 0, len(bus.names))
	for _, name := range bus.names {
		handlers = append(handlers, bus.handlers[name])
	}
	bus.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, h := range handlers {
		h(event)
	}
}

// NullEventBus is an event bus that does nothing.
type NullEventBus struct{}

// NewNullEventBus creates a new null event bus.
func NewNullEventBus() *NullEventBus {
	return &NullEventBus{}
}

// Subscribe does nothing.
func (bus *NullEventBus) Subscribe(name string, handler func(Event)) {}

// Unsubscribe does nothing.
func (bus *NullEventBus) Unsubscribe(name string) {}

// Publish does nothing.
func (bus *NullEventBus) Publish(event Event) {}
