package events

import (
	"sync"

	"github.com/google/uuid"
)

// Emitter carries run lifecycle events from the runner to reporters and
// user code. Delivery is synchronous and in registration order: test-case
// results must reach observers in execution order, so handlers run inline
// on the emitting goroutine rather than through buffered fan-out.
type Emitter struct {
	mu          sync.RWMutex
	subscribers map[EventName][]subscription
}

type subscription struct {
	id      string
	handler func(EventData)
}

// NewEmitter creates a new event emitter
func NewEmitter() *Emitter {
	return &Emitter{
		subscribers: make(map[EventName][]subscription),
	}
}

// On registers a handler for event and returns an id for Off.
func (e *Emitter) On(event EventName, handler func(EventData)) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.New().String()
	e.subscribers[event] = append(e.subscribers[event], subscription{id: id, handler: handler})
	return id
}

// Off removes an event handler by ID
func (e *Emitter) Off(event EventName, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subscribers[event]
	for i, sub := range subs {
		if sub.id == id {
			e.subscribers[event] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Emit delivers data to every handler registered for event, in registration
// order, before returning.
func (e *Emitter) Emit(event EventName, data EventData) {
	e.mu.RLock()
	subs := make([]subscription, len(e.subscribers[event]))
	copy(subs, e.subscribers[event])
	e.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(data)
	}
}

// Close removes every handler.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscribers = make(map[EventName][]subscription)
}
