package ticker

import (
	"sync"
	"time"
)

// Manual is a hand-driven ticker for tests and frame-stepped hosts: each
// Advance call delivers one tick carrying the given elapsed time.
type Manual struct {
	mu       sync.Mutex
	handlers map[int]func(time.Duration)
	nextID   int
}

// NewManual creates a Manual ticker with no handlers.
func NewManual() *Manual {
	return &Manual{handlers: make(map[int]func(time.Duration))}
}

// Attach registers a tick handler and returns its release func. The release
// is safe to call more than once.
func (manual *Manual) Attach(fn func(delta time.Duration)) func() {
	manual.mu.Lock()
	id := manual.nextID
	manual.nextID++
	manual.handlers[id] = fn
	manual.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			manual.mu.Lock()
			delete(manual.handlers, id)
			manual.mu.Unlock()
		})
	}
}

// Attached reports the number of live handlers.
func (manual *Manual) Attached() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return len(manual.handlers)
}

// Advance synchronously invokes every attached handler with delta.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	handlers := make([]func(time.Duration), 0, len(manual.handlers))
	for _, fn := range manual.handlers {
		handlers = append(handlers, fn)
	}
	manual.mu.Unlock()

	for _, fn := range handlers {
		fn(delta)
	}
}
