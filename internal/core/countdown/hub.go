package countdown

import "sync"

// Hub fans timer events out to observers. Listeners registered with Connect
// run synchronously, in registration order, on the goroutine that emitted the
// event. Watch channels receive every event with a non-blocking send, so a
// slow consumer loses events rather than stalling the timer.
type Hub struct {
	mu        sync.Mutex
	listeners map[Channel][]func(Event)
	watchers  []chan Event
	closed    bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[Channel][]func(Event))}
}

// Connect registers a listener for a single event channel.
func (hub *Hub) Connect(channel Channel, listener func(Event)) {
	if listener == nil {
		return
	}
	hub.mu.Lock()
	hub.listeners[channel] = append(hub.listeners[channel], listener)
	hub.mu.Unlock()
}

// Watch registers a new observer channel fed with every event.
func (hub *Hub) Watch(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		close(ch)
		return ch
	}
	hub.watchers = append(hub.watchers, ch)
	hub.mu.Unlock()
	return ch
}

// Emit delivers an event to the channel's listeners and to all watchers.
func (hub *Hub) Emit(event Event) {
	hub.mu.Lock()
	listeners := append(([]func(Event))(nil), hub.listeners[event.Channel]...)
	if !hub.closed {
		for _, ch := range hub.watchers {
			select {
			case ch <- event:
			default:
			}
		}
	}
	hub.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Close closes every watch channel. Listeners stay connected.
func (hub *Hub) Close() {
	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		return
	}
	hub.closed = true
	watchers := hub.watchers
	hub.watchers = nil
	hub.mu.Unlock()

	for _, ch := range watchers {
		close(ch)
	}
}
