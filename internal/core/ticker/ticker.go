package ticker

import (
	"sync"
	"time"
)

// Loop drives attached handlers from a wall-clock time.Ticker, passing each
// one the time elapsed since the previous tick.
type Loop struct {
	mu       sync.Mutex
	interval time.Duration
	handlers map[int]func(time.Duration)
	nextID   int
	last     time.Time
	stopCh   chan struct{}
	running  bool
}

// NewLoop creates a stopped Loop. Intervals <= 0 default to one second.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	return &Loop{
		interval: interval,
		handlers: make(map[int]func(time.Duration)),
	}
}

// Attach registers a tick handler and returns its release func. The release
// is safe to call more than once.
func (loop *Loop) Attach(fn func(delta time.Duration)) func() {
	loop.mu.Lock()
	id := loop.nextID
	loop.nextID++
	loop.handlers[id] = fn
	loop.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			loop.mu.Lock()
			delete(loop.handlers, id)
			loop.mu.Unlock()
		})
	}
}

// Attached reports the number of live handlers.
func (loop *Loop) Attached() int {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	return len(loop.handlers)
}

// Start launches the ticking goroutine.
func (loop *Loop) Start() {
	loop.mu.Lock()
	if loop.running {
		loop.mu.Unlock()
		return
	}
	loop.running = true
	loop.last = time.Now()
	loop.stopCh = make(chan struct{})
	stopCh := loop.stopCh
	loop.mu.Unlock()

	go loop.run(stopCh)
}

// Stop halts ticking. Handlers stay attached and resume on the next Start.
func (loop *Loop) Stop() {
	loop.mu.Lock()
	if !loop.running {
		loop.mu.Unlock()
		return
	}
	loop.running = false
	close(loop.stopCh)
	loop.mu.Unlock()
}

func (loop *Loop) run(stopCh chan struct{}) {
	ticker := time.NewTicker(loop.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			loop.tick(now)
		}
	}
}

func (loop *Loop) tick(now time.Time) {
	loop.mu.Lock()
	delta := now.Sub(loop.last)
	loop.last = now
	handlers := make([]func(time.Duration), 0, len(loop.handlers))
	for _, fn := range loop.handlers {
		handlers = append(handlers, fn)
	}
	loop.mu.Unlock()

	for _, fn := range handlers {
		fn(delta)
	}
}
