package countdown

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"hourglass/internal/core/model"
)

// LoopUnbounded as a loop limit restarts the countdown forever.
const LoopUnbounded = -1

// Ticker schedules recurring callbacks carrying the time elapsed since the
// previous invocation. Attach returns a release func that detaches the
// callback; release must be safe to call more than once.
type Ticker interface {
	Attach(fn func(delta time.Duration)) (release func())
}

// Config contains runtime options for Timer.
type Config struct {
	// Callback is invoked on every completion: each loop wrap, the terminal
	// completion, and an early Stop.
	Callback func()
	// Unit is the single countdown step. Values <= 0 default to one second.
	Unit    time.Duration
	Emitter Emitter
	Logger  *zap.Logger
}

// Timer counts a configured duration down to zero, one unit per elapsed unit
// of ticker time, optionally restarting a bounded or unbounded number of
// times. All methods are safe for concurrent use.
type Timer struct {
	mu         sync.Mutex
	original   time.Duration
	remaining  time.Duration
	loop       bool
	loopLimit  int
	loops      int
	acc        time.Duration
	unit       time.Duration
	callback   func()
	ticker     Ticker
	release    func()
	resume     *time.Timer
	running    bool
	paused     bool
	wasRunning bool
	emitter    Emitter
	logger     *zap.Logger
}

// New creates a Timer bound to the given ticker with the provided
// configuration.
func New(config model.TimerConfig, tick Ticker, options Config) *Timer {
	if options.Unit <= 0 {
		options.Unit = time.Second
	}
	if options.Emitter == nil {
		options.Emitter = nopEmitter{}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	timer := &Timer{
		unit:     options.Unit,
		callback: options.Callback,
		ticker:   tick,
		emitter:  options.Emitter,
		logger:   options.Logger,
	}
	timer.applyConfigLocked(config)
	return timer
}

// Start binds the tick callback and marks the timer running. It is a no-op
// while a binding already exists, running or paused.
func (timer *Timer) Start() {
	timer.mu.Lock()
	if timer.release != nil || timer.ticker == nil {
		timer.mu.Unlock()
		return
	}
	timer.running = true
	timer.paused = false
	timer.acc = 0
	timer.release = timer.ticker.Attach(timer.onTick)
	remaining := timer.remaining
	timer.mu.Unlock()

	timer.logger.Debug("countdown started", zap.Duration("remaining", remaining))
	timer.emitter.Emit(Event{Channel: ChannelStarted, Remaining: remaining, At: time.Now()})
}

// Stop ends the countdown early: the binding is released, the completion
// callback fires and Stopped is emitted. Without a live binding it is a
// complete no-op, which makes a double Stop safe.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	if timer.release == nil {
		timer.mu.Unlock()
		return
	}
	release := timer.release
	timer.release = nil
	timer.running = false
	timer.paused = false
	timer.cancelDeferredResumeLocked()
	callback := timer.callback
	remaining := timer.remaining
	loops := timer.loops
	timer.mu.Unlock()

	release()
	timer.logger.Debug("countdown stopped", zap.Duration("remaining", remaining))
	if callback != nil {
		callback()
	}
	timer.emitter.Emit(Event{Channel: ChannelStopped, Remaining: remaining, Loops: loops, At: time.Now()})
}

// Reset restores the configured duration and loop count and stops the
// countdown if it is running. It fires no callback and emits nothing.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	release := timer.release
	timer.release = nil
	timer.running = false
	timer.paused = false
	timer.cancelDeferredResumeLocked()
	timer.remaining = timer.original
	timer.loops = 0
	timer.acc = 0
	timer.mu.Unlock()

	if release != nil {
		release()
	}
	timer.logger.Debug("countdown reset")
}

// Pause freezes the countdown in place. The ticker binding stays attached;
// ticks are ignored until Resume.
func (timer *Timer) Pause() {
	timer.mu.Lock()
	if timer.paused {
		timer.mu.Unlock()
		return
	}
	timer.pauseLocked()
	timer.mu.Unlock()

	timer.logger.Debug("countdown paused")
	timer.emitter.Emit(Event{Channel: ChannelPaused, At: time.Now()})
}

// Resume restarts a paused countdown where it left off. A manual Resume
// cancels any deferred resume still pending from PauseFor.
func (timer *Timer) Resume() {
	timer.mu.Lock()
	if !timer.paused {
		timer.mu.Unlock()
		return
	}
	timer.paused = false
	timer.running = timer.wasRunning
	timer.cancelDeferredResumeLocked()
	timer.mu.Unlock()

	timer.logger.Debug("countdown resumed")
	timer.emitter.Emit(Event{Channel: ChannelResumed, At: time.Now()})
}

// PauseFor pauses a running countdown and schedules an automatic Resume
// after wait. Non-positive waits, and timers that are not currently
// running, are no-ops.
func (timer *Timer) PauseFor(wait time.Duration) {
	if wait <= 0 {
		return
	}

	timer.mu.Lock()
	if !timer.running || timer.paused {
		timer.mu.Unlock()
		return
	}
	timer.pauseLocked()
	timer.resume = time.AfterFunc(wait, timer.Resume)
	timer.mu.Unlock()

	timer.logger.Debug("countdown paused", zap.Duration("resume_in", wait))
	timer.emitter.Emit(Event{Channel: ChannelPaused, At: time.Now()})
}

// Set replaces the remaining time.
func (timer *Timer) Set(remaining time.Duration) {
	timer.mu.Lock()
	timer.remaining = remaining
	timer.mu.Unlock()
}

// Add extends the remaining time.
func (timer *Timer) Add(amount time.Duration) {
	timer.mu.Lock()
	timer.remaining += amount
	timer.mu.Unlock()
}

// Sub shortens the remaining time, clamping at zero.
func (timer *Timer) Sub(amount time.Duration) {
	timer.mu.Lock()
	timer.remaining -= amount
	if timer.remaining < 0 {
		timer.remaining = 0
	}
	timer.mu.Unlock()
}

// UpdateConfig swaps the configured duration and loop settings, then behaves
// like Reset.
func (timer *Timer) UpdateConfig(config model.TimerConfig) {
	timer.mu.Lock()
	release := timer.release
	timer.release = nil
	timer.running = false
	timer.paused = false
	timer.cancelDeferredResumeLocked()
	timer.applyConfigLocked(config)
	timer.mu.Unlock()

	if release != nil {
		release()
	}
	timer.logger.Debug("countdown reconfigured", zap.Duration("duration", config.Duration))
}

// State derives the externally visible state.
func (timer *Timer) State() State {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	switch {
	case timer.paused:
		return StatePaused
	case timer.running:
		return StateRunning
	default:
		return StateIdle
	}
}

// Remaining reports the time left on the current pass.
func (timer *Timer) Remaining() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.remaining
}

// Duration reports the configured countdown duration.
func (timer *Timer) Duration() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.original
}

// LoopEnabled reports whether the timer restarts after reaching zero.
func (timer *Timer) LoopEnabled() bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.loop
}

// LoopLimit reports the configured restart cap, LoopUnbounded when there is
// none.
func (timer *Timer) LoopLimit() int {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.loopLimit
}

// LoopsCompleted reports how many times the countdown has wrapped around.
func (timer *Timer) LoopsCompleted() int {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.loops
}

func (timer *Timer) onTick(delta time.Duration) {
	timer.mu.Lock()
	if !timer.running || timer.paused {
		timer.mu.Unlock()
		return
	}

	now := time.Now()

	// The zero check runs before the decrement on purpose: completion and
	// loop restarts happen on the tick after remaining reaches zero.
	if timer.remaining <= 0 {
		if timer.loopsRemainLocked() {
			completed := timer.loops
			timer.loops++
			timer.remaining = timer.original
			timer.acc = 0
			callback := timer.callback
			timer.mu.Unlock()

			timer.logger.Debug("countdown looped", zap.Int("loops", completed+1))
			if callback != nil {
				callback()
			}
			timer.emitter.Emit(Event{Channel: ChannelDidLoop, Loops: completed, At: now})
			return
		}

		release := timer.release
		timer.release = nil
		timer.running = false
		timer.remaining = 0
		timer.acc = 0
		callback := timer.callback
		loops := timer.loops
		timer.mu.Unlock()

		if release != nil {
			release()
		}
		timer.logger.Debug("countdown completed")
		if callback != nil {
			callback()
		}
		timer.emitter.Emit(Event{Channel: ChannelCompleted, Loops: loops, At: now})
		return
	}

	timer.acc += delta
	var ticks []time.Duration
	for timer.acc >= timer.unit && timer.remaining > 0 {
		timer.acc -= timer.unit
		timer.remaining -= timer.unit
		if timer.remaining < 0 {
			timer.remaining = 0
		}
		ticks = append(ticks, timer.remaining)
	}
	timer.mu.Unlock()

	for _, remaining := range ticks {
		timer.emitter.Emit(Event{Channel: ChannelTick, Remaining: remaining, At: now})
	}
}

func (timer *Timer) applyConfigLocked(config model.TimerConfig) {
	timer.original = config.Duration
	timer.loop = config.Loop && config.LoopLimit != 0
	timer.loopLimit = config.LoopLimit
	if timer.loopLimit < 0 {
		timer.loopLimit = LoopUnbounded
	}
	timer.remaining = timer.original
	timer.loops = 0
	timer.acc = 0
}

func (timer *Timer) pauseLocked() {
	timer.wasRunning = timer.running
	timer.running = false
	timer.paused = true
}

func (timer *Timer) loopsRemainLocked() bool {
	if !timer.loop {
		return false
	}
	return timer.loopLimit == LoopUnbounded || timer.loops < timer.loopLimit
}

func (timer *Timer) cancelDeferredResumeLocked() {
	if timer.resume != nil {
		timer.resume.Stop()
		timer.resume = nil
	}
}
