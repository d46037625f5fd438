package animation

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains alarm animation timing values.
type Config struct {
	FlashCount int
	FlashOn    time.Duration
	FlashOff   time.Duration

	PulsePeriod Range
	PulseFloor  float64
	PulseStep   time.Duration
}

// Engine drives the alarm background animation: a burst of hard flashes
// followed by a continuous breathing pulse until stopped. Intensity is
// reported as a value in [0, 1].
type Engine struct {
	mu              sync.Mutex
	config          Config
	updateIntensity func(float64)
	cancel          context.CancelFunc
	rng             *rand.Rand
}

// New creates a new animation engine.
func New(config Config, updateIntensity func(float64)) *Engine {
	return &Engine{
		config:          config,
		updateIntensity: updateIntensity,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartAlarm starts the flash-then-pulse sequence, replacing any sequence
// already running.
func (engine *Engine) StartAlarm(ctx context.Context) {
	engine.start(ctx, func(runCtx context.Context) {
		if !engine.runFlashes(runCtx) {
			return
		}
		engine.runPulse(runCtx)
	})
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) runFlashes(ctx context.Context) bool {
	for flash := 0; flash < engine.config.FlashCount; flash++ {
		engine.updateIntensity(1)
		if !sleepWithContext(ctx, engine.config.FlashOn) {
			return false
		}
		engine.updateIntensity(engine.config.PulseFloor)
		if !sleepWithContext(ctx, engine.config.FlashOff) {
			return false
		}
	}
	return true
}

func (engine *Engine) runPulse(ctx context.Context) {
	step := engine.config.PulseStep
	if step <= 0 {
		step = 40 * time.Millisecond
	}
	floor := engine.config.PulseFloor
	if floor < 0 {
		floor = 0
	}
	if floor > 1 {
		floor = 1
	}

	for {
		period := engine.config.PulsePeriod.Random(engine.rng)
		steps := int(period / step)
		if steps < 2 {
			steps = 2
		}
		for index := 0; index < steps; index++ {
			phase := float64(index) / float64(steps)
			intensity := floor + (1-floor)*0.5*(1-math.Cos(2*math.Pi*phase))
			engine.updateIntensity(intensity)
			if !sleepWithContext(ctx, step) {
				return
			}
		}
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
