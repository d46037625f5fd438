package idlepause

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"hourglass/internal/core/countdown"
	"hourglass/internal/core/model"
	"hourglass/internal/platform"
)

// Watcher pauses a running countdown while the user is away from the
// machine and resumes it once input activity returns. A pause placed by
// the user is never resumed by the watcher.
type Watcher struct {
	mu       sync.Mutex
	timer    *countdown.Timer
	provider platform.IdleProvider
	config   model.IdlePauseConfig
	logger   *zap.Logger

	release    func()
	sinceCheck time.Duration
	holding    bool
}

// New creates a watcher for the given timer and idle provider.
func New(timer *countdown.Timer, provider platform.IdleProvider, config model.IdlePauseConfig, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = 5 * time.Second
	}
	return &Watcher{
		timer:    timer,
		provider: provider,
		config:   config,
		logger:   logger,
	}
}

// Attach subscribes the watcher to a ticker. Attaching twice is a no-op.
func (watcher *Watcher) Attach(tick countdown.Ticker) {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.release != nil || tick == nil {
		return
	}
	watcher.release = tick.Attach(watcher.onTick)
}

// Detach unsubscribes the watcher from its ticker.
func (watcher *Watcher) Detach() {
	watcher.mu.Lock()
	release := watcher.release
	watcher.release = nil
	watcher.mu.Unlock()

	if release != nil {
		release()
	}
}

// UpdateConfig replaces the watcher configuration. Disabling the watcher
// releases any pause it placed itself.
func (watcher *Watcher) UpdateConfig(config model.IdlePauseConfig) {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 5 * time.Second
	}

	watcher.mu.Lock()
	defer watcher.mu.Unlock()

	watcher.config = config
	watcher.sinceCheck = 0
	if !config.Enabled && watcher.holding {
		watcher.holding = false
		if watcher.timer.State() == countdown.StatePaused {
			watcher.timer.Resume()
		}
	}
}

// Holding reports whether the current pause was placed by the watcher.
func (watcher *Watcher) Holding() bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.holding
}

func (watcher *Watcher) onTick(delta time.Duration) {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()

	if !watcher.config.Enabled || watcher.provider == nil {
		return
	}

	watcher.sinceCheck += delta
	if watcher.sinceCheck < watcher.config.CheckInterval {
		return
	}
	watcher.sinceCheck = 0

	idleFor, err := watcher.provider.IdleDuration()
	if err != nil {
		if errors.Is(err, platform.ErrIdleUnsupported) {
			watcher.config.Enabled = false
			watcher.logger.Warn("idle detection unavailable, auto-pause disabled", zap.Error(err))
			return
		}
		watcher.logger.Warn("idle probe failed", zap.Error(err))
		return
	}

	if idleFor >= watcher.config.PauseAfter {
		if !watcher.holding && watcher.timer.State() == countdown.StateRunning {
			watcher.timer.Pause()
			watcher.holding = true
			watcher.logger.Info("paused for inactivity", zap.Duration("idle", idleFor))
		}
		return
	}

	if watcher.holding {
		watcher.holding = false
		if watcher.timer.State() == countdown.StatePaused {
			watcher.timer.Resume()
			watcher.logger.Info("resumed after activity")
		}
	}
}
