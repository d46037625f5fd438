package preferences

import (
	"time"

	"hourglass/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	Duration  time.Duration
	Loop      bool
	LoopLimit int

	IdlePauseEnabled bool
	IdlePauseAfter   time.Duration

	SoundEnabled bool
	Volume       float64

	OverlayOpacity float64
	Fullscreen     bool
	Autostart      bool

	LogLevel  string
	LogFormat string
}

// DefaultSettings returns default settings for Hourglass.
func DefaultSettings() Settings {
	return Settings{
		Duration:         10 * time.Minute,
		Loop:             false,
		LoopLimit:        0,
		IdlePauseEnabled: true,
		IdlePauseAfter:   5 * time.Minute,
		SoundEnabled:     true,
		Volume:           0.8,
		OverlayOpacity:   0.85,
		Fullscreen:       true,
		Autostart:        false,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// TimerConfig converts settings to the countdown configuration. A loop count
// of zero in the preferences means "repeat forever".
func (settings Settings) TimerConfig() model.TimerConfig {
	limit := settings.LoopLimit
	if limit <= 0 {
		limit = -1
	}
	return model.TimerConfig{
		Duration:  settings.Duration,
		Loop:      settings.Loop,
		LoopLimit: limit,
	}
}

// IdlePauseConfig converts settings to the idle pause configuration.
func (settings Settings) IdlePauseConfig() model.IdlePauseConfig {
	return model.IdlePauseConfig{
		Enabled:       settings.IdlePauseEnabled,
		PauseAfter:    settings.IdlePauseAfter,
		CheckInterval: 5 * time.Second,
	}
}
