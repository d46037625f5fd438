package model

import "time"

// TimerConfig describes one countdown: how long it runs and how it loops.
type TimerConfig struct {
	Duration time.Duration
	// Loop restarts the countdown each time it reaches zero.
	Loop bool
	// LoopLimit caps the number of restarts. Zero disables looping even when
	// Loop is set; negative values mean no cap.
	LoopLimit int
}

// IdlePauseConfig controls pausing the countdown while the user is away.
type IdlePauseConfig struct {
	Enabled       bool
	PauseAfter    time.Duration
	CheckInterval time.Duration
}
