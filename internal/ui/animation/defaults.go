package animation

import "time"

// DefaultConfig returns the alarm timing defaults.
func DefaultConfig() Config {
	return Config{
		FlashCount: 6,
		FlashOn:    350 * time.Millisecond,
		FlashOff:   250 * time.Millisecond,
		PulsePeriod: Range{
			Min: 1800 * time.Millisecond,
			Max: 2600 * time.Millisecond,
		},
		PulseFloor: 0.35,
		PulseStep:  40 * time.Millisecond,
	}
}
