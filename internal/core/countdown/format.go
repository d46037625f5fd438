package countdown

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration the way the tray and overlay display it:
// "1h 2m 5s", "1m 5s", "9s". Negative and sub-second values render as "0s".
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	if total <= 0 {
		return "0s"
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
