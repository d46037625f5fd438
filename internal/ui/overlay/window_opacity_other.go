//go:build !windows

package overlay

// Native per-window translucency is only wired up on Windows. Elsewhere
// the background rectangle alpha carries the effect.
func (overlay *Window) applyNativeOpacity(alpha uint8) {}
