package ui

import "time"

// IdleWatchdog counts time without interaction and calls onIdle once each
// time the threshold is crossed. It is advanced by the update loop, so the
// callback always runs at a tick boundary.
type IdleWatchdog struct {
	elapsed   time.Duration
	threshold time.Duration
	onIdle    func()
}

// NewIdleWatchdog creates a watchdog. A threshold of zero or less disables it.
func NewIdleWatchdog(threshold time.Duration, onIdle func()) *IdleWatchdog {
	return &IdleWatchdog{threshold: threshold, onIdle: onIdle}
}

// Tick advances the elapsed time by dt and fires the callback when the
// threshold is reached. After firing, the watchdog starts a fresh cycle.
func (w *IdleWatchdog) Tick(dt time.Duration) {
	if w.threshold <= 0 || dt <= 0 {
		return
	}
	w.elapsed += dt
	if w.elapsed < w.threshold {
		return
	}
	w.elapsed = 0
	if w.onIdle != nil {
		w.onIdle()
	}
}

// Reset zeroes the elapsed time.
func (w *IdleWatchdog) Reset() {
	w.elapsed = 0
}

func (w *IdleWatchdog) Elapsed() time.Duration {
	return w.elapsed
}

// Remaining returns the time left before the callback fires, or zero when
// the watchdog is disabled.
func (w *IdleWatchdog) Remaining() time.Duration {
	if w.threshold <= 0 {
		return 0
	}
	return w.threshold - w.elapsed
}
