package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const frame = time.Second / 60

func TestIdleWatchdog_FiresOnceAfterThreshold(t *testing.T) {
	fired := 0
	w := NewIdleWatchdog(time.Second, func() { fired++ })

	for i := 0; i < 59; i++ {
		w.Tick(frame)
	}
	assert.Equal(t, 0, fired)

	// Half a second more crosses the threshold once, then restarts.
	for i := 0; i < 31; i++ {
		w.Tick(frame)
	}
	assert.Equal(t, 1, fired)
	assert.Less(t, w.Elapsed(), time.Second)
}

func TestIdleWatchdog_ResetPostponesFiring(t *testing.T) {
	fired := 0
	w := NewIdleWatchdog(time.Second, func() { fired++ })

	for i := 0; i < 10; i++ {
		w.Tick(900 * time.Millisecond)
		w.Reset()
	}
	assert.Equal(t, 0, fired)
	assert.Equal(t, time.Duration(0), w.Elapsed())
	assert.Equal(t, time.Second, w.Remaining())
}

func TestIdleWatchdog_OneLongTickFiresOnce(t *testing.T) {
	fired := 0
	w := NewIdleWatchdog(time.Second, func() { fired++ })

	w.Tick(5 * time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, time.Duration(0), w.Elapsed())
}

func TestIdleWatchdog_FiresEachFullCycle(t *testing.T) {
	fired := 0
	w := NewIdleWatchdog(500*time.Millisecond, func() { fired++ })

	for i := 0; i < 10; i++ {
		w.Tick(250 * time.Millisecond)
	}
	assert.Equal(t, 5, fired)
}

func TestIdleWatchdog_Disabled(t *testing.T) {
	fired := 0
	w := NewIdleWatchdog(0, func() { fired++ })

	w.Tick(time.Hour)
	assert.Equal(t, 0, fired)
	assert.Equal(t, time.Duration(0), w.Remaining())
}
