// Package input normalizes pointer and touch-panel devices into a single
// stream of press, release and move events in screen pixels.
package input

import (
	"errors"
	"image"
)

// Kind identifies a normalized event.
type Kind int

const (
	Press Kind = iota
	Release
	Move
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	case Move:
		return "move"
	default:
		return "unknown"
	}
}

// Event is a normalized input event. Pos is always in screen pixels.
type Event struct {
	Kind Kind
	Pos  image.Point
}

// ErrDeviceUnavailable is returned when the touch panel cannot be opened.
var ErrDeviceUnavailable = errors.New("touch device unavailable")

// Source is a polled input device. Neither method blocks: the absence of
// an event is a valid result.
type Source interface {
	// PollTransition returns at most one Press or Release per call, in the
	// order the device reported them.
	PollTransition() (Event, bool)
	// PollPosition returns the last known continuous position.
	PollPosition() image.Point
	Close() error
}
