package ui

import (
	"image"
	"math"
)

// MagnifierState is the interaction state of the magnifier.
type MagnifierState int

const (
	MagnifierClosed MagnifierState = iota
	MagnifierOpenIdle
	MagnifierOpenDragging
)

func (s MagnifierState) String() string {
	switch s {
	case MagnifierClosed:
		return "closed"
	case MagnifierOpenIdle:
		return "open"
	case MagnifierOpenDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// MagnifierOptions describes the magnifier overlay and the screen it lives on.
type MagnifierOptions struct {
	// Screen is the logical screen size.
	Screen image.Point
	// Size is the size of the bezel asset; it is also the drag hit area.
	Size image.Point
	// Center is the offset from the top-left corner to the lens center.
	Center image.Point
	// WindowSize is the side of the square crop taken from the zoom asset.
	WindowSize int
	// Initial is the position at session start and after an idle reset.
	Initial image.Point
}

type dragAnchor struct {
	start  image.Point // pointer position at press
	origin image.Point // magnifier position at press
}

// Magnifier owns the draggable lens: its open flag, its top-left position
// and the anchor of an in-progress drag.
type Magnifier struct {
	opts MagnifierOptions
	open bool
	pos  image.Point
	drag *dragAnchor
}

// NewMagnifier creates a closed magnifier at opts.Initial.
func NewMagnifier(opts MagnifierOptions) *Magnifier {
	m := &Magnifier{opts: opts}
	m.pos = m.clamp(opts.Initial)
	return m
}

func (m *Magnifier) State() MagnifierState {
	switch {
	case !m.open:
		return MagnifierClosed
	case m.drag != nil:
		return MagnifierOpenDragging
	default:
		return MagnifierOpenIdle
	}
}

func (m *Magnifier) IsOpen() bool {
	return m.open
}

// Position returns the top-left corner of the magnifier in screen space.
func (m *Magnifier) Position() image.Point {
	return m.pos
}

// Center returns the lens center in screen space.
func (m *Magnifier) Center() image.Point {
	return m.pos.Add(m.opts.Center)
}

// Rect returns the magnifier window rectangle used for drag hit testing.
func (m *Magnifier) Rect() image.Rectangle {
	return image.Rectangle{Min: m.pos, Max: m.pos.Add(m.opts.Size)}
}

// Toggle opens a closed magnifier or closes an open one. The position is
// kept, so reopening shows the lens where it was left.
func (m *Magnifier) Toggle() {
	if m.open {
		m.Close()
		return
	}
	m.open = true
}

// Close hides the magnifier and drops any drag.
func (m *Magnifier) Close() {
	m.open = false
	m.drag = nil
}

// Press starts a drag when the magnifier is open and p is inside its window.
func (m *Magnifier) Press(p image.Point) bool {
	if !m.open || m.drag != nil || !p.In(m.Rect()) {
		return false
	}
	m.drag = &dragAnchor{start: p, origin: m.pos}
	return true
}

// Release ends a drag wherever the pointer is. It reports whether a drag
// was in progress.
func (m *Magnifier) Release() bool {
	if m.drag == nil {
		return false
	}
	m.drag = nil
	return true
}

// EndDrag drops an in-progress drag without moving the magnifier.
func (m *Magnifier) EndDrag() {
	m.drag = nil
}

// Move follows the pointer during a drag. The new position is derived from
// the drag anchor and clamped on every call. It reports whether the
// magnifier moved.
func (m *Magnifier) Move(p image.Point) bool {
	if m.drag == nil {
		return false
	}
	next := m.clamp(m.drag.origin.Add(p.Sub(m.drag.start)))
	if next == m.pos {
		return false
	}
	m.pos = next
	return true
}

// ResetPosition returns the magnifier to its initial position.
func (m *Magnifier) ResetPosition() {
	m.drag = nil
	m.pos = m.clamp(m.opts.Initial)
}

// clamp saturates p so that the lens center stays on screen.
func (m *Magnifier) clamp(p image.Point) image.Point {
	c := m.opts.Center
	return image.Pt(
		clampInt(p.X, -c.X, m.opts.Screen.X-c.X),
		clampInt(p.Y, -c.Y, m.opts.Screen.Y-c.Y),
	)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lens is the per-frame geometry of the magnifier.
type Lens struct {
	// Dst is where the masked crop is drawn on screen.
	Dst image.Rectangle
	// Crop is the source rectangle inside the zoom asset.
	Crop image.Rectangle
	// Factor is the zoom asset to base image scale.
	Factor float64
}

// Lens maps the current position to a crop of the zoom asset, given the
// base and zoom asset sizes. The crop is clamped into the zoom asset and
// shrinks when the asset is smaller than the window.
func (m *Magnifier) Lens(base, zoom image.Point) Lens {
	factor := ZoomFactor(base, zoom)
	center := m.Center()
	zoomCenter := image.Pt(
		int(math.Round(float64(center.X)*factor)),
		int(math.Round(float64(center.Y)*factor)),
	)

	side := image.Pt(m.opts.WindowSize, m.opts.WindowSize)
	if side.X > zoom.X {
		side.X = zoom.X
	}
	if side.Y > zoom.Y {
		side.Y = zoom.Y
	}
	origin := image.Pt(
		clampInt(zoomCenter.X-side.X/2, 0, zoom.X-side.X),
		clampInt(zoomCenter.Y-side.Y/2, 0, zoom.Y-side.Y),
	)

	return Lens{
		Dst:    image.Rectangle{Min: m.pos, Max: m.pos.Add(side)},
		Crop:   image.Rectangle{Min: origin, Max: origin.Add(side)},
		Factor: factor,
	}
}

// ZoomFactor is the width ratio of the zoom asset to the base image. An
// empty base yields 1.
func ZoomFactor(base, zoom image.Point) float64 {
	if base.X <= 0 {
		return 1
	}
	return float64(zoom.X) / float64(base.X)
}
