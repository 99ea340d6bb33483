package input

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Pointer reports the raw state of a system pointer.
type Pointer interface {
	Position() image.Point
	Pressed() bool
}

// PointerSource turns a Pointer's button level into press/release edges.
// It samples the pointer once per PollTransition call.
type PointerSource struct {
	pointer Pointer
	pressed bool
}

// NewPointerSource creates a source over p. A nil p uses the ebiten cursor.
func NewPointerSource(p Pointer) *PointerSource {
	if p == nil {
		p = &EbitenPointer{}
	}
	return &PointerSource{pointer: p}
}

func (s *PointerSource) PollTransition() (Event, bool) {
	pos := s.pointer.Position()
	pressed := s.pointer.Pressed()
	if pressed == s.pressed {
		return Event{}, false
	}
	s.pressed = pressed
	if pressed {
		return Event{Kind: Press, Pos: pos}, true
	}
	return Event{Kind: Release, Pos: pos}, true
}

func (s *PointerSource) PollPosition() image.Point {
	return s.pointer.Position()
}

func (s *PointerSource) Close() error {
	return nil
}

// EbitenPointer reads the mouse cursor and left button. When the display
// reports touches, the first touch stands in for the cursor, and its last
// position is held after lift-off until the mouse itself moves.
type EbitenPointer struct {
	lastTouch  image.Point
	lastCursor image.Point
	touched    bool
}

func (p *EbitenPointer) Position() image.Point {
	cursor := image.Pt(ebiten.CursorPosition())
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		p.lastTouch = image.Pt(ebiten.TouchPosition(ids[0]))
		p.lastCursor = cursor
		p.touched = true
		return p.lastTouch
	}
	if p.touched && cursor == p.lastCursor {
		return p.lastTouch
	}
	p.touched = false
	p.lastCursor = cursor
	return cursor
}

func (p *EbitenPointer) Pressed() bool {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		return true
	}
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}
