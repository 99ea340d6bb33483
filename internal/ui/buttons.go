package ui

import "image"

// ButtonID names an on-screen button.
type ButtonID int

const (
	ButtonPrev ButtonID = iota
	ButtonNext
	ButtonToggle
)

func (b ButtonID) String() string {
	switch b {
	case ButtonPrev:
		return "prev"
	case ButtonNext:
		return "next"
	case ButtonToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// ButtonView is the render state of one button.
type ButtonView struct {
	ID       ButtonID
	Rect     image.Rectangle
	Selected bool
}

// ButtonBar hit-tests the fixed button rectangles and remembers which one is
// held down so it can be drawn selected until release.
type ButtonBar struct {
	rects   map[ButtonID]image.Rectangle
	order   []ButtonID
	pressed ButtonID
	held    bool
}

// NewButtonBar creates a bar from button rectangles. Earlier buttons win
// when rectangles overlap.
func NewButtonBar(prev, next, toggle image.Rectangle) *ButtonBar {
	return &ButtonBar{
		rects: map[ButtonID]image.Rectangle{
			ButtonPrev:   prev,
			ButtonNext:   next,
			ButtonToggle: toggle,
		},
		order: []ButtonID{ButtonPrev, ButtonNext, ButtonToggle},
	}
}

// Press returns the button under p, if any, and marks it held.
func (b *ButtonBar) Press(p image.Point) (ButtonID, bool) {
	for _, id := range b.order {
		if p.In(b.rects[id]) {
			b.pressed, b.held = id, true
			return id, true
		}
	}
	return 0, false
}

// Release clears the held button.
func (b *ButtonBar) Release() {
	b.held = false
}

// Views returns the buttons in draw order.
func (b *ButtonBar) Views() []ButtonView {
	views := make([]ButtonView, 0, len(b.order))
	for _, id := range b.order {
		views = append(views, ButtonView{
			ID:       id,
			Rect:     b.rects[id],
			Selected: b.held && b.pressed == id,
		})
	}
	return views
}
