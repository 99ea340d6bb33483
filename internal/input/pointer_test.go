package input

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePointer struct {
	pos     image.Point
	pressed bool
}

func (f *fakePointer) Position() image.Point { return f.pos }
func (f *fakePointer) Pressed() bool         { return f.pressed }

func TestPointerSource_Edges(t *testing.T) {
	p := &fakePointer{pos: image.Pt(10, 20)}
	src := NewPointerSource(p)

	_, ok := src.PollTransition()
	assert.False(t, ok, "no transition while the button stays up")

	p.pressed = true
	ev, ok := src.PollTransition()
	assert.True(t, ok)
	assert.Equal(t, Event{Kind: Press, Pos: image.Pt(10, 20)}, ev)

	_, ok = src.PollTransition()
	assert.False(t, ok, "holding the button is not a new press")

	p.pos = image.Pt(30, 40)
	assert.Equal(t, image.Pt(30, 40), src.PollPosition())

	p.pressed = false
	ev, ok = src.PollTransition()
	assert.True(t, ok)
	assert.Equal(t, Event{Kind: Release, Pos: image.Pt(30, 40)}, ev)

	assert.NoError(t, src.Close())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "press", Press.String())
	assert.Equal(t, "release", Release.String())
	assert.Equal(t, "move", Move.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
