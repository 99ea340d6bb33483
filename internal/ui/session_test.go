package ui

import (
	"image"
	"testing"
	"time"

	"github.com/jerusalem-science-museum/leonardo-browser/internal/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays queued transitions and a settable position.
type scriptedSource struct {
	queue  []input.Event
	pos    image.Point
	closed bool
}

func (s *scriptedSource) PollTransition() (input.Event, bool) {
	if len(s.queue) == 0 {
		return input.Event{}, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

func (s *scriptedSource) PollPosition() image.Point { return s.pos }

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

func (s *scriptedSource) press(p image.Point) {
	s.pos = p
	s.queue = append(s.queue, input.Event{Kind: input.Press, Pos: p})
}

func (s *scriptedSource) release() {
	s.queue = append(s.queue, input.Event{Kind: input.Release, Pos: s.pos})
}

var (
	prevRect   = image.Rect(70, 489, 126, 591)
	nextRect   = image.Rect(1800, 489, 1856, 591)
	toggleRect = image.Rect(1790, 950, 1890, 1050)
)

func newTestSession(t *testing.T, idle time.Duration) (*Session, *scriptedSource) {
	t.Helper()
	src := &scriptedSource{pos: image.Pt(960, 540)}
	s, err := NewSession(src, SessionOptions{
		Total:        21,
		Magnifier:    testMagnifierOptions(),
		PrevButton:   prevRect,
		NextButton:   nextRect,
		ToggleButton: toggleRect,
		IdleTimeout:  idle,
	})
	require.NoError(t, err)
	return s, src
}

func tap(s *Session, src *scriptedSource, p image.Point) {
	src.press(p)
	s.Tick(frame)
	src.release()
	s.Tick(frame)
}

func TestNewSession_RejectsEmptyCarousel(t *testing.T) {
	_, err := NewSession(&scriptedSource{}, SessionOptions{Total: 0})
	assert.Error(t, err)
}

func TestSession_ToggleButton(t *testing.T) {
	s, src := newTestSession(t, time.Minute)
	assert.Equal(t, MagnifierClosed, s.Magnifier().State())

	tap(s, src, image.Pt(1800, 1000))
	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())
	assert.Equal(t, image.Pt(90, 90), s.Magnifier().Position())

	tap(s, src, image.Pt(1800, 1000))
	assert.Equal(t, MagnifierClosed, s.Magnifier().State())
}

func TestSession_DragScenario(t *testing.T) {
	s, src := newTestSession(t, time.Minute)
	s.Magnifier().Toggle()

	src.press(image.Pt(100, 100))
	s.Tick(frame)
	require.Equal(t, MagnifierOpenDragging, s.Magnifier().State())

	src.pos = image.Pt(150, 120)
	s.Tick(frame)
	assert.Equal(t, image.Pt(140, 110), s.Magnifier().Position())

	src.release()
	s.Tick(frame)
	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())
	assert.Equal(t, image.Pt(140, 110), s.Magnifier().Position())
}

func TestSession_MoveBeforeReleaseInSameTick(t *testing.T) {
	s, src := newTestSession(t, time.Minute)
	s.Magnifier().Toggle()

	src.press(image.Pt(100, 100))
	s.Tick(frame)

	// Finger moved and lifted between two ticks.
	src.pos = image.Pt(200, 150)
	src.release()
	s.Tick(frame)

	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())
	assert.Equal(t, image.Pt(190, 140), s.Magnifier().Position())
}

func TestSession_Navigation(t *testing.T) {
	s, src := newTestSession(t, time.Minute)

	tap(s, src, image.Pt(80, 500))
	assert.Equal(t, 20, s.Carousel().GetCurrentIndex())

	tap(s, src, image.Pt(1810, 500))
	tap(s, src, image.Pt(1810, 500))
	assert.Equal(t, 1, s.Carousel().GetCurrentIndex())
}

func TestSession_NavigationEndsDrag(t *testing.T) {
	s, _ := newTestSession(t, time.Minute)
	s.Magnifier().Toggle()

	s.Dispatch(input.Event{Kind: input.Press, Pos: image.Pt(100, 100)})
	require.Equal(t, MagnifierOpenDragging, s.Magnifier().State())

	// A second contact reaching the buttons while dragging.
	s.Dispatch(input.Event{Kind: input.Press, Pos: image.Pt(1810, 500)})
	assert.Equal(t, 1, s.Carousel().GetCurrentIndex())
	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())

	before := s.Magnifier().Position()
	s.Dispatch(input.Event{Kind: input.Move, Pos: image.Pt(800, 800)})
	assert.Equal(t, before, s.Magnifier().Position(), "moves after navigation must not drag")
}

func TestSession_ButtonsWinOverMagnifier(t *testing.T) {
	s, src := newTestSession(t, time.Minute)
	s.Magnifier().Toggle()
	s.Dispatch(input.Event{Kind: input.Press, Pos: image.Pt(100, 100)})
	s.Dispatch(input.Event{Kind: input.Move, Pos: image.Pt(0, 500)})
	s.Dispatch(input.Event{Kind: input.Release, Pos: image.Pt(0, 500)})
	require.True(t, image.Pt(80, 500).In(s.Magnifier().Rect()))

	tap(s, src, image.Pt(80, 500))
	assert.Equal(t, 20, s.Carousel().GetCurrentIndex())
	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())
}

func TestSession_SelectedButtonUntilRelease(t *testing.T) {
	s, src := newTestSession(t, time.Minute)

	src.press(image.Pt(80, 500))
	s.Tick(frame)
	views := s.Frame().Buttons
	assert.True(t, views[ButtonPrev].Selected)

	src.release()
	s.Tick(frame)
	assert.False(t, s.Frame().Buttons[ButtonPrev].Selected)
}

func TestSession_IdleResetsSession(t *testing.T) {
	s, src := newTestSession(t, time.Second)

	tap(s, src, image.Pt(1810, 500))
	tap(s, src, image.Pt(1800, 1000))
	src.press(image.Pt(100, 100))
	s.Tick(frame)
	src.pos = image.Pt(600, 500)
	s.Tick(frame)
	src.release()
	s.Tick(frame)
	require.Equal(t, 1, s.Carousel().GetCurrentIndex())
	require.Equal(t, MagnifierOpenIdle, s.Magnifier().State())

	for i := 0; i < 61; i++ {
		s.Tick(frame)
	}

	assert.Equal(t, 0, s.Carousel().GetCurrentIndex())
	assert.Equal(t, MagnifierClosed, s.Magnifier().State())
	assert.Equal(t, image.Pt(90, 90), s.Magnifier().Position())
}

func TestSession_InteractionResetsIdle(t *testing.T) {
	s, src := newTestSession(t, time.Second)
	s.Magnifier().Toggle()

	src.press(image.Pt(100, 100))
	s.Tick(frame)
	for i := 0; i < 180; i++ {
		src.pos = src.pos.Add(image.Pt(1, 0))
		s.Tick(frame)
	}
	assert.Equal(t, MagnifierOpenDragging, s.Magnifier().State(), "a continuous drag is never idle")
	assert.Less(t, s.Watchdog().Elapsed(), 100*time.Millisecond)
}

func TestSession_HoverDoesNotResetIdle(t *testing.T) {
	fired := 0
	s, src := newTestSession(t, time.Second)
	s.carousel.SetIndex(5)

	for i := 0; i < 61; i++ {
		src.pos = src.pos.Add(image.Pt(0, 1))
		s.Tick(frame)
		if s.Carousel().GetCurrentIndex() == 0 {
			fired++
			break
		}
	}
	assert.Equal(t, 1, fired, "pointer hover without a drag is not an interaction")
}

func TestSession_FrameAndClose(t *testing.T) {
	s, src := newTestSession(t, time.Second)
	src.pos = image.Pt(12, 34)
	s.Tick(frame)

	f := s.Frame()
	assert.Equal(t, 0, f.Index)
	assert.Equal(t, 21, f.Total)
	assert.Equal(t, image.Pt(12, 34), f.Pointer)
	assert.Len(t, f.Buttons, 3)
	assert.False(t, f.Magnifier.IsOpen())
	assert.Equal(t, time.Second-frame, f.IdleRemaining)

	require.NoError(t, s.Close())
	assert.True(t, src.closed)
}

func TestSession_OpenOnStart(t *testing.T) {
	s, err := NewSession(&scriptedSource{}, SessionOptions{
		Total:       3,
		Magnifier:   testMagnifierOptions(),
		OpenOnStart: true,
	})
	require.NoError(t, err)
	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())
}

func TestSession_KeyboardNavigate(t *testing.T) {
	s, _ := newTestSession(t, time.Minute)

	s.Navigate(-1)
	assert.Equal(t, 20, s.Carousel().GetCurrentIndex())
	s.Navigate(2)
	assert.Equal(t, 1, s.Carousel().GetCurrentIndex())
	s.Navigate(0)
	assert.Equal(t, 1, s.Carousel().GetCurrentIndex())

	s.ToggleMagnifier()
	assert.True(t, s.Magnifier().IsOpen())
}

func TestSession_QueuedTransitionsUseTheirOwnPositions(t *testing.T) {
	s, src := newTestSession(t, time.Minute)
	s.Magnifier().Toggle()
	start := s.Magnifier().Position()

	// A slow frame: a drag and a tap on "next" are queued before the next
	// tick, and the live position is already the tap's.
	next := image.Pt(1810, 500)
	src.queue = []input.Event{
		{Kind: input.Press, Pos: image.Pt(100, 100)},
		{Kind: input.Release, Pos: image.Pt(150, 130)},
		{Kind: input.Press, Pos: next},
		{Kind: input.Release, Pos: next},
	}
	src.pos = next

	s.Tick(frame)
	require.Equal(t, MagnifierOpenDragging, s.Magnifier().State())
	assert.Equal(t, start, s.Magnifier().Position(), "the lens must not jump to a later contact")

	s.Tick(frame)
	assert.Equal(t, MagnifierOpenIdle, s.Magnifier().State())
	assert.Equal(t, start.Add(image.Pt(50, 30)), s.Magnifier().Position())

	s.Tick(frame)
	s.Tick(frame)
	assert.Equal(t, 1, s.Carousel().GetCurrentIndex())
	assert.Equal(t, start.Add(image.Pt(50, 30)), s.Magnifier().Position())
	assert.Equal(t, next, s.Frame().Pointer)

	s.Tick(frame)
	assert.Equal(t, start.Add(image.Pt(50, 30)), s.Magnifier().Position(), "hover after the tap does not drag")
}
