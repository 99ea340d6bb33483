package ui

import (
	"image"
	"time"

	"github.com/jerusalem-science-museum/leonardo-browser/internal/input"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
)

// SessionOptions configures a kiosk session.
type SessionOptions struct {
	Total       int
	Magnifier   MagnifierOptions
	OpenOnStart bool

	PrevButton   image.Rectangle
	NextButton   image.Rectangle
	ToggleButton image.Rectangle

	IdleTimeout time.Duration
}

// Frame is everything the renderer needs for one tick.
type Frame struct {
	Index     int
	Total     int
	Magnifier Magnifier
	Buttons   []ButtonView
	Pointer   image.Point
	// IdleRemaining is zero when the watchdog is disabled.
	IdleRemaining time.Duration
}

// Session is the single owner of the carousel, the magnifier and the idle
// watchdog. It is driven one tick at a time from the update loop.
type Session struct {
	source    input.Source
	carousel  *Carousel
	magnifier *Magnifier
	watchdog  *IdleWatchdog
	buttons   *ButtonBar

	lastPos image.Point
}

// NewSession creates a session reading from src.
func NewSession(src input.Source, opts SessionOptions) (*Session, error) {
	carousel, err := NewCarousel(opts.Total)
	if err != nil {
		return nil, err
	}

	s := &Session{
		source:    src,
		carousel:  carousel,
		magnifier: NewMagnifier(opts.Magnifier),
		buttons:   NewButtonBar(opts.PrevButton, opts.NextButton, opts.ToggleButton),
		lastPos:   src.PollPosition(),
	}
	s.watchdog = NewIdleWatchdog(opts.IdleTimeout, s.onIdle)
	if opts.OpenOnStart {
		s.magnifier.Toggle()
	}
	return s, nil
}

// Tick polls the source once, dispatches what it reports and advances the
// idle watchdog by dt.
//
// A queued transition carries its own position. The live position may
// already belong to a later contact, so it is only followed on ticks that
// consume no transition.
func (s *Session) Tick(dt time.Duration) {
	if tr, ok := s.source.PollTransition(); ok {
		if tr.Kind == input.Release {
			s.moveTo(tr.Pos)
		}
		s.Dispatch(tr)
		s.lastPos = tr.Pos
	} else {
		s.moveTo(s.source.PollPosition())
	}

	s.watchdog.Tick(dt)
}

func (s *Session) moveTo(pos image.Point) {
	if pos == s.lastPos {
		return
	}
	s.Dispatch(input.Event{Kind: input.Move, Pos: pos})
	s.lastPos = pos
}

// Dispatch applies one normalized event.
func (s *Session) Dispatch(ev input.Event) {
	switch ev.Kind {
	case input.Press:
		s.watchdog.Reset()
		if id, ok := s.buttons.Press(ev.Pos); ok {
			s.pressButton(id)
			return
		}
		if s.magnifier.Press(ev.Pos) {
			logger.Debug("magnifier drag started", "at", ev.Pos)
		}
	case input.Move:
		if s.magnifier.State() == MagnifierOpenDragging {
			s.magnifier.Move(ev.Pos)
			s.watchdog.Reset()
		}
	case input.Release:
		s.buttons.Release()
		if s.magnifier.Release() {
			logger.Debug("magnifier drag ended", "position", s.magnifier.Position())
		}
	}
}

func (s *Session) pressButton(id ButtonID) {
	switch id {
	case ButtonPrev:
		s.Navigate(-1)
	case ButtonNext:
		s.Navigate(1)
	case ButtonToggle:
		s.ToggleMagnifier()
	}
}

// Navigate moves the carousel by delta, wrapping at both ends. A drag in
// progress ends, since the next image may have a different zoom factor.
func (s *Session) Navigate(delta int) {
	if delta == 0 {
		return
	}
	s.magnifier.EndDrag()
	s.carousel.navigate(delta)
	s.watchdog.Reset()
	logger.Debug("carousel moved", "index", s.carousel.GetCurrentIndex())
}

// ToggleMagnifier opens or closes the magnifier.
func (s *Session) ToggleMagnifier() {
	s.magnifier.Toggle()
	s.watchdog.Reset()
	logger.Debug("magnifier toggled", "state", s.magnifier.State())
}

func (s *Session) onIdle() {
	logger.Info("Idle timeout reached, resetting session")
	s.carousel.Reset()
	s.magnifier.Close()
	s.magnifier.ResetPosition()
	s.buttons.Release()
}

// Frame returns the render state for the current tick.
func (s *Session) Frame() Frame {
	return Frame{
		Index:         s.carousel.GetCurrentIndex(),
		Total:         s.carousel.Total(),
		Magnifier:     *s.magnifier,
		Buttons:       s.buttons.Views(),
		Pointer:       s.lastPos,
		IdleRemaining: s.watchdog.Remaining(),
	}
}

func (s *Session) Carousel() *Carousel {
	return s.carousel
}

func (s *Session) Magnifier() *Magnifier {
	return s.magnifier
}

func (s *Session) Watchdog() *IdleWatchdog {
	return s.watchdog
}

// Close releases the input source.
func (s *Session) Close() error {
	return s.source.Close()
}
