package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyState holds the operator keys pressed in a single frame. Visitors
// only use the touch panel; the keyboard is for maintenance.
type KeyState struct {
	Quit             bool
	ToggleFullscreen bool
	ToggleMagnifier  bool
	ToggleDiagnostic bool
	NextImage        bool
	PrevImage        bool
}

// PollKeys gathers the operator keys for the current frame.
func PollKeys() KeyState {
	return KeyState{
		Quit:             inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		ToggleFullscreen: inpututil.IsKeyJustPressed(ebiten.KeyF11),
		ToggleMagnifier:  inpututil.IsKeyJustPressed(ebiten.KeyM),
		ToggleDiagnostic: inpututil.IsKeyJustPressed(ebiten.KeyD),
		NextImage:        inpututil.IsKeyJustPressed(ebiten.KeyRight),
		PrevImage:        inpututil.IsKeyJustPressed(ebiten.KeyLeft),
	}
}

// Step returns the carousel step requested by the arrow keys.
func (k KeyState) Step() int {
	switch {
	case k.NextImage && !k.PrevImage:
		return 1
	case k.PrevImage && !k.NextImage:
		return -1
	}
	return 0
}
