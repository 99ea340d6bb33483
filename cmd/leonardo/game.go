package main

import (
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/ui"
)

// maxFrameDelta caps the time credited to the idle watchdog for a single
// tick, so a stalled frame (window drag, suspend) cannot reset the session.
const maxFrameDelta = 250 * time.Millisecond

// Game adapts a Session to the ebiten game loop.
type Game struct {
	ctx      context.Context
	session  *ui.Session
	cache    *ui.AssetCache
	renderer *ui.Renderer
	screen   image.Point

	lastUpdate time.Time
	now        func() time.Time
}

func NewGame(ctx context.Context, session *ui.Session, cache *ui.AssetCache, renderer *ui.Renderer, screen image.Point) *Game {
	return &Game{
		ctx:      ctx,
		session:  session,
		cache:    cache,
		renderer: renderer,
		screen:   screen,
		now:      time.Now,
	}
}

// frameDelta returns the wall-clock time since the previous tick.
func (g *Game) frameDelta() time.Duration {
	now := g.now()
	if g.lastUpdate.IsZero() {
		g.lastUpdate = now
		return 0
	}
	dt := now.Sub(g.lastUpdate)
	g.lastUpdate = now
	switch {
	case dt < 0:
		return 0
	case dt > maxFrameDelta:
		return maxFrameDelta
	}
	return dt
}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		logger.Info("Quit requested", "reason", context.Cause(g.ctx))
		return ebiten.Termination
	default:
	}

	keys := ui.PollKeys()
	if keys.Quit {
		return ebiten.Termination
	}
	if keys.ToggleFullscreen {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if keys.ToggleDiagnostic {
		g.renderer.ToggleDiagnostics()
	}
	if keys.ToggleMagnifier {
		g.session.ToggleMagnifier()
	}
	g.session.Navigate(keys.Step())

	g.session.Tick(g.frameDelta())

	index := g.session.Carousel().GetCurrentIndex()
	g.cache.Update(index)
	g.renderer.Update(index)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.session.Frame())
}

// Layout keeps the logical screen at the configured resolution; ebiten
// scales it to the window or display.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screen.X, g.screen.Y
}
