package ui

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jerusalem-science-museum/leonardo-browser/internal/logger"
)

// Sprites are the decorative images drawn over the carousel. Any of them
// may be nil, in which case a plain shape is drawn instead.
type Sprites struct {
	Bezel   *ebiten.Image
	Cursor  *ebiten.Image
	Buttons map[ButtonID][2]*ebiten.Image // regular, selected
}

var spriteFiles = map[ButtonID][2]string{
	ButtonPrev:   {"left_regular.png", "left_selected.png"},
	ButtonNext:   {"right_regular.png", "right_selected.png"},
	ButtonToggle: {"toggle_regular.png", "toggle_selected.png"},
}

// LoadSprites loads the sprites from dir, logging the ones that are missing.
func LoadSprites(dir string) *Sprites {
	s := &Sprites{
		Bezel:   loadSprite(dir, "magnifier.png"),
		Cursor:  loadSprite(dir, "cursor.png"),
		Buttons: make(map[ButtonID][2]*ebiten.Image, len(spriteFiles)),
	}
	for id, names := range spriteFiles {
		s.Buttons[id] = [2]*ebiten.Image{loadSprite(dir, names[0]), loadSprite(dir, names[1])}
	}
	return s
}

func loadSprite(dir, name string) *ebiten.Image {
	path := filepath.Join(dir, name)
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		logger.Warn("Sprite unavailable, using fallback shape", "path", path, "err", err)
		return nil
	}
	return img
}

// RendererOptions configures the renderer.
type RendererOptions struct {
	Screen      image.Point
	CornerTrim  int
	ShowCursor  bool
	Diagnostics bool
	// Captions are optional per-image diagnostic labels.
	Captions map[int]string
}

var (
	buttonColor         = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x60}
	buttonSelectedColor = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xa0}
	bezelColor          = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
)

// Renderer composes a Frame onto the screen. Textures for the shown image
// are uploaded from the asset cache in Update and swapped atomically, so
// the previous image stays up while the next one loads.
type Renderer struct {
	opts    RendererOptions
	cache   *AssetCache
	sprites *Sprites

	shownIndex int
	base       *ebiten.Image
	zoom       *ebiten.Image
	baseSize   image.Point
	zoomSize   image.Point

	lensBuf  *ebiten.Image
	mask     *ebiten.Image
	maskSize image.Point

	toDeallocate []*ebiten.Image
}

func NewRenderer(cache *AssetCache, sprites *Sprites, opts RendererOptions) *Renderer {
	if sprites == nil {
		sprites = &Sprites{}
	}
	return &Renderer{opts: opts, cache: cache, sprites: sprites, shownIndex: -1}
}

// Update swaps in the textures for index once its assets are loaded. It
// must be called from the update loop, never from a loader goroutine.
func (r *Renderer) Update(index int) {
	// Deallocate images replaced in the previous frame, now that Draw no
	// longer uses them.
	for _, img := range r.toDeallocate {
		img.Deallocate()
	}
	r.toDeallocate = r.toDeallocate[:0]

	if index == r.shownIndex {
		return
	}
	assets, ok := r.cache.Get(index)
	if !ok {
		return
	}

	if r.base != nil {
		r.toDeallocate = append(r.toDeallocate, r.base, r.zoom)
	}
	r.base = ebiten.NewImageFromImage(assets.Base)
	r.zoom = ebiten.NewImageFromImage(assets.Zoom)
	r.baseSize, r.zoomSize = assets.BaseSize(), assets.ZoomSize()
	r.shownIndex = index
}

// Draw renders f.
func (r *Renderer) Draw(screen *ebiten.Image, f Frame) {
	screen.Fill(color.Black)

	if r.base != nil {
		screen.DrawImage(r.base, &ebiten.DrawImageOptions{})
	}
	if r.shownIndex != f.Index {
		ebitenutil.DebugPrintAt(screen, r.status(f.Index), 8, r.opts.Screen.Y-24)
	}

	var lens Lens
	if f.Magnifier.IsOpen() && r.zoom != nil {
		lens = f.Magnifier.Lens(r.baseSize, r.zoomSize)
		r.drawLens(screen, lens)
		r.drawBezel(screen, f.Magnifier)
	}

	for _, b := range f.Buttons {
		r.drawButton(screen, b)
	}

	if r.opts.ShowCursor && r.sprites.Cursor != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(f.Pointer.X), float64(f.Pointer.Y))
		screen.DrawImage(r.sprites.Cursor, op)
	}

	if r.opts.Diagnostics {
		r.drawDiagnostics(screen, f, lens)
	}
}

// status describes an image that is not on screen yet.
func (r *Renderer) status(index int) string {
	switch {
	case r.cache.Loading(index):
		return fmt.Sprintf("Loading image %d...", index+1)
	case r.cache.Failed(index):
		return fmt.Sprintf("Image %d could not be loaded, retrying", index+1)
	}
	return fmt.Sprintf("Waiting for image %d", index+1)
}

// drawLens crops the zoom texture, masks it into a lens and draws it.
func (r *Renderer) drawLens(screen *ebiten.Image, lens Lens) {
	if lens.Crop.Empty() {
		return
	}
	size := lens.Crop.Size()

	buf := r.lensBuffer(size)
	buf.Clear()
	buf.DrawImage(r.zoom.SubImage(lens.Crop).(*ebiten.Image), &ebiten.DrawImageOptions{})

	maskOp := &ebiten.DrawImageOptions{}
	maskOp.Blend = ebiten.BlendDestinationIn
	buf.DrawImage(r.lensMask(size), maskOp)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(lens.Dst.Min.X), float64(lens.Dst.Min.Y))
	screen.DrawImage(buf, op)
}

func (r *Renderer) drawBezel(screen *ebiten.Image, m Magnifier) {
	pos := m.Position()
	if r.sprites.Bezel != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(pos.X), float64(pos.Y))
		screen.DrawImage(r.sprites.Bezel, op)
		return
	}
	c := m.Center()
	radius := float32(m.opts.WindowSize) / 2
	vector.StrokeCircle(screen, float32(c.X), float32(c.Y), radius, 8, bezelColor, true)
}

func (r *Renderer) drawButton(screen *ebiten.Image, b ButtonView) {
	sprites := r.sprites.Buttons[b.ID]
	img := sprites[0]
	if b.Selected && sprites[1] != nil {
		img = sprites[1]
	}
	if img != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(b.Rect.Min.X), float64(b.Rect.Min.Y))
		screen.DrawImage(img, op)
		return
	}

	clr := buttonColor
	if b.Selected {
		clr = buttonSelectedColor
	}
	x, y := float32(b.Rect.Min.X), float32(b.Rect.Min.Y)
	w, h := float32(b.Rect.Dx()), float32(b.Rect.Dy())
	vector.DrawFilledRect(screen, x, y, w, h, clr, false)
	vector.StrokeRect(screen, x, y, w, h, 2, color.White, false)
}

func (r *Renderer) drawDiagnostics(screen *ebiten.Image, f Frame, lens Lens) {
	msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nImage: %d/%d\nMagnifier: %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(), f.Index+1, f.Total, f.Magnifier.State())
	if f.Magnifier.IsOpen() {
		msg += fmt.Sprintf("\nLens: %v crop %v (%.2fx)", f.Magnifier.Position(), lens.Crop, lens.Factor)
	}
	if f.IdleRemaining > 0 {
		msg += fmt.Sprintf("\nIdle reset in: %.0fs", f.IdleRemaining.Seconds())
	}
	if caption := r.opts.Captions[f.Index]; caption != "" {
		msg += "\n" + caption
	}
	ebitenutil.DebugPrint(screen, msg)
}

// lensBuffer returns an off-screen image of the given size, reallocating
// only when the crop size changes.
func (r *Renderer) lensBuffer(size image.Point) *ebiten.Image {
	if r.lensBuf != nil && r.lensBuf.Bounds().Size() == size {
		return r.lensBuf
	}
	if r.lensBuf != nil {
		r.toDeallocate = append(r.toDeallocate, r.lensBuf)
	}
	r.lensBuf = ebiten.NewImage(size.X, size.Y)
	return r.lensBuf
}

func (r *Renderer) lensMask(size image.Point) *ebiten.Image {
	if r.mask != nil && r.maskSize == size {
		return r.mask
	}
	if r.mask != nil {
		r.toDeallocate = append(r.toDeallocate, r.mask)
	}
	r.mask = ebiten.NewImageFromImage(LensMask(size, r.opts.CornerTrim))
	r.maskSize = size
	return r.mask
}

// Close releases every texture owned by the renderer.
func (r *Renderer) Close() {
	for _, img := range append(r.toDeallocate, r.base, r.zoom, r.lensBuf, r.mask) {
		if img != nil {
			img.Deallocate()
		}
	}
	r.toDeallocate = nil
	r.base, r.zoom, r.lensBuf, r.mask = nil, nil, nil, nil
}

// ToggleDiagnostics shows or hides the diagnostic overlay.
func (r *Renderer) ToggleDiagnostics() {
	r.opts.Diagnostics = !r.opts.Diagnostics
}
