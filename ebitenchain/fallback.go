package ebitenchain

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/alphanu1/MME4CRT-v2.0/emucore"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// FallbackRenderer draws frames without shaders. It is used while no chain
// could be built so the picture never goes black.
type FallbackRenderer struct {
	format    shader.PixelFormat
	offscreen *ebiten.Image
	rgba      []byte
	drawOpts  ebiten.DrawImageOptions
}

// NewFallbackRenderer returns a renderer for frames in format f.
func NewFallbackRenderer(f shader.PixelFormat) *FallbackRenderer {
	return &FallbackRenderer{format: f}
}

// SetFormat changes the pixel format of later frames.
func (r *FallbackRenderer) SetFormat(f shader.PixelFormat) {
	r.format = f
}

// Draw scales frame into the viewport rectangle of screen.
func (r *FallbackRenderer) Draw(screen *ebiten.Image, frame emucore.Frame, vp shader.Viewport) {
	w, h := clipFrame(frame.Width, frame.Height, frame.Stride, len(frame.Pixels), frame.Width, frame.Height, r.format)
	if w == 0 || h == 0 || vp.Width <= 0 || vp.Height <= 0 {
		return
	}

	if r.offscreen == nil || r.offscreen.Bounds().Dx() != w || r.offscreen.Bounds().Dy() != h {
		if r.offscreen != nil {
			r.offscreen.Deallocate()
		}
		r.offscreen = ebiten.NewImage(w, h)
	}
	r.rgba = toRGBA(r.rgba, frame.Pixels, w, h, frame.Stride, r.format)
	r.offscreen.WritePixels(r.rgba)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(float64(vp.Width)/float64(w), float64(vp.Height)/float64(h))
	r.drawOpts.GeoM.Translate(float64(vp.X), float64(vp.Y))
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}
