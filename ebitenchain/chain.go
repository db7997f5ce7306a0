package ebitenchain

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/alphanu1/MME4CRT-v2.0/emucore"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// pass is one shader stage. Its texture is the input the stage samples;
// the stage draws into the texture of the next pass, or into the screen
// for the last one.
type pass struct {
	index    int
	source   string
	shader   *ebiten.Shader
	pixels   bool
	tex      *ebiten.Image
	texW     int
	texH     int
	outW     int
	outH     int
	linear   bool
	frameMod uint
	uniforms map[string]any
}

type lut struct {
	id     string
	img    *ebiten.Image
	linear bool
}

// Chain implements shader.RenderChain on ebiten images and Kage shaders.
// Like every ebiten image user it must only be driven from the game loop.
type Chain struct {
	backend  *Backend
	format   shader.PixelFormat
	input    shader.Size
	viewport shader.Viewport

	passes    []*pass
	luts      []lut
	lutLinear [MaxBoundLuts]float32
	tracker   shader.Tracker

	frame    uint64
	frameW   int
	frameH   int
	rgba     []byte
	vertices [4]ebiten.Vertex
	released bool
}

var quadIndices = []uint16{0, 1, 2, 1, 3, 2}

// Init creates the input texture and the first stage.
func (c *Chain) Init(link shader.LinkInfo, format shader.PixelFormat, input shader.Size, vp shader.Viewport) error {
	c.format = format
	c.input = input
	c.viewport = vp
	return c.AddPass(link)
}

// AddPass compiles the stage's shader and allocates its input texture.
func (c *Chain) AddPass(link shader.LinkInfo) error {
	if c.released {
		return shader.ErrChainReleased
	}
	if link.Index != len(c.passes) {
		return fmt.Errorf("ebitenchain: pass %d added out of order (have %d)", link.Index, len(c.passes))
	}
	p := &pass{
		index:    link.Index,
		uniforms: make(map[string]any),
	}
	if link.Pass != nil {
		p.source = link.Pass.Source
		p.frameMod = link.Pass.FrameCountMod
		p.linear = c.backend.filterLinear(link.Pass.Filter)
	}

	cs, err := c.backend.compile(p.source)
	if err != nil {
		return err
	}
	if !cs.pixels && len(c.luts) > 0 {
		return fmt.Errorf("%w: pass %d (%s)", errTexelUnitLuts, link.Index, displayName(p.source))
	}
	p.shader, p.pixels = cs.shader, cs.pixels
	if err := c.resizePass(p, link); err != nil {
		return err
	}
	c.passes = append(c.passes, p)
	return nil
}

// SetPassSize resizes the texture of a stage. The image is only
// reallocated when the texture size changes.
func (c *Chain) SetPassSize(link shader.LinkInfo) error {
	if c.released {
		return shader.ErrChainReleased
	}
	if link.Index < 0 || link.Index >= len(c.passes) {
		return fmt.Errorf("ebitenchain: no pass %d", link.Index)
	}
	return c.resizePass(c.passes[link.Index], link)
}

func (c *Chain) resizePass(p *pass, link shader.LinkInfo) error {
	if link.TexWidth <= 0 || link.TexHeight <= 0 {
		return fmt.Errorf("ebitenchain: pass %d texture %dx%d", link.Index, link.TexWidth, link.TexHeight)
	}
	if p.tex == nil || p.texW != link.TexWidth || p.texH != link.TexHeight {
		if p.tex != nil {
			p.tex.Deallocate()
		}
		p.tex = ebiten.NewImage(link.TexWidth, link.TexHeight)
		p.texW, p.texH = link.TexWidth, link.TexHeight
		shader.Logger().Debug("allocated pass texture", "pass", link.Index, "width", p.texW, "height", p.texH)
	}
	p.outW, p.outH = link.OutWidth, link.OutHeight
	return nil
}

// SetViewport sets the rectangle of the screen the last stage draws into.
func (c *Chain) SetViewport(vp shader.Viewport) {
	c.viewport = vp
}

// AddLut decodes the image at path and binds it to the next free source
// image slot. ebiten requires texel unit shaders to sample images of one
// size, so LUTs are only accepted when every pass works in pixels.
func (c *Chain) AddLut(id, path string, linear bool) error {
	if c.released {
		return shader.ErrChainReleased
	}
	if len(c.luts) >= MaxBoundLuts {
		return fmt.Errorf("%w: %q would be number %d (max %d)", errTooManyLuts, id, len(c.luts)+1, MaxBoundLuts)
	}
	for _, p := range c.passes {
		if !p.pixels {
			return fmt.Errorf("%w: %q cannot be bound next to pass %d (%s)", errTexelUnitLuts, id, p.index, displayName(p.source))
		}
	}
	rgba, err := decodeLut(path)
	if err != nil {
		return err
	}
	if linear {
		c.lutLinear[len(c.luts)] = 1
	}
	c.luts = append(c.luts, lut{
		id:     id,
		img:    ebiten.NewImageFromImage(rgba),
		linear: linear,
	})
	return nil
}

// AttachTracker sets the tracker whose values every stage receives.
func (c *Chain) AttachTracker(t shader.Tracker) {
	c.tracker = t
}

// Release frees all images. Shaders belong to the backend and survive.
func (c *Chain) Release() {
	if c.released {
		return
	}
	c.released = true
	for _, p := range c.passes {
		if p.tex != nil {
			p.tex.Deallocate()
		}
	}
	for _, l := range c.luts {
		l.img.Deallocate()
	}
	c.passes = nil
	c.luts = nil
	c.tracker = nil
}

// Frame returns the number of frames drawn.
func (c *Chain) Frame() uint64 {
	return c.frame
}

// Draw uploads frame into the input texture and runs every stage, the last
// one into the viewport of screen.
func (c *Chain) Draw(screen *ebiten.Image, frame emucore.Frame) error {
	if c.released {
		return shader.ErrChainReleased
	}
	if len(c.passes) == 0 {
		return fmt.Errorf("ebitenchain: chain has no passes")
	}
	c.upload(frame)

	var tracked []shader.Uniform
	if c.tracker != nil {
		tracked = c.tracker.Update(c.frame)
	}

	inW, inH := c.frameW, c.frameH
	for i, p := range c.passes {
		var dst *ebiten.Image
		var dstRect image.Rectangle
		if i+1 < len(c.passes) {
			next := c.passes[i+1]
			next.tex.Clear()
			dst = next.tex
			dstRect = image.Rect(0, 0, next.outW, next.outH)
		} else {
			dst = screen
			dstRect = image.Rect(c.viewport.X, c.viewport.Y, c.viewport.X+c.viewport.Width, c.viewport.Y+c.viewport.Height)
		}

		sizes := passSizes{
			inW: inW, inH: inH,
			texW: p.texW, texH: p.texH,
			outW: dstRect.Dx(), outH: dstRect.Dy(),
		}
		fillUniforms(p.uniforms, c.frame, p, sizes, c.lutLinear[:], tracked)
		c.runPass(p, dst, dstRect, inW, inH)
		inW, inH = dstRect.Dx(), dstRect.Dy()
	}
	c.frame++
	return nil
}

// upload converts frame to RGBA and writes it to the top-left corner of
// the first stage's texture.
func (c *Chain) upload(frame emucore.Frame) {
	first := c.passes[0]
	w, h := clipFrame(frame.Width, frame.Height, frame.Stride, len(frame.Pixels), first.texW, first.texH, c.format)
	c.frameW, c.frameH = w, h
	first.tex.Clear()
	if w == 0 || h == 0 {
		return
	}
	c.rgba = toRGBA(c.rgba, frame.Pixels, w, h, frame.Stride, c.format)
	region := first.tex.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	region.WritePixels(c.rgba)
}

// runPass draws the inW x inH corner of the stage's texture into dstRect.
func (c *Chain) runPass(p *pass, dst *ebiten.Image, dstRect image.Rectangle, inW, inH int) {
	x0, y0 := float32(dstRect.Min.X), float32(dstRect.Min.Y)
	x1, y1 := float32(dstRect.Max.X), float32(dstRect.Max.Y)
	sw, sh := float32(inW), float32(inH)

	c.vertices = [4]ebiten.Vertex{
		{DstX: x0, DstY: y0, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x1, DstY: y0, SrcX: sw, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x0, DstY: y1, SrcX: 0, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: x1, DstY: y1, SrcX: sw, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}

	op := &ebiten.DrawTrianglesShaderOptions{}
	op.Images[0] = p.tex
	for i, l := range c.luts {
		op.Images[i+1] = l.img
	}
	op.Uniforms = p.uniforms
	dst.DrawTrianglesShader(c.vertices[:], quadIndices, p.shader, op)
}
