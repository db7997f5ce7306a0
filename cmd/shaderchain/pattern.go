package main

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/alphanu1/MME4CRT-v2.0/emucore"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// System RAM layout of the pattern core, for presets that track it.
const (
	ramFrame   = 0x00 // low byte of the frame counter
	ramScroll  = 0x01 // horizontal bar offset
	ramButtons = 0x02 // player 1 buttons, low byte
	ramSize    = 0x800
)

var colorBars = []color.RGBA{
	{0xc0, 0xc0, 0xc0, 0xff},
	{0xc0, 0xc0, 0x00, 0xff},
	{0x00, 0xc0, 0xc0, 0xff},
	{0x00, 0xc0, 0x00, 0xff},
	{0xc0, 0x00, 0xc0, 0xff},
	{0xc0, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xc0, 0xff},
	{0x10, 0x10, 0x10, 0xff},
}

// patternCore stands in for an emulator core: it produces a frame and a
// small system RAM every step. Frames are scrolling color bars, or a still
// image when one was loaded.
type patternCore struct {
	width  int
	height int
	format shader.PixelFormat
	region emucore.Region
	still  *image.RGBA
	canvas *image.RGBA
	pixels []byte
	ram    [ramSize]byte
	frame  uint64
	scroll int
}

func newPatternCore(width, height int, f shader.PixelFormat) *patternCore {
	return &patternCore{
		width:  width,
		height: height,
		format: f,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		pixels: make([]byte, width*height*f.BytesPerPixel()),
	}
}

// newStillCore loads an image as the frame. Images larger than limit on
// either side are scaled down to fit, keeping their aspect ratio.
func newStillCore(path string, limit int, f shader.PixelFormat) (*patternCore, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	b := src.Bounds()
	w, h := fitInside(b.Dx(), b.Dy(), limit)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("frame %s is empty", path)
	}

	still := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(still, still.Bounds(), src, b.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(still, still.Bounds(), src, b, draw.Src, nil)
	}

	c := newPatternCore(w, h, f)
	c.still = still
	return c, nil
}

func fitInside(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// Step advances one frame. buttons are player 1's, as given to the core.
func (c *patternCore) Step(buttons uint32) {
	switch {
	case buttons&emucore.Buttons(emucore.ButtonLeft) != 0:
		c.scroll--
	case buttons&emucore.Buttons(emucore.ButtonRight) != 0:
		c.scroll += 2
	default:
		c.scroll++
	}
	c.scroll = (c.scroll%c.width + c.width) % c.width

	if c.still != nil {
		encodeFrame(c.pixels, c.still, c.format)
	} else {
		c.drawBars()
		encodeFrame(c.pixels, c.canvas, c.format)
	}

	c.ram[ramFrame] = byte(c.frame)
	c.ram[ramScroll] = byte(c.scroll)
	c.ram[ramButtons] = byte(buttons)
	c.frame++
}

func (c *patternCore) drawBars() {
	barW := max(1, c.width/len(colorBars))
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			bar := ((x + c.scroll) / barW) % len(colorBars)
			col := colorBars[bar]
			if y%2 == 1 && y > c.height*3/4 {
				col = color.RGBA{0xff, 0xff, 0xff, 0xff}
			}
			c.canvas.SetRGBA(x, y, col)
		}
	}
}

func (c *patternCore) GetFramebuffer() []byte { return c.pixels }

func (c *patternCore) GetFramebufferStride() int { return c.width * c.format.BytesPerPixel() }

func (c *patternCore) GetActiveHeight() int { return c.height }

func (c *patternCore) GetTiming() emucore.Timing { return emucore.TimingFor(c.region) }

func (c *patternCore) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{{Type: emucore.MemorySystemRAM, Size: ramSize}}
}

func (c *patternCore) ReadRegion(regionType int) []byte {
	if regionType != emucore.MemorySystemRAM {
		return nil
	}
	out := make([]byte, ramSize)
	copy(out, c.ram[:])
	return out
}

// encodeFrame writes img into dst in the core's pixel format: XRGB8888 or
// RGB565 little-endian words.
func encodeFrame(dst []byte, img *image.RGBA, f shader.PixelFormat) {
	b := img.Bounds()
	bpp := f.BytesPerPixel()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.RGBAAt(x, y)
			if f == shader.FormatARGB8888 {
				dst[i], dst[i+1], dst[i+2], dst[i+3] = p.B, p.G, p.R, 0
			} else {
				v := uint16(p.R>>3)<<11 | uint16(p.G>>2)<<5 | uint16(p.B>>3)
				binary.LittleEndian.PutUint16(dst[i:], v)
			}
			i += bpp
		}
	}
}
