package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/alphanu1/MME4CRT-v2.0/emucore"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

func TestEncodeFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	img.SetRGBA(1, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	xrgb := make([]byte, 8)
	encodeFrame(xrgb, img, shader.FormatARGB8888)
	if want := []byte{0x30, 0x20, 0x10, 0x00, 0xff, 0xff, 0xff, 0x00}; !bytes.Equal(xrgb, want) {
		t.Errorf("XRGB8888 = % x, want % x", xrgb, want)
	}

	rgb565 := make([]byte, 4)
	encodeFrame(rgb565, img, shader.FormatRGB565)
	// 0x10>>3=2, 0x20>>2=8, 0x30>>3=6 -> 0x1106
	if want := []byte{0x06, 0x11, 0xff, 0xff}; !bytes.Equal(rgb565, want) {
		t.Errorf("RGB565 = % x, want % x", rgb565, want)
	}
}

func TestPatternCoreFrame(t *testing.T) {
	c := newPatternCore(patternWidth, patternHeight, shader.FormatARGB8888)
	c.Step(0)

	frame := emucore.CaptureFrame(c, 4)
	if frame.Width != patternWidth || frame.Height != patternHeight {
		t.Errorf("frame = %dx%d, want %dx%d", frame.Width, frame.Height, patternWidth, patternHeight)
	}
	if frame.Stride != patternWidth*4 {
		t.Errorf("stride = %d, want %d", frame.Stride, patternWidth*4)
	}
	if len(frame.Pixels) != patternWidth*patternHeight*4 {
		t.Errorf("len(Pixels) = %d", len(frame.Pixels))
	}
	if fps := c.GetTiming().FPS; fps != 60 {
		t.Errorf("FPS = %d, want 60", fps)
	}
}

func TestPatternCoreMemory(t *testing.T) {
	c := newPatternCore(64, 32, shader.FormatRGB565)
	mem := emucore.NewRegionMemory(c)
	if !mem.HasSystemRAM() {
		t.Fatal("pattern core has no system RAM")
	}

	c.Step(0)
	c.Step(0)
	right := emucore.Buttons(emucore.ButtonRight)
	c.Step(right)
	mem.Refresh()

	ram := mem.SystemRAM()
	if len(ram) != ramSize {
		t.Fatalf("len(ram) = %d, want %d", len(ram), ramSize)
	}
	if ram[ramFrame] != 2 {
		t.Errorf("ram[frame] = %d, want 2", ram[ramFrame])
	}
	if ram[ramScroll] != 4 {
		t.Errorf("ram[scroll] = %d, want 4", ram[ramScroll])
	}
	if ram[ramButtons] != byte(right) {
		t.Errorf("ram[buttons] = %#x, want %#x", ram[ramButtons], right)
	}
	if c.ReadRegion(emucore.MemorySaveRAM) != nil {
		t.Error("pattern core reports save RAM")
	}

	left := emucore.Buttons(emucore.ButtonLeft)
	for i := 0; i < 5; i++ {
		c.Step(left)
	}
	if c.scroll != 63 {
		t.Errorf("scroll = %d, want 63 after wrapping left", c.scroll)
	}
}

func TestStillCore(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 600, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 600; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 0x80, G: 0x40, B: 0x20, A: 0xff})
		}
	}
	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	c, err := newStillCore(path, 256, shader.FormatARGB8888)
	if err != nil {
		t.Fatalf("newStillCore error: %v", err)
	}
	if c.width != 256 || c.height != 128 {
		t.Errorf("still frame = %dx%d, want 256x128", c.width, c.height)
	}
	c.Step(0)
	px := c.GetFramebuffer()[:4]
	for i, want := range []byte{0x20, 0x40, 0x80} {
		if d := int(px[i]) - int(want); d < -1 || d > 1 {
			t.Errorf("first pixel = % x, want about 20 40 80", px)
			break
		}
	}

	if _, err := newStillCore(filepath.Join(dir, "missing.png"), 256, shader.FormatARGB8888); err == nil {
		t.Error("missing image accepted")
	}
}

func TestFitInside(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{256, 224, 256, 224},
		{512, 448, 256, 224},
		{300, 1200, 64, 256},
		{5000, 1, 256, 1},
	}
	for _, tt := range tests {
		w, h := fitInside(tt.w, tt.h, 256)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitInside(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
