// Package emucore defines what the video path needs from an emulator core:
// its framebuffer, its memory regions and its display geometry.
package emucore

// FrameSource is the video side of an emulator core.
type FrameSource interface {
	// GetFramebuffer returns the current frame. Rows are
	// GetFramebufferStride bytes apart.
	GetFramebuffer() []byte

	// GetFramebufferStride returns bytes per row in the framebuffer.
	GetFramebufferStride() int

	// GetActiveHeight returns the current active display height in pixels.
	GetActiveHeight() int

	// GetTiming returns FPS and scanline count for the current region.
	GetTiming() Timing
}

// Frame is one captured framebuffer.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
	Stride int
}

// CaptureFrame reads the current frame of src. bytesPerPixel converts the
// stride to a width; the frame is not copied.
func CaptureFrame(src FrameSource, bytesPerPixel int) Frame {
	stride := src.GetFramebufferStride()
	f := Frame{
		Pixels: src.GetFramebuffer(),
		Height: src.GetActiveHeight(),
		Stride: stride,
	}
	if bytesPerPixel > 0 {
		f.Width = stride / bytesPerPixel
	}
	if f.Stride > 0 && f.Height*f.Stride > len(f.Pixels) {
		f.Height = len(f.Pixels) / f.Stride
	}
	return f
}

// DisplayAspectRatio returns the aspect ratio a width x height frame has
// on screen when each pixel is par times as wide as it is tall.
func DisplayAspectRatio(width, height int, par float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	if par <= 0 {
		par = 1
	}
	return float64(width) / float64(height) * par
}
