package video

import (
	"math"

	"github.com/alphanu1/MME4CRT-v2.0/emucore"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// ComputeViewport returns the rectangle a frameW x frameH frame occupies
// on a screenW x screenH surface. With keepAspect the frame is scaled to
// the largest size that keeps its display aspect (frame aspect times
// par) and centered; otherwise it fills the surface.
func ComputeViewport(screenW, screenH, frameW, frameH int, par float64, keepAspect bool) shader.Viewport {
	full := shader.Viewport{Width: screenW, Height: screenH}
	if !keepAspect || screenW <= 0 || screenH <= 0 {
		return full
	}
	aspect := emucore.DisplayAspectRatio(frameW, frameH, par)
	if aspect <= 0 {
		return full
	}

	screenAspect := float64(screenW) / float64(screenH)
	if math.Abs(screenAspect-aspect) < 0.0001 {
		return full
	}

	vp := full
	if screenAspect > aspect {
		vp.Width = int(math.Round(float64(screenH) * aspect))
		vp.X = (screenW - vp.Width) / 2
	} else {
		vp.Height = int(math.Round(float64(screenW) / aspect))
		vp.Y = (screenH - vp.Height) / 2
	}
	return vp
}
