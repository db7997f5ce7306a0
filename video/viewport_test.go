package video

import (
	"testing"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

func TestComputeViewport(t *testing.T) {
	tests := []struct {
		name       string
		screenW    int
		screenH    int
		frameW     int
		frameH     int
		par        float64
		keepAspect bool
		want       shader.Viewport
	}{
		{"stretch", 800, 600, 256, 224, 1, false, shader.Viewport{Width: 800, Height: 600}},
		{"matching aspect", 800, 600, 320, 240, 1, true, shader.Viewport{Width: 800, Height: 600}},
		{"wide screen", 1920, 1080, 320, 240, 1, true, shader.Viewport{X: 240, Width: 1440, Height: 1080}},
		{"tall screen", 600, 800, 320, 240, 1, true, shader.Viewport{Y: 175, Width: 600, Height: 450}},
		{"pixel aspect", 1280, 960, 256, 224, 8.0 / 7.0, true, shader.Viewport{X: 13, Width: 1254, Height: 960}},
		{"zero frame", 800, 600, 0, 0, 1, true, shader.Viewport{Width: 800, Height: 600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeViewport(tt.screenW, tt.screenH, tt.frameW, tt.frameH, tt.par, tt.keepAspect)
			if got != tt.want {
				t.Errorf("ComputeViewport = %+v, want %+v", got, tt.want)
			}
		})
	}
}
