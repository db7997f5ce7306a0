package storage

import "github.com/alphanu1/MME4CRT-v2.0/shader"

// Config represents the application configuration stored in config.json
type Config struct {
	Version int          `json:"version"`
	Video   VideoConfig  `json:"video"`
	Window  WindowConfig `json:"window"`
}

// VideoConfig contains the shader chain and presentation settings
type VideoConfig struct {
	InputScale   int     `json:"inputScale"`             // 1-4, first pass texture is 256*inputScale square
	RGB32        bool    `json:"rgb32"`                  // ARGB8888 frames instead of RGB565 (default: true)
	Smooth       bool    `json:"smooth"`                 // linear filtering for LUTs that don't specify one
	KeepAspect   bool    `json:"keepAspect"`             // letterbox to the core's display aspect (default: true)
	PixelAspect  float64 `json:"pixelAspect"`            // 0.5-2.0, width/height of one source pixel
	ShaderPreset string  `json:"shaderPreset,omitempty"` // preset or single shader loaded at startup
}

// WindowConfig contains window size
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// Limits checked by ValidateConfig.
const (
	MinInputScale   = 1
	MaxInputScale   = 4
	MinPixelAspect  = 0.5
	MaxPixelAspect  = 2.0
	MinWindowWidth  = 320
	MinWindowHeight = 240
)

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Video: VideoConfig{
			InputScale:  1,
			RGB32:       true,
			Smooth:      false,
			KeepAspect:  true,
			PixelAspect: 1.0,
		},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
		},
	}
}

// ChainConfig returns the settings the shader chain is built with.
func (v VideoConfig) ChainConfig() shader.Config {
	return shader.Config{
		InputScale: v.InputScale,
		RGB32:      v.RGB32,
		Smooth:     v.Smooth,
	}
}
