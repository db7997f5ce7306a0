// Package shader sizes and assembles multi-pass post-processing chains.
//
// A Program is an ordered list of passes plus lookup textures and tracked
// variables. Builder turns a Program into a Chain by computing the render
// target size of every pass and driving an external RenderChain, which owns
// the actual GPU resources.
package shader

import (
	"fmt"
	"strings"
)

// Limits on a single program.
const (
	MaxPasses    = 16
	MaxLuts      = 8
	MaxVariables = 64
)

// BaseSize is the edge length of the first pass texture at input scale 1.
const BaseSize = 256

// ScaleType selects how one axis of a pass output is sized.
type ScaleType int

const (
	ScaleSource ScaleType = iota
	ScaleViewport
	ScaleAbsolute
)

// String returns the preset spelling of the scale type.
func (s ScaleType) String() string {
	switch s {
	case ScaleSource:
		return "source"
	case ScaleViewport:
		return "viewport"
	case ScaleAbsolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// ParseScaleType converts a preset value into a ScaleType.
func ParseScaleType(s string) (ScaleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source":
		return ScaleSource, nil
	case "viewport":
		return ScaleViewport, nil
	case "absolute":
		return ScaleAbsolute, nil
	}
	return 0, fmt.Errorf("unknown scale type %q", s)
}

// Scale is the sizing policy of one axis. Factor applies to source and
// viewport scaling, Abs is the pixel count for absolute scaling.
type Scale struct {
	Type   ScaleType
	Factor float64
	Abs    int
}

// String formats the scale the way it would be written in a preset.
func (s Scale) String() string {
	if s.Type == ScaleAbsolute {
		return fmt.Sprintf("absolute %dpx", s.Abs)
	}
	return fmt.Sprintf("%s %gx", s.Type, s.Factor)
}

// FBO describes the offscreen target of a pass. When Valid is false the
// pass renders straight to the viewport.
type FBO struct {
	Valid bool
	X     Scale
	Y     Scale
}

// Filter is the texture filter requested for a pass or LUT.
type Filter int

const (
	FilterUnspec Filter = iota
	FilterLinear
	FilterNearest
)

func (f Filter) String() string {
	switch f {
	case FilterLinear:
		return "linear"
	case FilterNearest:
		return "nearest"
	default:
		return "unspec"
	}
}

// Pass is one stage of the pipeline.
type Pass struct {
	Source        string
	Filter        Filter
	FBO           FBO
	FrameCountMod uint // 0 = frame counter not wrapped
}

// Lut is a static lookup texture bound by ID.
type Lut struct {
	ID     string
	Path   string
	Filter Filter
}

// VariableType is the tracking semantic of an imported variable.
type VariableType int

const (
	VarCapture VariableType = iota
	VarCapturePrev
	VarTransition
	VarTransitionCount
	VarTransitionPrev
	VarScript
)

var variableTypeNames = map[VariableType]string{
	VarCapture:         "capture",
	VarCapturePrev:     "capture_previous",
	VarTransition:      "transition",
	VarTransitionCount: "transition_count",
	VarTransitionPrev:  "transition_previous",
	VarScript:          "script",
}

func (v VariableType) String() string {
	if name, ok := variableTypeNames[v]; ok {
		return name
	}
	return "unknown"
}

// ParseVariableType converts a preset semantic into a VariableType.
// "python" is accepted as an alias of "script" for older presets.
func ParseVariableType(s string) (VariableType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "python" {
		return VarScript, nil
	}
	for t, name := range variableTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown variable semantic %q", s)
}

// RAMType is where a tracked variable reads its value from.
type RAMType int

const (
	RAMNone RAMType = iota
	RAMSystem
	RAMInputSlot1
	RAMInputSlot2
)

// Variable binds a shader-visible value to emulated system state.
type Variable struct {
	ID    string
	Type  VariableType
	RAM   RAMType
	Addr  uint32
	Mask  uint16 // 0 = all bits
	Equal uint16 // 0 = no comparison
}

// Imports lists the tracked variables of a program and the optional
// script that computes script-typed variables.
type Imports struct {
	Variables   []Variable
	Script      string
	ScriptClass string
}

// Preset is a parsed preset before normalization. A pass whose FBO is not
// Valid did not declare any scale settings.
type Preset struct {
	Passes  []Pass
	Luts    []Lut
	Imports Imports
}

// Program is a normalized pass list ready to be built into a chain.
type Program struct {
	Passes  []Pass
	Luts    []Lut
	Imports Imports
}

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Viewport is the final presentation rectangle.
type Viewport struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Size returns the viewport dimensions.
func (v Viewport) Size() Size {
	return Size{Width: v.Width, Height: v.Height}
}

// PixelFormat is the layout of frames handed to the first pass.
type PixelFormat int

const (
	FormatRGB565 PixelFormat = iota
	FormatARGB8888
)

func (f PixelFormat) String() string {
	if f == FormatARGB8888 {
		return "ARGB8888"
	}
	return "RGB565"
}

// BytesPerPixel returns the number of bytes one pixel occupies.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatARGB8888 {
		return 4
	}
	return 2
}

// LinkInfo is the input texture of pass Index. Link 0 receives the frame;
// link i holds the output of pass i-1, sized by that pass's scale. Tex is
// the allocated texture size, Out the visible rectangle inside it.
type LinkInfo struct {
	Index     int
	Pass      *Pass
	TexWidth  int
	TexHeight int
	OutWidth  int
	OutHeight int
}

// Config is the global render configuration the chain is built against.
type Config struct {
	InputScale int  // multiplier of BaseSize for the first pass
	RGB32      bool // frames are ARGB8888 instead of RGB565
	Smooth     bool // default LUT filter when a LUT leaves it unspecified
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{InputScale: 1, RGB32: true, Smooth: false}
}

// Format returns the pixel format selected by the config.
func (c Config) Format() PixelFormat {
	if c.RGB32 {
		return FormatARGB8888
	}
	return FormatRGB565
}
