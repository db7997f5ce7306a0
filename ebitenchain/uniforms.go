package ebitenchain

import (
	"unicode"
	"unicode/utf8"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// passSizes are the rectangles one pass draw works with.
type passSizes struct {
	inW, inH   int // valid region of the input texture
	texW, texH int // allocated size of the input texture
	outW, outH int // destination rectangle
}

// frameCount wraps the frame counter of a pass with a non-zero modulus.
func frameCount(frame uint64, mod uint) uint64 {
	if mod == 0 {
		return frame
	}
	return frame % uint64(mod)
}

// uniformName maps a tracked variable ID to a Kage uniform. Kage only
// sets exported variables, so the first letter is upper-cased.
func uniformName(id string) string {
	r, n := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return id
	}
	return string(unicode.ToUpper(r)) + id[n:]
}

// fillUniforms writes the uniforms of one pass draw into u.
func fillUniforms(u map[string]any, frame uint64, p *pass, s passSizes, lutLinear []float32, tracked []shader.Uniform) {
	clear(u)
	u["FrameCount"] = float32(frameCount(frame, p.frameMod))
	u["InputSize"] = []float32{float32(s.inW), float32(s.inH)}
	u["TextureSize"] = []float32{float32(s.texW), float32(s.texH)}
	u["OutputSize"] = []float32{float32(s.outW), float32(s.outH)}
	if p.linear {
		u["FilterLinear"] = float32(1)
	} else {
		u["FilterLinear"] = float32(0)
	}
	u["LutLinear"] = lutLinear
	for _, t := range tracked {
		u[uniformName(t.ID)] = t.Value
	}
}
