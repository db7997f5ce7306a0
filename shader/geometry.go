package shader

import (
	"fmt"
	"math"
)

// scaleEpsilon absorbs float error so 800*0.1 stays 80 instead of
// rounding up to 81.
const scaleEpsilon = 1e-6

// ConvertGeometry computes the output size of pass p given the output size
// of the previous pass and the final viewport. A pass without a valid FBO
// renders at viewport size.
func ConvertGeometry(p *Pass, inWidth, inHeight int, vp Viewport) (int, int, error) {
	if !p.FBO.Valid {
		if vp.Width <= 0 || vp.Height <= 0 {
			return 0, 0, fmt.Errorf("%w: viewport %dx%d", ErrInvalidGeometry, vp.Width, vp.Height)
		}
		return vp.Width, vp.Height, nil
	}

	outW := scaleAxis(p.FBO.X, inWidth, vp.Width)
	outH := scaleAxis(p.FBO.Y, inHeight, vp.Height)
	if outW <= 0 || outH <= 0 {
		return outW, outH, fmt.Errorf("%w: %dx%d from %s, %s", ErrInvalidGeometry, outW, outH, p.FBO.X, p.FBO.Y)
	}
	return outW, outH, nil
}

func scaleAxis(s Scale, input, viewport int) int {
	switch s.Type {
	case ScaleSource:
		return ceilScale(input, s.Factor)
	case ScaleViewport:
		return ceilScale(viewport, s.Factor)
	case ScaleAbsolute:
		return s.Abs
	default:
		return 0
	}
}

func ceilScale(n int, factor float64) int {
	v := float64(n) * factor
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Ceil(v - scaleEpsilon))
}

// NextPow2 returns the smallest power of two that is >= n. Values below 1
// round to 1. Values beyond 1<<30 are returned unchanged.
func NextPow2(n int) int {
	if n > 1<<30 {
		return n
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// ResolveTextureSize rounds each axis of an output size up to a power of
// two independently.
func ResolveTextureSize(outWidth, outHeight int) (int, int) {
	return NextPow2(outWidth), NextPow2(outHeight)
}

// ComputeLinks sizes every link of p for the given config and viewport
// without allocating anything. Link 0 is sized from the input scale alone;
// link i is the output of pass i-1, scaled from the unrounded output of the
// pass before it. The last pass draws into the viewport, so its own scale
// does not size a texture.
func ComputeLinks(p *Program, cfg Config, vp Viewport) ([]LinkInfo, error) {
	if p == nil || len(p.Passes) == 0 {
		return nil, fmt.Errorf("%w: no passes", ErrPresetParse)
	}
	if len(p.Passes) > MaxPasses {
		return nil, fmt.Errorf("%w: %d passes (max %d)", ErrTooManyPasses, len(p.Passes), MaxPasses)
	}
	if cfg.InputScale <= 0 {
		return nil, fmt.Errorf("%w: input scale %d", ErrInvalidGeometry, cfg.InputScale)
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil, fmt.Errorf("%w: viewport %dx%d", ErrInvalidGeometry, vp.Width, vp.Height)
	}

	first := cfg.InputScale * BaseSize
	links := make([]LinkInfo, len(p.Passes))
	links[0] = LinkInfo{
		Index:     0,
		Pass:      &p.Passes[0],
		TexWidth:  first,
		TexHeight: first,
		OutWidth:  first,
		OutHeight: first,
	}

	curW, curH := first, first
	for i := 1; i < len(p.Passes); i++ {
		outW, outH, err := ConvertGeometry(&p.Passes[i-1], curW, curH, vp)
		if err != nil {
			return nil, &PassError{Index: i - 1, Width: outW, Height: outH, Err: err}
		}
		texW, texH := ResolveTextureSize(outW, outH)
		links[i] = LinkInfo{
			Index:     i,
			Pass:      &p.Passes[i],
			TexWidth:  texW,
			TexHeight: texH,
			OutWidth:  outW,
			OutHeight: outH,
		}
		curW, curH = outW, outH
	}
	return links, nil
}
