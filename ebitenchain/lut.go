package ebitenchain

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/alphanu1/MME4CRT-v2.0/assetloader"
)

// MaxBoundLuts is how many lookup textures a pass can sample. Kage binds
// four source images and the first one is the pass input.
const MaxBoundLuts = 3

// maxLutEdge bounds LUT dimensions; larger images are scaled down.
const maxLutEdge = 4096

// LutExtensions lists the image files accepted as lookup textures, plain
// or inside an archive.
var LutExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}

var (
	errTooManyLuts   = errors.New("ebitenchain: too many lookup textures")
	errTexelUnitLuts = errors.New("ebitenchain: lookup textures need //kage:unit pixels shaders")
)

// decodeLut reads a lookup texture into RGBA. Any format registered with
// the image package is accepted.
func decodeLut(path string) (*image.RGBA, error) {
	asset, err := assetloader.Load(path, LutExtensions)
	if err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode %s: empty %s image", path, format)
	}

	w, h := fitEdge(b.Dx(), b.Dy(), maxLutEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst, nil
}

// fitEdge scales w x h down so neither side exceeds limit, keeping the
// aspect ratio.
func fitEdge(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
