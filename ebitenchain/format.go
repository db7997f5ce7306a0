package ebitenchain

import (
	"encoding/binary"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// toRGBA converts width x height pixels of src in format f into opaque
// RGBA, reusing dst when it is large enough. Rows in src are stride bytes
// apart. XRGB8888 pixels are little-endian words, so the bytes in memory
// are B, G, R, X. RGB565 pixels are little-endian halfwords.
func toRGBA(dst, src []byte, width, height, stride int, f shader.PixelFormat) []byte {
	n := width * height * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	bpp := f.BytesPerPixel()
	for y := 0; y < height; y++ {
		row := src[y*stride:]
		out := dst[y*width*4:]
		for x := 0; x < width; x++ {
			o := out[x*4 : x*4+4]
			if f == shader.FormatARGB8888 {
				p := row[x*bpp:]
				o[0], o[1], o[2] = p[2], p[1], p[0]
			} else {
				o[0], o[1], o[2] = rgb565(binary.LittleEndian.Uint16(row[x*bpp:]))
			}
			o[3] = 0xff
		}
	}
	return dst
}

// rgb565 expands a 5:6:5 pixel to 8 bits per channel, replicating the high
// bits into the low ones so full intensity maps to 255.
func rgb565(p uint16) (r, g, b byte) {
	r5 := byte(p>>11) & 0x1f
	g6 := byte(p>>5) & 0x3f
	b5 := byte(p) & 0x1f
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// clipFrame limits a frame to what fits in a texture and in the buffer
// holding it.
func clipFrame(width, height, stride, bufLen, texW, texH int, f shader.PixelFormat) (int, int) {
	if stride <= 0 || width <= 0 || height <= 0 {
		return 0, 0
	}
	if limit := stride / f.BytesPerPixel(); width > limit {
		width = limit
	}
	if height*stride > bufLen {
		height = bufLen / stride
	}
	return min(width, texW), min(height, texH)
}
