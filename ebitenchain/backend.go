// Package ebitenchain runs shader chains on ebiten. Every pass is a Kage
// shader drawing one ebiten image into the next.
package ebitenchain

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/alphanu1/MME4CRT-v2.0/assetloader"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

//go:embed shaders/passthrough.kage
var passthroughSrc []byte

// ShaderExtensions lists the file extensions read as Kage sources, plain
// or inside an archive.
var ShaderExtensions = []string{".kage"}

// compiledShader is a cached shader and the unit its source declares.
type compiledShader struct {
	shader *ebiten.Shader
	pixels bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithSmooth selects linear filtering for passes that leave the filter
// unspecified.
func WithSmooth(smooth bool) Option {
	return func(b *Backend) {
		b.smooth = smooth
	}
}

// Backend creates chains and owns the compiled shaders they share.
// Shaders are cached by source text, so rebuilding a chain after a
// resize failure or device loss does not recompile, while editing a file
// and reloading does.
type Backend struct {
	smooth  bool
	shaders map[string]compiledShader
}

// NewBackend returns an empty backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		shaders: make(map[string]compiledShader),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewRenderChain returns an empty Chain.
func (b *Backend) NewRenderChain() (shader.RenderChain, error) {
	return &Chain{backend: b}, nil
}

// SetSmooth changes the default pass filter for chains created afterwards.
func (b *Backend) SetSmooth(smooth bool) {
	b.smooth = smooth
}

// Close deallocates every cached shader.
func (b *Backend) Close() {
	for src, s := range b.shaders {
		s.shader.Deallocate()
		delete(b.shaders, src)
	}
}

func (b *Backend) filterLinear(f shader.Filter) bool {
	switch f {
	case shader.FilterLinear:
		return true
	case shader.FilterNearest:
		return false
	default:
		return b.smooth
	}
}

// compile returns the shader for the Kage file at path, compiling it on
// first use. An empty path is the built-in passthrough.
func (b *Backend) compile(path string) (compiledShader, error) {
	src, err := shaderSource(path)
	if err != nil {
		return compiledShader{}, err
	}
	key := string(src)
	if s, ok := b.shaders[key]; ok {
		return s, nil
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return compiledShader{}, fmt.Errorf("failed to compile shader %s: %w", displayName(path), err)
	}
	cs := compiledShader{shader: s, pixels: pixelUnit(src)}
	b.shaders[key] = cs
	shader.Logger().Debug("compiled shader", "source", displayName(path), "pixels", cs.pixels)
	return cs, nil
}

func shaderSource(path string) ([]byte, error) {
	if path == "" {
		return passthroughSrc, nil
	}
	asset, err := assetloader.Load(path, ShaderExtensions)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader: %w", err)
	}
	if len(asset.Data) == 0 {
		return nil, fmt.Errorf("failed to read shader: %s is empty", path)
	}
	return asset.Data, nil
}

// pixelUnit reports whether src declares //kage:unit pixels ahead of its
// package clause. Without it Kage works in texels.
func pixelUnit(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "package ") {
			return false
		}
		if unit, ok := strings.CutPrefix(line, "//kage:unit "); ok {
			return strings.TrimSpace(unit) == "pixels"
		}
	}
	return false
}

func displayName(path string) string {
	if path == "" {
		return "passthrough"
	}
	return path
}
