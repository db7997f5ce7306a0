// Package video owns the shader chain of a running renderer: it loads
// shaders, keeps the chain sized to the window and rebuilds it after the
// device is lost.
package video

import (
	"errors"
	"fmt"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// ErrClosed is returned by a Driver after Close.
var ErrClosed = errors.New("video: driver closed")

// LoadFunc turns a shader or preset path into a program.
type LoadFunc func(path string) (*shader.Program, error)

// Stats counts chain lifecycle events.
type Stats struct {
	Builds         int
	Resizes        int
	ResizeFailures int
	Restores       int
	Passes         int
	Luts           int
}

// Option configures a Driver.
type Option func(*Driver)

// WithLoader sets how shader paths are turned into programs. Without it
// only the built-in passthrough is available.
func WithLoader(load LoadFunc) Option {
	return func(d *Driver) {
		d.load = load
	}
}

// WithAspect sets the pixel aspect ratio and whether the frame is
// letterboxed to it.
func WithAspect(par float64, keepAspect bool) Option {
	return func(d *Driver) {
		d.par = par
		d.keepAspect = keepAspect
	}
}

// Driver holds the current chain. It is used from the render thread only.
type Driver struct {
	builder    *shader.Builder
	load       LoadFunc
	par        float64
	keepAspect bool

	program    *shader.Program
	shaderPath string
	chain      *shader.Chain

	input    shader.Size
	screen   shader.Size
	viewport shader.Viewport

	needsRestore bool
	closed       bool
	stats        Stats
}

// NewDriver returns a driver for frames of the given native size. No
// chain exists until the first Resize or LoadShader.
func NewDriver(builder *shader.Builder, input shader.Size, opts ...Option) *Driver {
	d := &Driver{
		builder:    builder,
		par:        1,
		keepAspect: true,
		program:    shader.SinglePass(""),
		input:      input,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadShader loads path and builds a chain for it. An empty path selects
// the built-in passthrough. On failure the current chain stays in place.
func (d *Driver) LoadShader(path string) error {
	if d.closed {
		return ErrClosed
	}
	prog := shader.SinglePass("")
	if path != "" {
		if d.load == nil {
			return fmt.Errorf("video: no shader loader for %s", path)
		}
		p, err := d.load(path)
		if err != nil {
			return err
		}
		prog = p
	}

	if d.viewport.Width > 0 && d.viewport.Height > 0 {
		chain, err := d.builder.Build(prog, d.input, d.viewport)
		if err != nil {
			shader.Logger().Warn("keeping previous shader", "path", path, "err", err)
			return err
		}
		d.replace(chain)
	}
	d.program = prog
	d.shaderPath = path
	return nil
}

// ShaderPath returns the path of the loaded shader, empty for the
// built-in passthrough.
func (d *Driver) ShaderPath() string {
	return d.shaderPath
}

// Reload loads the current shader path again.
func (d *Driver) Reload() error {
	return d.LoadShader(d.shaderPath)
}

// SetInputSize changes the native frame size. Pass 0 depends on it, so a
// change forces a restore.
func (d *Driver) SetInputSize(s shader.Size) {
	if s == d.input {
		return
	}
	d.input = s
	d.viewport = ComputeViewport(d.screen.Width, d.screen.Height, s.Width, s.Height, d.par, d.keepAspect)
	d.needsRestore = true
}

// Resize adapts to a new screen size. The existing chain is resized in
// place; if that fails a full restore is scheduled for the next frame.
func (d *Driver) Resize(width, height int) error {
	if d.closed {
		return ErrClosed
	}
	screen := shader.Size{Width: width, Height: height}
	if screen == d.screen && d.chain != nil {
		return nil
	}
	d.screen = screen
	d.viewport = ComputeViewport(width, height, d.input.Width, d.input.Height, d.par, d.keepAspect)

	if d.chain == nil {
		d.needsRestore = true
		return nil
	}
	if err := d.chain.Resize(d.viewport); err != nil {
		d.stats.ResizeFailures++
		d.needsRestore = true
		shader.Logger().Warn("in-place resize failed, scheduling restore", "width", width, "height", height, "err", err)
		return err
	}
	d.stats.Resizes++
	return nil
}

// MarkDeviceLost schedules a teardown and rebuild before the next frame.
func (d *Driver) MarkDeviceLost() {
	d.needsRestore = true
}

// Restore tears the chain down and builds it again from the current
// program. If the build fails the driver has no chain and the next call
// to Chain tries again.
func (d *Driver) Restore() error {
	if d.closed {
		return ErrClosed
	}
	if d.chain != nil {
		d.chain.Teardown()
		d.chain = nil
	}
	d.needsRestore = true
	if d.viewport.Width <= 0 || d.viewport.Height <= 0 {
		return fmt.Errorf("%w: no viewport yet", shader.ErrInvalidGeometry)
	}

	chain, err := d.builder.Build(d.program, d.input, d.viewport)
	if err != nil {
		shader.Logger().Error("failed to restore shader chain", "err", err)
		return err
	}
	d.stats.Restores++
	d.replace(chain)
	return nil
}

func (d *Driver) replace(chain *shader.Chain) {
	if d.chain != nil {
		d.chain.Teardown()
	}
	d.chain = chain
	d.needsRestore = false
	d.stats.Builds++
	d.stats.Passes = chain.PassCount()
	d.stats.Luts = chain.LutCount()
}

// Chain returns the chain to render this frame with, restoring it first
// if needed. It returns nil without error until the first Resize.
func (d *Driver) Chain() (*shader.Chain, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.viewport.Width <= 0 || d.viewport.Height <= 0 {
		return nil, nil
	}
	if d.needsRestore {
		if err := d.Restore(); err != nil {
			return nil, err
		}
	}
	return d.chain, nil
}

// Viewport returns the current presentation rectangle.
func (d *Driver) Viewport() shader.Viewport {
	return d.viewport
}

// Stats returns lifecycle counters.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Close releases the chain. The driver cannot be used afterwards.
func (d *Driver) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if d.chain != nil {
		d.chain.Teardown()
		d.chain = nil
	}
}
