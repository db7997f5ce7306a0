package shader

import (
	"errors"
	"fmt"
	"slices"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTrackers sets the factory used for programs that import variables.
func WithTrackers(f TrackerFactory) BuilderOption {
	return func(b *Builder) {
		b.trackers = f
	}
}

// WithMemory sets the memory tracked variables read from.
func WithMemory(m Memory) BuilderOption {
	return func(b *Builder) {
		b.memory = m
	}
}

// Builder assembles chains. It carries everything a build needs so no
// global device state is involved.
type Builder struct {
	cfg      Config
	backend  Backend
	trackers TrackerFactory
	memory   Memory
}

// NewBuilder returns a builder that allocates through backend.
func NewBuilder(cfg Config, backend Backend, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:     cfg,
		backend: backend,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the configuration chains are built with.
func (b *Builder) Config() Config {
	return b.cfg
}

// SetConfig replaces the configuration used by later builds.
func (b *Builder) SetConfig(cfg Config) {
	b.cfg = cfg
}

// Chain is a built pipeline. It is owned by a single video backend and is
// not safe for concurrent use.
type Chain struct {
	rc       RenderChain
	program  *Program
	cfg      Config
	input    Size
	viewport Viewport
	links    []LinkInfo
	tracker  Tracker
	released bool

	// stale is set when a failed resize could not be rolled back, so the
	// render chain no longer matches viewport.
	stale bool
}

// Build sizes every pass of p and assembles it on a fresh render chain.
// Any failure releases what was allocated and returns a single error; no
// partially built chain is ever returned.
func (b *Builder) Build(p *Program, input Size, vp Viewport) (*Chain, error) {
	log := Logger()

	if input.Width <= 0 || input.Height <= 0 {
		return nil, fmt.Errorf("%w: input %s", ErrInvalidGeometry, input)
	}
	links, err := ComputeLinks(p, b.cfg, vp)
	if err != nil {
		log.Error("shader chain geometry failed", "err", err, "viewport", vp.Size().String())
		return nil, err
	}
	if b.backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrResourceAllocation)
	}

	rc, err := b.backend.NewRenderChain()
	if err != nil {
		log.Error("failed to create render chain", "err", err)
		return nil, wrapKind(ErrResourceAllocation, err)
	}

	c := &Chain{
		rc:       rc,
		program:  p,
		cfg:      b.cfg,
		input:    input,
		viewport: vp,
		links:    links,
	}
	if err := b.assemble(c); err != nil {
		c.Teardown()
		return nil, err
	}

	log.Info("shader chain built",
		"passes", len(c.links),
		"luts", len(p.Luts),
		"variables", len(p.Imports.Variables),
		"format", b.cfg.Format().String(),
		"viewport", vp.Size().String())
	return c, nil
}

func (b *Builder) assemble(c *Chain) error {
	log := Logger()
	first := c.links[0]

	if err := c.rc.Init(first, b.cfg.Format(), c.input, c.viewport); err != nil {
		err = &PassError{Index: 0, Width: first.TexWidth, Height: first.TexHeight, Err: wrapKind(ErrResourceAllocation, err)}
		log.Error("failed to init render chain", "pass", 0, "width", first.TexWidth, "height", first.TexHeight, "err", err)
		return err
	}

	for _, link := range c.links[1:] {
		log.Debug("adding pass",
			"pass", link.Index,
			"scale_x", link.Pass.FBO.X.String(),
			"scale_y", link.Pass.FBO.Y.String(),
			"out", Size{link.OutWidth, link.OutHeight}.String(),
			"tex", Size{link.TexWidth, link.TexHeight}.String())
		if err := c.rc.AddPass(link); err != nil {
			err = &PassError{Index: link.Index, Width: link.TexWidth, Height: link.TexHeight, Err: wrapKind(ErrResourceAllocation, err)}
			log.Error("failed to add pass", "pass", link.Index, "width", link.TexWidth, "height", link.TexHeight, "err", err)
			return err
		}
	}

	if err := b.attachLuts(c); err != nil {
		return err
	}
	return b.attachImports(c)
}

func (b *Builder) attachLuts(c *Chain) error {
	for _, lut := range c.program.Luts {
		linear := b.cfg.Smooth
		if lut.Filter != FilterUnspec {
			linear = lut.Filter == FilterLinear
		}
		if err := c.rc.AddLut(lut.ID, lut.Path, linear); err != nil {
			err = &LutError{ID: lut.ID, Path: lut.Path, Err: wrapKind(ErrResourceAllocation, err)}
			Logger().Error("failed to load lut", "id", lut.ID, "path", lut.Path, "err", err)
			return err
		}
	}
	return nil
}

func (b *Builder) attachImports(c *Chain) error {
	imports := c.program.Imports
	if len(imports.Variables) == 0 {
		return nil
	}
	if b.trackers == nil {
		return fmt.Errorf("%w: no tracker factory for %d variables", ErrTrackerInit, len(imports.Variables))
	}

	t, err := b.trackers.NewTracker(TrackerInfo{
		Memory:      b.memory,
		Variables:   imports.Variables,
		Script:      imports.Script,
		ScriptClass: imports.ScriptClass,
	})
	if err != nil {
		Logger().Error("failed to initialize state tracker", "variables", len(imports.Variables), "err", err)
		return wrapKind(ErrTrackerInit, err)
	}
	c.tracker = t
	c.rc.AttachTracker(t)
	return nil
}

// Resize recomputes every link for a new viewport and resizes the existing
// targets in place. Link 0 does not depend on the viewport and is left
// alone. If any pass fails to resize, the passes already resized are put
// back and the render chain keeps its previous viewport; the error names
// every failed pass and the same viewport may be retried.
func (c *Chain) Resize(vp Viewport) error {
	if c.released {
		return ErrChainReleased
	}
	if vp == c.viewport && !c.stale {
		return nil
	}
	log := Logger()

	links, err := ComputeLinks(c.program, c.cfg, vp)
	if err != nil {
		log.Warn("shader chain resize rejected", "viewport", vp.Size().String(), "err", err)
		return err
	}

	c.rc.SetViewport(vp)

	var errs []error
	var resized []int
	old := slices.Clone(c.links)
	for i := 1; i < len(links); i++ {
		if sameSize(links[i], c.links[i]) {
			continue
		}
		if err := c.rc.SetPassSize(links[i]); err != nil {
			errs = append(errs, c.passSizeError(links[i], err))
			continue
		}
		c.links[i] = links[i]
		resized = append(resized, i)
	}
	if len(errs) == 0 {
		c.viewport = vp
		c.stale = false
		log.Debug("shader chain resized", "viewport", vp.Size().String())
		return nil
	}

	c.rc.SetViewport(c.viewport)
	for _, i := range resized {
		if err := c.rc.SetPassSize(old[i]); err != nil {
			errs = append(errs, c.passSizeError(old[i], err))
			c.stale = true
			continue
		}
		c.links[i] = old[i]
	}
	return errors.Join(errs...)
}

func (c *Chain) passSizeError(link LinkInfo, err error) error {
	Logger().Warn("failed to set pass size", "pass", link.Index, "width", link.TexWidth, "height", link.TexHeight, "err", err)
	return &PassError{Index: link.Index, Width: link.TexWidth, Height: link.TexHeight, Err: wrapKind(ErrResourceAllocation, err)}
}

func sameSize(a, b LinkInfo) bool {
	return a.TexWidth == b.TexWidth && a.TexHeight == b.TexHeight &&
		a.OutWidth == b.OutWidth && a.OutHeight == b.OutHeight
}

// Teardown releases the render chain and tracker. It is safe to call more
// than once.
func (c *Chain) Teardown() {
	if c.released {
		return
	}
	c.released = true
	if c.tracker != nil {
		c.tracker.Close()
		c.tracker = nil
	}
	if c.rc != nil {
		c.rc.Release()
	}
	Logger().Info("shader chain released", "passes", len(c.links))
}

// Released reports whether Teardown has run.
func (c *Chain) Released() bool {
	return c.released
}

// PassCount returns the number of passes in the chain.
func (c *Chain) PassCount() int {
	return len(c.links)
}

// LutCount returns the number of LUTs bound to the chain.
func (c *Chain) LutCount() int {
	return len(c.program.Luts)
}

// Links returns a copy of the current per-pass geometry.
func (c *Chain) Links() []LinkInfo {
	out := make([]LinkInfo, len(c.links))
	copy(out, c.links)
	return out
}

// Viewport returns the viewport the chain was last sized for.
func (c *Chain) Viewport() Viewport {
	return c.viewport
}

// Input returns the native frame size the chain was built for.
func (c *Chain) Input() Size {
	return c.input
}

// Program returns the program the chain was built from.
func (c *Chain) Program() *Program {
	return c.program
}

// RenderChain returns the backend object driven by this chain.
func (c *Chain) RenderChain() RenderChain {
	return c.rc
}
