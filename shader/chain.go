package shader

// RenderChain owns the GPU side of a chain: one render target per pass,
// the LUT textures and the tracker feeding shader uniforms. It is
// implemented by a video backend; Builder and Chain are its only callers.
type RenderChain interface {
	// Init creates the first pass and its input texture.
	Init(link LinkInfo, format PixelFormat, input Size, vp Viewport) error

	// AddPass appends the pass described by link.
	AddPass(link LinkInfo) error

	// SetPassSize resizes the target of pass link.Index in place.
	SetPassSize(link LinkInfo) error

	// SetViewport updates the rectangle the last pass renders into.
	SetViewport(vp Viewport)

	// AddLut loads a lookup texture addressed by id.
	AddLut(id, path string, linear bool) error

	// AttachTracker binds a variable tracker whose values are uploaded
	// as uniforms every frame.
	AttachTracker(t Tracker)

	// Release frees everything the chain allocated. It must be safe to
	// call on a partially initialized chain.
	Release()
}

// Backend creates render chains.
type Backend interface {
	NewRenderChain() (RenderChain, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func() (RenderChain, error)

// NewRenderChain calls f.
func (f BackendFunc) NewRenderChain() (RenderChain, error) {
	return f()
}

// Uniform is one tracked value for the current frame.
type Uniform struct {
	ID    string
	Value float32
}

// Tracker produces uniform values from emulated system state.
type Tracker interface {
	// Update samples state for the given frame and returns one value per
	// tracked variable, in declaration order.
	Update(frame uint64) []Uniform

	// Close releases script state.
	Close()
}

// Memory exposes the emulated system RAM to trackers.
type Memory interface {
	SystemRAM() []byte
}

// InputReader is implemented by Memory values that can also report
// controller state for input-slot variables. port is 0-based.
type InputReader interface {
	InputState(port int) uint16
}

// TrackerInfo is everything a tracker needs to bind variables.
type TrackerInfo struct {
	Memory      Memory
	Variables   []Variable
	Script      string
	ScriptClass string
}

// TrackerFactory creates trackers for a program's imports.
type TrackerFactory interface {
	NewTracker(info TrackerInfo) (Tracker, error)
}
