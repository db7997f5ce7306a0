package emucore

// Memory region type constants for MemoryMapper.
const (
	MemorySaveRAM   = iota // Maps to RETRO_MEMORY_SAVE_RAM
	MemorySystemRAM        // Maps to RETRO_MEMORY_SYSTEM_RAM
)

// MemoryRegion describes a named memory region and its size.
type MemoryRegion struct {
	Type int
	Size int
}

// MemoryMapper enables libretro-style named memory region access.
type MemoryMapper interface {
	// MemoryMap returns a list of available memory regions with sizes.
	MemoryMap() []MemoryRegion

	// ReadRegion returns a copy of the specified memory region.
	ReadRegion(regionType int) []byte
}

// RegionMemory exposes a core's system RAM and controller state to the
// shader state tracker. ReadRegion copies, so the RAM is snapshotted once
// per frame by Refresh rather than on every read.
type RegionMemory struct {
	mapper   MemoryMapper
	snapshot []byte
	buttons  [2]uint32
}

// NewRegionMemory wraps m.
func NewRegionMemory(m MemoryMapper) *RegionMemory {
	return &RegionMemory{mapper: m}
}

// HasSystemRAM reports whether the core maps a system RAM region.
func (r *RegionMemory) HasSystemRAM() bool {
	for _, region := range r.mapper.MemoryMap() {
		if region.Type == MemorySystemRAM && region.Size > 0 {
			return true
		}
	}
	return false
}

// Refresh takes a new snapshot of system RAM. Call it once per emulated
// frame before the tracker is updated.
func (r *RegionMemory) Refresh() {
	r.snapshot = r.mapper.ReadRegion(MemorySystemRAM)
}

// SystemRAM returns the last snapshot, taking one if none exists yet.
func (r *RegionMemory) SystemRAM() []byte {
	if r.snapshot == nil {
		r.Refresh()
	}
	return r.snapshot
}

// SetInput records the button bitmask of a player, mirroring what the core
// was given.
func (r *RegionMemory) SetInput(player int, buttons uint32) {
	if player >= 0 && player < len(r.buttons) {
		r.buttons[player] = buttons
	}
}

// InputState returns the low 16 button bits of a 0-based port.
func (r *RegionMemory) InputState(port int) uint16 {
	if port < 0 || port >= len(r.buttons) {
		return 0
	}
	return uint16(r.buttons[port])
}
