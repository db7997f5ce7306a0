// Package tracker turns emulated system state into shader uniforms.
//
// Each tracked variable samples one byte of system RAM or one controller
// slot every frame and reports it according to its semantic: the value
// itself, the value before the last change, or when and how often it
// changed. Script variables are computed by a Lua class instead.
package tracker

import (
	"errors"
	"fmt"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

var (
	// ErrNoMemory is returned when a variable needs RAM or input state the
	// memory source does not provide.
	ErrNoMemory = errors.New("tracker: memory not available")

	// ErrAddressRange is returned for a RAM address outside system RAM.
	ErrAddressRange = errors.New("tracker: address out of range")

	// ErrScript is returned when the import script cannot be used.
	ErrScript = errors.New("tracker: script error")
)

// variable is the running state of one tracked value.
type variable struct {
	shader.Variable
	mask uint16

	prev            [2]uint16 // last seen value, value before that
	lastChange      uint64
	prevChange      uint64
	transitionCount uint64
}

// Tracker samples variables once per frame.
type Tracker struct {
	mem      shader.Memory
	input    shader.InputReader
	vars     []variable
	script   *script
	uniforms []shader.Uniform
}

// New binds info's variables to its memory. Every RAM address is checked
// against the current size of system RAM.
func New(info shader.TrackerInfo) (*Tracker, error) {
	t := &Tracker{
		mem:      info.Memory,
		vars:     make([]variable, len(info.Variables)),
		uniforms: make([]shader.Uniform, len(info.Variables)),
	}
	if r, ok := info.Memory.(shader.InputReader); ok {
		t.input = r
	}

	var scripted []string
	for i, v := range info.Variables {
		if err := t.check(v); err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.ID, err)
		}
		t.vars[i] = variable{Variable: v, mask: v.Mask}
		if t.vars[i].mask == 0 {
			t.vars[i].mask = 0xffff
		}
		t.uniforms[i].ID = v.ID
		if v.Type == shader.VarScript {
			scripted = append(scripted, v.ID)
		}
	}

	if len(scripted) > 0 {
		s, err := loadScript(info.Script, info.ScriptClass, t)
		if err != nil {
			return nil, err
		}
		for _, id := range scripted {
			if !s.hasMethod(id) {
				s.close()
				return nil, fmt.Errorf("%w: class %s has no method %q", ErrScript, s.className, id)
			}
		}
		t.script = s
	}

	shader.Logger().Info("state tracker ready", "variables", len(t.vars), "scripted", len(scripted))
	return t, nil
}

func (t *Tracker) check(v shader.Variable) error {
	switch v.RAM {
	case shader.RAMSystem:
		if t.mem == nil {
			return ErrNoMemory
		}
		if size := len(t.mem.SystemRAM()); int64(v.Addr) >= int64(size) {
			return fmt.Errorf("%w: 0x%x (system RAM is %d bytes)", ErrAddressRange, v.Addr, size)
		}
	case shader.RAMInputSlot1, shader.RAMInputSlot2:
		if t.input == nil {
			return fmt.Errorf("%w: no input state", ErrNoMemory)
		}
	case shader.RAMNone:
		if v.Type != shader.VarScript {
			return fmt.Errorf("%w: no RAM source", ErrNoMemory)
		}
	}
	return nil
}

// fetch reads the masked value of v. A non-zero Equal turns the value
// into a match flag: the value itself on match, 0 otherwise.
func (t *Tracker) fetch(v *variable) uint16 {
	var raw uint16
	switch v.RAM {
	case shader.RAMSystem:
		if ram := t.mem.SystemRAM(); int(v.Addr) < len(ram) {
			raw = uint16(ram[v.Addr])
		}
	case shader.RAMInputSlot1:
		raw = t.input.InputState(0)
	case shader.RAMInputSlot2:
		raw = t.input.InputState(1)
	}
	val := raw & v.mask
	if v.Equal != 0 && val != v.Equal {
		val = 0
	}
	return val
}

// Update samples every variable for frame. The returned slice is reused by
// the next call.
func (t *Tracker) Update(frame uint64) []shader.Uniform {
	for i := range t.vars {
		v := &t.vars[i]
		if v.Type == shader.VarScript {
			t.uniforms[i].Value = t.script.call(v.ID, frame)
			continue
		}

		val := t.fetch(v)
		if val != v.prev[0] {
			v.prev[1] = v.prev[0]
			v.prev[0] = val
			v.prevChange = v.lastChange
			v.lastChange = frame
			v.transitionCount++
		}

		switch v.Type {
		case shader.VarCapture:
			t.uniforms[i].Value = float32(val)
		case shader.VarCapturePrev:
			t.uniforms[i].Value = float32(v.prev[1])
		case shader.VarTransition:
			t.uniforms[i].Value = float32(v.lastChange)
		case shader.VarTransitionCount:
			t.uniforms[i].Value = float32(v.transitionCount)
		case shader.VarTransitionPrev:
			t.uniforms[i].Value = float32(v.prevChange)
		}
	}
	return t.uniforms
}

// Close releases the script state. The tracker must not be used afterwards.
func (t *Tracker) Close() {
	if t.script != nil {
		t.script.close()
		t.script = nil
	}
}

// readWRAM returns the byte at addr or 0 when out of range.
func (t *Tracker) readWRAM(addr int) uint8 {
	if t.mem == nil || addr < 0 {
		return 0
	}
	ram := t.mem.SystemRAM()
	if addr >= len(ram) {
		return 0
	}
	return ram[addr]
}

// readInput returns the button state of a 1-based slot.
func (t *Tracker) readInput(slot int) uint16 {
	if t.input == nil || slot < 1 {
		return 0
	}
	return t.input.InputState(slot - 1)
}

// Factory creates trackers for shader.Builder.
type Factory struct{}

// NewTracker implements shader.TrackerFactory.
func (Factory) NewTracker(info shader.TrackerInfo) (shader.Tracker, error) {
	t, err := New(info)
	if err != nil {
		return nil, err
	}
	return t, nil
}
