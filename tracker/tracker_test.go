package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// testMemory is a fixed RAM buffer with two controller ports.
type testMemory struct {
	ram   []byte
	ports [2]uint16
}

func (m *testMemory) SystemRAM() []byte          { return m.ram }
func (m *testMemory) InputState(port int) uint16 { return m.ports[port] }

// ramOnly hides InputState.
type ramOnly struct{ ram []byte }

func (m ramOnly) SystemRAM() []byte { return m.ram }

func newTracker(t *testing.T, mem shader.Memory, vars ...shader.Variable) *Tracker {
	t.Helper()
	tr, err := New(shader.TrackerInfo{Memory: mem, Variables: vars})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr
}

func TestCapture(t *testing.T) {
	mem := &testMemory{ram: make([]byte, 32)}
	tr := newTracker(t, mem, shader.Variable{ID: "hp", Type: shader.VarCapture, RAM: shader.RAMSystem, Addr: 4})

	for frame, v := range []byte{0, 5, 5, 200} {
		mem.ram[4] = v
		got := tr.Update(uint64(frame))
		if len(got) != 1 || got[0].ID != "hp" {
			t.Fatalf("Update = %+v", got)
		}
		if got[0].Value != float32(v) {
			t.Errorf("frame %d: value = %g, want %d", frame, got[0].Value, v)
		}
	}
}

func TestMaskAndEqual(t *testing.T) {
	mem := &testMemory{ram: make([]byte, 8)}
	tr := newTracker(t, mem,
		shader.Variable{ID: "low", Type: shader.VarCapture, RAM: shader.RAMSystem, Addr: 0, Mask: 0x0f},
		shader.Variable{ID: "is3", Type: shader.VarCapture, RAM: shader.RAMSystem, Addr: 0, Mask: 0x0f, Equal: 3},
	)

	tests := []struct {
		ram     byte
		wantLow float32
		wantIs3 float32
	}{
		{0xf3, 3, 3},
		{0xf4, 4, 0},
		{0x03, 3, 3},
	}
	for _, tt := range tests {
		mem.ram[0] = tt.ram
		got := tr.Update(0)
		if got[0].Value != tt.wantLow || got[1].Value != tt.wantIs3 {
			t.Errorf("ram 0x%02x: got %g/%g, want %g/%g", tt.ram, got[0].Value, got[1].Value, tt.wantLow, tt.wantIs3)
		}
	}
}

func TestTransitionSemantics(t *testing.T) {
	mem := &testMemory{ram: make([]byte, 4)}
	vars := []shader.Variable{
		{ID: "prev", Type: shader.VarCapturePrev, RAM: shader.RAMSystem},
		{ID: "last", Type: shader.VarTransition, RAM: shader.RAMSystem},
		{ID: "count", Type: shader.VarTransitionCount, RAM: shader.RAMSystem},
		{ID: "before", Type: shader.VarTransitionPrev, RAM: shader.RAMSystem},
	}
	tr := newTracker(t, mem, vars...)

	steps := []struct {
		frame  uint64
		value  byte
		prev   float32
		last   float32
		count  float32
		before float32
	}{
		{frame: 1, value: 0, prev: 0, last: 0, count: 0, before: 0},
		{frame: 2, value: 7, prev: 0, last: 2, count: 1, before: 0},
		{frame: 3, value: 7, prev: 0, last: 2, count: 1, before: 0},
		{frame: 10, value: 9, prev: 7, last: 10, count: 2, before: 2},
		{frame: 11, value: 9, prev: 7, last: 10, count: 2, before: 2},
		{frame: 20, value: 1, prev: 9, last: 20, count: 3, before: 10},
	}
	for _, s := range steps {
		mem.ram[0] = s.value
		got := tr.Update(s.frame)
		want := []float32{s.prev, s.last, s.count, s.before}
		for i := range want {
			if got[i].Value != want[i] {
				t.Errorf("frame %d %s = %g, want %g", s.frame, got[i].ID, got[i].Value, want[i])
			}
		}
	}
}

func TestInputSlots(t *testing.T) {
	mem := &testMemory{ram: make([]byte, 1), ports: [2]uint16{0x0101, 0x8000}}
	tr := newTracker(t, mem,
		shader.Variable{ID: "p1", Type: shader.VarCapture, RAM: shader.RAMInputSlot1},
		shader.Variable{ID: "p2", Type: shader.VarCapture, RAM: shader.RAMInputSlot2},
	)
	got := tr.Update(0)
	if got[0].Value != 0x0101 || got[1].Value != 0x8000 {
		t.Errorf("inputs = %g/%g, want 257/32768", got[0].Value, got[1].Value)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		mem  shader.Memory
		v    shader.Variable
		want error
	}{
		{"nil memory", nil, shader.Variable{ID: "a", RAM: shader.RAMSystem}, ErrNoMemory},
		{"address past end", ramOnly{make([]byte, 16)}, shader.Variable{ID: "a", RAM: shader.RAMSystem, Addr: 16}, ErrAddressRange},
		{"no input state", ramOnly{make([]byte, 16)}, shader.Variable{ID: "a", RAM: shader.RAMInputSlot1}, ErrNoMemory},
		{"no source", ramOnly{make([]byte, 16)}, shader.Variable{ID: "a", Type: shader.VarCapture}, ErrNoMemory},
		{"script without file", ramOnly{make([]byte, 16)}, shader.Variable{ID: "a", Type: shader.VarScript}, ErrScript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(shader.TrackerInfo{Memory: tt.mem, Variables: []shader.Variable{tt.v}})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if tr != nil {
				t.Error("tracker returned with error")
			}
		})
	}
}

func TestFactory(t *testing.T) {
	var f shader.TrackerFactory = Factory{}
	tr, err := f.NewTracker(shader.TrackerInfo{
		Memory:    ramOnly{make([]byte, 4)},
		Variables: []shader.Variable{{ID: "x", RAM: shader.RAMSystem, Addr: 3}},
	})
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	tr.Close()

	tr, err = f.NewTracker(shader.TrackerInfo{Variables: []shader.Variable{{ID: "x", RAM: shader.RAMSystem}}})
	if err == nil || tr != nil {
		t.Errorf("NewTracker = %v, %v, want nil tracker and error", tr, err)
	}
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.lua")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

func TestScriptVariables(t *testing.T) {
	path := writeScript(t, `
GameAware = {}
function GameAware:health(frame)
  return read_wram(2) * 2
end
function GameAware:frame(frame)
  return frame + read_input(1)
end
function GameAware:broken(frame)
  return "nope"
end
`)
	mem := &testMemory{ram: []byte{0, 0, 21}, ports: [2]uint16{3, 0}}
	tr, err := New(shader.TrackerInfo{
		Memory: mem,
		Variables: []shader.Variable{
			{ID: "health", Type: shader.VarScript},
			{ID: "frame", Type: shader.VarScript},
			{ID: "broken", Type: shader.VarScript},
			{ID: "raw", Type: shader.VarCapture, RAM: shader.RAMSystem, Addr: 2},
		},
		Script: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer tr.Close()

	got := tr.Update(100)
	want := []float32{42, 103, 0, 21}
	for i := range want {
		if got[i].Value != want[i] {
			t.Errorf("%s = %g, want %g", got[i].ID, got[i].Value, want[i])
		}
	}
}

func TestScriptCustomClass(t *testing.T) {
	path := writeScript(t, "Boss = {}\nfunction Boss:phase(frame) return 2 end\n")
	tr, err := New(shader.TrackerInfo{
		Variables:   []shader.Variable{{ID: "phase", Type: shader.VarScript}},
		Script:      path,
		ScriptClass: "Boss",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer tr.Close()
	if got := tr.Update(0); got[0].Value != 2 {
		t.Errorf("phase = %g, want 2", got[0].Value)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		class string
	}{
		{"syntax error", "GameAware = {", ""},
		{"missing class", "Other = {}\nfunction Other:hp() return 1 end\n", ""},
		{"wrong class", "GameAware = {}\nfunction GameAware:hp() return 1 end\n", "Boss"},
		{"missing method", "GameAware = {}\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(shader.TrackerInfo{
				Variables:   []shader.Variable{{ID: "hp", Type: shader.VarScript}},
				Script:      writeScript(t, tt.src),
				ScriptClass: tt.class,
			})
			if !errors.Is(err, ErrScript) {
				t.Errorf("err = %v, want ErrScript", err)
			}
		})
	}

	_, err := New(shader.TrackerInfo{
		Variables: []shader.Variable{{ID: "hp", Type: shader.VarScript}},
		Script:    filepath.Join(t.TempDir(), "missing.lua"),
	})
	if !errors.Is(err, ErrScript) {
		t.Errorf("missing file err = %v, want ErrScript", err)
	}
}
