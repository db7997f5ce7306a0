package tracker

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// DefaultScriptClass is the Lua table looked up when a preset names none.
const DefaultScriptClass = "GameAware"

// script runs a preset's import script. Script variables are methods of
// one global table, called as Class:method(frame).
type script struct {
	L         *lua.LState
	class     *lua.LTable
	className string
	failed    map[string]bool // methods already reported as failing
}

func loadScript(path, className string, t *Tracker) (*script, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: script variables without import_script", ErrScript)
	}
	if className == "" {
		className = DefaultScriptClass
	}

	L := lua.NewState()
	L.SetGlobal("read_wram", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(t.readWRAM(L.CheckInt(1))))
		return 1
	}))
	L.SetGlobal("read_input", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(t.readInput(L.CheckInt(1))))
		return 1
	}))

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrScript, path, err)
	}
	class, ok := L.GetGlobal(className).(*lua.LTable)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w: %s does not define table %s", ErrScript, path, className)
	}

	shader.Logger().Debug("loaded import script", "path", path, "class", className)
	return &script{L: L, class: class, className: className, failed: make(map[string]bool)}, nil
}

func (s *script) hasMethod(name string) bool {
	_, ok := s.L.GetField(s.class, name).(*lua.LFunction)
	return ok
}

// call invokes a method and converts its result to a number. Errors and
// non-numeric results yield 0 and are logged once per method.
func (s *script) call(method string, frame uint64) float32 {
	fn := s.L.GetField(s.class, method)
	err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, s.class, lua.LNumber(frame))
	if err != nil {
		s.report(method, err)
		return 0
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		s.report(method, fmt.Errorf("returned %s, want number", ret.Type()))
		return 0
	}
	return float32(n)
}

func (s *script) report(method string, err error) {
	if s.failed[method] {
		return
	}
	s.failed[method] = true
	shader.Logger().Warn("import script method failed", "class", s.className, "method", method, "err", err)
}

func (s *script) close() {
	s.L.Close()
}
