package preset

import (
	"fmt"
	"strings"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// Read builds a preset from conf. Shader, texture and script paths are
// resolved relative to presetPath, or to conf.Path() when presetPath is
// empty.
func Read(conf *Config, presetPath string) (*shader.Preset, error) {
	if presetPath == "" {
		presetPath = conf.Path()
	}

	count, err := conf.Int("shaders", 0)
	if err != nil {
		return nil, err
	}
	if !conf.Has("shaders") || count < 1 {
		return nil, fmt.Errorf("%w: need at least one shader", shader.ErrPresetParse)
	}
	if count > shader.MaxPasses {
		return nil, fmt.Errorf("%w: %d shaders (max %d)", shader.ErrTooManyPasses, count, shader.MaxPasses)
	}

	p := &shader.Preset{Passes: make([]shader.Pass, 0, count)}
	for i := 0; i < count; i++ {
		pass, err := readPass(conf, presetPath, i)
		if err != nil {
			return nil, err
		}
		p.Passes = append(p.Passes, pass)
	}

	if p.Luts, err = readTextures(conf, presetPath); err != nil {
		return nil, err
	}
	if p.Imports, err = readImports(conf, presetPath); err != nil {
		return nil, err
	}
	return p, nil
}

func readPass(conf *Config, presetPath string, i int) (shader.Pass, error) {
	var pass shader.Pass

	src, ok := conf.String(fmt.Sprintf("shader%d", i))
	if !ok || src == "" {
		return pass, fmt.Errorf("%w: shader%d not defined", shader.ErrPresetParse, i)
	}
	pass.Source = ResolvePath(presetPath, src)

	filterKey := fmt.Sprintf("filter_linear%d", i)
	if conf.Has(filterKey) {
		linear, err := conf.Bool(filterKey, false)
		if err != nil {
			return pass, err
		}
		pass.Filter = shader.FilterNearest
		if linear {
			pass.Filter = shader.FilterLinear
		}
	}

	mod, err := conf.Uint(fmt.Sprintf("frame_count_mod%d", i), 0)
	if err != nil {
		return pass, err
	}
	pass.FrameCountMod = uint(mod)

	pass.FBO, err = readFBO(conf, i)
	return pass, err
}

// readFBO returns an invalid FBO when the pass sets no scale type at all.
// Otherwise each axis defaults to 1x source scaling.
func readFBO(conf *Config, i int) (shader.FBO, error) {
	var fbo shader.FBO

	both, hasBoth := conf.String(fmt.Sprintf("scale_type%d", i))
	typeX, hasX := conf.String(fmt.Sprintf("scale_type_x%d", i))
	typeY, hasY := conf.String(fmt.Sprintf("scale_type_y%d", i))
	if !hasBoth && !hasX && !hasY {
		return fbo, nil
	}
	if hasBoth {
		if !hasX {
			typeX = both
		}
		if !hasY {
			typeY = both
		}
	}

	fbo.Valid = true
	fbo.X = shader.Scale{Type: shader.ScaleSource, Factor: 1}
	fbo.Y = shader.Scale{Type: shader.ScaleSource, Factor: 1}

	var err error
	if typeX != "" {
		if fbo.X.Type, err = shader.ParseScaleType(typeX); err != nil {
			return fbo, fmt.Errorf("%w: pass %d: %w", shader.ErrPresetParse, i, err)
		}
	}
	if typeY != "" {
		if fbo.Y.Type, err = shader.ParseScaleType(typeY); err != nil {
			return fbo, fmt.Errorf("%w: pass %d: %w", shader.ErrPresetParse, i, err)
		}
	}

	scaleKey := fmt.Sprintf("scale%d", i)
	keyX, keyY := fmt.Sprintf("scale_x%d", i), fmt.Sprintf("scale_y%d", i)
	if !conf.Has(keyX) {
		keyX = scaleKey
	}
	if !conf.Has(keyY) {
		keyY = scaleKey
	}
	if err := readScale(conf, keyX, &fbo.X); err != nil {
		return fbo, err
	}
	if err := readScale(conf, keyY, &fbo.Y); err != nil {
		return fbo, err
	}
	return fbo, nil
}

func readScale(conf *Config, key string, s *shader.Scale) error {
	if !conf.Has(key) {
		return nil
	}
	if s.Type == shader.ScaleAbsolute {
		abs, err := conf.Int(key, 0)
		if err != nil {
			return err
		}
		s.Abs = abs
		return nil
	}
	f, err := conf.Float(key, 1)
	if err != nil {
		return err
	}
	s.Factor = f
	return nil
}

// splitList splits a ';' separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func readTextures(conf *Config, presetPath string) ([]shader.Lut, error) {
	list, ok := conf.String("textures")
	if !ok {
		return nil, nil
	}
	ids := splitList(list)
	if len(ids) > shader.MaxLuts {
		return nil, fmt.Errorf("%w: %d textures (max %d)", shader.ErrTooManyPasses, len(ids), shader.MaxLuts)
	}

	luts := make([]shader.Lut, 0, len(ids))
	for _, id := range ids {
		path, ok := conf.String(id)
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: texture %q has no path", shader.ErrPresetParse, id)
		}
		lut := shader.Lut{ID: id, Path: ResolvePath(presetPath, path)}
		if key := id + "_linear"; conf.Has(key) {
			linear, err := conf.Bool(key, false)
			if err != nil {
				return nil, err
			}
			lut.Filter = shader.FilterNearest
			if linear {
				lut.Filter = shader.FilterLinear
			}
		}
		luts = append(luts, lut)
	}
	return luts, nil
}

func readImports(conf *Config, presetPath string) (shader.Imports, error) {
	var imports shader.Imports

	if script, ok := conf.String("import_script"); ok && script != "" {
		imports.Script = ResolvePath(presetPath, script)
	}
	imports.ScriptClass, _ = conf.String("import_script_class")

	list, ok := conf.String("imports")
	if !ok {
		return imports, nil
	}
	ids := splitList(list)
	if len(ids) > shader.MaxVariables {
		return imports, fmt.Errorf("%w: %d imports (max %d)", shader.ErrTooManyPasses, len(ids), shader.MaxVariables)
	}

	for _, id := range ids {
		v, err := readVariable(conf, id)
		if err != nil {
			return imports, err
		}
		if v.Type == shader.VarScript && imports.Script == "" {
			return imports, fmt.Errorf("%w: import %q needs import_script", shader.ErrPresetParse, id)
		}
		imports.Variables = append(imports.Variables, v)
	}
	return imports, nil
}

func readVariable(conf *Config, id string) (shader.Variable, error) {
	v := shader.Variable{ID: id}

	semantic, ok := conf.String(id + "_semantic")
	if !ok {
		return v, fmt.Errorf("%w: import %q has no semantic", shader.ErrPresetParse, id)
	}
	t, err := shader.ParseVariableType(semantic)
	if err != nil {
		return v, fmt.Errorf("%w: import %q: %w", shader.ErrPresetParse, id, err)
	}
	v.Type = t
	if t == shader.VarScript {
		return v, nil
	}

	switch {
	case conf.Has(id + "_wram"):
		addr, err := conf.Hex(id+"_wram", 0)
		if err != nil {
			return v, err
		}
		if addr > 0xffffffff {
			return v, fmt.Errorf("%w: import %q address 0x%x out of range", shader.ErrPresetParse, id, addr)
		}
		v.RAM = shader.RAMSystem
		v.Addr = uint32(addr)
	case conf.Has(id + "_input_slot"):
		slot, err := conf.Int(id+"_input_slot", 0)
		if err != nil {
			return v, err
		}
		switch slot {
		case 1:
			v.RAM = shader.RAMInputSlot1
		case 2:
			v.RAM = shader.RAMInputSlot2
		default:
			return v, fmt.Errorf("%w: import %q input slot %d (want 1 or 2)", shader.ErrPresetParse, id, slot)
		}
	default:
		return v, fmt.Errorf("%w: import %q has no wram address or input slot", shader.ErrPresetParse, id)
	}

	mask, err := conf.Hex(id+"_mask", 0)
	if err != nil {
		return v, err
	}
	equal, err := conf.Hex(id+"_equal", 0)
	if err != nil {
		return v, err
	}
	if mask > 0xffff || equal > 0xffff {
		return v, fmt.Errorf("%w: import %q mask/equal exceed 16 bits", shader.ErrPresetParse, id)
	}
	v.Mask = uint16(mask)
	v.Equal = uint16(equal)
	return v, nil
}
