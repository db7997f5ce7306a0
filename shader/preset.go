package shader

import "fmt"

// viewportScale renders at exactly the viewport size.
var viewportScale = Scale{Type: ScaleViewport, Factor: 1.0}

// sourceScale renders at the size of the previous pass.
var sourceScale = Scale{Type: ScaleSource, Factor: 1.0}

// SinglePass returns the program for a lone shader file: one pass
// rendering at viewport size.
func SinglePass(path string) *Program {
	return &Program{
		Passes: []Pass{{
			Source: path,
			FBO:    FBO{Valid: true, X: viewportScale, Y: viewportScale},
		}},
	}
}

// Normalize turns a parsed preset into a program. Passes without scale
// settings default to 1x source scaling. If the declared last pass still
// renders offscreen a passthrough pass is appended so the chain ends on the
// viewport; when the program is already full the last pass is forced to
// viewport scale instead. The preset itself is not modified.
func Normalize(preset *Preset) (*Program, error) {
	if preset == nil || len(preset.Passes) == 0 {
		return nil, fmt.Errorf("%w: no passes", ErrPresetParse)
	}
	if len(preset.Passes) > MaxPasses {
		return nil, fmt.Errorf("%w: %d passes (max %d)", ErrTooManyPasses, len(preset.Passes), MaxPasses)
	}
	if len(preset.Luts) > MaxLuts {
		return nil, fmt.Errorf("%w: %d luts (max %d)", ErrTooManyPasses, len(preset.Luts), MaxLuts)
	}
	if len(preset.Imports.Variables) > MaxVariables {
		return nil, fmt.Errorf("%w: %d variables (max %d)", ErrTooManyPasses, len(preset.Imports.Variables), MaxVariables)
	}
	for i, p := range preset.Passes {
		if p.Source == "" {
			return nil, fmt.Errorf("%w: pass %d has no shader", ErrPresetParse, i)
		}
	}

	passes := make([]Pass, len(preset.Passes), len(preset.Passes)+1)
	copy(passes, preset.Passes)
	for i := range passes {
		if !passes[i].FBO.Valid {
			passes[i].FBO = FBO{Valid: true, X: sourceScale, Y: sourceScale}
		}
	}

	lastDeclared := preset.Passes[len(preset.Passes)-1]
	if len(passes) < MaxPasses && lastDeclared.FBO.Valid {
		passes = append(passes, Pass{
			Filter: FilterUnspec,
			FBO:    FBO{Valid: false, X: viewportScale, Y: viewportScale},
		})
	} else {
		last := &passes[len(passes)-1]
		last.FBO.X = viewportScale
		last.FBO.Y = viewportScale
	}

	prog := &Program{
		Passes: passes,
		Luts:   append([]Lut(nil), preset.Luts...),
		Imports: Imports{
			Variables:   append([]Variable(nil), preset.Imports.Variables...),
			Script:      preset.Imports.Script,
			ScriptClass: preset.Imports.ScriptClass,
		},
	}
	Logger().Debug("normalized preset",
		"declared", len(preset.Passes),
		"passes", len(prog.Passes),
		"luts", len(prog.Luts),
		"variables", len(prog.Imports.Variables))
	return prog, nil
}
