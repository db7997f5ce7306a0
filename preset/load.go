package preset

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alphanu1/MME4CRT-v2.0/assetloader"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// Extensions lists the file extensions treated as multi-pass presets.
var Extensions = []string{".cgp", ".glslp", ".slangp", ".kagep"}

// IsPreset reports whether path names a multi-pass preset, optionally
// gzipped.
func IsPreset(path string) bool {
	lower := strings.ToLower(path)
	lower = strings.TrimSuffix(lower, ".gz")
	return assetloader.HasExtension(filepath.Base(lower), Extensions)
}

// ReadFile parses the preset at path without normalizing it.
func ReadFile(path string) (*shader.Preset, error) {
	asset, err := assetloader.Load(path, Extensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shader.ErrPresetParse, err)
	}
	conf, err := ParseConfig(bytes.NewReader(asset.Data), path)
	if err != nil {
		return nil, err
	}
	return Read(conf, path)
}

// Load returns the program for path. Presets are read and normalized; any
// other file is taken to be a single shader rendering at viewport size.
func Load(path string) (*shader.Program, error) {
	log := shader.Logger()

	if !IsPreset(path) {
		log.Info("loading single shader", "path", path)
		return shader.SinglePass(path), nil
	}

	p, err := ReadFile(path)
	if err != nil {
		log.Error("failed to read preset", "path", path, "err", err)
		return nil, err
	}
	prog, err := shader.Normalize(p)
	if err != nil {
		log.Error("failed to normalize preset", "path", path, "err", err)
		return nil, err
	}
	log.Info("loaded preset",
		"path", path,
		"passes", len(prog.Passes),
		"luts", len(prog.Luts),
		"imports", len(prog.Imports.Variables))
	return prog, nil
}
