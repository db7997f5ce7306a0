package storage

import (
	"encoding/json"
	"fmt"
)

// defaultedKeys lists, per section, the fields whose zero value is valid
// and which therefore need presence detection before defaulting.
var defaultedKeys = map[string][]string{
	"":       {"version"},
	"video":  {"inputScale", "rgb32", "keepAspect", "pixelAspect"},
	"window": {"width", "height"},
}

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "video.rgb32", "window.width").
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	for section, keys := range defaultedKeys {
		fields := raw
		prefix := ""
		if section != "" {
			sectionRaw, ok := raw[section]
			if !ok {
				continue
			}
			fields = nil
			if json.Unmarshal(sectionRaw, &fields) != nil {
				continue
			}
			prefix = section + "."
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[prefix+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file, preserving intentional zero values (e.g., rgb32=false).
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["video.inputScale"] {
		config.Video.InputScale = defaults.Video.InputScale
	}
	if !presentKeys["video.rgb32"] {
		config.Video.RGB32 = defaults.Video.RGB32
	}
	if !presentKeys["video.keepAspect"] {
		config.Video.KeepAspect = defaults.Video.KeepAspect
	}
	if !presentKeys["video.pixelAspect"] {
		config.Video.PixelAspect = defaults.Video.PixelAspect
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
func ValidateConfig(config *Config) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	if config.Video.InputScale < MinInputScale || config.Video.InputScale > MaxInputScale {
		errors = append(errors, fmt.Sprintf("video.inputScale: %d (valid: %d-%d)", config.Video.InputScale, MinInputScale, MaxInputScale))
	}

	if config.Video.PixelAspect < MinPixelAspect || config.Video.PixelAspect > MaxPixelAspect {
		errors = append(errors, fmt.Sprintf("video.pixelAspect: %.2f (valid: %.1f-%.1f)", config.Video.PixelAspect, MinPixelAspect, MaxPixelAspect))
	}

	if config.Window.Width < MinWindowWidth {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= %d)", config.Window.Width, MinWindowWidth))
	}

	if config.Window.Height < MinWindowHeight {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= %d)", config.Window.Height, MinWindowHeight))
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}

	if config.Video.InputScale < MinInputScale || config.Video.InputScale > MaxInputScale {
		config.Video.InputScale = defaults.Video.InputScale
	}

	if config.Video.PixelAspect < MinPixelAspect || config.Video.PixelAspect > MaxPixelAspect {
		config.Video.PixelAspect = defaults.Video.PixelAspect
	}

	if config.Window.Width < MinWindowWidth {
		config.Window.Width = defaults.Window.Width
	}

	if config.Window.Height < MinWindowHeight {
		config.Window.Height = defaults.Window.Height
	}

	return config
}
