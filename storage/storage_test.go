package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// useTempDataDir points the data directory at a temp dir for one test
func useTempDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("APPDATA", dir)
	t.Setenv("HOME", dir)
	old := appName
	Init("shaderchain-test")
	t.Cleanup(func() { Init(old) })
	base, err := GetBaseDir()
	if err != nil {
		t.Fatalf("GetBaseDir failed: %v", err)
	}
	return base
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != 1 {
		t.Errorf("expected version 1, got %d", config.Version)
	}
	if config.Video.InputScale != 1 {
		t.Errorf("expected input scale 1, got %d", config.Video.InputScale)
	}
	if !config.Video.RGB32 {
		t.Error("expected rgb32 on by default")
	}
	if !config.Video.KeepAspect {
		t.Error("expected keepAspect on by default")
	}
}

func TestChainConfig(t *testing.T) {
	v := VideoConfig{InputScale: 3, RGB32: false, Smooth: true}
	got := v.ChainConfig()
	if got.InputScale != 3 || got.RGB32 || !got.Smooth {
		t.Errorf("ChainConfig = %+v", got)
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.json")

	data := struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}{
		Name:  "test",
		Value: 42,
	}

	if err := AtomicWriteJSON(path, data); err != nil {
		t.Fatalf("AtomicWriteJSON failed: %v", err)
	}

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if result.Name != data.Name || result.Value != data.Value {
		t.Errorf("data mismatch: expected %+v, got %+v", data, result)
	}

	if err := AtomicWriteJSON(path, struct{}{}); err != nil {
		t.Fatalf("AtomicWriteJSON overwrite failed: %v", err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestDataRoot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", filepath.Join(dir, "appdata"))
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		goos string
		want string
	}{
		{"windows", filepath.Join(dir, "appdata")},
		{"darwin", filepath.Join(dir, "Library", "Application Support")},
		{"linux", filepath.Join(dir, ".local", "share")},
		{"freebsd", filepath.Join(dir, ".local", "share")},
	}
	for _, tt := range tests {
		got, err := dataRoot(tt.goos)
		if err != nil {
			t.Errorf("dataRoot(%s) error: %v", tt.goos, err)
			continue
		}
		if got != tt.want {
			t.Errorf("dataRoot(%s) = %s, want %s", tt.goos, got, tt.want)
		}
	}

	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg"))
	if got, _ := dataRoot("linux"); got != filepath.Join(dir, "xdg") {
		t.Errorf("dataRoot(linux) = %s, want XDG_DATA_HOME", got)
	}
	t.Setenv("APPDATA", "")
	if _, err := dataRoot("windows"); err == nil {
		t.Error("dataRoot(windows) without APPDATA succeeded")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file gives defaults", func(t *testing.T) {
		config, err := LoadConfigFile(filepath.Join(dir, "missing.json"))
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}
		if config.Video != DefaultConfig().Video {
			t.Errorf("video = %+v, want defaults", config.Video)
		}
	})

	t.Run("partial file keeps explicit values", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		if err := os.WriteFile(path, []byte(`{"video": {"rgb32": false, "inputScale": 2, "shaderPreset": "crt.cgp"}}`), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		config, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}
		if config.Video.RGB32 {
			t.Error("rgb32 should be false")
		}
		if config.Video.InputScale != 2 || config.Video.ShaderPreset != "crt.cgp" {
			t.Errorf("video = %+v", config.Video)
		}
		if !config.Video.KeepAspect || config.Window.Width != 800 {
			t.Error("missing fields were not defaulted")
		}
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"video":`), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for corrupt config")
		}
	})
}

func TestConfigLifecycle(t *testing.T) {
	base := useTempDataDir(t)

	if err := EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	presets, err := GetPresetsDir()
	if err != nil {
		t.Fatalf("GetPresetsDir failed: %v", err)
	}
	if info, err := os.Stat(presets); err != nil || !info.IsDir() {
		t.Errorf("presets dir not created: %v", err)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if filepath.Dir(path) != base {
		t.Errorf("config path %s not in %s", path, base)
	}
	created, err := CreateConfigIfMissing(path)
	if err != nil || !created {
		t.Fatalf("CreateConfigIfMissing = %v, %v; want true", created, err)
	}
	if created, err := CreateConfigIfMissing(path); err != nil || created {
		t.Errorf("second CreateConfigIfMissing = %v, %v; want false", created, err)
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	config.Video.ShaderPreset = "scanlines.cgp"
	config.Window.Fullscreen = true
	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Video.ShaderPreset != "scanlines.cgp" || !loaded.Window.Fullscreen {
		t.Errorf("saved values lost: %+v", loaded)
	}

	if err := DeleteConfig(path); err != nil {
		t.Fatalf("DeleteConfig failed: %v", err)
	}
	if err := DeleteConfig(path); err != nil {
		t.Errorf("second DeleteConfig failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("config file still exists")
	}
}
