// Package storage keeps the persistent settings of the shader tools in a
// per-user data directory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var appName = "shaderchain"

// Init sets the application data directory name. Must be called before
// any storage operations that should not use the default name.
func Init(dataDirName string) {
	appName = dataDirName
}

const (
	configFile = "config.json"
	presetsDir = "presets"
)

// GetBaseDir returns the data directory named by Init:
// ~/Library/Application Support/<app> on macOS, %APPDATA%/<app> on
// Windows and $XDG_DATA_HOME/<app>, falling back to ~/.local/share/<app>,
// everywhere else.
func GetBaseDir() (string, error) {
	root, err := dataRoot(runtime.GOOS)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appName), nil
}

func dataRoot(goos string) (string, error) {
	switch goos {
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return "", errors.New("APPDATA environment variable not set")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

func dataPath(name string) (string, error) {
	base, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name), nil
}

// EnsureDirectories creates the data directory and its presets folder.
func EnsureDirectories() error {
	dir, err := GetPresetsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	return dataPath(configFile)
}

// GetPresetsDir returns the directory the preset picker opens in
func GetPresetsDir() (string, error) {
	return dataPath(presetsDir)
}

// AtomicWriteJSON writes data as indented JSON to a temporary file next to
// path and renames it into place, so readers never see a partial file.
func AtomicWriteJSON(path string, data any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_, werr := tmp.Write(append(jsonData, '\n'))
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
