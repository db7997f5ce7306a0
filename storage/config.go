package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LoadConfig loads config.json from the data directory.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads the configuration at path. A missing file yields
// the defaults and so does every key absent from the file; a file that is
// not valid JSON is an error.
func LoadConfigFile(path string) (*Config, error) {
	jsonBytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(jsonBytes, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	ApplyMissingDefaults(config, detectPresentKeys(jsonBytes))
	return config, nil
}

// SaveConfig saves the configuration to config.json in the data directory.
func SaveConfig(config *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigFile(path, config)
}

// SaveConfigFile writes the configuration to path atomically.
func SaveConfigFile(path string, config *Config) error {
	return AtomicWriteJSON(path, config)
}

// CreateConfigIfMissing writes the default configuration to path unless a
// file already exists there. It reports whether it wrote one.
func CreateConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := SaveConfigFile(path, DefaultConfig()); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteConfig removes the configuration at path. A missing file is not
// an error.
func DeleteConfig(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
