// Package preset reads multi-pass shader presets.
//
// Presets are flat "key = value" files. A preset may pull in other files
// with #include; later definitions override earlier ones.
package preset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

// maxIncludeDepth bounds #include nesting, which also stops include cycles.
const maxIncludeDepth = 16

// Config is a parsed key/value file.
type Config struct {
	path    string
	entries map[string]string
	keys    []string // first-seen order
}

// ParseConfig parses r. path names the file r was read from and anchors
// relative #include directives; it may be empty when r has no file behind
// it, in which case includes resolve against the working directory.
func ParseConfig(r io.Reader, path string) (*Config, error) {
	c := &Config{path: path, entries: make(map[string]string)}
	if err := c.parse(r, path, 0); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadConfigFile parses the file at path.
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(bytes.NewReader(data), path)
}

func (c *Config) parse(r io.Reader, path string, depth int) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "#include") {
			if err := c.include(strings.TrimSpace(line[len("#include"):]), path, depth); err != nil {
				return fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("%w: %s:%d: expected key = value", shader.ErrPresetParse, path, lineNo)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%w: %s:%d: empty key", shader.ErrPresetParse, path, lineNo)
		}
		c.set(key, unquote(strings.TrimSpace(value)))
	}
	return scanner.Err()
}

func (c *Config) include(arg, from string, depth int) error {
	if depth+1 >= maxIncludeDepth {
		return fmt.Errorf("%w: includes nested deeper than %d", shader.ErrPresetParse, maxIncludeDepth)
	}
	name := unquote(arg)
	if name == "" {
		return fmt.Errorf("%w: empty #include", shader.ErrPresetParse)
	}
	path := ResolvePath(from, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: include %s: %w", shader.ErrPresetParse, name, err)
	}
	defer f.Close()

	shader.Logger().Debug("including preset file", "path", path, "depth", depth+1)
	return c.parse(f, path, depth+1)
}

func (c *Config) set(key, value string) {
	if _, ok := c.entries[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = value
}

// unquote strips one pair of surrounding double quotes. Unquoted values
// may carry a trailing # comment.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1]
		}
	}
	if i := strings.Index(s, " #"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

// ResolvePath resolves name relative to the directory holding from.
// Absolute names are returned cleaned.
func ResolvePath(from, name string) string {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) || from == "" {
		return filepath.Clean(name)
	}
	return filepath.Join(filepath.Dir(from), name)
}

// Path returns the file the config was read from.
func (c *Config) Path() string {
	return c.path
}

// Keys returns every key in the order it was first defined.
func (c *Config) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Has reports whether key is defined.
func (c *Config) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Set defines or overrides key.
func (c *Config) Set(key, value string) {
	c.set(key, value)
}

// String returns the value of key.
func (c *Config) String(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *Config) typedError(key, kind string, err error) error {
	return fmt.Errorf("%w: %s = %q is not a valid %s: %w", shader.ErrPresetParse, key, c.entries[key], kind, err)
}

// Int returns key as a decimal integer, or def when key is undefined.
func (c *Config) Int(key string, def int) (int, error) {
	v, ok := c.entries[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, c.typedError(key, "integer", err)
	}
	return n, nil
}

// Uint returns key as an unsigned integer written in decimal or with a
// 0x prefix, or def when key is undefined.
func (c *Config) Uint(key string, def uint64) (uint64, error) {
	v, ok := c.entries[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return def, c.typedError(key, "unsigned integer", err)
	}
	return n, nil
}

// Hex returns key as a hexadecimal number with or without a 0x prefix,
// or def when key is undefined.
func (c *Config) Hex(key string, def uint64) (uint64, error) {
	v, ok := c.entries[key]
	if !ok {
		return def, nil
	}
	s := strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return def, c.typedError(key, "hex number", err)
	}
	return n, nil
}

// Float returns key as a float, or def when key is undefined.
func (c *Config) Float(key string, def float64) (float64, error) {
	v, ok := c.entries[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, c.typedError(key, "number", err)
	}
	return f, nil
}

// Bool returns key as a boolean, or def when key is undefined. Besides
// the strconv spellings "yes", "no", "on" and "off" are accepted.
func (c *Config) Bool(key string, def bool) (bool, error) {
	v, ok := c.entries[key]
	if !ok {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, c.typedError(key, "boolean", err)
	}
	return b, nil
}
