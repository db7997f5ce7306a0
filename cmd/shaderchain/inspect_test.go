package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    shader.Size
		wantErr bool
	}{
		{"256x224", shader.Size{Width: 256, Height: 224}, false},
		{" 1920X1080 ", shader.Size{Width: 1920, Height: 1080}, false},
		{"256", shader.Size{}, true},
		{"x224", shader.Size{}, true},
		{"256x", shader.Size{}, true},
		{"0x224", shader.Size{}, true},
		{"-5x10", shader.Size{}, true},
		{"axb", shader.Size{}, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if _, err := parseLogLevel(s); err != nil {
			t.Errorf("parseLogLevel(%q) error: %v", s, err)
		}
	}
	if _, err := parseLogLevel("loud"); err == nil {
		t.Error("parseLogLevel(loud) succeeded")
	}
}

func writePreset(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.cgp")
	src := "shaders = 1\nshader0 = a.kage\nscale_type0 = source\nscale0 = 2\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}
	return path
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	presetPath := writePreset(t, dir)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{
		"--config", filepath.Join(dir, "config.json"),
		"--log-level", "error",
		"inspect", presetPath,
		"--input", "256x224",
		"--viewport", "800x600",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"viewport: 686x600 at 57,0",
		"luts: 0  variables: 0",
		"source 2x",
		"(passthrough)",
		"256x256",
		"512x512",
		"686x600",
		"screen",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if lines := strings.Count(got, "\n"); lines != 8 {
		t.Errorf("output has %d lines, want 8:\n%s", lines, got)
	}
}

func TestInspectScaleFlag(t *testing.T) {
	dir := t.TempDir()
	presetPath := writePreset(t, dir)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{
		"--config", filepath.Join(dir, "config.json"),
		"--log-level", "error",
		"inspect", presetPath, "--scale", "2",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"512x512", "1024x1024"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q for scale 2:\n%s", want, out.String())
		}
	}
}

func TestInspectErrors(t *testing.T) {
	dir := t.TempDir()
	presetPath := writePreset(t, dir)
	config := filepath.Join(dir, "config.json")

	tests := []struct {
		name string
		args []string
	}{
		{"bad input", []string{"inspect", presetPath, "--input", "big"}},
		{"bad viewport", []string{"inspect", presetPath, "--viewport", "0x0"}},
		{"zero scale", []string{"inspect", presetPath, "--scale", "0"}},
		{"missing preset", []string{"inspect", filepath.Join(dir, "missing.cgp")}},
		{"no preset", []string{"inspect"}},
		{"bad log level", []string{"--log-level", "loud", "inspect", presetPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs(append([]string{"--config", config}, tt.args...))
			if err := root.Execute(); err == nil {
				t.Error("Execute succeeded, want error")
			}
		})
	}
}
