package ebitenchain

import (
	"testing"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
)

func TestFrameCount(t *testing.T) {
	tests := []struct {
		frame uint64
		mod   uint
		want  uint64
	}{
		{0, 0, 0},
		{1234, 0, 1234},
		{7, 2, 1},
		{8, 2, 0},
		{100, 60, 40},
	}
	for _, tt := range tests {
		if got := frameCount(tt.frame, tt.mod); got != tt.want {
			t.Errorf("frameCount(%d, %d) = %d, want %d", tt.frame, tt.mod, got, tt.want)
		}
	}
}

func TestUniformName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hp", "Hp"},
		{"Hp", "Hp"},
		{"playerX", "PlayerX"},
		{"", ""},
		{"éclair", "Éclair"},
	}
	for _, tt := range tests {
		if got := uniformName(tt.in); got != tt.want {
			t.Errorf("uniformName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFillUniforms(t *testing.T) {
	u := map[string]any{"Stale": float32(9)}
	p := &pass{linear: true, frameMod: 4}
	sizes := passSizes{inW: 256, inH: 224, texW: 256, texH: 256, outW: 800, outH: 600}
	lutLinear := []float32{1, 0, 0}
	tracked := []shader.Uniform{{ID: "hp", Value: 42}}

	fillUniforms(u, 10, p, sizes, lutLinear, tracked)

	if _, ok := u["Stale"]; ok {
		t.Error("stale uniform kept")
	}
	if got := u["FrameCount"]; got != float32(2) {
		t.Errorf("FrameCount = %v, want 2", got)
	}
	if got := u["FilterLinear"]; got != float32(1) {
		t.Errorf("FilterLinear = %v, want 1", got)
	}
	if got := u["Hp"]; got != float32(42) {
		t.Errorf("Hp = %v, want 42", got)
	}
	checkVec := func(name string, want ...float32) {
		t.Helper()
		got, ok := u[name].([]float32)
		if !ok || len(got) != len(want) {
			t.Fatalf("%s = %v, want %v", name, u[name], want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s = %v, want %v", name, got, want)
				return
			}
		}
	}
	checkVec("InputSize", 256, 224)
	checkVec("TextureSize", 256, 256)
	checkVec("OutputSize", 800, 600)
	checkVec("LutLinear", 1, 0, 0)

	p.linear = false
	fillUniforms(u, 10, p, sizes, lutLinear, nil)
	if got := u["FilterLinear"]; got != float32(0) {
		t.Errorf("FilterLinear = %v, want 0", got)
	}
	if _, ok := u["Hp"]; ok {
		t.Error("tracked uniform kept after tracker values went away")
	}
}
