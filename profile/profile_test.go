// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package profile

import (
	"strings"
	"testing"
)

// =============================================================================
// Bindings
// =============================================================================

func TestBindings_ConstantBuffer(t *testing.T) {
	b := Bindings{
		ConstantBufferBase: 2,
		ConstantBuffers:    map[uint32]uint32{1: 0},
	}
	tests := []struct {
		index, want uint32
	}{
		{0, 2},
		{1, 0},
		{5, 7},
	}
	for _, tt := range tests {
		if got := b.ConstantBuffer(tt.index); got != tt.want {
			t.Errorf("ConstantBuffer(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestUsage_Referenced(t *testing.T) {
	u := Bindings{ConstantBuffers: map[uint32]uint32{3: 9}}.Track()
	u.ConstantBuffer(3)
	u.ConstantBuffer(1)
	u.ConstantBuffer(3)

	got := u.Referenced()
	want := []Binding{{Index: 1, Slot: 1}, {Index: 3, Slot: 9}}
	if len(got) != len(want) {
		t.Fatalf("Referenced() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Referenced()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUsage_Independent(t *testing.T) {
	b := Bindings{}
	u1, u2 := b.Track(), b.Track()
	u1.ConstantBuffer(4)
	if n := len(u2.Referenced()); n != 0 {
		t.Errorf("second usage saw %d references", n)
	}
}

func TestBindings_ValidateDuplicates(t *testing.T) {
	b := Bindings{ConstantBuffers: map[uint32]uint32{0: 1, 2: 1, 3: 4}}
	err := b.Validate()
	if err == nil || !strings.Contains(err.Error(), "[1]") {
		t.Errorf("Validate() = %v, want duplicate slot 1", err)
	}
}

// =============================================================================
// YAML
// =============================================================================

func TestLoadYAML(t *testing.T) {
	src := `
profile:
  support_float16: true
  support_int64: true
  glsl_version: 460
bindings:
  constant_buffer_base: 1
  constant_buffers:
    0: 0
`
	cfg, err := LoadYAML(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Profile.SupportFloat16 || !cfg.Profile.SupportInt64 || cfg.Profile.HasBrokenSignedOperations {
		t.Errorf("profile = %+v", cfg.Profile)
	}
	if cfg.Profile.GLSLVersion != 460 {
		t.Errorf("GLSLVersion = %d, want 460", cfg.Profile.GLSLVersion)
	}
	if got := cfg.Bindings.ConstantBuffer(0); got != 0 {
		t.Errorf("c0 slot = %d, want 0", got)
	}
	if got := cfg.Bindings.ConstantBuffer(2); got != 3 {
		t.Errorf("c2 slot = %d, want 3", got)
	}
}

func TestLoadYAML_Defaults(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != Default() {
		t.Errorf("empty config = %+v, want %+v", cfg.Profile, Default())
	}
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", "profile:\n  support_fp8: true\n"},
		{"old glsl", "profile:\n  glsl_version: 330\n"},
		{"duplicate slot", "bindings:\n  constant_buffers:\n    0: 5\n    1: 5\n"},
		{"not yaml", "profile: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadYAML(strings.NewReader(tt.src)); err == nil {
				t.Error("LoadYAML succeeded")
			}
		})
	}
}
