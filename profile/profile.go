// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package profile describes the host a translated program is emitted for:
// which optional features the backend may rely on and how guest resource
// indices map to backend binding slots.
//
// A Profile and a Bindings table are plain values. They are shared read-only
// between concurrent translations; per-translation state such as the set of
// referenced bindings lives in a Usage.
package profile

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// DefaultGLSLVersion is the GLSL version used when a profile leaves it unset.
const DefaultGLSLVersion = 450

// Profile holds host capability flags.
type Profile struct {
	// SupportFloat16 allows native half precision arithmetic.
	SupportFloat16 bool `yaml:"support_float16"`

	// SupportInt64 allows 64-bit integer types.
	SupportInt64 bool `yaml:"support_int64"`

	// HasBrokenSignedOperations makes GLASM emit unsigned variants of
	// bitwise operations. Some drivers miscompile the signed forms.
	HasBrokenSignedOperations bool `yaml:"has_broken_signed_operations"`

	// GLSLVersion is the numeric GLSL version, e.g. 450.
	GLSLVersion int `yaml:"glsl_version"`
}

// Default returns a conservative profile.
func Default() Profile {
	return Profile{GLSLVersion: DefaultGLSLVersion}
}

// Validate checks the profile for values no backend can honor.
func (p Profile) Validate() error {
	if p.GLSLVersion != 0 && p.GLSLVersion < 430 {
		return fmt.Errorf("profile: GLSL version %d has no compute or storage support", p.GLSLVersion)
	}
	return nil
}

// Bindings maps guest constant buffer indices to backend binding slots.
// Indices without an override map to ConstantBufferBase plus the index.
type Bindings struct {
	ConstantBufferBase uint32            `yaml:"constant_buffer_base"`
	ConstantBuffers    map[uint32]uint32 `yaml:"constant_buffers"`
}

// ConstantBuffer returns the slot of guest constant buffer index.
func (b Bindings) ConstantBuffer(index uint32) uint32 {
	if slot, ok := b.ConstantBuffers[index]; ok {
		return slot
	}
	return b.ConstantBufferBase + index
}

// Validate reports overrides that map two guest buffers to one slot.
func (b Bindings) Validate() error {
	slots := lo.Values(b.ConstantBuffers)
	if len(lo.Uniq(slots)) == len(slots) {
		return nil
	}
	dups := lo.FindDuplicates(slots)
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return fmt.Errorf("profile: constant buffer slots %v assigned more than once", dups)
}

// Binding is a guest constant buffer index resolved to its slot.
type Binding struct {
	Index uint32
	Slot  uint32
}

// Usage records which bindings one translation references.
type Usage struct {
	bindings Bindings
	used     map[uint32]uint32
}

// Track returns an empty Usage over b.
func (b Bindings) Track() *Usage {
	return &Usage{bindings: b, used: make(map[uint32]uint32)}
}

// ConstantBuffer resolves index and records the reference.
func (u *Usage) ConstantBuffer(index uint32) uint32 {
	slot := u.bindings.ConstantBuffer(index)
	u.used[index] = slot
	return slot
}

// Referenced returns the referenced bindings ordered by guest index.
func (u *Usage) Referenced() []Binding {
	indices := lo.Keys(u.used)
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return lo.Map(indices, func(index uint32, _ int) Binding {
		return Binding{Index: index, Slot: u.used[index]}
	})
}

// Config is the on-disk form of a profile and its bindings.
type Config struct {
	Profile  Profile  `yaml:"profile"`
	Bindings Bindings `yaml:"bindings"`
}

// LoadYAML decodes a Config. Unknown keys are rejected.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Config{Profile: Default()}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("profile: %w", err)
	}
	if cfg.Profile.GLSLVersion == 0 {
		cfg.Profile.GLSLVersion = DefaultGLSLVersion
	}
	if err := cfg.Profile.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.Bindings.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a Config from path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("profile: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}
