// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/profile"
	"github.com/gogpu/smrecomp/regalloc"
)

// Version represents a desktop GLSL version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common GLSL versions.
var (
	Version430 = Version{Major: 4, Minor: 30} // OpenGL 4.3 (compute shaders)
	Version440 = Version{Major: 4, Minor: 40} // OpenGL 4.4
	Version450 = Version{Major: 4, Minor: 50} // OpenGL 4.5
	Version460 = Version{Major: 4, Minor: 60} // OpenGL 4.6
)

// VersionFromNumber converts a numeric version such as 450.
func VersionFromNumber(n int) Version {
	return Version{Major: uint8(n / 100), Minor: uint8(n % 100)} //nolint:gosec // G115: validated profile versions fit
}

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// Number returns Major*100+Minor.
func (v Version) Number() int {
	return int(v.Major)*100 + int(v.Minor)
}

// versionLessThan returns true if the numeric version is less than number.
func (v Version) versionLessThan(number int) bool {
	return v.Number() < number
}

// SupportsCompute returns true if this version supports compute shaders.
func (v Version) SupportsCompute() bool {
	return !v.versionLessThan(430)
}

// WriterFlags control output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagDebugInfo adds a comment naming the IR instruction before
	// its statements.
	WriterFlagDebugInfo WriterFlags = 1 << iota
)

// Options configures GLSL code generation.
type Options struct {
	// Registers bounds the temporaries the program may use.
	Registers regalloc.Options

	// WriterFlags control output formatting.
	WriterFlags WriterFlags
}

// DefaultOptions returns options with the full temporary space.
func DefaultOptions() Options {
	return Options{}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// Bindings lists the constant buffers the shader reads.
	Bindings []profile.Binding

	// UsedExtensions lists GLSL extensions required by the shader.
	UsedExtensions []string

	// RequiredVersion is the version written to the #version directive.
	// It may be higher than the profile's if the stage requires it.
	RequiredVersion Version

	// Registers reports the temporaries used per space.
	Registers regalloc.Stats
}

// Compile generates GLSL source code from a translated program. The
// program is not modified.
func Compile(p *ir.Program, prof profile.Profile, bindings profile.Bindings, options Options) (string, TranslationInfo, error) {
	if prof.GLSLVersion == 0 {
		prof.GLSLVersion = profile.DefaultGLSLVersion
	}
	if err := prof.Validate(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	w := newWriter(p, prof, bindings, &options)
	if err := w.writeProgram(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	info := TranslationInfo{
		Bindings:        w.usage.Referenced(),
		UsedExtensions:  w.extensions,
		RequiredVersion: w.requiredVersion,
		Registers:       w.alloc.Stats(),
	}
	return w.String(), info, nil
}
