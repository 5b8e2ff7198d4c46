// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl provides a GLSL (OpenGL Shading Language) backend for
// translated programs.
//
// Temporaries are typeless: 32-bit values live in uvec4 registers and are
// reinterpreted with uintBitsToFloat and floatBitsToUint at each use.
//
//	uvec4 r0     short value, or a vector of up to four words
//	uint64_t d0  long value (uvec2 without 64-bit integer support)
//	uint f0      boolean, 0u or 1u
//	uvec4 s0     spilled short value
//
// Guest state lives in uint gpr[], uint pred[7] and uvec4 flags.
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(program, profile.Default(), bindings, glsl.DefaultOptions())
//
// # Capabilities
//
// 64-bit integer arithmetic requires Profile.SupportInt64. Packed half
// additions use native half types with Profile.SupportFloat16 and
// packHalf2x16 otherwise. Global memory access is not implemented.
package glsl
