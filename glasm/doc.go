// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glasm emits NVIDIA assembly (GLASM, NV_gpu_program5) from a
// translated program.
//
// Guest registers, predicates and condition flags live in dedicated TEMPs
// (GPRn, PRED0/PRED1 and FLAGS). IR values live in temporaries handed out
// by the register allocator:
//
//	R0.x     short value (32-bit, or up to four 32-bit components)
//	D0.x     long value (64-bit)
//	F0.x     boolean, 0 or -1
//	S0.x     spilled short value
//
// RC and DC are scratch registers used inside single IR operations.
//
// # Basic Usage
//
//	source, info, err := glasm.Compile(program, profile.Default(), bindings, glasm.DefaultOptions())
package glasm
