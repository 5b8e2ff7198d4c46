// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ir defines the intermediate representation used by smrecomp.
//
// The IR is a typed, SSA-like instruction graph:
//   - Value: a reference to an instruction result, an immediate or an
//     undefined placeholder
//   - Inst: one operation from the closed Opcode enumeration
//   - Program: blocks of instructions arranged in a structured syntax list
//     (Block, If, EndIf, Return)
//
// Values referencing an instruction always point to an instruction that
// appears earlier in program order. Guest state (general purpose registers,
// predicates and condition flags) is accessed through explicit Get and Set
// operations, so no SSA value ever crosses a conditional region.
//
// # Translation Pipeline
//
//	guest words → maxwell.Translate → Program → opt passes → glasm/glsl
//
// Programs are built with a Builder, which checks operand types against
// the opcode table and folds trivially constant logic.
package ir
