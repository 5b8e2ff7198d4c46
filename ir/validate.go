// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Inst *int // instruction ID
	Node int  // syntax node index, -1 when not applicable
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Inst != nil {
		return fmt.Sprintf("instruction %%%d: %s", *e.Inst, e.Message)
	}
	if e.Node >= 0 {
		return fmt.Sprintf("syntax node %d: %s", e.Node, e.Message)
	}
	return e.Message
}

// Validator validates IR programs.
type Validator struct {
	program *Program
	errors  []ValidationError
	seen    map[*Inst]bool
}

// Validate checks that no operand references a later instruction, that
// operand types match the opcode table and that conditional regions nest.
// Returns validation errors if any, or nil if the program is valid.
func Validate(program *Program) ([]ValidationError, error) {
	if program == nil {
		return nil, fmt.Errorf("program is nil")
	}

	v := &Validator{
		program: program,
		errors:  make([]ValidationError, 0),
		seen:    make(map[*Inst]bool, program.NumInsts()),
	}

	v.ValidateProgram()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateProgram walks the syntax list in program order.
func (v *Validator) ValidateProgram() {
	depth := 0
	for i, node := range v.program.Syntax {
		switch node.Kind {
		case NodeBlock:
			if node.Block == nil {
				v.addNodeError(i, "block node without block")
				continue
			}
			for _, inst := range node.Block.insts {
				v.validateInst(inst)
			}
		case NodeIf:
			depth++
			if node.Cond.Type() != U1 {
				v.addNodeError(i, fmt.Sprintf("if condition has type %s", node.Cond.Type()))
			}
			v.checkOperand(node.Cond, func(msg string) { v.addNodeError(i, msg) })
		case NodeEndIf:
			depth--
			if depth < 0 {
				v.addNodeError(i, "endif without if")
				depth = 0
			}
		}
	}
	if depth != 0 {
		v.addNodeError(len(v.program.Syntax)-1, fmt.Sprintf("%d unterminated if regions", depth))
	}
}

func (v *Validator) validateInst(inst *Inst) {
	if inst.NumArgs() != inst.op.NumArgs() {
		v.addInstError(inst, fmt.Sprintf("%s has %d operands, want %d", inst.op, inst.NumArgs(), inst.op.NumArgs()))
	} else if inst.op != OpIdentity {
		for n, a := range inst.args {
			if want := inst.op.ArgType(n); !Compatible(want, a.Type()) {
				v.addInstError(inst, fmt.Sprintf("operand %d has type %s, want %s", n, a.Type(), want))
			}
		}
	}
	for _, a := range inst.args {
		v.checkOperand(a, func(msg string) { v.addInstError(inst, msg) })
	}
	v.seen[inst] = true
}

func (v *Validator) checkOperand(a Value, report func(string)) {
	ref := a.Inst()
	if ref == nil {
		return
	}
	if !v.seen[ref] {
		report(fmt.Sprintf("operand %%%d is not defined before its use", ref.id))
	}
}

func (v *Validator) addInstError(inst *Inst, msg string) {
	id := inst.id
	v.errors = append(v.errors, ValidationError{Message: msg, Inst: &id, Node: -1})
}

func (v *Validator) addNodeError(node int, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Node: node})
}
