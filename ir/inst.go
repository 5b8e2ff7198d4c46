// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Flags are per-instruction modifiers.
type Flags uint32

const (
	// FlagSetsCC marks an instruction whose flag results are read through
	// associated pseudo-operations.
	FlagSetsCC Flags = 1 << iota

	// FlagSigned marks signed variants where the opcode alone is ambiguous.
	FlagSigned
)

// Inst is one IR operation.
type Inst struct {
	op     Opcode
	args   []Value
	flags  Flags
	id     int
	uses   int
	block  *Block
	pseudo [4]*Inst
}

// Opcode returns the operation kind.
func (i *Inst) Opcode() Opcode { return i.op }

// ID returns the instruction number, unique and increasing in program order.
func (i *Inst) ID() int { return i.id }

// NumArgs returns the number of operands.
func (i *Inst) NumArgs() int { return len(i.args) }

// Arg returns operand n.
func (i *Inst) Arg(n int) Value { return i.args[n] }

// Args returns the operands. The slice must not be modified.
func (i *Inst) Args() []Value { return i.args }

// Flags returns the instruction flags.
func (i *Inst) Flags() Flags { return i.flags }

// HasFlag reports whether f is set.
func (i *Inst) HasFlag(f Flags) bool { return i.flags&f != 0 }

// SetFlags replaces the instruction flags.
func (i *Inst) SetFlags(f Flags) { i.flags = f }

// Uses returns the number of live references to the result.
func (i *Inst) Uses() int { return i.uses }

// HasUses reports whether any instruction or syntax node references the result.
func (i *Inst) HasUses() bool { return i.uses > 0 }

// Block returns the block containing the instruction.
func (i *Inst) Block() *Block { return i.block }

// Type returns the result type. Identity takes the type of its operand.
func (i *Inst) Type() Type {
	if i.op == OpIdentity {
		return i.args[0].Type()
	}
	return i.op.ResultType()
}

// AssociatedPseudoOp returns the pseudo-operation of kind op reading this
// instruction, or nil.
func (i *Inst) AssociatedPseudoOp(op Opcode) *Inst {
	if !op.IsPseudo() {
		return nil
	}
	return i.pseudo[pseudoIndex(op)]
}

// HasAssociatedPseudoOp reports whether any pseudo-operation reads this
// instruction.
func (i *Inst) HasAssociatedPseudoOp() bool {
	for _, p := range i.pseudo {
		if p != nil {
			return true
		}
	}
	return false
}

// SetArg replaces operand n, keeping use counts in sync.
func (i *Inst) SetArg(n int, v Value) {
	undoUse(i.args[n])
	i.args[n] = v
	use(v)
}

// ReplaceUsesWith turns the instruction into an Identity of v. Existing
// references observe v through Value.Resolve.
func (i *Inst) ReplaceUsesWith(v Value) {
	i.clearArgs()
	i.op = OpIdentity
	i.flags = 0
	i.args = []Value{v}
	use(v)
}

// Invalidate drops all operands. The caller removes the instruction from
// its block.
func (i *Inst) Invalidate() {
	i.clearArgs()
	i.args = nil
}

func (i *Inst) clearArgs() {
	if i.op.IsPseudo() && len(i.args) > 0 {
		if producer := i.args[0].Inst(); producer != nil && producer.pseudo[pseudoIndex(i.op)] == i {
			producer.pseudo[pseudoIndex(i.op)] = nil
		}
	}
	for _, a := range i.args {
		undoUse(a)
	}
}

func use(v Value) {
	if inst := v.Inst(); inst != nil {
		inst.uses++
	}
}

func undoUse(v Value) {
	if inst := v.Inst(); inst != nil {
		inst.uses--
	}
}
