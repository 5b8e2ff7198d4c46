// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

func (t *translator) x(r ir.Reg) ir.Value { return t.b.GetRegister(r) }

func (t *translator) setX(r ir.Reg, v ir.Value) { t.b.SetRegister(r, v) }

// f reads a register as a float.
func (t *translator) f(r ir.Reg) ir.Value {
	if r == ir.RZ {
		return ir.ImmF32(0)
	}
	return t.b.BitCast(ir.F32, t.b.GetRegister(r))
}

// setF writes a float to a register.
func (t *translator) setF(r ir.Reg, v ir.Value) {
	if r == ir.RZ {
		return
	}
	t.b.SetRegister(r, t.b.BitCast(ir.U32, v))
}

func (t *translator) cbuf(insn Instruction) ir.Value {
	index, offset := insn.Cbuf()
	return t.b.GetCbuf(ir.Imm32(index), ir.Imm32(offset))
}

// srcB returns the integer B operand of an ALU instruction.
func (t *translator) srcB(insn Instruction, op Opcode) ir.Value {
	switch op.Form() {
	case FormReg:
		return t.x(insn.SrcB())
	case FormRC:
		return t.x(insn.SrcC())
	case FormCbuf, FormCR:
		return t.cbuf(insn)
	case FormImm:
		return ir.Imm32(insn.Imm20())
	case FormImm32:
		return ir.Imm32(insn.Imm32())
	}
	panic("maxwell: " + op.String() + " has no B operand")
}

// fsrcB returns the float B operand of an ALU instruction.
func (t *translator) fsrcB(insn Instruction, op Opcode) ir.Value {
	switch op.Form() {
	case FormImm:
		return ir.ImmF32Bits(insn.FloatImm20())
	case FormImm32:
		return ir.ImmF32Bits(insn.Imm32())
	}
	v := t.srcB(insn, op)
	if v.IsImmediate() {
		return ir.ImmF32Bits(v.U32())
	}
	return t.b.BitCast(ir.F32, v)
}

// resetCO clears the carry and overflow flags.
func (t *translator) resetCO() {
	t.b.SetCFlag(ir.Imm1(false))
	t.b.SetOFlag(ir.Imm1(false))
}

// setZS sets the zero and sign flags from a 32-bit integer result.
func (t *translator) setZS(result ir.Value) {
	t.b.SetZFlag(t.b.IEqual(result, ir.Imm32(0)))
	t.b.SetSFlag(t.b.ILessThan(result, ir.Imm32(0), true))
}

// predOp combines two predicates with a boolean operation.
func (t *translator) predOp(bop uint64, a, c ir.Value) (ir.Value, error) {
	switch bop {
	case 0:
		return t.b.LogicalAnd(a, c), nil
	case 1:
		return t.b.LogicalOr(a, c), nil
	case 2:
		return t.b.LogicalXor(a, c), nil
	}
	return ir.Value{}, ir.NotImplementedf("PredicateOperation", "%d", bop)
}
