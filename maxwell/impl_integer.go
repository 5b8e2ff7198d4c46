// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

func (t *translator) ineg(v ir.Value) ir.Value {
	if v.IsImmediate() {
		return ir.Imm32(-v.U32())
	}
	return t.b.INeg(v)
}

// integerAdd adds two operands, setting all four condition flags when cc
// is set.
func (t *translator) integerAdd(dest ir.Reg, a, c ir.Value, negA, negB, cc bool) {
	if negA {
		a = t.ineg(a)
	}
	if negB {
		c = t.ineg(c)
	}
	result := t.b.IAdd(a, c)
	if cc {
		t.b.SetZFlag(t.b.GetZeroFromOp(result))
		t.b.SetSFlag(t.b.GetSignFromOp(result))
		t.b.SetCFlag(t.b.GetCarryFromOp(result))
		t.b.SetOFlag(t.b.GetOverflowFromOp(result))
	}
	t.setX(dest, result)
}

func (t *translator) iadd(insn Instruction, op Opcode) error {
	switch {
	case fIAddSat.Bool(insn):
		return ir.NewNotImplemented("IADD", "SAT")
	case fIAddX.Bool(insn):
		return ir.NewNotImplemented("IADD", "X")
	case fIAddNegA.Bool(insn) && fIAddNegB.Bool(insn):
		return ir.NewNotImplemented("IADD", "PO")
	}
	t.integerAdd(insn.Dest(), t.x(insn.SrcA()), t.srcB(insn, op),
		fIAddNegA.Bool(insn), fIAddNegB.Bool(insn), fCC.Bool(insn))
	return nil
}

func (t *translator) iadd32i(insn Instruction, op Opcode) error {
	switch {
	case fIAdd32Sat.Bool(insn):
		return ir.NewNotImplemented("IADD32I", "SAT")
	case fIAdd32X.Bool(insn):
		return ir.NewNotImplemented("IADD32I", "X")
	}
	t.integerAdd(insn.Dest(), t.x(insn.SrcA()), t.srcB(insn, op),
		fIAdd32NegA.Bool(insn), false, fIAdd32CC.Bool(insn))
	return nil
}

func (t *translator) iscadd(insn Instruction, op Opcode) error {
	negA, negB := fIAddNegA.Bool(insn), fIAddNegB.Bool(insn)
	if negA && negB {
		return ir.NewNotImplemented("ISCADD", "PO")
	}
	a := t.x(insn.SrcA())
	if negA {
		a = t.ineg(a)
	}
	if shift := uint32(fIScaddShift.Get(insn)); shift != 0 {
		a = t.b.ShiftLeftLogical(a, ir.Imm32(shift))
	}
	t.integerAdd(insn.Dest(), a, t.srcB(insn, op), false, negB, fCC.Bool(insn))
	return nil
}

func (t *translator) imnmx(insn Instruction, op Opcode) error {
	if mode := fIMnmxMode.Get(insn); mode != 0 {
		return ir.NotImplementedf("IMNMX", "mode %d", mode)
	}
	if fCC.Bool(insn) {
		return ir.NewNotImplemented("IMNMX", "CC")
	}
	signed := fIsSigned48.Bool(insn)
	a, c := t.x(insn.SrcA()), t.srcB(insn, op)
	pred := t.b.GetPred(ir.Pred(fSelPred.Get(insn)), fSelPredNeg.Bool(insn))
	lo := t.b.IMin(a, c, signed)
	hi := t.b.IMax(a, c, signed)
	t.setX(insn.Dest(), t.b.Select(pred, lo, hi))
	return nil
}

// bfe extracts a bit field. The B operand packs the offset in bits 0-7 and
// the count in bits 8-15.
func (t *translator) bfe(insn Instruction, op Opcode) error {
	if fBrev.Bool(insn) {
		return ir.NewNotImplemented("BFE", "BREV")
	}
	signed := fIsSigned48.Bool(insn)
	base := t.x(insn.SrcA())
	src := t.srcB(insn, op)

	var result ir.Value
	if src.IsImmediate() {
		offset := src.U32() & 0xff
		count := (src.U32() >> 8) & 0xff
		result = t.bfeStatic(base, offset, count, signed)
	} else {
		result = t.bfeDynamic(base, src, signed)
	}
	t.setX(insn.Dest(), result)
	if fCC.Bool(insn) {
		t.setZS(result)
		t.resetCO()
	}
	return nil
}

func (t *translator) bfeStatic(base ir.Value, offset, count uint32, signed bool) ir.Value {
	switch {
	case count == 0:
		return ir.Imm32(0)
	case offset >= 32 && signed:
		return t.b.ShiftRightArithmetic(base, ir.Imm32(31))
	case offset >= 32:
		return ir.Imm32(0)
	}
	result := t.b.BitFieldExtract(base, ir.Imm32(offset), ir.Imm32(count), signed)
	if signed && offset+count >= 32 {
		sign := t.b.BitFieldExtract(base, ir.Imm32(31), ir.Imm32(1), false)
		result = t.b.BitFieldInsert(result, sign, ir.Imm32(31), ir.Imm32(1))
	}
	return result
}

func (t *translator) bfeDynamic(base, src ir.Value, signed bool) ir.Value {
	zero := ir.Imm32(0)
	one := ir.Imm32(1)
	offset := t.b.BitFieldExtract(src, zero, ir.Imm32(8), false)
	count := t.b.BitFieldExtract(src, ir.Imm32(8), ir.Imm32(8), false)

	zeroCount := t.b.IEqual(count, zero)
	result := t.b.BitFieldExtract(base, offset, count, signed)
	if signed {
		exceed := t.b.IGreaterThanEqual(t.b.IAdd(offset, count), ir.Imm32(32), false)
		replicate := t.b.IGreaterThanEqual(offset, ir.Imm32(32), false)
		replicated := t.b.ShiftRightArithmetic(base, ir.Imm32(31))
		sign := t.b.BitFieldExtract(base, ir.Imm32(31), one, false)
		result = t.b.Select(replicate, replicated, result)
		result = t.b.Select(exceed, t.b.BitFieldInsert(result, sign, ir.Imm32(31), one), result)
	}
	return t.b.Select(zeroCount, zero, result)
}

func (t *translator) sel(insn Instruction, op Opcode) error {
	pred := t.b.GetPred(ir.Pred(fSelPred.Get(insn)), fSelPredNeg.Bool(insn))
	t.setX(insn.Dest(), t.b.Select(pred, t.x(insn.SrcA()), t.srcB(insn, op)))
	return nil
}

func (t *translator) shl(insn Instruction, op Opcode) error {
	switch {
	case fShiftX.Bool(insn):
		return ir.NewNotImplemented("SHL", "X")
	case fCC.Bool(insn):
		return ir.NewNotImplemented("SHL", "CC")
	}
	base := t.x(insn.SrcA())
	shift := t.srcB(insn, op)
	wrap := fShiftWrap.Bool(insn)

	var result ir.Value
	switch {
	case shift.IsImmediate() && wrap:
		result = t.b.ShiftLeftLogical(base, ir.Imm32(shift.U32()&31))
	case shift.IsImmediate() && shift.U32() >= 32:
		result = ir.Imm32(0)
	case shift.IsImmediate():
		result = t.b.ShiftLeftLogical(base, shift)
	case wrap:
		result = t.b.ShiftLeftLogical(base, t.b.BitwiseAnd(shift, ir.Imm32(31)))
	default:
		clamped := t.b.IGreaterThanEqual(shift, ir.Imm32(32), false)
		result = t.b.Select(clamped, ir.Imm32(0), t.b.ShiftLeftLogical(base, shift))
	}
	t.setX(insn.Dest(), result)
	return nil
}

func (t *translator) shr(insn Instruction, op Opcode) error {
	switch {
	case fBrev.Bool(insn):
		return ir.NewNotImplemented("SHR", "BREV")
	case fShiftX.Bool(insn):
		return ir.NewNotImplemented("SHR", "X")
	case fCC.Bool(insn):
		return ir.NewNotImplemented("SHR", "CC")
	}
	signed := fIsSigned48.Bool(insn)
	base := t.x(insn.SrcA())
	shift := t.srcB(insn, op)
	shiftBy := func(s ir.Value) ir.Value {
		if signed {
			return t.b.ShiftRightArithmetic(base, s)
		}
		return t.b.ShiftRightLogical(base, s)
	}
	// Clamped shifts by 32 or more leave only sign bits.
	saturated := func() ir.Value {
		if signed {
			return t.b.ShiftRightArithmetic(base, ir.Imm32(31))
		}
		return ir.Imm32(0)
	}

	var result ir.Value
	switch {
	case shift.IsImmediate() && fShiftWrap.Bool(insn):
		result = shiftBy(ir.Imm32(shift.U32() & 31))
	case shift.IsImmediate() && shift.U32() >= 32:
		result = saturated()
	case shift.IsImmediate():
		result = shiftBy(shift)
	case fShiftWrap.Bool(insn):
		result = shiftBy(t.b.BitwiseAnd(shift, ir.Imm32(31)))
	default:
		clamped := t.b.IGreaterThanEqual(shift, ir.Imm32(32), false)
		result = t.b.Select(clamped, saturated(), shiftBy(shift))
	}
	t.setX(insn.Dest(), result)
	return nil
}

func (t *translator) mov(insn Instruction, op Opcode) error {
	if mask := fMovMask.Get(insn); mask != 0xf {
		return ir.NotImplementedf("MOV", "mask %#x", mask)
	}
	t.setX(insn.Dest(), t.srcB(insn, op))
	return nil
}

func (t *translator) mov32i(insn Instruction, op Opcode) error {
	if mask := fMov32Mask.Get(insn); mask != 0xf {
		return ir.NotImplementedf("MOV32I", "mask %#x", mask)
	}
	t.setX(insn.Dest(), t.srcB(insn, op))
	return nil
}
