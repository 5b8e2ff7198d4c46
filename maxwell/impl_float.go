// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

// Rounding modes of float arithmetic and conversions.
const (
	roundNearest = iota
	roundFloor
	roundCeil
	roundTrunc
)

func (t *translator) saturate(v ir.Value, sat bool) ir.Value {
	if sat {
		return t.b.FPSaturate(v)
	}
	return v
}

func (t *translator) fadd(insn Instruction, op Opcode) error {
	if r := fRounding.Get(insn); r != roundNearest {
		return ir.NotImplementedf("FADD", "rounding %d", r)
	}
	if fCC.Bool(insn) {
		return ir.NewNotImplemented("FADD", "CC")
	}
	a := t.b.FPAbsNeg(t.f(insn.SrcA()), fFAddAbsA.Bool(insn), fFAddNegA.Bool(insn))
	c := t.b.FPAbsNeg(t.fsrcB(insn, op), fFAddAbsB.Bool(insn), fFAddNegB.Bool(insn))
	t.setF(insn.Dest(), t.saturate(t.b.FPAdd(a, c), fSat50.Bool(insn)))
	return nil
}

func (t *translator) fadd32i(insn Instruction, op Opcode) error {
	if fF32CC.Bool(insn) {
		return ir.NewNotImplemented("FADD32I", "CC")
	}
	a := t.b.FPAbsNeg(t.f(insn.SrcA()), fFAdd32AbsA.Bool(insn), fFAdd32NegA.Bool(insn))
	c := t.b.FPAbsNeg(t.fsrcB(insn, op), fFAdd32AbsB.Bool(insn), fFAdd32NegB.Bool(insn))
	t.setF(insn.Dest(), t.b.FPAdd(a, c))
	return nil
}

func (t *translator) fmul(insn Instruction, op Opcode) error {
	switch {
	case fRounding.Get(insn) != roundNearest:
		return ir.NotImplementedf("FMUL", "rounding %d", fRounding.Get(insn))
	case fFMulScale.Get(insn) != 0:
		return ir.NotImplementedf("FMUL", "scale %d", fFMulScale.Get(insn))
	case fCC.Bool(insn):
		return ir.NewNotImplemented("FMUL", "CC")
	}
	c := t.b.FPAbsNeg(t.fsrcB(insn, op), false, fFMulNegB.Bool(insn))
	t.setF(insn.Dest(), t.saturate(t.b.FPMul(t.f(insn.SrcA()), c), fSat50.Bool(insn)))
	return nil
}

func (t *translator) fmul32i(insn Instruction, op Opcode) error {
	if fF32CC.Bool(insn) {
		return ir.NewNotImplemented("FMUL32I", "CC")
	}
	result := t.b.FPMul(t.f(insn.SrcA()), t.fsrcB(insn, op))
	t.setF(insn.Dest(), t.saturate(result, fFMul32Sat.Bool(insn)))
	return nil
}

// ffmaOperands returns the B and C operands of a fused multiply-add.
func (t *translator) ffmaOperands(insn Instruction, op Opcode) (b, c ir.Value) {
	switch op.Form() {
	case FormRC:
		return t.f(insn.SrcC()), t.fcbuf(insn)
	case FormCR:
		return t.fcbuf(insn), t.f(insn.SrcC())
	}
	return t.fsrcB(insn, op), t.f(insn.SrcC())
}

func (t *translator) fcbuf(insn Instruction) ir.Value {
	return t.b.BitCast(ir.F32, t.cbuf(insn))
}

func (t *translator) ffma(insn Instruction, op Opcode) error {
	if fCC.Bool(insn) {
		return ir.NewNotImplemented("FFMA", "CC")
	}
	b, c := t.ffmaOperands(insn, op)
	b = t.b.FPAbsNeg(b, false, fFFmaNegB.Bool(insn))
	c = t.b.FPAbsNeg(c, false, fFFmaNegC.Bool(insn))
	result := t.b.FPFma(t.f(insn.SrcA()), b, c)
	t.setF(insn.Dest(), t.saturate(result, fSat50.Bool(insn)))
	return nil
}

func (t *translator) fmnmx(insn Instruction, op Opcode) error {
	if fCC.Bool(insn) {
		return ir.NewNotImplemented("FMNMX", "CC")
	}
	a := t.b.FPAbsNeg(t.f(insn.SrcA()), fFAddAbsA.Bool(insn), fFAddNegA.Bool(insn))
	c := t.b.FPAbsNeg(t.fsrcB(insn, op), fFAddAbsB.Bool(insn), fFAddNegB.Bool(insn))
	pred := t.b.GetPred(ir.Pred(fSelPred.Get(insn)), fSelPredNeg.Bool(insn))
	t.setF(insn.Dest(), t.b.Select(pred, t.b.FPMin(a, c), t.b.FPMax(a, c)))
	return nil
}

// MUFU operations.
const (
	mufuCos = iota
	mufuSin
	mufuEx2
	mufuLg2
	mufuRcp
	mufuRsq
	mufuRcp64H
	mufuRsq64H
	mufuSqrt
)

func (t *translator) mufu(insn Instruction, _ Opcode) error {
	src := t.b.FPAbsNeg(t.f(insn.SrcA()), fMufuAbs.Bool(insn), fMufuNeg.Bool(insn))
	var result ir.Value
	switch mop := fMufuOp.Get(insn); mop {
	case mufuCos:
		result = t.b.FPCos(src)
	case mufuSin:
		result = t.b.FPSin(src)
	case mufuEx2:
		result = t.b.FPExp2(src)
	case mufuLg2:
		result = t.b.FPLog2(src)
	case mufuRcp:
		result = t.b.FPRecip(src)
	case mufuRsq:
		result = t.b.FPRecipSqrt(src)
	case mufuSqrt:
		result = t.b.FPSqrt(src)
	case mufuRcp64H:
		return ir.NewNotImplemented("MUFU", "RCP64H")
	case mufuRsq64H:
		return ir.NewNotImplemented("MUFU", "RSQ64H")
	default:
		return ir.NotImplementedf("MUFU", "operation %d", mop)
	}
	t.setF(insn.Dest(), t.saturate(result, fSat50.Bool(insn)))
	return nil
}

// hadd2 adds packed half pairs. Only the plain H1_H0 swizzle without
// modifiers is translated.
func (t *translator) hadd2(insn Instruction, _ Opcode) error {
	switch {
	case fHAddSwizzleA.Get(insn) != 0 || fHAddSwizzleB.Get(insn) != 0:
		return ir.NewNotImplemented("HADD2", "swizzle")
	case fHAddAbsA.Bool(insn) || fHAddNegA.Bool(insn) || fHAddAbsB.Bool(insn) || fHAddNegB.Bool(insn):
		return ir.NewNotImplemented("HADD2", "modifiers")
	case fHAddSat.Bool(insn):
		return ir.NewNotImplemented("HADD2", "SAT")
	}
	a := t.b.BitCast(ir.F16x2, t.x(insn.SrcA()))
	c := t.b.BitCast(ir.F16x2, t.x(insn.SrcB()))
	t.setX(insn.Dest(), t.b.BitCast(ir.U32, t.b.FPAdd16x2(a, c)))
	return nil
}

// Conversion operand sizes.
const (
	cvtSize32 = 2
)

func (t *translator) round(mode uint64, v ir.Value) ir.Value {
	switch mode {
	case roundFloor:
		return t.b.FPFloor(v)
	case roundCeil:
		return t.b.FPCeil(v)
	case roundTrunc:
		return t.b.FPTrunc(v)
	}
	return t.b.FPRoundEven(v)
}

func (t *translator) f2i(insn Instruction, op Opcode) error {
	switch {
	case fCvtDestSize.Get(insn) != cvtSize32:
		return ir.NotImplementedf("F2I", "destination size %d", fCvtDestSize.Get(insn))
	case fCvtSrcSize.Get(insn) != cvtSize32:
		return ir.NotImplementedf("F2I", "source size %d", fCvtSrcSize.Get(insn))
	case fCC.Bool(insn):
		return ir.NewNotImplemented("F2I", "CC")
	}
	src := t.b.FPAbsNeg(t.fsrcB(insn, op), fCvtAbs.Bool(insn), fCvtNeg.Bool(insn))
	rounded := t.round(fRounding.Get(insn), src)
	t.setX(insn.Dest(), t.b.ConvertFToI(rounded, fF2ISigned.Bool(insn)))
	return nil
}

func (t *translator) i2f(insn Instruction, op Opcode) error {
	switch {
	case fCvtDestSize.Get(insn) != cvtSize32:
		return ir.NotImplementedf("I2F", "destination size %d", fCvtDestSize.Get(insn))
	case fCvtSrcSize.Get(insn) != cvtSize32:
		return ir.NotImplementedf("I2F", "source size %d", fCvtSrcSize.Get(insn))
	case fI2FSelector.Get(insn) != 0:
		return ir.NotImplementedf("I2F", "selector %d", fI2FSelector.Get(insn))
	case fRounding.Get(insn) != roundNearest:
		return ir.NotImplementedf("I2F", "rounding %d", fRounding.Get(insn))
	case fCC.Bool(insn):
		return ir.NewNotImplemented("I2F", "CC")
	}
	signed := fI2FSigned.Bool(insn)
	src := t.srcB(insn, op)
	if fCvtAbs.Bool(insn) && signed {
		src = t.b.IAbs(src)
	}
	if fCvtNeg.Bool(insn) {
		src = t.ineg(src)
	}
	t.setF(insn.Dest(), t.b.ConvertIToF(src, signed))
	return nil
}
