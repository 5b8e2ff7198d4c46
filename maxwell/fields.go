// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

// Instruction is a raw 64-bit guest instruction word.
type Instruction uint64

// Field describes a bit range of an instruction word.
type Field struct {
	Name   string
	Offset uint8
	Width  uint8
	Signed bool
}

func (f Field) mask() uint64 {
	if f.Width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << f.Width) - 1
}

// Extract returns the field value of word, sign-extended for signed fields.
func (f Field) Extract(word uint64) int64 {
	raw := (word >> f.Offset) & f.mask()
	if f.Signed && f.Width < 64 && raw&(uint64(1)<<(f.Width-1)) != 0 {
		raw |= ^f.mask()
	}
	return int64(raw)
}

// Insert returns word with the field replaced by v, truncated to the field width.
func (f Field) Insert(word uint64, v int64) uint64 {
	m := f.mask() << f.Offset
	return word&^m | (uint64(v)<<f.Offset)&m
}

// Get returns the unsigned field value of insn.
func (f Field) Get(insn Instruction) uint64 {
	return (uint64(insn) >> f.Offset) & f.mask()
}

// Int returns the field value of insn, sign-extended when the field is signed.
func (f Field) Int(insn Instruction) int64 { return f.Extract(uint64(insn)) }

// Bool reports whether a one-bit field is set.
func (f Field) Bool(insn Instruction) bool { return f.Get(insn) != 0 }

// Common operand fields.
var (
	fDest       = Field{Name: "dest", Offset: 0, Width: 8}
	fSrcA       = Field{Name: "src_a", Offset: 8, Width: 8}
	fPred       = Field{Name: "pred", Offset: 16, Width: 3}
	fPredNeg    = Field{Name: "pred_neg", Offset: 19, Width: 1}
	fSrcB       = Field{Name: "src_b", Offset: 20, Width: 8}
	fSrcC       = Field{Name: "src_c", Offset: 39, Width: 8}
	fCbufOffset = Field{Name: "cbuf_offset", Offset: 20, Width: 14}
	fCbufIndex  = Field{Name: "cbuf_index", Offset: 34, Width: 5}
	fImm20      = Field{Name: "imm20", Offset: 20, Width: 19}
	fImm20Neg   = Field{Name: "imm20_neg", Offset: 56, Width: 1}
	fImm32      = Field{Name: "imm32", Offset: 20, Width: 32}
	fCC         = Field{Name: "cc", Offset: 47, Width: 1}
	fFlowTest   = Field{Name: "flow_test", Offset: 0, Width: 5}
)

// Family-specific fields.
var (
	// IADD
	fIAddX    = Field{Name: "x", Offset: 43, Width: 1}
	fIAddNegB = Field{Name: "neg_b", Offset: 48, Width: 1}
	fIAddNegA = Field{Name: "neg_a", Offset: 49, Width: 1}
	fIAddSat  = Field{Name: "sat", Offset: 50, Width: 1}

	// IADD32I
	fIAdd32CC   = Field{Name: "cc", Offset: 52, Width: 1}
	fIAdd32X    = Field{Name: "x", Offset: 53, Width: 1}
	fIAdd32Sat  = Field{Name: "sat", Offset: 54, Width: 1}
	fIAdd32NegA = Field{Name: "neg_a", Offset: 56, Width: 1}

	// ISCADD
	fIScaddShift = Field{Name: "shift", Offset: 39, Width: 5}

	// IMNMX, SEL, FMNMX
	fSelPred    = Field{Name: "sel_pred", Offset: 39, Width: 3}
	fSelPredNeg = Field{Name: "sel_pred_neg", Offset: 42, Width: 1}
	fIMnmxMode  = Field{Name: "mode", Offset: 43, Width: 2}
	fIsSigned48 = Field{Name: "signed", Offset: 48, Width: 1}

	// BFE, SHR
	fBrev = Field{Name: "brev", Offset: 40, Width: 1}

	// SHL, SHR
	fShiftWrap = Field{Name: "wrap", Offset: 39, Width: 1}
	fShiftX    = Field{Name: "x", Offset: 43, Width: 1}

	// MOV
	fMovMask   = Field{Name: "mask", Offset: 39, Width: 4}
	fMov32Mask = Field{Name: "mask", Offset: 12, Width: 4}

	// LOP
	fLopInvA     = Field{Name: "invert_a", Offset: 39, Width: 1}
	fLopInvB     = Field{Name: "invert_b", Offset: 40, Width: 1}
	fLopOp       = Field{Name: "op", Offset: 41, Width: 2}
	fLopX        = Field{Name: "x", Offset: 43, Width: 1}
	fLopPredMode = Field{Name: "pred_result", Offset: 44, Width: 2}
	fLopDestPred = Field{Name: "dest_pred", Offset: 48, Width: 3}

	// LOP32I
	fLop32CC   = Field{Name: "cc", Offset: 52, Width: 1}
	fLop32Op   = Field{Name: "op", Offset: 53, Width: 2}
	fLop32InvA = Field{Name: "invert_a", Offset: 55, Width: 1}
	fLop32InvB = Field{Name: "invert_b", Offset: 56, Width: 1}
	fLop32X    = Field{Name: "x", Offset: 57, Width: 1}

	// ISETP, ISET, FSETP, PSETP
	fDestPredB   = Field{Name: "dest_pred_b", Offset: 0, Width: 3}
	fDestPredA   = Field{Name: "dest_pred_a", Offset: 3, Width: 3}
	fBopPred     = Field{Name: "bop_pred", Offset: 39, Width: 3}
	fBopPredNeg  = Field{Name: "bop_pred_neg", Offset: 42, Width: 1}
	fSetX        = Field{Name: "x", Offset: 43, Width: 1}
	fISetBF      = Field{Name: "bf", Offset: 44, Width: 1}
	fBop         = Field{Name: "bop", Offset: 45, Width: 2}
	fISetCompare = Field{Name: "compare", Offset: 49, Width: 3}

	fFSetNegB    = Field{Name: "neg_b", Offset: 6, Width: 1}
	fFSetAbsA    = Field{Name: "abs_a", Offset: 7, Width: 1}
	fFSetNegA    = Field{Name: "neg_a", Offset: 43, Width: 1}
	fFSetAbsB    = Field{Name: "abs_b", Offset: 44, Width: 1}
	fFSetFtz     = Field{Name: "ftz", Offset: 47, Width: 1}
	fFSetCompare = Field{Name: "compare", Offset: 48, Width: 4}

	fPSetPredA = Field{Name: "pred_a", Offset: 12, Width: 3}
	fPSetNegA  = Field{Name: "neg_a", Offset: 15, Width: 1}
	fPSetBop1  = Field{Name: "bop_1", Offset: 24, Width: 2}
	fPSetPredB = Field{Name: "pred_b", Offset: 29, Width: 3}
	fPSetNegB  = Field{Name: "neg_b", Offset: 32, Width: 1}
	fPSetPredC = Field{Name: "pred_c", Offset: 39, Width: 3}
	fPSetNegC  = Field{Name: "neg_c", Offset: 42, Width: 1}
	fPSetBop2  = Field{Name: "bop_2", Offset: 45, Width: 2}

	// FADD, FMUL, FFMA, FMNMX
	fRounding  = Field{Name: "rounding", Offset: 39, Width: 2}
	fFtz44     = Field{Name: "ftz", Offset: 44, Width: 1}
	fFAddNegB  = Field{Name: "neg_b", Offset: 45, Width: 1}
	fFAddAbsA  = Field{Name: "abs_a", Offset: 46, Width: 1}
	fFAddNegA  = Field{Name: "neg_a", Offset: 48, Width: 1}
	fFAddAbsB  = Field{Name: "abs_b", Offset: 49, Width: 1}
	fSat50     = Field{Name: "sat", Offset: 50, Width: 1}
	fFMulScale = Field{Name: "scale", Offset: 41, Width: 3}
	fFMulNegB  = Field{Name: "neg_b", Offset: 48, Width: 1}
	fFFmaNegB  = Field{Name: "neg_b", Offset: 48, Width: 1}
	fFFmaNegC  = Field{Name: "neg_c", Offset: 49, Width: 1}

	// FADD32I, FMUL32I
	fF32CC      = Field{Name: "cc", Offset: 52, Width: 1}
	fFAdd32NegB = Field{Name: "neg_b", Offset: 53, Width: 1}
	fFAdd32AbsA = Field{Name: "abs_a", Offset: 54, Width: 1}
	fFAdd32Ftz  = Field{Name: "ftz", Offset: 55, Width: 1}
	fFAdd32NegA = Field{Name: "neg_a", Offset: 56, Width: 1}
	fFAdd32AbsB = Field{Name: "abs_b", Offset: 57, Width: 1}
	fFMul32Fmz  = Field{Name: "fmz", Offset: 53, Width: 2}
	fFMul32Sat  = Field{Name: "sat", Offset: 55, Width: 1}

	// MUFU
	fMufuOp  = Field{Name: "operation", Offset: 20, Width: 4}
	fMufuAbs = Field{Name: "abs", Offset: 46, Width: 1}
	fMufuNeg = Field{Name: "neg", Offset: 48, Width: 1}

	// HADD2
	fHAddAbsB     = Field{Name: "abs_b", Offset: 30, Width: 1}
	fHAddNegB     = Field{Name: "neg_b", Offset: 31, Width: 1}
	fHAddSwizzleB = Field{Name: "swizzle_b", Offset: 28, Width: 2}
	fHAddSat      = Field{Name: "sat", Offset: 32, Width: 1}
	fHAddNegA     = Field{Name: "neg_a", Offset: 43, Width: 1}
	fHAddAbsA     = Field{Name: "abs_a", Offset: 44, Width: 1}
	fHAddSwizzleA = Field{Name: "swizzle_a", Offset: 47, Width: 2}

	// F2I, I2F
	fCvtDestSize = Field{Name: "dest_size", Offset: 8, Width: 2}
	fCvtSrcSize  = Field{Name: "src_size", Offset: 10, Width: 2}
	fF2ISigned   = Field{Name: "signed", Offset: 12, Width: 1}
	fI2FSigned   = Field{Name: "signed", Offset: 13, Width: 1}
	fI2FSelector = Field{Name: "selector", Offset: 41, Width: 2}
	fCvtNeg      = Field{Name: "neg", Offset: 45, Width: 1}
	fCvtAbs      = Field{Name: "abs", Offset: 49, Width: 1}

	// LDG, STG
	fMemAddr   = Field{Name: "addr", Offset: 8, Width: 8}
	fMemOffset = Field{Name: "offset", Offset: 20, Width: 24, Signed: true}
	fMemE      = Field{Name: "e", Offset: 45, Width: 1}
	fMemSize   = Field{Name: "size", Offset: 48, Width: 3}

	// LDC
	fLdcOffset = Field{Name: "offset", Offset: 20, Width: 16, Signed: true}
	fLdcIndex  = Field{Name: "cbuf_index", Offset: 36, Width: 5}
	fLdcMode   = Field{Name: "mode", Offset: 44, Width: 2}

	// S2R
	fS2RReg = Field{Name: "sys_reg", Offset: 20, Width: 8}

	// BRA
	fBraCbuf   = Field{Name: "cbuf", Offset: 5, Width: 1}
	fBraOffset = Field{Name: "branch_offset", Offset: 20, Width: 24, Signed: true}

	// MEMBAR
	fMembarLevel = Field{Name: "level", Offset: 8, Width: 2}
)

var guardFields = []Field{fPred, fPredNeg}

func operandFields(form Form) []Field {
	switch form {
	case FormReg:
		return []Field{fSrcB}
	case FormCbuf:
		return []Field{fCbufOffset, fCbufIndex}
	case FormImm:
		return []Field{fImm20, fImm20Neg}
	case FormImm32:
		return []Field{fImm32}
	case FormRC, FormCR:
		return []Field{fCbufOffset, fCbufIndex, fSrcC}
	}
	return nil
}

var familyFields = map[family][]Field{
	famBFE:     {fDest, fSrcA, fBrev, fCC, fIsSigned48},
	famBRA:     {fFlowTest, fBraCbuf, fBraOffset},
	famEXIT:    {fFlowTest},
	famKIL:     {fFlowTest},
	famFADD:    {fDest, fSrcA, fRounding, fFtz44, fFAddNegB, fFAddAbsA, fCC, fFAddNegA, fFAddAbsB, fSat50},
	famFADD32I: {fDest, fSrcA, fF32CC, fFAdd32NegB, fFAdd32AbsA, fFAdd32Ftz, fFAdd32NegA, fFAdd32AbsB},
	famFFMA:    {fDest, fSrcA, fCC, fFFmaNegB, fFFmaNegC, fSat50},
	famFMNMX:   {fDest, fSrcA, fSelPred, fSelPredNeg, fFtz44, fFAddNegB, fFAddAbsA, fCC, fFAddNegA, fFAddAbsB},
	famFMUL:    {fDest, fSrcA, fRounding, fFMulScale, fFtz44, fCC, fFMulNegB, fSat50},
	famFMUL32I: {fDest, fSrcA, fF32CC, fFMul32Fmz, fFMul32Sat},
	famFSETP:   {fDestPredB, fDestPredA, fFSetNegB, fFSetAbsA, fSrcA, fBopPred, fBopPredNeg, fFSetNegA, fFSetAbsB, fBop, fFSetFtz, fFSetCompare},
	famF2I:     {fDest, fCvtDestSize, fCvtSrcSize, fF2ISigned, fRounding, fFtz44, fCvtNeg, fCC, fCvtAbs},
	famHADD2:   {fDest, fSrcA, fHAddSwizzleB, fHAddAbsB, fHAddNegB, fHAddSat, fHAddNegA, fHAddAbsA, fHAddSwizzleA},
	famI2F:     {fDest, fCvtDestSize, fCvtSrcSize, fI2FSigned, fRounding, fI2FSelector, fCvtNeg, fCC, fCvtAbs},
	famIADD:    {fDest, fSrcA, fIAddX, fCC, fIAddNegB, fIAddNegA, fIAddSat},
	famIADD32I: {fDest, fSrcA, fIAdd32CC, fIAdd32X, fIAdd32Sat, fIAdd32NegA},
	famIMNMX:   {fDest, fSrcA, fSelPred, fSelPredNeg, fIMnmxMode, fCC, fIsSigned48},
	famISCADD:  {fDest, fSrcA, fIScaddShift, fCC, fIAddNegB, fIAddNegA},
	famISET:    {fDest, fSrcA, fBopPred, fBopPredNeg, fSetX, fISetBF, fBop, fCC, fIsSigned48, fISetCompare},
	famISETP:   {fDestPredB, fDestPredA, fSrcA, fBopPred, fBopPredNeg, fSetX, fBop, fIsSigned48, fISetCompare},
	famLDC:     {fDest, fSrcA, fLdcOffset, fLdcIndex, fLdcMode, fMemSize},
	famLDG:     {fDest, fMemAddr, fMemOffset, fMemE, fMemSize},
	famSTG:     {fDest, fMemAddr, fMemOffset, fMemE, fMemSize},
	famLOP:     {fDest, fSrcA, fLopInvA, fLopInvB, fLopOp, fLopX, fLopPredMode, fCC, fLopDestPred},
	famLOP32I:  {fDest, fSrcA, fLop32CC, fLop32Op, fLop32InvA, fLop32InvB, fLop32X},
	famMEMBAR:  {fMembarLevel},
	famMOV:     {fDest, fMovMask},
	famMOV32I:  {fDest, fMov32Mask},
	famMUFU:    {fDest, fSrcA, fMufuOp, fMufuAbs, fMufuNeg, fSat50},
	famPSETP:   {fDestPredB, fDestPredA, fPSetPredA, fPSetNegA, fPSetBop1, fPSetPredB, fPSetNegB, fPSetPredC, fPSetNegC, fPSetBop2},
	famS2R:     {fDest, fS2RReg},
	famSEL:     {fDest, fSrcA, fSelPred, fSelPredNeg},
	famSHL:     {fDest, fSrcA, fShiftWrap, fShiftX, fCC},
	famSHR:     {fDest, fSrcA, fShiftWrap, fBrev, fShiftX, fCC, fIsSigned48},
}

// FieldsOf returns the fields decoded for op: the guard predicate, the
// family fields and the operand fields of its form. Fields overlapping
// the bits fixed by the encoding are left out.
func FieldsOf(op Opcode) []Field {
	info := opcodeTable[op]
	all := append([]Field(nil), guardFields...)
	all = append(all, familyFields[info.family]...)
	if info.family != famLDC {
		all = append(all, operandFields(info.form)...)
	}
	fixed := op.fixedMask()
	fields := all[:0]
	for _, f := range all {
		if f.mask()<<f.Offset&fixed == 0 {
			fields = append(fields, f)
		}
	}
	return fields
}

// Dest returns the destination register.
func (insn Instruction) Dest() ir.Reg { return ir.Reg(fDest.Get(insn)) }

// SrcA returns the A operand register.
func (insn Instruction) SrcA() ir.Reg { return ir.Reg(fSrcA.Get(insn)) }

// SrcB returns the B operand register of register forms.
func (insn Instruction) SrcB() ir.Reg { return ir.Reg(fSrcB.Get(insn)) }

// SrcC returns the C operand register of three-operand forms.
func (insn Instruction) SrcC() ir.Reg { return ir.Reg(fSrcC.Get(insn)) }

// Guard returns the predicate condition that guards the instruction.
func (insn Instruction) Guard() ir.Condition {
	return ir.NewPredCondition(ir.Pred(fPred.Get(insn)), fPredNeg.Bool(insn))
}

// Imm20 returns the sign-extended 20-bit integer immediate.
func (insn Instruction) Imm20() uint32 {
	v := uint32(fImm20.Get(insn))
	if fImm20Neg.Bool(insn) {
		v |= 0xFFF80000
	}
	return v
}

// FloatImm20 returns the bit pattern of the 20-bit float immediate, which
// holds the top bits of an F32.
func (insn Instruction) FloatImm20() uint32 {
	bits := uint32(fImm20.Get(insn)) << 12
	if fImm20Neg.Bool(insn) {
		bits |= 1 << 31
	}
	return bits
}

// Imm32 returns the 32-bit immediate.
func (insn Instruction) Imm32() uint32 { return uint32(fImm32.Get(insn)) }

// Cbuf returns the constant buffer index and byte offset of the B operand.
func (insn Instruction) Cbuf() (index, offset uint32) {
	return uint32(fCbufIndex.Get(insn)), uint32(fCbufOffset.Get(insn)) * 4
}
