// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

type logicOp uint64

const (
	logicAnd logicOp = iota
	logicOr
	logicXor
	logicPassB
)

// Predicate result modes of LOP.
const (
	predResultFalse = iota
	predResultTrue
	predResultZero
	predResultNonZero
)

func (t *translator) logic(op logicOp, a, c ir.Value) ir.Value {
	switch op {
	case logicAnd:
		return t.b.BitwiseAnd(a, c)
	case logicOr:
		return t.b.BitwiseOr(a, c)
	case logicXor:
		return t.b.BitwiseXor(a, c)
	}
	return c
}

func (t *translator) lop(insn Instruction, op Opcode) error {
	if fLopX.Bool(insn) {
		return ir.NewNotImplemented("LOP", "X")
	}
	a, c := t.x(insn.SrcA()), t.srcB(insn, op)
	if fLopInvA.Bool(insn) {
		a = t.b.BitwiseNot(a)
	}
	if fLopInvB.Bool(insn) {
		c = t.b.BitwiseNot(c)
	}
	result := t.logic(logicOp(fLopOp.Get(insn)), a, c)

	dest := ir.Pred(fLopDestPred.Get(insn))
	switch fLopPredMode.Get(insn) {
	case predResultFalse:
		t.b.SetPred(dest, ir.Imm1(false))
	case predResultTrue:
		t.b.SetPred(dest, ir.Imm1(true))
	case predResultZero:
		t.b.SetPred(dest, t.b.IEqual(result, ir.Imm32(0)))
	case predResultNonZero:
		t.b.SetPred(dest, t.b.INotEqual(result, ir.Imm32(0)))
	}
	t.setX(insn.Dest(), result)
	if fCC.Bool(insn) {
		t.setZS(result)
		t.resetCO()
	}
	return nil
}

func (t *translator) lop32i(insn Instruction, op Opcode) error {
	if fLop32X.Bool(insn) {
		return ir.NewNotImplemented("LOP32I", "X")
	}
	a, c := t.x(insn.SrcA()), t.srcB(insn, op)
	if fLop32InvA.Bool(insn) {
		a = t.b.BitwiseNot(a)
	}
	if fLop32InvB.Bool(insn) {
		c = ir.Imm32(^c.U32())
	}
	result := t.logic(logicOp(fLop32Op.Get(insn)), a, c)
	t.setX(insn.Dest(), result)
	if fLop32CC.Bool(insn) {
		t.setZS(result)
		t.resetCO()
	}
	return nil
}

// setPredPair writes cmp combined with the bop predicate to dest A and
// the negated comparison combined the same way to dest B.
func (t *translator) setPredPair(insn Instruction, cmp ir.Value) error {
	bopPred := t.b.GetPred(ir.Pred(fBopPred.Get(insn)), fBopPredNeg.Bool(insn))
	bop := fBop.Get(insn)
	a, err := t.predOp(bop, cmp, bopPred)
	if err != nil {
		return err
	}
	b, err := t.predOp(bop, t.b.LogicalNot(cmp), bopPred)
	if err != nil {
		return err
	}
	t.b.SetPred(ir.Pred(fDestPredA.Get(insn)), a)
	t.b.SetPred(ir.Pred(fDestPredB.Get(insn)), b)
	return nil
}

func (t *translator) isetp(insn Instruction, op Opcode) error {
	if fSetX.Bool(insn) {
		return ir.NewNotImplemented("ISETP", "X")
	}
	cmp := t.b.IntegerCompare(ir.CompareOp(fISetCompare.Get(insn)),
		t.x(insn.SrcA()), t.srcB(insn, op), fIsSigned48.Bool(insn))
	return t.setPredPair(insn, cmp)
}

func (t *translator) iset(insn Instruction, op Opcode) error {
	if fSetX.Bool(insn) {
		return ir.NewNotImplemented("ISET", "X")
	}
	cmp := t.b.IntegerCompare(ir.CompareOp(fISetCompare.Get(insn)),
		t.x(insn.SrcA()), t.srcB(insn, op), fIsSigned48.Bool(insn))
	bopPred := t.b.GetPred(ir.Pred(fBopPred.Get(insn)), fBopPredNeg.Bool(insn))
	pred, err := t.predOp(fBop.Get(insn), cmp, bopPred)
	if err != nil {
		return err
	}
	pass := ir.Imm32(0xffffffff)
	if fISetBF.Bool(insn) {
		pass = ir.Imm32(0x3f800000)
	}
	result := t.b.Select(pred, pass, ir.Imm32(0))
	t.setX(insn.Dest(), result)
	if fCC.Bool(insn) {
		t.setZS(result)
		t.resetCO()
	}
	return nil
}

func (t *translator) psetp(insn Instruction, _ Opcode) error {
	pa := t.b.GetPred(ir.Pred(fPSetPredA.Get(insn)), fPSetNegA.Bool(insn))
	pb := t.b.GetPred(ir.Pred(fPSetPredB.Get(insn)), fPSetNegB.Bool(insn))
	pc := t.b.GetPred(ir.Pred(fPSetPredC.Get(insn)), fPSetNegC.Bool(insn))

	lhs, err := t.predOp(fPSetBop1.Get(insn), pa, pb)
	if err != nil {
		return err
	}
	bop2 := fPSetBop2.Get(insn)
	a, err := t.predOp(bop2, lhs, pc)
	if err != nil {
		return err
	}
	b, err := t.predOp(bop2, t.b.LogicalNot(lhs), pc)
	if err != nil {
		return err
	}
	t.b.SetPred(ir.Pred(fDestPredA.Get(insn)), a)
	t.b.SetPred(ir.Pred(fDestPredB.Get(insn)), b)
	return nil
}

// Float comparison kinds in guest encoding order.
const (
	fcmpF = iota
	fcmpLT
	fcmpEQ
	fcmpLE
	fcmpGT
	fcmpNE
	fcmpGE
	fcmpNUM
	fcmpNaN
	fcmpLTU
	fcmpEQU
	fcmpLEU
	fcmpGTU
	fcmpNEU
	fcmpGEU
	fcmpT
)

var floatCompareOps = [...]ir.Opcode{
	fcmpLT:  ir.OpFPOrdLessThan32,
	fcmpEQ:  ir.OpFPOrdEqual32,
	fcmpLE:  ir.OpFPOrdLessThanEqual32,
	fcmpGT:  ir.OpFPOrdGreaterThan32,
	fcmpNE:  ir.OpFPOrdNotEqual32,
	fcmpGE:  ir.OpFPOrdGreaterThanEqual32,
	fcmpLTU: ir.OpFPUnordLessThan32,
	fcmpEQU: ir.OpFPUnordEqual32,
	fcmpLEU: ir.OpFPUnordLessThanEqual32,
	fcmpGTU: ir.OpFPUnordGreaterThan32,
	fcmpNEU: ir.OpFPUnordNotEqual32,
	fcmpGEU: ir.OpFPUnordGreaterThanEqual32,
}

func (t *translator) floatCompare(kind uint64, a, c ir.Value) ir.Value {
	switch kind {
	case fcmpF:
		return ir.Imm1(false)
	case fcmpT:
		return ir.Imm1(true)
	case fcmpNUM:
		return t.b.LogicalAnd(t.b.LogicalNot(t.b.FPIsNan(a)), t.b.LogicalNot(t.b.FPIsNan(c)))
	case fcmpNaN:
		return t.b.LogicalOr(t.b.FPIsNan(a), t.b.FPIsNan(c))
	}
	return t.b.FPCompare(floatCompareOps[kind], a, c)
}

func (t *translator) fsetp(insn Instruction, op Opcode) error {
	a := t.b.FPAbsNeg(t.f(insn.SrcA()), fFSetAbsA.Bool(insn), fFSetNegA.Bool(insn))
	c := t.b.FPAbsNeg(t.fsrcB(insn, op), fFSetAbsB.Bool(insn), fFSetNegB.Bool(insn))
	cmp := t.floatCompare(fFSetCompare.Get(insn), a, c)
	return t.setPredPair(insn, cmp)
}
