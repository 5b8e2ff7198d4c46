// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"strconv"

	"github.com/gogpu/smrecomp/ir"
)

// emitFunc writes the statements of one instruction. It consumes the
// operands before defining the result.
type emitFunc func(c *context, inst *ir.Inst) error

var emitTable [ir.NumOpcodes]emitFunc

func init() {
	emitTable = [ir.NumOpcodes]emitFunc{
		ir.OpIdentity:                 emitAlias,
		ir.OpBarrier:                  emitStatement("BAR;"),
		ir.OpWorkgroupMemoryBarrier:   emitStatement("MEMBAR.CTA;"),
		ir.OpDeviceMemoryBarrier:      emitStatement("MEMBAR;"),
		ir.OpDemoteToHelperInvocation: emitDemote,

		ir.OpGetRegister:       emitGetRegister,
		ir.OpSetRegister:       emitSetRegister,
		ir.OpGetPred:           emitGetPred,
		ir.OpSetPred:           emitSetPred,
		ir.OpGetZFlag:          emitGetFlag("x"),
		ir.OpGetSFlag:          emitGetFlag("y"),
		ir.OpGetCFlag:          emitGetFlag("z"),
		ir.OpGetOFlag:          emitGetFlag("w"),
		ir.OpSetZFlag:          emitSetFlag("x"),
		ir.OpSetSFlag:          emitSetFlag("y"),
		ir.OpSetCFlag:          emitSetFlag("z"),
		ir.OpSetOFlag:          emitSetFlag("w"),
		ir.OpGetCbufU32:        emitGetCbuf,
		ir.OpLocalInvocationID: emitInvocation("invocation.localid"),
		ir.OpWorkgroupID:       emitInvocation("invocation.groupid"),

		ir.OpLoadGlobal32:   emitLoadGlobal("U32", ".x"),
		ir.OpLoadGlobal64:   emitLoadGlobal("U32X2", ".xy"),
		ir.OpLoadGlobal128:  emitLoadGlobal("U32X4", ""),
		ir.OpWriteGlobal32:  emitWriteGlobal32,
		ir.OpWriteGlobal64:  emitWriteGlobal("U32X2"),
		ir.OpWriteGlobal128: emitWriteGlobal("U32X4"),

		ir.OpGetZeroFromOp:     emitPseudo,
		ir.OpGetSignFromOp:     emitPseudo,
		ir.OpGetCarryFromOp:    emitPseudo,
		ir.OpGetOverflowFromOp: emitPseudo,

		ir.OpCompositeConstructU32x2: emitCompositeConstruct,
		ir.OpCompositeConstructU32x3: emitCompositeConstruct,
		ir.OpCompositeConstructU32x4: emitCompositeConstruct,
		ir.OpCompositeExtractU32x2:   emitCompositeExtract,
		ir.OpCompositeExtractU32x3:   emitCompositeExtract,
		ir.OpCompositeExtractU32x4:   emitCompositeExtract,
		ir.OpCompositeInsertU32x2:    emitCompositeInsert,
		ir.OpCompositeInsertU32x3:    emitCompositeInsert,
		ir.OpCompositeInsertU32x4:    emitCompositeInsert,

		ir.OpSelectU1:  emitSelect("S"),
		ir.OpSelectU32: emitSelect("S"),
		ir.OpSelectU64: emitSelect64,
		ir.OpSelectF32: emitSelect("S"),

		ir.OpBitCastU32F32:   emitAlias,
		ir.OpBitCastF32U32:   emitAlias,
		ir.OpBitCastU32F16x2: emitAlias,
		ir.OpBitCastF16x2U32: emitAlias,
		ir.OpPackUint2x32:    emitPackUint2x32,
		ir.OpUnpackUint2x32:  emitUnpackUint2x32,

		ir.OpFPAbs32:                   emitFPAbs,
		ir.OpFPAdd32:                   emitBinary("ADD.F"),
		ir.OpFPAdd16x2:                 emitFPAdd16x2,
		ir.OpFPFma32:                   emitFPFma,
		ir.OpFPMul32:                   emitBinary("MUL.F"),
		ir.OpFPNeg32:                   emitNeg("F"),
		ir.OpFPSaturate32:              emitUnary("MOV.F.SAT"),
		ir.OpFPMin32:                   emitBinary("MIN.F"),
		ir.OpFPMax32:                   emitBinary("MAX.F"),
		ir.OpFPRecip32:                 emitUnary("RCP.F"),
		ir.OpFPRecipSqrt32:             emitUnary("RSQ.F"),
		ir.OpFPSqrt:                    emitFPSqrt,
		ir.OpFPSin:                     emitUnary("SIN.F"),
		ir.OpFPCos:                     emitUnary("COS.F"),
		ir.OpFPExp2:                    emitUnary("EX2.F"),
		ir.OpFPLog2:                    emitUnary("LG2.F"),
		ir.OpFPRoundEven32:             emitUnary("ROUND.F"),
		ir.OpFPFloor32:                 emitUnary("FLR.F"),
		ir.OpFPCeil32:                  emitUnary("CEIL.F"),
		ir.OpFPTrunc32:                 emitUnary("TRUNC.F"),
		ir.OpFPOrdEqual32:              emitFPCompare("SEQ", true, false),
		ir.OpFPUnordEqual32:            emitFPCompare("SEQ", false, false),
		ir.OpFPOrdNotEqual32:           emitFPCompare("SNE", true, true),
		ir.OpFPUnordNotEqual32:         emitFPCompare("SNE", false, true),
		ir.OpFPOrdLessThan32:           emitFPCompare("SLT", true, false),
		ir.OpFPUnordLessThan32:         emitFPCompare("SLT", false, false),
		ir.OpFPOrdGreaterThan32:        emitFPCompare("SGT", true, false),
		ir.OpFPUnordGreaterThan32:      emitFPCompare("SGT", false, false),
		ir.OpFPOrdLessThanEqual32:      emitFPCompare("SLE", true, false),
		ir.OpFPUnordLessThanEqual32:    emitFPCompare("SLE", false, false),
		ir.OpFPOrdGreaterThanEqual32:   emitFPCompare("SGE", true, false),
		ir.OpFPUnordGreaterThanEqual32: emitFPCompare("SGE", false, false),
		ir.OpFPIsNan32:                 emitFPIsNan,

		ir.OpIAdd32:                 emitIAdd32,
		ir.OpIAdd64:                 emitBinary("ADD.S64"),
		ir.OpISub32:                 emitBinary("SUB.S"),
		ir.OpIMul32:                 emitBinary("MUL.S"),
		ir.OpINeg32:                 emitNeg("S"),
		ir.OpIAbs32:                 emitUnary("ABS.S"),
		ir.OpShiftLeftLogical32:     emitBinary("SHL.U"),
		ir.OpShiftRightLogical32:    emitBinary("SHR.U"),
		ir.OpShiftRightArithmetic32: emitBinary("SHR.S"),
		ir.OpBitwiseAnd32:           emitBitwise("AND"),
		ir.OpBitwiseOr32:            emitBitwise("OR"),
		ir.OpBitwiseXor32:           emitBitwise("XOR"),
		ir.OpBitFieldInsert:         emitBitFieldInsert,
		ir.OpBitFieldSExtract:       emitBitFieldExtract("S"),
		ir.OpBitFieldUExtract:       emitBitFieldExtract("U"),
		ir.OpBitReverse32:           emitUnary("BFR"),
		ir.OpBitCount32:             emitUnary("BTC"),
		ir.OpBitwiseNot32:           emitBitwiseNot,
		ir.OpFindSMsb32:             emitUnary("BTFM.S"),
		ir.OpFindUMsb32:             emitUnary("BTFM.U"),
		ir.OpSMin32:                 emitBinary("MIN.S"),
		ir.OpUMin32:                 emitBinary("MIN.U"),
		ir.OpSMax32:                 emitBinary("MAX.S"),
		ir.OpUMax32:                 emitBinary("MAX.U"),
		ir.OpSLessThan:              emitBinary("SLT.S"),
		ir.OpULessThan:              emitBinary("SLT.U"),
		ir.OpIEqual:                 emitBinary("SEQ.S"),
		ir.OpSLessThanEqual:         emitBinary("SLE.S"),
		ir.OpULessThanEqual:         emitBinary("SLE.U"),
		ir.OpSGreaterThan:           emitBinary("SGT.S"),
		ir.OpUGreaterThan:           emitBinary("SGT.U"),
		ir.OpINotEqual:              emitBinary("SNE.U"),
		ir.OpSGreaterThanEqual:      emitBinary("SGE.S"),
		ir.OpUGreaterThanEqual:      emitBinary("SGE.U"),

		ir.OpLogicalOr:  emitBinary("OR.S"),
		ir.OpLogicalAnd: emitBinary("AND.S"),
		ir.OpLogicalXor: emitBinary("XOR.S"),
		ir.OpLogicalNot: emitLogicalNot,

		ir.OpConvertS32F32: emitUnary("TRUNC.S"),
		ir.OpConvertU32F32: emitUnary("TRUNC.U"),
		ir.OpConvertF32S32: emitUnary("I2F.S"),
		ir.OpConvertF32U32: emitUnary("I2F.U"),
		ir.OpConvertU64U32: emitUnary("CVT.U64.U32"),
		ir.OpConvertU32U64: emitUnary("CVT.U32.U64"),
	}
}

// emitAlias writes nothing. The result shares the operand's storage.
func emitAlias(*context, *ir.Inst) error { return nil }

func emitStatement(text string) emitFunc {
	return func(c *context, _ *ir.Inst) error {
		c.add("%s", text)
		return nil
	}
}

func emitUnary(op string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		a := c.arg(inst, 0)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("%s %s.x,%s;", op, ret, a)
		return nil
	}
}

func emitBinary(op string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		a, b := c.arg(inst, 0), c.arg(inst, 1)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("%s %s.x,%s,%s;", op, ret, a, b)
		return nil
	}
}

func emitNeg(typ string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		a := c.arg(inst, 0)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("MOV.%s %s.x,%s;", typ, ret, negate(a))
		return nil
	}
}

func emitSelect(typ string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		cond, t, f := c.arg(inst, 0), c.arg(inst, 1), c.arg(inst, 2)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		// CMP takes the second operand when the first is negative.
		c.add("CMP.%s %s.x,%s,%s,%s;", typ, ret, cond, t, f)
		return nil
	}
}

func emitSelect64(c *context, inst *ir.Inst) error {
	cond, t, f := c.arg(inst, 0), c.arg(inst, 1), c.arg(inst, 2)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("MOV.S.CC RC.x,%s;IF NE.x;MOV.U64 %s.x,%s;ELSE;MOV.U64 %s.x,%s;ENDIF;", cond, ret, t, ret, f)
	return nil
}

func emitLogicalNot(c *context, inst *ir.Inst) error {
	a := c.arg(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("SEQ.S %s.x,%s,0;", ret, a)
	return nil
}

func emitDemote(c *context, _ *ir.Inst) error {
	if c.program.Stage != ir.StageFragment {
		return ir.NotImplementedf("DemoteToHelperInvocation", "%s stage", c.program.Stage)
	}
	c.add("KIL TR.x;")
	return nil
}

func emitGetRegister(c *context, inst *ir.Inst) error {
	r := inst.Arg(0).Reg()
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	if r == ir.RZ {
		c.add("MOV.U %s.x,0;", ret)
		return nil
	}
	c.regs[r] = true
	c.add("MOV.U %s.x,GPR%d.x;", ret, r)
	return nil
}

func emitSetRegister(c *context, inst *ir.Inst) error {
	r := inst.Arg(0).Reg()
	v := c.arg(inst, 1)
	if r == ir.RZ {
		return nil
	}
	c.regs[r] = true
	c.add("MOV.U GPR%d.x,%s;", r, v)
	return nil
}

// predicate returns the guest storage of p. Four predicates share one
// temporary.
func predicate(p ir.Pred) string {
	return "PRED" + strconv.Itoa(int(p)/4) + "." + swizzle[int(p)%4]
}

func emitGetPred(c *context, inst *ir.Inst) error {
	p := inst.Arg(0).Pred()
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	if p == ir.PT {
		c.add("MOV.S %s.x,-1;", ret)
		return nil
	}
	c.preds[p] = true
	c.add("MOV.S %s.x,%s;", ret, predicate(p))
	return nil
}

func emitSetPred(c *context, inst *ir.Inst) error {
	p := inst.Arg(0).Pred()
	v := c.arg(inst, 1)
	if p == ir.PT {
		return nil
	}
	c.preds[p] = true
	c.add("MOV.S %s,%s;", predicate(p), v)
	return nil
}

func emitGetFlag(component string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.flags = true
		c.add("MOV.S %s.x,FLAGS.%s;", ret, component)
		return nil
	}
}

func emitSetFlag(component string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		v := c.arg(inst, 0)
		c.flags = true
		c.add("MOV.S FLAGS.%s,%s;", component, v)
		return nil
	}
}

func emitInvocation(source string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		if c.program.Stage != ir.StageCompute {
			return ir.NotImplementedf(inst.Opcode().String(), "%s stage", c.program.Stage)
		}
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("MOV.U %s,%s;", ret, source)
		return nil
	}
}
