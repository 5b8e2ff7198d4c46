// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/smrecomp/ir"
)

// emitFunc writes the statements of one instruction. It consumes the
// operands before defining the result.
type emitFunc func(w *Writer, inst *ir.Inst) error

var emitTable [ir.NumOpcodes]emitFunc

func init() {
	emitTable = [ir.NumOpcodes]emitFunc{
		ir.OpIdentity:                 emitAlias,
		ir.OpBarrier:                  emitStatement("barrier();"),
		ir.OpWorkgroupMemoryBarrier:   emitStatement("groupMemoryBarrier();"),
		ir.OpDeviceMemoryBarrier:      emitStatement("memoryBarrier();"),
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
		ir.OpLocalInvocationID: emitInvocation("gl_LocalInvocationID"),
		ir.OpWorkgroupID:       emitInvocation("gl_WorkGroupID"),

		ir.OpLoadGlobal32:   notImplemented("global memory"),
		ir.OpLoadGlobal64:   notImplemented("global memory"),
		ir.OpLoadGlobal128:  notImplemented("global memory"),
		ir.OpWriteGlobal32:  notImplemented("global memory"),
		ir.OpWriteGlobal64:  notImplemented("global memory"),
		ir.OpWriteGlobal128: notImplemented("global memory"),

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

		ir.OpSelectU1:  emitSelect,
		ir.OpSelectU32: emitSelect,
		ir.OpSelectU64: emitSelect,
		ir.OpSelectF32: emitSelect,

		ir.OpBitCastU32F32:   emitAlias,
		ir.OpBitCastF32U32:   emitAlias,
		ir.OpBitCastU32F16x2: emitAlias,
		ir.OpBitCastF16x2U32: emitAlias,
		ir.OpPackUint2x32:    emitPackUint2x32,
		ir.OpUnpackUint2x32:  emitUnpackUint2x32,

		ir.OpFPAbs32:                   emitExpr("abs(%s)"),
		ir.OpFPAdd32:                   emitExpr("%s+%s"),
		ir.OpFPAdd16x2:                 emitFPAdd16x2,
		ir.OpFPFma32:                   emitExpr("fma(%s,%s,%s)"),
		ir.OpFPMul32:                   emitExpr("%s*%s"),
		ir.OpFPNeg32:                   emitExpr("-(%s)"),
		ir.OpFPSaturate32:              emitExpr("clamp(%s,0.0,1.0)"),
		ir.OpFPMin32:                   emitExpr("min(%s,%s)"),
		ir.OpFPMax32:                   emitExpr("max(%s,%s)"),
		ir.OpFPRecip32:                 emitExpr("1.0/(%s)"),
		ir.OpFPRecipSqrt32:             emitExpr("inversesqrt(%s)"),
		ir.OpFPSqrt:                    emitExpr("sqrt(%s)"),
		ir.OpFPSin:                     emitExpr("sin(%s)"),
		ir.OpFPCos:                     emitExpr("cos(%s)"),
		ir.OpFPExp2:                    emitExpr("exp2(%s)"),
		ir.OpFPLog2:                    emitExpr("log2(%s)"),
		ir.OpFPRoundEven32:             emitExpr("roundEven(%s)"),
		ir.OpFPFloor32:                 emitExpr("floor(%s)"),
		ir.OpFPCeil32:                  emitExpr("ceil(%s)"),
		ir.OpFPTrunc32:                 emitExpr("trunc(%s)"),
		ir.OpFPOrdEqual32:              emitFPCompare("==", true),
		ir.OpFPUnordEqual32:            emitFPCompare("==", false),
		ir.OpFPOrdNotEqual32:           emitFPCompare("!=", true),
		ir.OpFPUnordNotEqual32:         emitFPCompare("!=", false),
		ir.OpFPOrdLessThan32:           emitFPCompare("<", true),
		ir.OpFPUnordLessThan32:         emitFPCompare("<", false),
		ir.OpFPOrdGreaterThan32:        emitFPCompare(">", true),
		ir.OpFPUnordGreaterThan32:      emitFPCompare(">", false),
		ir.OpFPOrdLessThanEqual32:      emitFPCompare("<=", true),
		ir.OpFPUnordLessThanEqual32:    emitFPCompare("<=", false),
		ir.OpFPOrdGreaterThanEqual32:   emitFPCompare(">=", true),
		ir.OpFPUnordGreaterThanEqual32: emitFPCompare(">=", false),
		ir.OpFPIsNan32:                 emitExpr("uint(isnan(%s))"),

		ir.OpIAdd32:                 emitIAdd32,
		ir.OpIAdd64:                 emitInt64(emitExpr("%s+%s")),
		ir.OpISub32:                 emitExpr("%s-%s"),
		ir.OpIMul32:                 emitExpr("%s*%s"),
		ir.OpINeg32:                 emitSigned("uint(-%s)"),
		ir.OpIAbs32:                 emitSigned("uint(abs(%s))"),
		ir.OpShiftLeftLogical32:     emitExpr("%s<<%s"),
		ir.OpShiftRightLogical32:    emitExpr("%s>>%s"),
		ir.OpShiftRightArithmetic32: emitShiftRightArithmetic,
		ir.OpBitwiseAnd32:           emitExpr("%s&%s"),
		ir.OpBitwiseOr32:            emitExpr("%s|%s"),
		ir.OpBitwiseXor32:           emitExpr("%s^%s"),
		ir.OpBitFieldInsert:         emitBitFieldInsert,
		ir.OpBitFieldSExtract:       emitBitFieldExtract(true),
		ir.OpBitFieldUExtract:       emitBitFieldExtract(false),
		ir.OpBitReverse32:           emitExpr("bitfieldReverse(%s)"),
		ir.OpBitCount32:             emitExpr("uint(bitCount(%s))"),
		ir.OpBitwiseNot32:           emitExpr("~%s"),
		ir.OpFindSMsb32:             emitSigned("uint(findMSB(%s))"),
		ir.OpFindUMsb32:             emitExpr("uint(findMSB(%s))"),
		ir.OpSMin32:                 emitSigned("uint(min(%s,%s))"),
		ir.OpUMin32:                 emitExpr("min(%s,%s)"),
		ir.OpSMax32:                 emitSigned("uint(max(%s,%s))"),
		ir.OpUMax32:                 emitExpr("max(%s,%s)"),
		ir.OpSLessThan:              emitSigned("uint(%s<%s)"),
		ir.OpULessThan:              emitExpr("uint(%s<%s)"),
		ir.OpIEqual:                 emitExpr("uint(%s==%s)"),
		ir.OpSLessThanEqual:         emitSigned("uint(%s<=%s)"),
		ir.OpULessThanEqual:         emitExpr("uint(%s<=%s)"),
		ir.OpSGreaterThan:           emitSigned("uint(%s>%s)"),
		ir.OpUGreaterThan:           emitExpr("uint(%s>%s)"),
		ir.OpINotEqual:              emitExpr("uint(%s!=%s)"),
		ir.OpSGreaterThanEqual:      emitSigned("uint(%s>=%s)"),
		ir.OpUGreaterThanEqual:      emitExpr("uint(%s>=%s)"),

		ir.OpLogicalOr:  emitExpr("%s|%s"),
		ir.OpLogicalAnd: emitExpr("%s&%s"),
		ir.OpLogicalXor: emitExpr("%s^%s"),
		ir.OpLogicalNot: emitExpr("%s^1u"),

		ir.OpConvertS32F32: emitExpr("uint(int(%s))"),
		ir.OpConvertU32F32: emitExpr("uint(%s)"),
		ir.OpConvertF32S32: emitSigned("float(%s)"),
		ir.OpConvertF32U32: emitExpr("float(%s)"),
		ir.OpConvertU64U32: emitInt64(emitExpr("uint64_t(%s)")),
		ir.OpConvertU32U64: emitConvertU32U64,
	}
}

func notImplemented(detail string) emitFunc {
	return func(_ *Writer, inst *ir.Inst) error {
		return ir.NewNotImplemented(inst.Opcode().String(), detail)
	}
}

// emitAlias writes nothing. The result shares the operand's storage.
func emitAlias(*Writer, *ir.Inst) error { return nil }

// assign writes ret=expr, converting float results back to raw bits.
func (w *Writer) assign(inst *ir.Inst, ret, expr string) {
	if inst.Type() == ir.F32 {
		expr = "floatBitsToUint(" + expr + ")"
	}
	w.add("%s=%s;", ret, expr)
}

func (w *Writer) args(inst *ir.Inst) []any {
	args := make([]any, inst.NumArgs())
	for i := range args {
		args[i] = w.arg(inst, i)
	}
	return args
}

// emitExpr formats every operand into a template.
func emitExpr(template string) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		args := w.args(inst)
		ret, err := w.define(inst)
		if err != nil {
			return err
		}
		w.assign(inst, ret, fmt.Sprintf(template, args...))
		return nil
	}
}

// emitSigned is emitExpr with every operand reinterpreted as int.
func emitSigned(template string) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		args := w.args(inst)
		for i, a := range args {
			args[i] = signed(a.(string))
		}
		ret, err := w.define(inst)
		if err != nil {
			return err
		}
		w.assign(inst, ret, fmt.Sprintf(template, args...))
		return nil
	}
}

// emitInt64 guards an emitter that needs 64-bit integer arithmetic.
func emitInt64(emit emitFunc) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		if !w.profile.SupportInt64 {
			return ir.NewNotImplemented(inst.Opcode().String(), "64-bit integers are not supported by the profile")
		}
		w.requireExtension(extensionInt64)
		return emit(w, inst)
	}
}

func emitConvertU32U64(w *Writer, inst *ir.Inst) error {
	v := w.arg(inst, 0)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if w.profile.SupportInt64 {
		w.requireExtension(extensionInt64)
		w.add("%s=uint(%s);", ret, v)
		return nil
	}
	w.add("%s=%s.x;", ret, v)
	return nil
}

func emitSelect(w *Writer, inst *ir.Inst) error {
	cond, t, f := w.arg(inst, 0), w.arg(inst, 1), w.arg(inst, 2)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	w.assign(inst, ret, fmt.Sprintf("%s!=0u?%s:%s", cond, t, f))
	return nil
}

// emitIAdd32 also defines the results of the pseudo-operations reading the
// addition. Carry and overflow are computed before the sum is stored, since
// the sum may reuse an operand's storage.
func emitIAdd32(w *Writer, inst *ir.Inst) error {
	a, b := w.arg(inst, 0), w.arg(inst, 1)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if carry := inst.AssociatedPseudoOp(ir.OpGetCarryFromOp); carry != nil {
		cf, err := w.define(carry)
		if err != nil {
			return err
		}
		w.add("%s=uint(%s>~%s);", cf, a, b)
	}
	if overflow := inst.AssociatedPseudoOp(ir.OpGetOverflowFromOp); overflow != nil {
		of, err := w.define(overflow)
		if err != nil {
			return err
		}
		w.add("%s=((%s^(%s+%s))&(%s^(%s+%s)))>>31u;", of, a, a, b, b, a, b)
	}
	w.add("%s=%s+%s;", ret, a, b)
	if zero := inst.AssociatedPseudoOp(ir.OpGetZeroFromOp); zero != nil {
		z, err := w.define(zero)
		if err != nil {
			return err
		}
		w.add("%s=uint(%s==0u);", z, ret)
	}
	if sign := inst.AssociatedPseudoOp(ir.OpGetSignFromOp); sign != nil {
		s, err := w.define(sign)
		if err != nil {
			return err
		}
		w.add("%s=%s>>31u;", s, ret)
	}
	return nil
}

// emitShiftRightArithmetic shifts the value as int and the count as uint.
func emitShiftRightArithmetic(w *Writer, inst *ir.Inst) error {
	a, s := w.arg(inst, 0), w.arg(inst, 1)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	w.add("%s=uint(%s>>%s);", ret, signed(a), s)
	return nil
}

func emitBitFieldInsert(w *Writer, inst *ir.Inst) error {
	base, insert, offset, count := w.arg(inst, 0), w.arg(inst, 1), w.arg(inst, 2), w.arg(inst, 3)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	w.add("%s=bitfieldInsert(%s,%s,%s,%s);", ret, base, insert, signed(offset), signed(count))
	return nil
}

func emitBitFieldExtract(isSigned bool) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		base, offset, count := w.arg(inst, 0), w.arg(inst, 1), w.arg(inst, 2)
		ret, err := w.define(inst)
		if err != nil {
			return err
		}
		if isSigned {
			w.add("%s=uint(bitfieldExtract(%s,%s,%s));", ret, signed(base), signed(offset), signed(count))
			return nil
		}
		w.add("%s=bitfieldExtract(%s,%s,%s);", ret, base, signed(offset), signed(count))
		return nil
	}
}

// emitFPCompare writes a float comparison. Ordered comparisons are false
// when either operand is NaN, unordered ones true.
func emitFPCompare(op string, ordered bool) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		a, b := w.arg(inst, 0), w.arg(inst, 1)
		ret, err := w.define(inst)
		if err != nil {
			return err
		}
		switch {
		case ordered && op == "!=":
			w.add("%s=uint(%s!=%s&&!isnan(%s)&&!isnan(%s));", ret, a, b, a, b)
		case !ordered && op != "!=":
			w.add("%s=uint(%s%s%s||isnan(%s)||isnan(%s));", ret, a, op, b, a, b)
		default:
			w.add("%s=uint(%s%s%s);", ret, a, op, b)
		}
		return nil
	}
}

// emitFPAdd16x2 adds packed half pairs, natively when the profile allows
// it and through single precision otherwise.
func emitFPAdd16x2(w *Writer, inst *ir.Inst) error {
	a, b := w.arg(inst, 0), w.arg(inst, 1)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if w.profile.SupportFloat16 {
		w.requireExtension(extensionHalfFloat)
		w.add("%s=packFloat2x16(unpackFloat2x16(%s)+unpackFloat2x16(%s));", ret, a, b)
		return nil
	}
	w.add("%s=packHalf2x16(unpackHalf2x16(%s)+unpackHalf2x16(%s));", ret, a, b)
	return nil
}
