// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package opt

import "github.com/gogpu/smrecomp/ir"

// ConstantPropagation folds instructions whose result is known at
// translation time and removes conditional regions with constant
// conditions. Folded instructions become Identity and are left for
// DeadCodeElimination.
func ConstantPropagation(p *ir.Program) {
	p.Insts(func(inst *ir.Inst) bool {
		for i, arg := range inst.Args() {
			if r := arg.Resolve(); r != arg {
				inst.SetArg(i, r)
			}
		}
		if v, ok := fold(inst); ok {
			inst.ReplaceUsesWith(v)
		}
		return true
	})
	foldConstantIfs(p)
}

func fold(inst *ir.Inst) (ir.Value, bool) {
	args := inst.Args()
	imm := func(i int) bool { return args[i].IsImmediate() }
	all := func() bool {
		for i := range args {
			if !imm(i) {
				return false
			}
		}
		return len(args) > 0
	}

	switch op := inst.Opcode(); op {
	case ir.OpGetRegister:
		if args[0].Reg() == ir.RZ {
			return ir.Imm32(0), true
		}
	case ir.OpGetPred:
		if args[0].Pred() == ir.PT {
			return ir.Imm1(true), true
		}

	case ir.OpIAdd32:
		// Flag results need the instruction itself.
		if inst.HasAssociatedPseudoOp() {
			return ir.Value{}, false
		}
		switch {
		case all():
			return ir.Imm32(args[0].U32() + args[1].U32()), true
		case imm(0) && args[0].U32() == 0:
			return args[1], true
		case imm(1) && args[1].U32() == 0:
			return args[0], true
		}
	case ir.OpISub32, ir.OpIMul32, ir.OpBitwiseAnd32, ir.OpBitwiseOr32, ir.OpBitwiseXor32,
		ir.OpShiftLeftLogical32, ir.OpShiftRightLogical32, ir.OpShiftRightArithmetic32,
		ir.OpSMin32, ir.OpUMin32, ir.OpSMax32, ir.OpUMax32:
		if all() {
			if v, ok := foldBinary32(op, args[0].U32(), args[1].U32()); ok {
				return ir.Imm32(v), true
			}
		}
	case ir.OpINeg32:
		if all() {
			return ir.Imm32(-args[0].U32()), true
		}
	case ir.OpBitwiseNot32:
		if all() {
			return ir.Imm32(^args[0].U32()), true
		}
	case ir.OpIEqual, ir.OpINotEqual, ir.OpSLessThan, ir.OpULessThan,
		ir.OpSLessThanEqual, ir.OpULessThanEqual, ir.OpSGreaterThan, ir.OpUGreaterThan,
		ir.OpSGreaterThanEqual, ir.OpUGreaterThanEqual:
		if all() {
			return ir.Imm1(compare32(op, args[0].U32(), args[1].U32())), true
		}

	case ir.OpSelectU1, ir.OpSelectU32, ir.OpSelectU64, ir.OpSelectF32:
		if imm(0) {
			if args[0].U1() {
				return args[1], true
			}
			return args[2], true
		}
		if args[1] == args[2] {
			return args[1], true
		}

	case ir.OpLogicalAnd:
		switch {
		case imm(0):
			if args[0].U1() {
				return args[1], true
			}
			return ir.Imm1(false), true
		case imm(1):
			if args[1].U1() {
				return args[0], true
			}
			return ir.Imm1(false), true
		}
	case ir.OpLogicalOr:
		switch {
		case imm(0):
			if args[0].U1() {
				return ir.Imm1(true), true
			}
			return args[1], true
		case imm(1):
			if args[1].U1() {
				return ir.Imm1(true), true
			}
			return args[0], true
		}
	case ir.OpLogicalXor:
		if all() {
			return ir.Imm1(args[0].U1() != args[1].U1()), true
		}
	case ir.OpLogicalNot:
		if all() {
			return ir.Imm1(!args[0].U1()), true
		}
		if src := args[0].Inst(); src != nil && src.Opcode() == ir.OpLogicalNot {
			return src.Arg(0), true
		}

	case ir.OpBitCastU32F32, ir.OpBitCastF32U32:
		if all() {
			if op == ir.OpBitCastU32F32 {
				return ir.Imm32(uint32(args[0].Bits())), true
			}
			return ir.ImmF32Bits(uint32(args[0].Bits())), true
		}
		if src := args[0].Inst(); src != nil && isInverseCast(op, src.Opcode()) {
			return src.Arg(0), true
		}
	case ir.OpBitCastU32F16x2, ir.OpBitCastF16x2U32:
		if src := args[0].Inst(); src != nil && isInverseCast(op, src.Opcode()) {
			return src.Arg(0), true
		}

	case ir.OpConvertU64U32:
		if all() {
			return ir.Imm64(uint64(args[0].U32())), true
		}
	case ir.OpConvertU32U64:
		if all() {
			return ir.Imm32(uint32(args[0].U64())), true
		}
	case ir.OpIAdd64:
		if all() {
			return ir.Imm64(args[0].U64() + args[1].U64()), true
		}
	case ir.OpFPIsNan32:
		if all() {
			f := args[0].F32()
			return ir.Imm1(f != f), true
		}
	}
	return ir.Value{}, false
}

func isInverseCast(op, src ir.Opcode) bool {
	switch op {
	case ir.OpBitCastU32F32:
		return src == ir.OpBitCastF32U32
	case ir.OpBitCastF32U32:
		return src == ir.OpBitCastU32F32
	case ir.OpBitCastU32F16x2:
		return src == ir.OpBitCastF16x2U32
	case ir.OpBitCastF16x2U32:
		return src == ir.OpBitCastU32F16x2
	}
	return false
}

func foldBinary32(op ir.Opcode, a, c uint32) (uint32, bool) {
	switch op {
	case ir.OpISub32:
		return a - c, true
	case ir.OpIMul32:
		return a * c, true
	case ir.OpBitwiseAnd32:
		return a & c, true
	case ir.OpBitwiseOr32:
		return a | c, true
	case ir.OpBitwiseXor32:
		return a ^ c, true
	case ir.OpSMin32:
		return uint32(min(int32(a), int32(c))), true
	case ir.OpUMin32:
		return min(a, c), true
	case ir.OpSMax32:
		return uint32(max(int32(a), int32(c))), true
	case ir.OpUMax32:
		return max(a, c), true
	}
	// Host shift results for counts of 32 or more are undefined.
	if c >= 32 {
		return 0, false
	}
	switch op {
	case ir.OpShiftLeftLogical32:
		return a << c, true
	case ir.OpShiftRightLogical32:
		return a >> c, true
	case ir.OpShiftRightArithmetic32:
		return uint32(int32(a) >> c), true
	}
	return 0, false
}

func compare32(op ir.Opcode, a, c uint32) bool {
	sa, sc := int32(a), int32(c)
	switch op {
	case ir.OpIEqual:
		return a == c
	case ir.OpINotEqual:
		return a != c
	case ir.OpSLessThan:
		return sa < sc
	case ir.OpULessThan:
		return a < c
	case ir.OpSLessThanEqual:
		return sa <= sc
	case ir.OpULessThanEqual:
		return a <= c
	case ir.OpSGreaterThan:
		return sa > sc
	case ir.OpUGreaterThan:
		return a > c
	case ir.OpSGreaterThanEqual:
		return sa >= sc
	case ir.OpUGreaterThanEqual:
		return a >= c
	}
	panic("opt: not an integer comparison: " + op.String())
}
