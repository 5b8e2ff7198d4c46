// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "fmt"

// Builder appends instructions to a Program under construction.
//
// Operand type mismatches are bugs in the caller and panic.
type Builder struct {
	prog  *Program
	block *Block
	open  int
}

// NewBuilder returns a builder for an empty program of the given stage.
func NewBuilder(stage Stage) *Builder {
	return &Builder{prog: &Program{Stage: stage}}
}

// Program returns the program built so far. All conditional regions must
// be closed.
func (b *Builder) Program() *Program {
	if b.open != 0 {
		panic(fmt.Sprintf("ir: program has %d unterminated conditional regions", b.open))
	}
	return b.prog
}

// OpenRegions returns the number of If regions not yet closed.
func (b *Builder) OpenRegions() int { return b.open }

// NumInsts returns the number of instructions emitted so far.
func (b *Builder) NumInsts() int { return b.prog.NumInsts() }

func (b *Builder) currentBlock() *Block {
	if b.block == nil {
		blk := &Block{index: len(b.prog.Blocks)}
		b.prog.Blocks = append(b.prog.Blocks, blk)
		b.prog.Syntax = append(b.prog.Syntax, Node{Kind: NodeBlock, Block: blk})
		b.block = blk
	}
	return b.block
}

// Emit appends an instruction and returns its result. Void operations
// return the empty Value.
func (b *Builder) Emit(op Opcode, args ...Value) Value {
	if op >= NumOpcodes {
		panic(fmt.Sprintf("ir: invalid opcode %d", op))
	}
	if len(args) != op.NumArgs() {
		panic(fmt.Sprintf("ir: %s takes %d operands, got %d", op, op.NumArgs(), len(args)))
	}
	for i, a := range args {
		if a.IsEmpty() {
			panic(fmt.Sprintf("ir: %s operand %d is empty", op, i))
		}
		if want := op.ArgType(i); !Compatible(want, a.Type()) {
			panic(fmt.Sprintf("ir: %s operand %d has type %s, want %s", op, i, a.Type(), want))
		}
	}
	inst := &Inst{
		op:   op,
		args: append([]Value(nil), args...),
		id:   b.prog.nextID,
	}
	b.prog.nextID++
	for _, a := range args {
		use(a)
	}
	if op.IsPseudo() {
		producer := args[0].Inst()
		if producer == nil {
			panic(fmt.Sprintf("ir: %s needs an instruction operand", op))
		}
		producer.pseudo[pseudoIndex(op)] = inst
		producer.flags |= FlagSetsCC
	}
	blk := b.currentBlock()
	inst.block = blk
	blk.insts = append(blk.insts, inst)
	if op.ResultType() == Void {
		return Value{}
	}
	return InstValue(inst)
}

// If opens a region executed only when cond is true.
func (b *Builder) If(cond Value) {
	mustType("If", cond, U1)
	use(cond)
	b.block = nil
	b.prog.Syntax = append(b.prog.Syntax, Node{Kind: NodeIf, Cond: cond})
	b.open++
}

// EndIf closes the innermost region.
func (b *Builder) EndIf() {
	if b.open == 0 {
		panic("ir: EndIf without If")
	}
	b.open--
	b.block = nil
	b.prog.Syntax = append(b.prog.Syntax, Node{Kind: NodeEndIf})
}

// Return ends execution of the program.
func (b *Builder) Return() {
	b.block = nil
	b.prog.Syntax = append(b.prog.Syntax, Node{Kind: NodeReturn})
}

func mustType(what string, v Value, t Type) {
	if v.Type() != t {
		panic(fmt.Sprintf("ir: %s operand has type %s, want %s", what, v.Type(), t))
	}
}

func mustSame(what string, a, c Value) {
	if a.Type() != c.Type() {
		panic(fmt.Sprintf("ir: %s operand types %s and %s differ", what, a.Type(), c.Type()))
	}
}

// ---------------------------------------------------------------------------
// Guest context
// ---------------------------------------------------------------------------

// GetRegister reads a guest register. RZ reads as zero.
func (b *Builder) GetRegister(r Reg) Value {
	if r == RZ {
		return Imm32(0)
	}
	return b.Emit(OpGetRegister, ImmReg(r))
}

// SetRegister writes a guest register. Writes to RZ are dropped.
func (b *Builder) SetRegister(r Reg, v Value) {
	if r == RZ {
		return
	}
	b.Emit(OpSetRegister, ImmReg(r), v)
}

// GetPred reads a guest predicate, optionally negated. PT reads as true.
func (b *Builder) GetPred(p Pred, negated bool) Value {
	var v Value
	if p == PT {
		v = Imm1(true)
	} else {
		v = b.Emit(OpGetPred, ImmPred(p))
	}
	if negated {
		return b.LogicalNot(v)
	}
	return v
}

// SetPred writes a guest predicate. Writes to PT are dropped.
func (b *Builder) SetPred(p Pred, v Value) {
	if p == PT {
		return
	}
	b.Emit(OpSetPred, ImmPred(p), v)
}

func (b *Builder) GetZFlag() Value { return b.Emit(OpGetZFlag) }
func (b *Builder) GetSFlag() Value { return b.Emit(OpGetSFlag) }
func (b *Builder) GetCFlag() Value { return b.Emit(OpGetCFlag) }
func (b *Builder) GetOFlag() Value { return b.Emit(OpGetOFlag) }

func (b *Builder) SetZFlag(v Value) { b.Emit(OpSetZFlag, v) }
func (b *Builder) SetSFlag(v Value) { b.Emit(OpSetSFlag, v) }
func (b *Builder) SetCFlag(v Value) { b.Emit(OpSetCFlag, v) }
func (b *Builder) SetOFlag(v Value) { b.Emit(OpSetOFlag, v) }

// GetCbuf reads a 32-bit word from constant buffer binding at byte offset.
func (b *Builder) GetCbuf(binding, offset Value) Value {
	return b.Emit(OpGetCbufU32, binding, offset)
}

func (b *Builder) LocalInvocationID() Value { return b.Emit(OpLocalInvocationID) }
func (b *Builder) WorkgroupID() Value       { return b.Emit(OpWorkgroupID) }

func (b *Builder) Barrier()                  { b.Emit(OpBarrier) }
func (b *Builder) WorkgroupMemoryBarrier()   { b.Emit(OpWorkgroupMemoryBarrier) }
func (b *Builder) DeviceMemoryBarrier()      { b.Emit(OpDeviceMemoryBarrier) }
func (b *Builder) DemoteToHelperInvocation() { b.Emit(OpDemoteToHelperInvocation) }

// LoadGlobal reads bits (32, 64 or 128) from a 64-bit address.
func (b *Builder) LoadGlobal(bits int, addr Value) Value {
	switch bits {
	case 32:
		return b.Emit(OpLoadGlobal32, addr)
	case 64:
		return b.Emit(OpLoadGlobal64, addr)
	case 128:
		return b.Emit(OpLoadGlobal128, addr)
	}
	panic(fmt.Sprintf("ir: invalid global load size %d", bits))
}

// WriteGlobal stores v at a 64-bit address. The width follows the type of v.
func (b *Builder) WriteGlobal(addr, v Value) {
	switch v.Type() {
	case U32:
		b.Emit(OpWriteGlobal32, addr, v)
	case U32x2:
		b.Emit(OpWriteGlobal64, addr, v)
	case U32x4:
		b.Emit(OpWriteGlobal128, addr, v)
	default:
		panic(fmt.Sprintf("ir: invalid global store type %s", v.Type()))
	}
}

// ---------------------------------------------------------------------------
// Pseudo-operations
// ---------------------------------------------------------------------------

func (b *Builder) GetZeroFromOp(op Value) Value     { return b.Emit(OpGetZeroFromOp, op) }
func (b *Builder) GetSignFromOp(op Value) Value     { return b.Emit(OpGetSignFromOp, op) }
func (b *Builder) GetCarryFromOp(op Value) Value    { return b.Emit(OpGetCarryFromOp, op) }
func (b *Builder) GetOverflowFromOp(op Value) Value { return b.Emit(OpGetOverflowFromOp, op) }

// ---------------------------------------------------------------------------
// Composites and casts
// ---------------------------------------------------------------------------

// CompositeConstruct builds a U32 vector from 2 to 4 elements.
func (b *Builder) CompositeConstruct(elems ...Value) Value {
	for _, e := range elems {
		mustType("CompositeConstruct", e, U32)
	}
	switch len(elems) {
	case 2:
		return b.Emit(OpCompositeConstructU32x2, elems...)
	case 3:
		return b.Emit(OpCompositeConstructU32x3, elems...)
	case 4:
		return b.Emit(OpCompositeConstructU32x4, elems...)
	}
	panic(fmt.Sprintf("ir: invalid composite size %d", len(elems)))
}

// CompositeExtract returns element index of a U32 vector.
func (b *Builder) CompositeExtract(vec Value, index int) Value {
	if index < 0 || index >= vec.Type().Components() {
		panic(fmt.Sprintf("ir: element %d out of range for %s", index, vec.Type()))
	}
	switch vec.Type() {
	case U32x2:
		return b.Emit(OpCompositeExtractU32x2, vec, Imm32(uint32(index)))
	case U32x3:
		return b.Emit(OpCompositeExtractU32x3, vec, Imm32(uint32(index)))
	case U32x4:
		return b.Emit(OpCompositeExtractU32x4, vec, Imm32(uint32(index)))
	}
	panic(fmt.Sprintf("ir: cannot extract from %s", vec.Type()))
}

// CompositeInsert returns vec with element index replaced by e.
func (b *Builder) CompositeInsert(vec, e Value, index int) Value {
	mustType("CompositeInsert", e, U32)
	if index < 0 || index >= vec.Type().Components() {
		panic(fmt.Sprintf("ir: element %d out of range for %s", index, vec.Type()))
	}
	switch vec.Type() {
	case U32x2:
		return b.Emit(OpCompositeInsertU32x2, vec, e, Imm32(uint32(index)))
	case U32x3:
		return b.Emit(OpCompositeInsertU32x3, vec, e, Imm32(uint32(index)))
	case U32x4:
		return b.Emit(OpCompositeInsertU32x4, vec, e, Imm32(uint32(index)))
	}
	panic(fmt.Sprintf("ir: cannot insert into %s", vec.Type()))
}

// BitCast reinterprets v as type to.
func (b *Builder) BitCast(to Type, v Value) Value {
	from := v.Type()
	switch {
	case from == to:
		return v
	case to == U32 && from == F32:
		return b.Emit(OpBitCastU32F32, v)
	case to == F32 && from == U32:
		return b.Emit(OpBitCastF32U32, v)
	case to == U32 && from == F16x2:
		return b.Emit(OpBitCastU32F16x2, v)
	case to == F16x2 && from == U32:
		return b.Emit(OpBitCastF16x2U32, v)
	}
	panic(fmt.Sprintf("ir: invalid bit cast from %s to %s", from, to))
}

// PackUint2x32 joins a U32x2 into a U64, element 0 in the low half.
func (b *Builder) PackUint2x32(v Value) Value { return b.Emit(OpPackUint2x32, v) }

// UnpackUint2x32 splits a U64 into a U32x2.
func (b *Builder) UnpackUint2x32(v Value) Value { return b.Emit(OpUnpackUint2x32, v) }

// Select returns t when cond is true and f otherwise.
func (b *Builder) Select(cond, t, f Value) Value {
	mustType("Select", cond, U1)
	mustSame("Select", t, f)
	if cond.IsImmediate() {
		if cond.U1() {
			return t
		}
		return f
	}
	switch t.Type() {
	case U1:
		return b.Emit(OpSelectU1, cond, t, f)
	case U32:
		return b.Emit(OpSelectU32, cond, t, f)
	case U64:
		return b.Emit(OpSelectU64, cond, t, f)
	case F32:
		return b.Emit(OpSelectF32, cond, t, f)
	}
	panic(fmt.Sprintf("ir: cannot select %s", t.Type()))
}

// ---------------------------------------------------------------------------
// Integer
// ---------------------------------------------------------------------------

// IAdd adds two integers of the same width.
func (b *Builder) IAdd(a, c Value) Value {
	mustSame("IAdd", a, c)
	switch a.Type() {
	case U32:
		return b.Emit(OpIAdd32, a, c)
	case U64:
		return b.Emit(OpIAdd64, a, c)
	}
	panic(fmt.Sprintf("ir: cannot add %s", a.Type()))
}

func (b *Builder) binary32(op Opcode, a, c Value) Value {
	mustType(op.String(), a, U32)
	mustSame(op.String(), a, c)
	return b.Emit(op, a, c)
}

func (b *Builder) ISub(a, c Value) Value                 { return b.binary32(OpISub32, a, c) }
func (b *Builder) IMul(a, c Value) Value                 { return b.binary32(OpIMul32, a, c) }
func (b *Builder) INeg(a Value) Value                    { return b.Emit(OpINeg32, a) }
func (b *Builder) IAbs(a Value) Value                    { return b.Emit(OpIAbs32, a) }
func (b *Builder) ShiftLeftLogical(a, s Value) Value     { return b.binary32(OpShiftLeftLogical32, a, s) }
func (b *Builder) ShiftRightLogical(a, s Value) Value    { return b.binary32(OpShiftRightLogical32, a, s) }
func (b *Builder) ShiftRightArithmetic(a, s Value) Value { return b.binary32(OpShiftRightArithmetic32, a, s) }
func (b *Builder) BitwiseAnd(a, c Value) Value           { return b.binary32(OpBitwiseAnd32, a, c) }
func (b *Builder) BitwiseOr(a, c Value) Value            { return b.binary32(OpBitwiseOr32, a, c) }
func (b *Builder) BitwiseXor(a, c Value) Value           { return b.binary32(OpBitwiseXor32, a, c) }
func (b *Builder) BitwiseNot(a Value) Value              { return b.Emit(OpBitwiseNot32, a) }
func (b *Builder) BitReverse(a Value) Value              { return b.Emit(OpBitReverse32, a) }
func (b *Builder) BitCount(a Value) Value                { return b.Emit(OpBitCount32, a) }

// BitFieldInsert inserts the low count bits of insert into base at offset.
func (b *Builder) BitFieldInsert(base, insert, offset, count Value) Value {
	return b.Emit(OpBitFieldInsert, base, insert, offset, count)
}

// BitFieldExtract extracts count bits of base starting at offset.
func (b *Builder) BitFieldExtract(base, offset, count Value, signed bool) Value {
	if signed {
		return b.Emit(OpBitFieldSExtract, base, offset, count)
	}
	return b.Emit(OpBitFieldUExtract, base, offset, count)
}

// FindMsb returns the index of the most significant set bit.
func (b *Builder) FindMsb(a Value, signed bool) Value {
	if signed {
		return b.Emit(OpFindSMsb32, a)
	}
	return b.Emit(OpFindUMsb32, a)
}

// IMin returns the smaller integer.
func (b *Builder) IMin(a, c Value, signed bool) Value {
	if signed {
		return b.binary32(OpSMin32, a, c)
	}
	return b.binary32(OpUMin32, a, c)
}

// IMax returns the larger integer.
func (b *Builder) IMax(a, c Value, signed bool) Value {
	if signed {
		return b.binary32(OpSMax32, a, c)
	}
	return b.binary32(OpUMax32, a, c)
}

func (b *Builder) ILessThan(a, c Value, signed bool) Value {
	if signed {
		return b.binary32(OpSLessThan, a, c)
	}
	return b.binary32(OpULessThan, a, c)
}

func (b *Builder) ILessThanEqual(a, c Value, signed bool) Value {
	if signed {
		return b.binary32(OpSLessThanEqual, a, c)
	}
	return b.binary32(OpULessThanEqual, a, c)
}

func (b *Builder) IGreaterThan(a, c Value, signed bool) Value {
	if signed {
		return b.binary32(OpSGreaterThan, a, c)
	}
	return b.binary32(OpUGreaterThan, a, c)
}

func (b *Builder) IGreaterThanEqual(a, c Value, signed bool) Value {
	if signed {
		return b.binary32(OpSGreaterThanEqual, a, c)
	}
	return b.binary32(OpUGreaterThanEqual, a, c)
}

func (b *Builder) IEqual(a, c Value) Value    { return b.binary32(OpIEqual, a, c) }
func (b *Builder) INotEqual(a, c Value) Value { return b.binary32(OpINotEqual, a, c) }

// CompareOp is an integer comparison kind in guest encoding order.
type CompareOp uint8

const (
	CompareF CompareOp = iota
	CompareLT
	CompareEQ
	CompareLE
	CompareGT
	CompareNE
	CompareGE
	CompareT
)

// IntegerCompare compares two integers. CompareF and CompareT fold to
// constants and emit nothing.
func (b *Builder) IntegerCompare(op CompareOp, a, c Value, signed bool) Value {
	switch op {
	case CompareF:
		return Imm1(false)
	case CompareLT:
		return b.ILessThan(a, c, signed)
	case CompareEQ:
		return b.IEqual(a, c)
	case CompareLE:
		return b.ILessThanEqual(a, c, signed)
	case CompareGT:
		return b.IGreaterThan(a, c, signed)
	case CompareNE:
		return b.INotEqual(a, c)
	case CompareGE:
		return b.IGreaterThanEqual(a, c, signed)
	case CompareT:
		return Imm1(true)
	}
	panic(fmt.Sprintf("ir: invalid compare op %d", op))
}

// ---------------------------------------------------------------------------
// Logical
// ---------------------------------------------------------------------------

// LogicalOr folds immediate operands.
func (b *Builder) LogicalOr(a, c Value) Value {
	mustType("LogicalOr", a, U1)
	mustType("LogicalOr", c, U1)
	switch {
	case a.IsImmediate():
		if a.U1() {
			return Imm1(true)
		}
		return c
	case c.IsImmediate():
		if c.U1() {
			return Imm1(true)
		}
		return a
	}
	return b.Emit(OpLogicalOr, a, c)
}

// LogicalAnd folds immediate operands.
func (b *Builder) LogicalAnd(a, c Value) Value {
	mustType("LogicalAnd", a, U1)
	mustType("LogicalAnd", c, U1)
	switch {
	case a.IsImmediate():
		if a.U1() {
			return c
		}
		return Imm1(false)
	case c.IsImmediate():
		if c.U1() {
			return a
		}
		return Imm1(false)
	}
	return b.Emit(OpLogicalAnd, a, c)
}

// LogicalXor folds immediate operands.
func (b *Builder) LogicalXor(a, c Value) Value {
	mustType("LogicalXor", a, U1)
	mustType("LogicalXor", c, U1)
	switch {
	case a.IsImmediate() && c.IsImmediate():
		return Imm1(a.U1() != c.U1())
	case a.IsImmediate():
		if a.U1() {
			return b.LogicalNot(c)
		}
		return c
	case c.IsImmediate():
		if c.U1() {
			return b.LogicalNot(a)
		}
		return a
	}
	return b.Emit(OpLogicalXor, a, c)
}

// LogicalNot folds immediates and double negation.
func (b *Builder) LogicalNot(a Value) Value {
	mustType("LogicalNot", a, U1)
	if a.IsImmediate() {
		return Imm1(!a.U1())
	}
	if inst := a.Resolve().Inst(); inst != nil && inst.op == OpLogicalNot {
		return inst.args[0]
	}
	return b.Emit(OpLogicalNot, a)
}

// ---------------------------------------------------------------------------
// Floating point
// ---------------------------------------------------------------------------

func (b *Builder) fbinary(op Opcode, a, c Value) Value {
	mustType(op.String(), a, F32)
	mustSame(op.String(), a, c)
	return b.Emit(op, a, c)
}

func (b *Builder) FPAdd(a, c Value) Value { return b.fbinary(OpFPAdd32, a, c) }
func (b *Builder) FPMul(a, c Value) Value { return b.fbinary(OpFPMul32, a, c) }
func (b *Builder) FPMin(a, c Value) Value { return b.fbinary(OpFPMin32, a, c) }
func (b *Builder) FPMax(a, c Value) Value { return b.fbinary(OpFPMax32, a, c) }

// FPFma computes a*c+d.
func (b *Builder) FPFma(a, c, d Value) Value {
	mustSame("FPFma", a, c)
	mustSame("FPFma", a, d)
	return b.Emit(OpFPFma32, a, c, d)
}

// FPAdd16x2 adds two packed half pairs.
func (b *Builder) FPAdd16x2(a, c Value) Value {
	mustSame("FPAdd16x2", a, c)
	return b.Emit(OpFPAdd16x2, a, c)
}

// FPAbsNeg applies absolute value then negation when requested.
func (b *Builder) FPAbsNeg(v Value, abs, neg bool) Value {
	if abs {
		v = b.Emit(OpFPAbs32, v)
	}
	if neg {
		v = b.Emit(OpFPNeg32, v)
	}
	return v
}

func (b *Builder) FPSaturate(v Value) Value    { return b.Emit(OpFPSaturate32, v) }
func (b *Builder) FPRecip(v Value) Value       { return b.Emit(OpFPRecip32, v) }
func (b *Builder) FPRecipSqrt(v Value) Value   { return b.Emit(OpFPRecipSqrt32, v) }
func (b *Builder) FPSqrt(v Value) Value        { return b.Emit(OpFPSqrt, v) }
func (b *Builder) FPSin(v Value) Value         { return b.Emit(OpFPSin, v) }
func (b *Builder) FPCos(v Value) Value         { return b.Emit(OpFPCos, v) }
func (b *Builder) FPExp2(v Value) Value        { return b.Emit(OpFPExp2, v) }
func (b *Builder) FPLog2(v Value) Value        { return b.Emit(OpFPLog2, v) }
func (b *Builder) FPRoundEven(v Value) Value   { return b.Emit(OpFPRoundEven32, v) }
func (b *Builder) FPFloor(v Value) Value       { return b.Emit(OpFPFloor32, v) }
func (b *Builder) FPCeil(v Value) Value        { return b.Emit(OpFPCeil32, v) }
func (b *Builder) FPTrunc(v Value) Value       { return b.Emit(OpFPTrunc32, v) }
func (b *Builder) FPIsNan(v Value) Value       { return b.Emit(OpFPIsNan32, v) }
func (b *Builder) FPOrdEqual(a, c Value) Value { return b.fbinary(OpFPOrdEqual32, a, c) }

// FPCompare emits the ordered or unordered comparison op selects.
func (b *Builder) FPCompare(op Opcode, a, c Value) Value {
	switch op {
	case OpFPOrdEqual32, OpFPUnordEqual32, OpFPOrdNotEqual32, OpFPUnordNotEqual32,
		OpFPOrdLessThan32, OpFPUnordLessThan32, OpFPOrdGreaterThan32, OpFPUnordGreaterThan32,
		OpFPOrdLessThanEqual32, OpFPUnordLessThanEqual32,
		OpFPOrdGreaterThanEqual32, OpFPUnordGreaterThanEqual32:
		return b.fbinary(op, a, c)
	}
	panic(fmt.Sprintf("ir: %s is not a float comparison", op))
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// ConvertFToI converts a float to a 32-bit integer.
func (b *Builder) ConvertFToI(v Value, signed bool) Value {
	if signed {
		return b.Emit(OpConvertS32F32, v)
	}
	return b.Emit(OpConvertU32F32, v)
}

// ConvertIToF converts a 32-bit integer to a float.
func (b *Builder) ConvertIToF(v Value, signed bool) Value {
	if signed {
		return b.Emit(OpConvertF32S32, v)
	}
	return b.Emit(OpConvertF32U32, v)
}

// UConvert zero-extends or truncates between U32 and U64.
func (b *Builder) UConvert(to Type, v Value) Value {
	switch {
	case v.Type() == to:
		return v
	case to == U64 && v.Type() == U32:
		return b.Emit(OpConvertU64U32, v)
	case to == U32 && v.Type() == U64:
		return b.Emit(OpConvertU32U64, v)
	}
	panic(fmt.Sprintf("ir: invalid integer conversion from %s to %s", v.Type(), to))
}

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

// FlowTest evaluates a flow test against the guest condition flags.
func (b *Builder) FlowTest(test FlowTest) (Value, error) {
	switch test {
	case FlowT:
		return Imm1(true), nil
	case FlowF:
		return Imm1(false), nil
	case FlowEQ:
		return b.GetZFlag(), nil
	case FlowNE:
		return b.LogicalNot(b.GetZFlag()), nil
	case FlowLT:
		return b.LogicalXor(b.GetSFlag(), b.GetOFlag()), nil
	case FlowGE:
		return b.LogicalNot(b.LogicalXor(b.GetSFlag(), b.GetOFlag())), nil
	case FlowLE:
		return b.LogicalOr(b.GetZFlag(), b.LogicalXor(b.GetSFlag(), b.GetOFlag())), nil
	case FlowGT:
		return b.LogicalAnd(b.LogicalNot(b.GetZFlag()), b.LogicalNot(b.LogicalXor(b.GetSFlag(), b.GetOFlag()))), nil
	case FlowLO:
		return b.LogicalNot(b.GetCFlag()), nil
	case FlowHS:
		return b.GetCFlag(), nil
	case FlowLS:
		return b.LogicalOr(b.GetZFlag(), b.LogicalNot(b.GetCFlag())), nil
	case FlowHI:
		return b.LogicalAnd(b.GetCFlag(), b.LogicalNot(b.GetZFlag())), nil
	case FlowOFF:
		return b.LogicalNot(b.GetOFlag()), nil
	case FlowOFT:
		return b.GetOFlag(), nil
	case FlowSFF:
		return b.LogicalNot(b.GetSFlag()), nil
	case FlowSFT:
		return b.GetSFlag(), nil
	}
	return Value{}, NewNotImplemented("FlowTest", test.String())
}

// Condition evaluates a guard condition to a U1 value.
func (b *Builder) Condition(c Condition) (Value, error) {
	pred := b.GetPred(c.Pred, c.Negated)
	if c.FlowTest == FlowT {
		return pred, nil
	}
	flow, err := b.FlowTest(c.FlowTest)
	if err != nil {
		return Value{}, err
	}
	return b.LogicalAnd(pred, flow), nil
}
