// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"fmt"
	"math"
	"strconv"
)

type valueKind uint8

const (
	valueEmpty valueKind = iota
	valueInst
	valueImm
	valueUndef
)

// Value is an operand: the result of an instruction, an immediate or an
// undefined placeholder. The zero Value is empty and carries no type.
type Value struct {
	kind valueKind
	typ  Type
	inst *Inst
	bits uint64
}

// InstValue returns a value bound to the result of inst.
func InstValue(inst *Inst) Value {
	return Value{kind: valueInst, inst: inst}
}

// Imm1 returns a boolean immediate.
func Imm1(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{kind: valueImm, typ: U1, bits: bits}
}

// Imm32 returns a 32-bit unsigned immediate.
func Imm32(v uint32) Value {
	return Value{kind: valueImm, typ: U32, bits: uint64(v)}
}

// ImmS32 returns a 32-bit immediate from a signed integer.
func ImmS32(v int32) Value {
	return Imm32(uint32(v))
}

// ImmF32 returns a 32-bit float immediate.
func ImmF32(v float32) Value {
	return Value{kind: valueImm, typ: F32, bits: uint64(math.Float32bits(v))}
}

// ImmF32Bits returns a 32-bit float immediate from its bit pattern.
func ImmF32Bits(bits uint32) Value {
	return Value{kind: valueImm, typ: F32, bits: uint64(bits)}
}

// Imm64 returns a 64-bit unsigned immediate.
func Imm64(v uint64) Value {
	return Value{kind: valueImm, typ: U64, bits: v}
}

// ImmF64 returns a 64-bit float immediate.
func ImmF64(v float64) Value {
	return Value{kind: valueImm, typ: F64, bits: math.Float64bits(v)}
}

// ImmReg returns a register operand.
func ImmReg(r Reg) Value {
	return Value{kind: valueImm, typ: RegType, bits: uint64(r)}
}

// ImmPred returns a predicate operand.
func ImmPred(p Pred) Value {
	return Value{kind: valueImm, typ: PredType, bits: uint64(p)}
}

// Undef returns an undefined placeholder of the given type.
func Undef(t Type) Value {
	return Value{kind: valueUndef, typ: t}
}

// IsEmpty reports whether the value is the zero Value.
func (v Value) IsEmpty() bool { return v.kind == valueEmpty }

// IsImmediate reports whether the value is an immediate, looking through
// identities.
func (v Value) IsImmediate() bool {
	return v.Resolve().kind == valueImm
}

// IsUndef reports whether the value is an undefined placeholder.
func (v Value) IsUndef() bool { return v.kind == valueUndef }

// IsInst reports whether the value references an instruction.
func (v Value) IsInst() bool { return v.kind == valueInst }

// Inst returns the referenced instruction, or nil.
func (v Value) Inst() *Inst {
	if v.kind != valueInst {
		return nil
	}
	return v.inst
}

// Resolve follows Identity instructions to the underlying value.
func (v Value) Resolve() Value {
	for v.kind == valueInst && v.inst.op == OpIdentity {
		v = v.inst.args[0]
	}
	return v
}

// Type returns the type of the value.
func (v Value) Type() Type {
	switch v.kind {
	case valueInst:
		return v.inst.Type()
	case valueEmpty:
		return Void
	}
	return v.typ
}

// Bits returns the raw immediate bits.
func (v Value) Bits() uint64 { return v.Resolve().bits }

// U1 returns the boolean immediate.
func (v Value) U1() bool { return v.mustImm(U1).bits != 0 }

// U32 returns the 32-bit immediate.
func (v Value) U32() uint32 { return uint32(v.mustImm(U32).bits) }

// F32 returns the float immediate.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.mustImm(F32).bits)) }

// U64 returns the 64-bit immediate.
func (v Value) U64() uint64 { return v.mustImm(U64).bits }

// F64 returns the double immediate.
func (v Value) F64() float64 { return math.Float64frombits(v.mustImm(F64).bits) }

// Reg returns the register operand.
func (v Value) Reg() Reg { return Reg(v.mustImm(RegType).bits) }

// Pred returns the predicate operand.
func (v Value) Pred() Pred { return Pred(v.mustImm(PredType).bits) }

func (v Value) mustImm(t Type) Value {
	r := v.Resolve()
	if r.kind != valueImm || r.typ != t {
		panic(fmt.Sprintf("ir: value %s is not a %s immediate", v, t))
	}
	return r
}

// String formats the value for dumps.
func (v Value) String() string {
	switch v.kind {
	case valueEmpty:
		return "<empty>"
	case valueUndef:
		return "undef." + v.typ.String()
	case valueInst:
		return "%" + strconv.Itoa(v.inst.id)
	}
	switch v.typ {
	case U1:
		if v.bits != 0 {
			return "#true"
		}
		return "#false"
	case F32:
		return "#" + strconv.FormatFloat(float64(math.Float32frombits(uint32(v.bits))), 'g', -1, 32)
	case F64:
		return "#" + strconv.FormatFloat(math.Float64frombits(v.bits), 'g', -1, 64)
	case RegType:
		return Reg(v.bits).String()
	case PredType:
		return Pred(v.bits).String()
	}
	return "#" + strconv.FormatUint(v.bits, 10)
}
