// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/regalloc"
)

var components = [5]string{"", ".x", ".xy", ".xyz", ""}

// registerName returns the temporary holding reg, without components.
func registerName(reg regalloc.Register) string {
	switch reg.Kind {
	case regalloc.Long:
		return "d" + strconv.Itoa(reg.Index)
	case regalloc.Spill:
		return "s" + strconv.Itoa(reg.Index)
	case regalloc.ConditionCode:
		return "f" + strconv.Itoa(reg.Index)
	}
	return "r" + strconv.Itoa(reg.Index)
}

// storage returns the lvalue holding a value of type t in reg.
func storage(reg regalloc.Register, t ir.Type) string {
	name := registerName(reg)
	if reg.Kind == regalloc.Short || reg.Kind == regalloc.Spill {
		if t == ir.F16x2 {
			return name + ".x"
		}
		return name + components[t.Components()]
	}
	return name
}

// define assigns storage to the result of inst and returns the lvalue.
func (w *Writer) define(inst *ir.Inst) (string, error) {
	reg, err := w.alloc.DefineValue(inst)
	if err != nil {
		return "", err
	}
	return storage(reg, inst.Type()), nil
}

// arg consumes operand i of inst and formats it as a GLSL expression of
// the type the opcode expects.
func (w *Writer) arg(inst *ir.Inst, i int) string {
	return w.operand(w.alloc.Consume(inst.Arg(i)), inst.Opcode().ArgType(i))
}

// operand formats a consumed value as type t. Registers hold raw bits, so
// floats are reinterpreted on every read.
func (w *Writer) operand(op regalloc.Operand, t ir.Type) string {
	switch op.Kind {
	case regalloc.OperandRegister:
		name := storage(op.Register, t)
		if t == ir.F32 {
			return "uintBitsToFloat(" + name + ")"
		}
		return name
	case regalloc.OperandUndef:
		return w.zero(t)
	}
	return w.immediate(op.Value.Bits(), t)
}

// immediate formats raw immediate bits as type t.
func (w *Writer) immediate(bits uint64, t ir.Type) string {
	switch t {
	case ir.U1:
		if bits != 0 {
			return "1u"
		}
		return "0u"
	case ir.F32:
		return formatFloat(math.Float32frombits(uint32(bits)))
	case ir.U64:
		if w.profile.SupportInt64 {
			return strconv.FormatUint(bits, 10) + "ul"
		}
		return fmt.Sprintf("uvec2(%du,%du)", uint32(bits), uint32(bits>>32))
	}
	return strconv.FormatUint(uint64(uint32(bits)), 10) + "u"
}

// zero returns a zero value of type t.
func (w *Writer) zero(t ir.Type) string {
	switch t {
	case ir.F32:
		return "0.0"
	case ir.U64:
		return w.immediate(0, t)
	case ir.U32x2:
		return "uvec2(0u)"
	case ir.U32x3:
		return "uvec3(0u)"
	case ir.U32x4:
		return "uvec4(0u)"
	}
	return "0u"
}

// signed reinterprets a U32 expression as int.
func signed(expr string) string {
	return "int(" + expr + ")"
}
