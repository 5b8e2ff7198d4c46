// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/regalloc"
)

// writeNode writes one entry of the structured syntax list.
func (w *Writer) writeNode(node ir.Node) error {
	switch node.Kind {
	case ir.NodeBlock:
		for _, inst := range node.Block.Insts() {
			if err := w.writeInst(inst); err != nil {
				return err
			}
		}
	case ir.NodeIf:
		cond := w.operand(w.alloc.Consume(node.Cond), ir.U1)
		w.add("if(%s!=0u){", cond)
		w.pushIndent()
	case ir.NodeEndIf:
		w.popIndent()
		w.add("}")
	case ir.NodeReturn:
		w.add("return;")
	}
	return nil
}

func (w *Writer) writeInst(inst *ir.Inst) error {
	if w.options.WriterFlags&WriterFlagDebugInfo != 0 {
		w.add("// %%%d = %s", inst.ID(), inst.Opcode())
	}
	if err := emitTable[inst.Opcode()](w, inst); err != nil {
		return err
	}
	w.alloc.Release(inst)
	return nil
}

func emitStatement(text string) emitFunc {
	return func(w *Writer, _ *ir.Inst) error {
		w.add("%s", text)
		return nil
	}
}

func emitDemote(w *Writer, _ *ir.Inst) error {
	if w.program.Stage != ir.StageFragment {
		return ir.NotImplementedf("DemoteToHelperInvocation", "%s stage", w.program.Stage)
	}
	w.add("discard;")
	return nil
}

func emitGetRegister(w *Writer, inst *ir.Inst) error {
	r := inst.Arg(0).Reg()
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if r == ir.RZ {
		w.add("%s=0u;", ret)
		return nil
	}
	w.maxReg = max(w.maxReg, int(r))
	w.add("%s=gpr[%d];", ret, r)
	return nil
}

func emitSetRegister(w *Writer, inst *ir.Inst) error {
	r := inst.Arg(0).Reg()
	v := w.arg(inst, 1)
	if r == ir.RZ {
		return nil
	}
	w.maxReg = max(w.maxReg, int(r))
	w.add("gpr[%d]=%s;", r, v)
	return nil
}

func emitGetPred(w *Writer, inst *ir.Inst) error {
	p := inst.Arg(0).Pred()
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if p == ir.PT {
		w.add("%s=1u;", ret)
		return nil
	}
	w.preds = true
	w.add("%s=pred[%d];", ret, p)
	return nil
}

func emitSetPred(w *Writer, inst *ir.Inst) error {
	p := inst.Arg(0).Pred()
	v := w.arg(inst, 1)
	if p == ir.PT {
		return nil
	}
	w.preds = true
	w.add("pred[%d]=%s;", p, v)
	return nil
}

func emitGetFlag(component string) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		ret, err := w.define(inst)
		if err != nil {
			return err
		}
		w.flags = true
		w.add("%s=flags.%s;", ret, component)
		return nil
	}
}

func emitSetFlag(component string) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		v := w.arg(inst, 0)
		w.flags = true
		w.add("flags.%s=%s;", component, v)
		return nil
	}
}

// emitGetCbuf reads a word of a std140 uvec4 array at a byte offset.
func emitGetCbuf(w *Writer, inst *ir.Inst) error {
	binding := inst.Arg(0)
	if !binding.IsImmediate() {
		return ir.NewNotImplemented("GetCbufU32", "dynamic constant buffer index")
	}
	index := binding.U32()
	w.arg(inst, 0)
	offsetValue := inst.Arg(1)
	offset := w.arg(inst, 1)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	w.cbufs[index] = true
	if offsetValue.IsImmediate() {
		off := offsetValue.U32()
		w.add("%s=cbuf%d[%d][%d];", ret, index, off/16, (off/4)%4)
		return nil
	}
	w.add("%s=cbuf%d[%s>>4u][(%s>>2u)&3u];", ret, index, offset, offset)
	return nil
}

func emitInvocation(source string) emitFunc {
	return func(w *Writer, inst *ir.Inst) error {
		if w.program.Stage != ir.StageCompute {
			return ir.NotImplementedf(inst.Opcode().String(), "%s stage", w.program.Stage)
		}
		ret, err := w.define(inst)
		if err != nil {
			return err
		}
		w.add("%s=%s;", ret, source)
		return nil
	}
}

// emitPseudo drops the reference the pseudo-operation holds on its
// producer. Its result was defined when the producer was emitted.
func emitPseudo(w *Writer, inst *ir.Inst) error {
	producer := inst.Arg(0).Inst()
	if producer == nil || producer.Opcode() != ir.OpIAdd32 {
		return ir.NewNotImplemented(inst.Opcode().String(), "producer is not IAdd32")
	}
	w.alloc.Unref(producer)
	return nil
}

var swizzle = [4]string{"x", "y", "z", "w"}

// vector consumes a vector operand and returns the temporary holding it.
// Callers select components.
func (w *Writer) vector(inst *ir.Inst, i int) string {
	op := w.alloc.Consume(inst.Arg(i))
	if op.Kind != regalloc.OperandRegister {
		return "uvec4(0u)"
	}
	return registerName(op.Register)
}

func vectorType(n int) string {
	return "uvec" + strconv.Itoa(n)
}

func emitCompositeConstruct(w *Writer, inst *ir.Inst) error {
	n := inst.NumArgs()
	elems := make([]string, n)
	for i := 0; i < n; i++ {
		elems[i] = w.arg(inst, i)
	}
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	w.add("%s=%s(%s);", ret, vectorType(n), strings.Join(elems, ","))
	return nil
}

func emitCompositeExtract(w *Writer, inst *ir.Inst) error {
	index := inst.Arg(1)
	if !index.IsImmediate() {
		return ir.NewNotImplemented(inst.Opcode().String(), "dynamic index")
	}
	i := int(index.U32())
	n := inst.Arg(0).Type().Components()
	if i >= n {
		return ir.NotImplementedf(inst.Opcode().String(), "index %d out of range", i)
	}
	vec := w.vector(inst, 0)
	w.arg(inst, 1)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	w.add("%s=%s.%s;", ret, vec, swizzle[i])
	return nil
}

// emitCompositeInsert rebuilds the vector in one assignment so the result
// may share storage with either operand.
func emitCompositeInsert(w *Writer, inst *ir.Inst) error {
	index := inst.Arg(2)
	if !index.IsImmediate() {
		return ir.NewNotImplemented(inst.Opcode().String(), "dynamic index")
	}
	i := int(index.U32())
	n := inst.Type().Components()
	if i >= n {
		return ir.NotImplementedf(inst.Opcode().String(), "index %d out of range", i)
	}
	vec := w.vector(inst, 0)
	elem := w.arg(inst, 1)
	w.arg(inst, 2)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	parts := make([]string, n)
	for j := range parts {
		if j == i {
			parts[j] = elem
		} else {
			parts[j] = vec + "." + swizzle[j]
		}
	}
	w.add("%s=%s(%s);", ret, vectorType(n), strings.Join(parts, ","))
	return nil
}

func emitPackUint2x32(w *Writer, inst *ir.Inst) error {
	vec := w.vector(inst, 0)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if w.profile.SupportInt64 {
		w.requireExtension(extensionInt64)
		w.add("%s=packUint2x32(%s.xy);", ret, vec)
		return nil
	}
	w.add("%s=%s.xy;", ret, vec)
	return nil
}

func emitUnpackUint2x32(w *Writer, inst *ir.Inst) error {
	v := w.arg(inst, 0)
	ret, err := w.define(inst)
	if err != nil {
		return err
	}
	if w.profile.SupportInt64 {
		w.requireExtension(extensionInt64)
		w.add("%s=unpackUint2x32(%s);", ret, v)
		return nil
	}
	w.add("%s=%s;", ret, v)
	return nil
}
