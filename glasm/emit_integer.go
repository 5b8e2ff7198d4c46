// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"github.com/gogpu/smrecomp/ir"
)

// emitIAdd32 also defines the results of the pseudo-operations reading the
// addition. They only drop their reference when emitted later.
func emitIAdd32(c *context, inst *ir.Inst) error {
	a, b := c.arg(inst, 0), c.arg(inst, 1)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	if !inst.HasAssociatedPseudoOp() {
		c.add("ADD.S %s.x,%s,%s;", ret, a, b)
		return nil
	}
	c.add("ADD.S.CC %s.x,%s,%s;", ret, a, b)
	if zero := inst.AssociatedPseudoOp(ir.OpGetZeroFromOp); zero != nil {
		z, err := c.define(zero)
		if err != nil {
			return err
		}
		c.add("SEQ.S %s.x,%s.x,0;", z, ret)
	}
	if sign := inst.AssociatedPseudoOp(ir.OpGetSignFromOp); sign != nil {
		s, err := c.define(sign)
		if err != nil {
			return err
		}
		c.add("SLT.S %s.x,%s.x,0;", s, ret)
	}
	if carry := inst.AssociatedPseudoOp(ir.OpGetCarryFromOp); carry != nil {
		cf, err := c.define(carry)
		if err != nil {
			return err
		}
		c.add("IF CF.x;MOV.S %s.x,-1;ELSE;MOV.S %s.x,0;ENDIF;", cf, cf)
	}
	if overflow := inst.AssociatedPseudoOp(ir.OpGetOverflowFromOp); overflow != nil {
		of, err := c.define(overflow)
		if err != nil {
			return err
		}
		c.add("IF OF.x;MOV.S %s.x,-1;ELSE;MOV.S %s.x,0;ENDIF;", of, of)
	}
	return nil
}

// emitPseudo drops the reference the pseudo-operation holds on its
// producer. Its result was defined when the producer was emitted.
func emitPseudo(c *context, inst *ir.Inst) error {
	producer := inst.Arg(0).Inst()
	if producer == nil || producer.Opcode() != ir.OpIAdd32 {
		return ir.NewNotImplemented(inst.Opcode().String(), "producer is not IAdd32")
	}
	c.alloc.Unref(producer)
	return nil
}

func emitBitwise(op string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		a, b := c.arg(inst, 0), c.arg(inst, 1)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("%s.%s %s.x,%s,%s;", op, c.signed(), ret, a, b)
		return nil
	}
}

func emitBitwiseNot(c *context, inst *ir.Inst) error {
	a := c.arg(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("NOT.%s %s.x,%s;", c.signed(), ret, a)
	return nil
}

// Bit field operations take width and offset packed in RC.
func emitBitFieldInsert(c *context, inst *ir.Inst) error {
	base, insert, offset, count := c.arg(inst, 0), c.arg(inst, 1), c.arg(inst, 2), c.arg(inst, 3)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("MOV.S RC.x,%s;MOV.S RC.y,%s;BFI.S %s.x,RC,%s,%s;", count, offset, ret, insert, base)
	return nil
}

func emitBitFieldExtract(typ string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		base, offset, count := c.arg(inst, 0), c.arg(inst, 1), c.arg(inst, 2)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("MOV.S RC.x,%s;MOV.S RC.y,%s;BFE.%s %s.x,RC,%s;", count, offset, typ, ret, base)
		return nil
	}
}

func emitCompositeConstruct(c *context, inst *ir.Inst) error {
	n := inst.NumArgs()
	elems := make([]string, n)
	for i := 0; i < n; i++ {
		elems[i] = c.arg(inst, i)
	}
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	// Staged through RC: ret may reuse the storage of an element.
	for i, e := range elems {
		c.add("MOV.U RC.%s,%s;", swizzle[i], e)
	}
	c.add("MOV.U %s,RC;", ret)
	return nil
}

func emitCompositeExtract(c *context, inst *ir.Inst) error {
	index := inst.Arg(1)
	if !index.IsImmediate() {
		return ir.NewNotImplemented(inst.Opcode().String(), "dynamic index")
	}
	i := index.U32()
	if int(i) >= inst.Arg(0).Type().Components() {
		return ir.NotImplementedf(inst.Opcode().String(), "index %d out of range", i)
	}
	vec := c.vector(inst, 0)
	c.arg(inst, 1)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("MOV.U %s.x,%s.%s;", ret, vec, swizzle[i])
	return nil
}

func emitCompositeInsert(c *context, inst *ir.Inst) error {
	index := inst.Arg(2)
	if !index.IsImmediate() {
		return ir.NewNotImplemented(inst.Opcode().String(), "dynamic index")
	}
	i := index.U32()
	if int(i) >= inst.Type().Components() {
		return ir.NotImplementedf(inst.Opcode().String(), "index %d out of range", i)
	}
	vec := c.vector(inst, 0)
	elem := c.arg(inst, 1)
	c.arg(inst, 2)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("MOV.U RC,%s;MOV.U RC.%s,%s;MOV.U %s,RC;", vec, swizzle[i], elem, ret)
	return nil
}

func emitPackUint2x32(c *context, inst *ir.Inst) error {
	vec := c.vector(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("PK64.U %s.x,%s;", ret, vec)
	return nil
}

func emitUnpackUint2x32(c *context, inst *ir.Inst) error {
	v := c.arg(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("UP64.U %s.xy,%s;", ret, v)
	return nil
}
