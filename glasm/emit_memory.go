// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"github.com/gogpu/smrecomp/ir"
)

func emitGetCbuf(c *context, inst *ir.Inst) error {
	binding := inst.Arg(0)
	if !binding.IsImmediate() {
		return ir.NewNotImplemented("GetCbufU32", "dynamic constant buffer index")
	}
	index := binding.U32()
	c.arg(inst, 0)
	offset := c.arg(inst, 1)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.cbufs[index] = true
	c.add("LDC.U32 %s.x,c%d[%s];", ret, index, offset)
	return nil
}

func emitLoadGlobal(typ, mask string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		addr := c.arg(inst, 0)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.global = true
		c.add("LOAD.%s %s%s,%s;", typ, ret, mask, addr)
		return nil
	}
}

func emitWriteGlobal32(c *context, inst *ir.Inst) error {
	addr, v := c.arg(inst, 0), c.arg(inst, 1)
	c.global = true
	c.add("STORE.U32 %s,%s;", v, addr)
	return nil
}

func emitWriteGlobal(typ string) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		addr, v := c.arg(inst, 0), c.vector(inst, 1)
		c.global = true
		c.add("STORE.%s %s,%s;", typ, v, addr)
		return nil
	}
}
