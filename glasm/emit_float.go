// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"strings"

	"github.com/gogpu/smrecomp/ir"
)

func emitFPAbs(c *context, inst *ir.Inst) error {
	a := c.arg(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("MOV.F %s.x,|%s|;", ret, strings.TrimPrefix(a, "-"))
	return nil
}

func emitFPFma(c *context, inst *ir.Inst) error {
	a, b, d := c.arg(inst, 0), c.arg(inst, 1), c.arg(inst, 2)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("MAD.F %s.x,%s,%s,%s;", ret, a, b, d)
	return nil
}

// emitFPSqrt computes the square root as the reciprocal of the reciprocal
// square root.
func emitFPSqrt(c *context, inst *ir.Inst) error {
	a := c.arg(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("RSQ.F RC.x,%s;RCP.F %s.x,RC.x;", a, ret)
	return nil
}

// emitFPAdd16x2 unpacks both halves to single precision, adds them and
// packs the result.
func emitFPAdd16x2(c *context, inst *ir.Inst) error {
	a, b := c.arg(inst, 0), c.arg(inst, 1)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("UP2H.F RC.xy,%s;UP2H.F RC.zw,%s;ADD.F RC.xy,RC,RC.zwzw;PK2H %s.x,RC;", a, b, ret)
	return nil
}

// emitFPCompare writes a float comparison yielding 0 or -1. Ordered
// comparisons are false when either operand is NaN, unordered ones true.
func emitFPCompare(op string, ordered, inequality bool) emitFunc {
	return func(c *context, inst *ir.Inst) error {
		a, b := c.arg(inst, 0), c.arg(inst, 1)
		ret, err := c.define(inst)
		if err != nil {
			return err
		}
		c.add("%s.F RC.x,%s,%s;", op, a, b)
		switch {
		case ordered && inequality:
			c.add("SEQ.F RC.y,%s,%s;SEQ.F RC.z,%s,%s;AND.U RC.x,RC.x,RC.y;AND.U RC.x,RC.x,RC.z;", a, a, b, b)
		case !ordered && !inequality:
			c.add("SNE.F RC.y,%s,%s;SNE.F RC.z,%s,%s;OR.U RC.x,RC.x,RC.y;OR.U RC.x,RC.x,RC.z;", a, a, b, b)
		}
		c.add("SNE.S %s.x,RC.x,0;", ret)
		return nil
	}
}

func emitFPIsNan(c *context, inst *ir.Inst) error {
	a := c.arg(inst, 0)
	ret, err := c.define(inst)
	if err != nil {
		return err
	}
	c.add("SNE.F RC.x,%s,%s;SNE.S %s.x,RC.x,0;", a, a, ret)
	return nil
}
