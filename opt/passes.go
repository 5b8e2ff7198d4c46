// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package opt implements IR passes run between translation and emission.
//
// Passes mutate the program in place. They never change the structured
// syntax other than removing regions whose condition is constant.
package opt

import (
	"sort"

	"github.com/samber/lo"

	"github.com/gogpu/smrecomp/ir"
)

// Run applies every pass in the order the backends expect and fills in
// the program's Info.
func Run(p *ir.Program) {
	ForwardRegisters(p)
	ConstantPropagation(p)
	DeadCodeElimination(p)
	CollectInfo(p)
}

// foldConstantIfs removes If nodes whose condition resolves to a constant.
// True regions are spliced into the enclosing code, false regions are
// dropped along with their instructions.
func foldConstantIfs(p *ir.Program) {
	syntax := p.Syntax
	out := make([]ir.Node, 0, len(syntax))
	// Per open region, whether its EndIf is kept.
	var keep []bool
	skip := 0
	for i := range syntax {
		node := syntax[i]
		if skip > 0 {
			switch node.Kind {
			case ir.NodeIf:
				p.SetCond(i, ir.Imm1(false))
				skip++
			case ir.NodeEndIf:
				skip--
			case ir.NodeBlock:
				discard(node.Block)
			}
			continue
		}
		switch node.Kind {
		case ir.NodeIf:
			cond := node.Cond.Resolve()
			if !cond.IsImmediate() {
				if cond != node.Cond {
					p.SetCond(i, cond)
					node = p.Syntax[i]
				}
				keep = append(keep, true)
				out = append(out, node)
				continue
			}
			p.SetCond(i, cond)
			if cond.U1() {
				keep = append(keep, false)
			} else {
				skip = 1
			}
		case ir.NodeEndIf:
			top := keep[len(keep)-1]
			keep = keep[:len(keep)-1]
			if top {
				out = append(out, node)
			}
		default:
			out = append(out, node)
		}
	}
	p.Syntax = out
	p.Compact()
}

// discard drops every instruction of a block that can never execute.
func discard(b *ir.Block) {
	for _, inst := range b.Insts() {
		inst.Invalidate()
	}
	b.Remove(func(*ir.Inst) bool { return true })
}

type flagKind int

const (
	flagZ flagKind = iota
	flagS
	flagC
	flagO
)

// ForwardRegisters replaces reads of guest registers, predicates and
// flags with the value last written to them in the same block.
func ForwardRegisters(p *ir.Program) {
	for _, b := range p.Blocks {
		regs := make(map[ir.Reg]ir.Value)
		preds := make(map[ir.Pred]ir.Value)
		flags := make(map[flagKind]ir.Value)
		for _, inst := range b.Insts() {
			switch inst.Opcode() {
			case ir.OpSetRegister:
				regs[inst.Arg(0).Reg()] = inst.Arg(1)
			case ir.OpGetRegister:
				forward(inst, regs[inst.Arg(0).Reg()])
			case ir.OpSetPred:
				preds[inst.Arg(0).Pred()] = inst.Arg(1)
			case ir.OpGetPred:
				forward(inst, preds[inst.Arg(0).Pred()])
			case ir.OpSetZFlag:
				flags[flagZ] = inst.Arg(0)
			case ir.OpSetSFlag:
				flags[flagS] = inst.Arg(0)
			case ir.OpSetCFlag:
				flags[flagC] = inst.Arg(0)
			case ir.OpSetOFlag:
				flags[flagO] = inst.Arg(0)
			case ir.OpGetZFlag:
				forward(inst, flags[flagZ])
			case ir.OpGetSFlag:
				forward(inst, flags[flagS])
			case ir.OpGetCFlag:
				forward(inst, flags[flagC])
			case ir.OpGetOFlag:
				forward(inst, flags[flagO])
			}
		}
	}
}

func forward(inst *ir.Inst, v ir.Value) {
	if !v.IsEmpty() {
		inst.ReplaceUsesWith(v)
	}
}

// DeadCodeElimination removes instructions without uses or side effects,
// repeating until nothing changes.
func DeadCodeElimination(p *ir.Program) {
	for changed := true; changed; {
		changed = false
		for _, b := range p.Blocks {
			insts := b.Insts()
			dead := make(map[*ir.Inst]bool)
			for i := len(insts) - 1; i >= 0; i-- {
				inst := insts[i]
				if inst.HasUses() || inst.Opcode().MayHaveSideEffects() {
					continue
				}
				inst.Invalidate()
				dead[inst] = true
			}
			if len(dead) > 0 {
				b.Remove(func(inst *ir.Inst) bool { return dead[inst] })
				changed = true
			}
		}
	}
}

// CollectInfo records which guest resources the program touches.
func CollectInfo(p *ir.Program) {
	var (
		info  ir.Info
		regs  []ir.Reg
		preds []ir.Pred
		cbufs []uint32
	)
	p.Insts(func(inst *ir.Inst) bool {
		switch op := inst.Opcode(); op {
		case ir.OpGetRegister, ir.OpSetRegister:
			regs = append(regs, inst.Arg(0).Reg())
		case ir.OpGetPred, ir.OpSetPred:
			preds = append(preds, inst.Arg(0).Pred())
		case ir.OpGetZFlag, ir.OpGetSFlag, ir.OpGetCFlag, ir.OpGetOFlag,
			ir.OpSetZFlag, ir.OpSetSFlag, ir.OpSetCFlag, ir.OpSetOFlag:
			info.UsesFlags = true
		case ir.OpGetCbufU32:
			if binding := inst.Arg(0); binding.IsImmediate() {
				cbufs = append(cbufs, binding.U32())
			}
		case ir.OpLoadGlobal32, ir.OpLoadGlobal64, ir.OpLoadGlobal128,
			ir.OpWriteGlobal32, ir.OpWriteGlobal64, ir.OpWriteGlobal128:
			info.UsesGlobalMemory = true
		case ir.OpLocalInvocationID:
			info.UsesLocalID = true
		case ir.OpWorkgroupID:
			info.UsesWorkgroupID = true
		case ir.OpDemoteToHelperInvocation:
			info.UsesDemote = true
		case ir.OpFPAdd16x2, ir.OpBitCastF16x2U32, ir.OpBitCastU32F16x2:
			info.UsesFloat16 = true
		}
		if inst.Type().IsLong() {
			info.UsesInt64 = true
		}
		return true
	})

	info.Registers = lo.Uniq(regs)
	sort.Slice(info.Registers, func(i, j int) bool { return info.Registers[i] < info.Registers[j] })
	info.Predicates = lo.Uniq(preds)
	sort.Slice(info.Predicates, func(i, j int) bool { return info.Predicates[i] < info.Predicates[j] })
	info.ConstantBuffers = lo.Uniq(cbufs)
	sort.Slice(info.ConstantBuffers, func(i, j int) bool { return info.ConstantBuffers[i] < info.ConstantBuffers[j] })
	p.Info = info
}
