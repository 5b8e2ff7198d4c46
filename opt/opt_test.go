// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package opt_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/opt"
)

func opcodes(p *ir.Program) []ir.Opcode {
	var ops []ir.Opcode
	p.Insts(func(inst *ir.Inst) bool {
		ops = append(ops, inst.Opcode())
		return true
	})
	return ops
}

func kinds(p *ir.Program) []ir.NodeKind {
	var out []ir.NodeKind
	for _, n := range p.Syntax {
		out = append(out, n.Kind)
	}
	return out
}

func expectValid(p *ir.Program) {
	errs, err := ir.Validate(p)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, errs).To(BeEmpty(), ir.Dump(p))
}

var _ = Describe("Passes", func() {
	var b *ir.Builder

	BeforeEach(func() {
		b = ir.NewBuilder(ir.StageCompute)
	})

	Describe("ConstantPropagation", func() {
		It("should fold integer arithmetic on immediates", func() {
			sum := b.IAdd(ir.Imm32(2), ir.Imm32(3))
			shifted := b.ShiftLeftLogical(sum, ir.Imm32(4))
			b.SetRegister(0, shifted)
			p := b.Program()

			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)

			Expect(opcodes(p)).To(Equal([]ir.Opcode{ir.OpSetRegister}))
			stored := p.Blocks[0].Insts()[0].Arg(1)
			Expect(stored.IsImmediate()).To(BeTrue())
			Expect(stored.U32()).To(Equal(uint32(80)))
			expectValid(p)
		})

		It("should keep additions that produce flags", func() {
			sum := b.IAdd(ir.Imm32(1), ir.Imm32(1))
			b.SetZFlag(b.GetZeroFromOp(sum))
			b.SetRegister(0, sum)
			p := b.Program()

			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)

			Expect(opcodes(p)).To(ContainElement(ir.OpIAdd32))
			Expect(opcodes(p)).To(ContainElement(ir.OpGetZeroFromOp))
			expectValid(p)
		})

		It("should not fold oversized shifts", func() {
			b.SetRegister(0, b.ShiftLeftLogical(ir.Imm32(1), ir.Imm32(40)))
			p := b.Program()
			opt.ConstantPropagation(p)
			Expect(opcodes(p)).To(ContainElement(ir.OpShiftLeftLogical32))
		})

		It("should fold selects and inverse casts", func() {
			x := b.GetRegister(1)
			y := b.GetRegister(2)
			cmp := b.IEqual(ir.Imm32(4), ir.Imm32(4))
			sel := b.Emit(ir.OpSelectU32, b.LogicalNot(b.LogicalNot(ir.Imm1(false))), x, y)
			round := b.BitCast(ir.U32, b.BitCast(ir.F32, sel))
			b.SetRegister(3, b.Select(cmp, round, y))
			p := b.Program()

			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)

			Expect(opcodes(p)).To(Equal([]ir.Opcode{ir.OpGetRegister, ir.OpSetRegister}))
			Expect(p.Blocks[0].Insts()[0].Arg(0).Reg()).To(Equal(ir.Reg(2)))
			expectValid(p)
		})

		It("should splice regions with a true condition", func() {
			b.If(b.IEqual(ir.Imm32(0), ir.Imm32(0)))
			b.SetRegister(0, ir.Imm32(1))
			b.EndIf()
			b.Return()
			p := b.Program()

			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)

			Expect(kinds(p)).To(Equal([]ir.NodeKind{ir.NodeBlock, ir.NodeBlock, ir.NodeReturn}))
			Expect(opcodes(p)).To(Equal([]ir.Opcode{ir.OpSetRegister}))
			expectValid(p)
		})

		It("should drop regions with a false condition", func() {
			x := b.GetRegister(5)
			b.If(ir.Imm1(false))
			b.SetRegister(0, b.IAdd(x, ir.Imm32(1)))
			b.If(b.IEqual(x, ir.Imm32(0)))
			b.SetRegister(1, x)
			b.EndIf()
			b.EndIf()
			b.SetRegister(2, ir.Imm32(7))
			b.Return()
			p := b.Program()

			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)

			Expect(kinds(p)).To(Equal([]ir.NodeKind{ir.NodeBlock, ir.NodeBlock, ir.NodeReturn}))
			Expect(opcodes(p)).To(Equal([]ir.Opcode{ir.OpSetRegister}))
			Expect(p.Blocks).To(HaveLen(2))
			Expect(p.Blocks[1].Index()).To(Equal(1))
			expectValid(p)
		})
	})

	Describe("ForwardRegisters", func() {
		It("should forward stores within a block", func() {
			v := b.IAdd(b.GetRegister(1), ir.Imm32(1))
			b.SetRegister(0, v)
			b.SetPred(ir.P1, b.IEqual(b.GetRegister(0), ir.Imm32(0)))
			b.If(b.GetPred(ir.P1, false))
			b.SetRegister(2, b.GetRegister(0))
			b.EndIf()
			p := b.Program()

			opt.ForwardRegisters(p)
			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)
			expectValid(p)

			// The first block reads R1 only; the region still reads R0.
			var reads []ir.Reg
			p.Insts(func(inst *ir.Inst) bool {
				if inst.Opcode() == ir.OpGetRegister {
					reads = append(reads, inst.Arg(0).Reg())
				}
				return true
			})
			Expect(reads).To(Equal([]ir.Reg{1, 0}))
			Expect(p.Syntax[1].Cond.Inst().Opcode()).To(Equal(ir.OpIEqual))
		})

		It("should forward condition flags", func() {
			sum := b.IAdd(b.GetRegister(1), b.GetRegister(2))
			b.SetCFlag(b.GetCarryFromOp(sum))
			b.SetRegister(0, b.Select(b.GetCFlag(), ir.Imm32(1), ir.Imm32(0)))
			p := b.Program()

			opt.ForwardRegisters(p)
			opt.ConstantPropagation(p)
			opt.DeadCodeElimination(p)

			Expect(opcodes(p)).NotTo(ContainElement(ir.OpGetCFlag))
			expectValid(p)
		})
	})

	Describe("DeadCodeElimination", func() {
		It("should remove unused chains but keep side effects", func() {
			x := b.GetRegister(1)
			b.INeg(b.BitwiseNot(x))
			b.Barrier()
			p := b.Program()

			opt.DeadCodeElimination(p)

			Expect(opcodes(p)).To(Equal([]ir.Opcode{ir.OpBarrier}))
		})
	})

	Describe("CollectInfo", func() {
		It("should record guest resources", func() {
			x := b.GetRegister(4)
			b.SetRegister(2, b.GetCbuf(ir.Imm32(3), ir.Imm32(16)))
			b.SetRegister(4, b.CompositeExtract(b.LocalInvocationID(), 0))
			b.SetPred(ir.P2, b.IEqual(x, ir.Imm32(0)))
			b.WriteGlobal(b.UConvert(ir.U64, x), x)
			b.SetZFlag(ir.Imm1(true))
			p := b.Program()

			opt.CollectInfo(p)

			Expect(p.Info.Registers).To(Equal([]ir.Reg{2, 4}))
			Expect(p.Info.Predicates).To(Equal([]ir.Pred{ir.P2}))
			Expect(p.Info.ConstantBuffers).To(Equal([]uint32{3}))
			Expect(p.Info.UsesGlobalMemory).To(BeTrue())
			Expect(p.Info.UsesLocalID).To(BeTrue())
			Expect(p.Info.UsesWorkgroupID).To(BeFalse())
			Expect(p.Info.UsesFlags).To(BeTrue())
			Expect(p.Info.UsesInt64).To(BeTrue())
			Expect(p.Info.UsesFloat16).To(BeFalse())
		})
	})

	Describe("Run", func() {
		It("should leave a valid program", func() {
			x := b.GetRegister(1)
			b.SetRegister(1, b.IAdd(x, ir.Imm32(0)))
			b.SetRegister(2, b.GetRegister(1))
			b.Return()
			p := b.Program()

			opt.Run(p)

			expectValid(p)
			Expect(opcodes(p)).To(Equal([]ir.Opcode{ir.OpGetRegister, ir.OpSetRegister, ir.OpSetRegister}))
			Expect(p.Info.Registers).To(Equal([]ir.Reg{1, 2}))
		})
	})
})
