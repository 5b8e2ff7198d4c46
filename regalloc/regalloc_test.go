// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package regalloc_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/regalloc"
)

// walk emulates an emitter: operands are consumed before the result is
// defined, dead results are released afterwards.
func walk(a *regalloc.Allocator, p *ir.Program, visit func(*ir.Inst, regalloc.Register)) error {
	var err error
	p.Insts(func(inst *ir.Inst) bool {
		if regalloc.IsAliased(inst) {
			a.Release(inst)
			return true
		}
		for _, arg := range inst.Args() {
			if arg.IsInst() {
				a.Consume(arg)
			}
		}
		if inst.Type() != ir.Void {
			var reg regalloc.Register
			reg, err = a.DefineValue(inst)
			if err != nil {
				return false
			}
			if visit != nil {
				visit(inst, reg)
			}
		}
		a.Release(inst)
		return true
	})
	return err
}

var _ = Describe("Allocator", func() {
	var (
		b *ir.Builder
		a *regalloc.Allocator
	)

	BeforeEach(func() {
		b = ir.NewBuilder(ir.StageCompute)
		a = regalloc.New(regalloc.Options{})
	})

	Context("defining values", func() {
		It("should take the lowest free slot", func() {
			x := b.GetRegister(1).Inst()
			y := b.GetRegister(2).Inst()
			rx, err := a.Define(x)
			Expect(err).NotTo(HaveOccurred())
			ry, err := a.Define(y)
			Expect(err).NotTo(HaveOccurred())
			Expect(rx).To(Equal(regalloc.Register{Kind: regalloc.Short, Index: 0}))
			Expect(ry).To(Equal(regalloc.Register{Kind: regalloc.Short, Index: 1}))
		})

		It("should keep long values out of the short space", func() {
			lo := b.GetRegister(1)
			long := b.UConvert(ir.U64, lo).Inst()
			rs, err := a.Define(lo.Inst())
			Expect(err).NotTo(HaveOccurred())
			rl, err := a.DefineValue(long)
			Expect(err).NotTo(HaveOccurred())
			Expect(rl.Kind).To(Equal(regalloc.Long))
			Expect(rl.Index).To(Equal(0))
			Expect(rs.Kind).To(Equal(regalloc.Short))
		})

		It("should put booleans in the condition code space", func() {
			cmp := b.IEqual(b.GetRegister(1), ir.Imm32(0)).Inst()
			r, err := a.DefineValue(cmp)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Kind).To(Equal(regalloc.ConditionCode))
		})

		It("should panic on a second definition", func() {
			x := b.GetRegister(1).Inst()
			_, _ = a.Define(x)
			Expect(func() { _, _ = a.Define(x) }).To(Panic())
		})
	})

	Context("consuming values", func() {
		It("should return the same name until the last use", func() {
			x := b.GetRegister(1)
			b.IAdd(x, x)
			reg, err := a.Define(x.Inst())
			Expect(err).NotTo(HaveOccurred())

			first := a.Consume(x)
			Expect(a.IsLive(reg)).To(BeTrue())
			second := a.Consume(x)
			Expect(first).To(Equal(second))
			Expect(first.Register).To(Equal(reg))
			Expect(a.IsLive(reg)).To(BeFalse())
		})

		It("should format immediates without allocating", func() {
			op := a.Consume(ir.Imm32(7))
			Expect(op.Kind).To(Equal(regalloc.OperandImmediate))
			Expect(op.Value.U32()).To(Equal(uint32(7)))
			Expect(a.Stats()).To(Equal(regalloc.Stats{}))
		})

		It("should not change counts on Peek", func() {
			x := b.GetRegister(1)
			b.INeg(x)
			reg, _ := a.Define(x.Inst())
			a.Peek(x)
			a.Peek(x)
			Expect(a.IsLive(reg)).To(BeTrue())
		})

		It("should free dead results on Release", func() {
			x := b.GetRegister(1).Inst()
			reg, _ := a.Define(x)
			a.Release(x)
			Expect(a.IsLive(reg)).To(BeFalse())
			y := b.GetRegister(2).Inst()
			again, _ := a.Define(y)
			Expect(again).To(Equal(reg))
		})
	})

	Context("alias chains", func() {
		It("should resolve through bit casts to the producer", func() {
			x := b.GetRegister(1)
			f := b.BitCast(ir.F32, x)
			u := b.BitCast(ir.U32, f)
			b.INeg(u)

			Expect(regalloc.IsAliased(f.Inst())).To(BeTrue())
			Expect(regalloc.IsAliased(x.Inst())).To(BeFalse())
			Expect(regalloc.AliasInst(u.Inst())).To(BeIdenticalTo(x.Inst()))

			reg, _ := a.Define(x.Inst())
			a.Release(f.Inst())
			a.Release(u.Inst())
			Expect(a.IsLive(reg)).To(BeTrue())

			op := a.Consume(u)
			Expect(op.Register).To(Equal(reg))
			Expect(a.IsLive(reg)).To(BeFalse())
		})

		It("should stop at an immediate", func() {
			f := b.BitCast(ir.F32, ir.Imm32(0x3f800000))
			Expect(f.IsImmediate()).To(BeFalse())
			Expect(regalloc.AliasInst(f.Inst())).To(BeIdenticalTo(f.Inst()))
			op := a.Peek(f)
			Expect(op.Kind).To(Equal(regalloc.OperandImmediate))
			Expect(op.Value.U32()).To(Equal(uint32(0x3f800000)))
		})

		It("should free the producer when a dead alias is released", func() {
			x := b.GetRegister(1)
			f := b.BitCast(ir.F32, x)
			reg, _ := a.Define(x.Inst())
			a.Release(x.Inst())
			Expect(a.IsLive(reg)).To(BeTrue())
			a.Release(f.Inst())
			Expect(a.IsLive(reg)).To(BeFalse())
		})
	})

	Context("capacity", func() {
		It("should fail when short values exceed the register count", func() {
			a = regalloc.New(regalloc.Options{MaxRegisters: 4})
			var err error
			for i := 0; i < 5 && err == nil; i++ {
				_, err = a.Define(b.GetRegister(ir.Reg(i)).Inst())
			}
			Expect(errors.Is(err, regalloc.ErrAllocationExhausted)).To(BeTrue())
		})

		It("should fail past the default bound of 4096 live values", func() {
			for i := 0; i < regalloc.NumSlots; i++ {
				b.GetRegister(ir.Reg(i % 200))
			}
			p := b.Program()
			var err error
			p.Insts(func(inst *ir.Inst) bool {
				_, err = a.Define(inst)
				return err == nil
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = a.Define(b.GetRegister(0).Inst())
			Expect(err).To(MatchError(regalloc.ErrAllocationExhausted))
		})

		It("should count long values against the same bound", func() {
			a = regalloc.New(regalloc.Options{MaxRegisters: 2})
			_, err := a.LongDefine(b.UConvert(ir.U64, b.GetRegister(0)).Inst())
			Expect(err).NotTo(HaveOccurred())
			_, err = a.Define(b.GetRegister(1).Inst())
			Expect(err).NotTo(HaveOccurred())
			_, err = a.LongDefine(b.UConvert(ir.U64, b.GetRegister(2)).Inst())
			Expect(err).To(MatchError(regalloc.ErrAllocationExhausted))
		})

		It("should spill short values when slots remain", func() {
			a = regalloc.New(regalloc.Options{MaxRegisters: 1, SpillSlots: 1})
			r0, _ := a.Define(b.GetRegister(0).Inst())
			r1, err := a.Define(b.GetRegister(1).Inst())
			Expect(err).NotTo(HaveOccurred())
			Expect(r0.Kind).To(Equal(regalloc.Short))
			Expect(r1).To(Equal(regalloc.Register{Kind: regalloc.Spill, Index: 0}))
			_, err = a.Define(b.GetRegister(2).Inst())
			Expect(err).To(MatchError(regalloc.ErrAllocationExhausted))
			Expect(a.Stats()).To(Equal(regalloc.Stats{Short: 1, Spill: 1}))
		})

		It("should never spill long values", func() {
			a = regalloc.New(regalloc.Options{MaxRegisters: 1, SpillSlots: 8})
			_, _ = a.Define(b.GetRegister(0).Inst())
			_, err := a.LongDefine(b.UConvert(ir.U64, b.GetRegister(1)).Inst())
			Expect(err).To(MatchError(regalloc.ErrAllocationExhausted))
		})
	})

	Context("over whole programs", func() {
		It("should never hand out a live slot", func() {
			rng := rand.New(rand.NewSource(1))
			var live []ir.Value
			for i := 0; i < 400; i++ {
				switch {
				case len(live) < 2 || rng.Intn(3) == 0:
					live = append(live, b.GetRegister(ir.Reg(rng.Intn(32))))
				case rng.Intn(4) == 0:
					x := live[rng.Intn(len(live))]
					live = append(live, b.UConvert(ir.U32, b.IAdd(b.UConvert(ir.U64, x), ir.Imm64(1))))
				case rng.Intn(4) == 0:
					x := live[rng.Intn(len(live))]
					b.SetPred(ir.P0, b.IEqual(x, ir.Imm32(0)))
				default:
					x := live[rng.Intn(len(live))]
					y := live[rng.Intn(len(live))]
					live = append(live, b.IAdd(x, b.BitCast(ir.U32, b.BitCast(ir.F32, y))))
				}
				if len(live) > 12 {
					k := rng.Intn(len(live))
					b.SetRegister(ir.Reg(k), live[k])
					live = append(live[:k], live[k+1:]...)
				}
			}
			for i, v := range live {
				b.SetRegister(ir.Reg(i), v)
			}
			p := b.Program()

			// lastUse maps each storage owner to the position of its last
			// reader, looking through aliases.
			pos := make(map[*ir.Inst]int)
			lastUse := make(map[*ir.Inst]int)
			n := 0
			p.Insts(func(inst *ir.Inst) bool {
				pos[inst] = n
				for _, arg := range inst.Args() {
					if ref := arg.Inst(); ref != nil {
						lastUse[regalloc.AliasInst(ref)] = n
					}
				}
				n++
				return true
			})

			owners := make(map[regalloc.Register]*ir.Inst)
			err := walk(a, p, func(inst *ir.Inst, reg regalloc.Register) {
				if prev, ok := owners[reg]; ok {
					Expect(lastUse[prev]).To(BeNumerically("<=", pos[inst]),
						"%%%d reuses %v while %%%d is live", inst.ID(), reg, prev.ID())
				}
				owners[reg] = inst
			})
			Expect(err).NotTo(HaveOccurred())

			// Everything is consumed by the end.
			for reg := range owners {
				Expect(a.IsLive(reg)).To(BeFalse(), "slot %v still live", reg)
			}
		})

		It("should reuse slots in straight-line chains", func() {
			x := b.GetRegister(0)
			for i := 0; i < 100; i++ {
				x = b.IAdd(x, ir.Imm32(1))
			}
			b.SetRegister(0, x)
			Expect(walk(a, b.Program(), nil)).To(Succeed())
			Expect(a.Stats().Short).To(Equal(1))
		})
	})
})
