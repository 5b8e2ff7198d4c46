// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package smrecomp_test

import (
	"context"
	"errors"
	"strings"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gogpu/smrecomp"
	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/maxwell"
	"github.com/gogpu/smrecomp/regalloc"
)

const (
	wordNOP     = uint64(0x50b0000000070f00)
	wordEXIT    = uint64(0xe30000000007000f)
	wordLOPOR   = uint64(0x5c47020000270100) // LOP.OR R0, R1, R2
	wordISETPT  = uint64(0x366e038000070407) // ISETP.T.AND P0, PT, R4, 0, PT
	wordUnknown = uint64(0xffff0000deadbeef)
)

func options() smrecomp.Options {
	opts := smrecomp.DefaultOptions()
	opts.Decode.NoSchedulingWords = true
	return opts
}

func words(stage ir.Stage, w ...uint64) *maxwell.WordEnvironment {
	return &maxwell.WordEnvironment{Words: w, ShaderStage: stage}
}

var _ = Describe("Translator", func() {
	var (
		mockCtrl *gomock.Controller
		env      *MockEnvironment
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		env = NewMockEnvironment(mockCtrl)
		env.EXPECT().Stage().Return(ir.StageFragment).AnyTimes()
		env.EXPECT().StartOffset().Return(uint32(0)).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	serve := func(program ...uint64) {
		env.EXPECT().ReadInstruction(gomock.Any()).
			DoAndReturn(func(offset uint32) (uint64, error) {
				i := int(offset / maxwell.InstructionSize)
				if i >= len(program) {
					return 0, maxwell.ErrEndOfProgram
				}
				return program[i], nil
			}).AnyTimes()
	}

	It("should start idle", func() {
		t := smrecomp.NewTranslator(options())
		Expect(t.Stage()).To(Equal(smrecomp.StageIdle))
	})

	It("should emit one OR statement per backend", func() {
		serve(wordLOPOR, wordEXIT)
		t := smrecomp.NewTranslator(options())

		result, err := t.Translate(env)

		Expect(err).NotTo(HaveOccurred())
		Expect(t.Stage()).To(Equal(smrecomp.StageDone))
		Expect(result.Outputs).To(HaveLen(2))

		asm := result.Outputs[smrecomp.BackendGLASM].Source
		Expect(strings.Count(asm, "OR.S R0.x,R0.x,R1.x;")).To(Equal(1))
		Expect(asm).To(HaveSuffix("RET;\nEND\n"))

		glsl := result.Outputs[smrecomp.BackendGLSL].Source
		Expect(strings.Count(glsl, "r0.x=r0.x|r1.x;")).To(Equal(1))
		Expect(glsl).To(HavePrefix("#version 450\n"))

		Expect(result.Outputs[smrecomp.BackendGLSL].Registers.Short).To(Equal(2))
		Expect(result.Program.Info.Registers).To(ConsistOf(ir.Reg(0), ir.Reg(1), ir.Reg(2)))
	})

	It("should stop at an unknown instruction", func() {
		gomock.InOrder(
			env.EXPECT().ReadInstruction(uint32(0)).Return(wordNOP, nil),
			env.EXPECT().ReadInstruction(uint32(8)).Return(wordUnknown, nil),
		)
		t := smrecomp.NewTranslator(options())

		result, err := t.Translate(env)

		Expect(result).To(BeNil())
		Expect(t.Stage()).To(Equal(smrecomp.StageFailed))

		var failure *smrecomp.Failure
		Expect(errors.As(err, &failure)).To(BeTrue())
		Expect(failure.Stage).To(Equal(smrecomp.StageDecoding))

		var unknown *maxwell.UnknownInstructionError
		Expect(errors.As(err, &unknown)).To(BeTrue())
		Expect(unknown.Offset).To(Equal(uint32(8)))
		Expect(unknown.Word).To(Equal(wordUnknown))
		Expect(errors.Is(err, maxwell.ErrUnknownInstruction)).To(BeTrue())
	})

	It("should fold an always true comparison", func() {
		serve(wordISETPT, wordEXIT)

		result, err := smrecomp.Translate(env, options())

		Expect(err).NotTo(HaveOccurred())
		result.Program.Insts(func(inst *ir.Inst) bool {
			Expect(inst.Opcode()).NotTo(BeElementOf(
				ir.OpIEqual, ir.OpINotEqual, ir.OpSLessThan, ir.OpULessThan,
				ir.OpSGreaterThan, ir.OpUGreaterThan, ir.OpSLessThanEqual,
				ir.OpULessThanEqual, ir.OpSGreaterThanEqual, ir.OpUGreaterThanEqual))
			return true
		})
		Expect(result.Outputs[smrecomp.BackendGLASM].Source).To(ContainSubstring("MOV.S PRED0.x,-1;"))
		Expect(result.Outputs[smrecomp.BackendGLSL].Source).To(ContainSubstring("pred[0]=1u;"))
	})

	It("should fail emission when the register space is exhausted", func() {
		serve(wordLOPOR, wordEXIT)
		opts := options()
		opts.GLASM.Registers = regalloc.Options{MaxRegisters: 1}
		t := smrecomp.NewTranslator(opts)

		result, err := t.Translate(env)

		Expect(result).To(BeNil())
		Expect(err).To(MatchError(regalloc.ErrAllocationExhausted))
		var failure *smrecomp.Failure
		Expect(errors.As(err, &failure)).To(BeTrue())
		Expect(failure.Stage).To(Equal(smrecomp.StageEmitting))
		Expect(t.Stage()).To(Equal(smrecomp.StageFailed))
	})

	It("should report handler failures as building failures", func() {
		serve(maxwell.Encode(maxwell.TEX), wordEXIT)
		t := smrecomp.NewTranslator(options())

		result, err := t.Translate(env)

		Expect(result).To(BeNil())
		Expect(err).To(MatchError(ir.ErrNotImplemented))
		var failure *smrecomp.Failure
		Expect(errors.As(err, &failure)).To(BeTrue())
		Expect(failure.Stage).To(Equal(smrecomp.StageBuilding))
	})

	It("should emit only the requested backends", func() {
		serve(wordLOPOR, wordEXIT)
		opts := options()
		opts.Backends = []smrecomp.Backend{smrecomp.BackendGLASM}

		result, err := smrecomp.Translate(env, opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outputs).To(HaveLen(1))
		Expect(result.Outputs).To(HaveKey(smrecomp.BackendGLASM))
	})

	It("should keep the built program when optimization is skipped", func() {
		serve(wordISETPT, wordEXIT)
		opts := options()
		opts.SkipOptimization = true

		result, err := smrecomp.Translate(env, opts)

		Expect(err).NotTo(HaveOccurred())
		reads := 0
		result.Program.Insts(func(inst *ir.Inst) bool {
			if inst.Opcode() == ir.OpGetRegister {
				reads++
			}
			return true
		})
		Expect(reads).To(Equal(1))
	})
})

var _ = Describe("Backend", func() {
	It("should round trip names", func() {
		for _, b := range []smrecomp.Backend{smrecomp.BackendGLASM, smrecomp.BackendGLSL} {
			parsed, ok := smrecomp.ParseBackend(b.String())
			Expect(ok).To(BeTrue())
			Expect(parsed).To(Equal(b))
		}
		_, ok := smrecomp.ParseBackend("spirv")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("TranslateAll", func() {
	It("should translate every program in order", func() {
		envs := []maxwell.Environment{
			words(ir.StageFragment, wordLOPOR, wordEXIT),
			words(ir.StageFragment, wordNOP, wordUnknown),
			words(ir.StageCompute, wordISETPT, wordEXIT),
		}

		results, err := smrecomp.TranslateAll(context.Background(), envs, options(), 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[0].Result.Program.Stage).To(Equal(ir.StageFragment))
		Expect(results[1].Err).To(MatchError(maxwell.ErrUnknownInstruction))
		Expect(results[1].Result).To(BeNil())
		Expect(results[2].Err).NotTo(HaveOccurred())
		Expect(results[2].Result.Program.Stage).To(Equal(ir.StageCompute))
	})

	It("should produce the same text as a single translation", func() {
		env := words(ir.StageFragment, wordLOPOR, wordEXIT)
		single, err := smrecomp.Translate(env, options())
		Expect(err).NotTo(HaveOccurred())

		envs := make([]maxwell.Environment, 8)
		for i := range envs {
			envs[i] = words(ir.StageFragment, wordLOPOR, wordEXIT)
		}
		results, err := smrecomp.TranslateAll(context.Background(), envs, options(), 4)

		Expect(err).NotTo(HaveOccurred())
		for _, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.Result.Outputs).To(Equal(single.Outputs))
		}
	})

	It("should stop scheduling when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		envs := []maxwell.Environment{words(ir.StageFragment, wordLOPOR, wordEXIT)}

		results, err := smrecomp.TranslateAll(ctx, envs, options(), 1)

		Expect(err).To(MatchError(context.Canceled))
		Expect(results).To(BeNil())
	})
})
