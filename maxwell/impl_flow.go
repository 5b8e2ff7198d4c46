// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

// underFlowTest runs emit under the instruction's flow test.
func (t *translator) underFlowTest(insn Instruction, emit func()) error {
	test := ir.FlowTest(fFlowTest.Get(insn))
	if test == ir.FlowT {
		emit()
		return nil
	}
	cond, err := t.b.FlowTest(test)
	if err != nil {
		return err
	}
	t.b.If(cond)
	emit()
	t.b.EndIf()
	return nil
}

func (t *translator) exit(insn Instruction, _ Opcode) error {
	return t.underFlowTest(insn, t.b.Return)
}

func (t *translator) kil(insn Instruction, _ Opcode) error {
	if t.env.Stage() != ir.StageFragment {
		return ir.NotImplementedf("KIL", "%s stage", t.env.Stage())
	}
	return t.underFlowTest(insn, t.b.DemoteToHelperInvocation)
}

// bra lowers a forward branch to a conditional region covering the
// skipped instructions. The region closes when translation reaches the
// target.
func (t *translator) bra(insn Instruction, _ Opcode) error {
	if fBraCbuf.Bool(insn) {
		return ir.NewNotImplemented("BRA", "constant buffer target")
	}
	rel := fBraOffset.Int(insn)
	switch {
	case rel < 0:
		return ir.NotImplementedf("BRA", "backward branch by %d", rel)
	case rel%InstructionSize != 0:
		return ir.NotImplementedf("BRA", "misaligned offset %d", rel)
	}
	target := int64(t.offset) + InstructionSize + rel
	if n := len(t.regions); n > 0 && target > int64(t.regions[n-1]) {
		return ir.NotImplementedf("BRA", "target 0x%x leaves the enclosing region", target)
	}
	if rel == 0 {
		return nil
	}

	guard := insn.Guard()
	guard.FlowTest = ir.FlowTest(fFlowTest.Get(insn))
	taken, err := t.b.Condition(guard)
	if err != nil {
		return err
	}
	t.b.If(t.b.LogicalNot(taken))
	t.regions = append(t.regions, uint32(target))
	return nil
}

func (t *translator) bar(Instruction, Opcode) error {
	t.b.Barrier()
	return nil
}

// Memory barrier scopes.
const (
	membarCTA = iota
	membarGL
	membarSYS
	membarVC
)

func (t *translator) membar(insn Instruction, _ Opcode) error {
	switch level := fMembarLevel.Get(insn); level {
	case membarCTA:
		t.b.WorkgroupMemoryBarrier()
	case membarGL, membarSYS:
		t.b.DeviceMemoryBarrier()
	default:
		return ir.NotImplementedf("MEMBAR", "level %d", level)
	}
	return nil
}

func (t *translator) nop(Instruction, Opcode) error { return nil }
