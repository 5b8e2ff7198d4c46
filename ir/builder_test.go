// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"strings"
	"testing"
)

// =============================================================================
// Emit
// =============================================================================

func TestBuilder_EmitTracksUses(t *testing.T) {
	b := NewBuilder(StageCompute)
	a := b.GetRegister(0)
	sum := b.IAdd(a, a)
	b.SetRegister(1, sum)

	if got := a.Inst().Uses(); got != 2 {
		t.Errorf("GetRegister uses = %d, want 2", got)
	}
	if got := sum.Inst().Uses(); got != 1 {
		t.Errorf("IAdd32 uses = %d, want 1", got)
	}
}

func TestBuilder_VoidOpsReturnEmpty(t *testing.T) {
	b := NewBuilder(StageCompute)
	if v := b.Emit(OpBarrier); !v.IsEmpty() {
		t.Errorf("Barrier returned %s, want empty value", v)
	}
}

func TestBuilder_WidthMismatchPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *Builder)
	}{
		{"IAdd U32+U64", func(b *Builder) { b.IAdd(Imm32(1), Imm64(2)) }},
		{"IEqual U32 vs F32", func(b *Builder) { b.IEqual(Imm32(1), ImmF32(1)) }},
		{"Select mismatched arms", func(b *Builder) { b.Select(b.GetPred(P0, false), Imm32(1), ImmF32(1)) }},
		{"LogicalAnd U32", func(b *Builder) { b.LogicalAnd(Imm32(1), Imm1(true)) }},
		{"wrong operand count", func(b *Builder) { b.Emit(OpIAdd32, Imm32(1)) }},
		{"wrong operand type", func(b *Builder) { b.Emit(OpFPAdd32, Imm32(1), ImmF32(2)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", tt.name)
				}
			}()
			tt.fn(NewBuilder(StageVertex))
		})
	}
}

// =============================================================================
// Folding
// =============================================================================

func TestBuilder_LogicalFolding(t *testing.T) {
	b := NewBuilder(StageVertex)
	p := b.GetPred(P1, false)
	before := b.NumInsts()

	if got := b.LogicalAnd(Imm1(true), p); got != p {
		t.Errorf("true && p = %s, want %s", got, p)
	}
	if got := b.LogicalAnd(p, Imm1(false)); !got.IsImmediate() || got.U1() {
		t.Errorf("p && false = %s, want #false", got)
	}
	if got := b.LogicalOr(p, Imm1(true)); !got.IsImmediate() || !got.U1() {
		t.Errorf("p || true = %s, want #true", got)
	}
	if got := b.LogicalOr(Imm1(false), p); got != p {
		t.Errorf("false || p = %s, want %s", got, p)
	}
	if got := b.LogicalXor(Imm1(true), Imm1(true)); !got.IsImmediate() || got.U1() {
		t.Errorf("true ^ true = %s, want #false", got)
	}
	if got := b.LogicalNot(Imm1(false)); !got.U1() {
		t.Errorf("!false = %s", got)
	}
	if b.NumInsts() != before {
		t.Errorf("folding emitted %d instructions", b.NumInsts()-before)
	}

	not := b.LogicalNot(p)
	if got := b.LogicalNot(not); got != p {
		t.Errorf("!!p = %s, want %s", got, p)
	}
}

func TestBuilder_GuestStateShortcuts(t *testing.T) {
	b := NewBuilder(StageVertex)
	if v := b.GetRegister(RZ); !v.IsImmediate() || v.U32() != 0 {
		t.Errorf("GetRegister(RZ) = %s, want #0", v)
	}
	if v := b.GetPred(PT, false); !v.IsImmediate() || !v.U1() {
		t.Errorf("GetPred(PT) = %s, want #true", v)
	}
	if v := b.GetPred(PT, true); !v.IsImmediate() || v.U1() {
		t.Errorf("GetPred(!PT) = %s, want #false", v)
	}
	b.SetRegister(RZ, Imm32(5))
	b.SetPred(PT, Imm1(false))
	if b.NumInsts() != 0 {
		t.Errorf("shortcuts emitted %d instructions", b.NumInsts())
	}
}

func TestBuilder_SelectFoldsImmediateCondition(t *testing.T) {
	b := NewBuilder(StageVertex)
	x := b.GetRegister(0)
	if got := b.Select(Imm1(true), x, Imm32(0)); got != x {
		t.Errorf("Select(true) = %s, want %s", got, x)
	}
	if got := b.Select(Imm1(false), x, Imm32(7)); got.U32() != 7 {
		t.Errorf("Select(false) = %s, want #7", got)
	}
}

// =============================================================================
// Pseudo-operations and regions
// =============================================================================

func TestBuilder_PseudoOpsAssociate(t *testing.T) {
	b := NewBuilder(StageVertex)
	sum := b.IAdd(b.GetRegister(0), b.GetRegister(1))
	zero := b.GetZeroFromOp(sum)
	carry := b.GetCarryFromOp(sum)

	inst := sum.Inst()
	if !inst.HasFlag(FlagSetsCC) {
		t.Error("producer should be flagged as setting condition codes")
	}
	if inst.AssociatedPseudoOp(OpGetZeroFromOp) != zero.Inst() {
		t.Error("zero pseudo-op not associated")
	}
	if inst.AssociatedPseudoOp(OpGetCarryFromOp) != carry.Inst() {
		t.Error("carry pseudo-op not associated")
	}
	if inst.AssociatedPseudoOp(OpGetSignFromOp) != nil {
		t.Error("sign pseudo-op should not be associated")
	}

	zero.Inst().Invalidate()
	if inst.AssociatedPseudoOp(OpGetZeroFromOp) != nil {
		t.Error("invalidated pseudo-op still associated")
	}
}

func TestBuilder_IfRegions(t *testing.T) {
	b := NewBuilder(StageVertex)
	b.If(b.GetPred(P0, false))
	b.SetRegister(0, Imm32(1))
	if b.OpenRegions() != 1 {
		t.Fatalf("open regions = %d", b.OpenRegions())
	}
	b.EndIf()

	p := b.Program()
	kinds := make([]NodeKind, len(p.Syntax))
	for i, n := range p.Syntax {
		kinds[i] = n.Kind
	}
	want := []NodeKind{NodeBlock, NodeIf, NodeBlock, NodeEndIf}
	if len(kinds) != len(want) {
		t.Fatalf("syntax = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("syntax = %v, want %v", kinds, want)
		}
	}
}

func TestBuilder_UnclosedRegionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Program with open region did not panic")
		}
	}()
	b := NewBuilder(StageVertex)
	b.If(b.GetPred(P0, false))
	b.Program()
}

// =============================================================================
// Dump
// =============================================================================

func TestDump(t *testing.T) {
	b := NewBuilder(StageFragment)
	a := b.GetRegister(1)
	c := b.GetRegister(2)
	b.SetRegister(3, b.BitwiseOr(a, c))
	b.If(b.GetPred(P0, true))
	b.SetPred(P1, Imm1(true))
	b.EndIf()
	b.Return()

	want := strings.Join([]string{
		"stage fragment",
		"block 0:",
		"  %0 = GetRegister R1",
		"  %1 = GetRegister R2",
		"  %2 = BitwiseOr32 %0, %1",
		"  SetRegister R3, %2",
		"  %4 = GetPred P0",
		"  %5 = LogicalNot %4",
		"if %5",
		"  block 1:",
		"    SetPred P1, #true",
		"endif",
		"return",
		"",
	}, "\n")

	got := Dump(b.Program())
	if got != want {
		t.Errorf("Dump mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if Dump(b.Program()) != got {
		t.Error("Dump is not deterministic")
	}
}
