// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package regalloc assigns backend storage to IR values during emission.
//
// An Allocator serves one emission pass. Values are defined in program order
// and freed when their last use is consumed, so slots are recycled within
// the pass. Storage comes from four disjoint index spaces: short (32-bit
// vectors), long (64-bit), spill and condition code (booleans).
//
// Instructions that only reinterpret the bits of another value (Identity
// and bit casts) never get storage of their own. They resolve through their
// operand chain to the producing instruction and hold one use of it.
package regalloc

import (
	"errors"
	"fmt"

	"github.com/gogpu/smrecomp/ir"
)

// ErrAllocationExhausted is returned when no slot is free.
var ErrAllocationExhausted = errors.New("register allocation exhausted")

// Kind is an index space.
type Kind uint8

const (
	Short Kind = iota
	Long
	Spill
	ConditionCode

	numKinds
)

var kindNames = [numKinds]string{"short", "long", "spill", "condition code"}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Register is the storage assigned to one value.
type Register struct {
	Kind  Kind
	Index int
}

// OperandKind tells how an operand is formatted.
type OperandKind uint8

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandUndef
)

// Operand is a consumed value: either allocated storage or a value the
// backend formats inline.
type Operand struct {
	Kind     OperandKind
	Register Register
	// Value is the immediate or undefined value when Kind is not
	// OperandRegister.
	Value ir.Value
}

// Options configures an Allocator.
type Options struct {
	// MaxRegisters bounds short and long storage together. Zero means
	// NumSlots.
	MaxRegisters int

	// SpillSlots is the number of spill slots short values may fall back
	// to once short storage is full.
	SpillSlots int
}

// Stats reports the number of slots ever used per space. Slots are taken
// lowest first, so every used index is below its count.
type Stats struct {
	Short         int
	Long          int
	Spill         int
	ConditionCode int
}

// Allocator assigns storage for a single emission pass.
type Allocator struct {
	opts  Options
	used  [numKinds]bitset
	peak  [numKinds]int
	defs  map[*ir.Inst]Register
	uses  map[*ir.Inst]int
	freed map[*ir.Inst]bool
}

// New returns an Allocator with every slot free.
func New(opts Options) *Allocator {
	if opts.MaxRegisters <= 0 || opts.MaxRegisters > NumSlots {
		opts.MaxRegisters = NumSlots
	}
	if opts.SpillSlots > NumSlots {
		opts.SpillSlots = NumSlots
	}
	return &Allocator{
		opts:  opts,
		defs:  make(map[*ir.Inst]Register),
		uses:  make(map[*ir.Inst]int),
		freed: make(map[*ir.Inst]bool),
	}
}

func (a *Allocator) alloc(kind Kind, limit int) (Register, error) {
	n := a.used[kind].first(limit)
	if n < 0 {
		return Register{}, fmt.Errorf("%w: %s space", ErrAllocationExhausted, kind)
	}
	a.used[kind].set(n)
	if n+1 > a.peak[kind] {
		a.peak[kind] = n + 1
	}
	return Register{Kind: kind, Index: n}, nil
}

func (a *Allocator) inUse(kind Kind) int { return a.used[kind].count() }

func (a *Allocator) define(inst *ir.Inst, kind Kind) (Register, error) {
	if _, ok := a.defs[inst]; ok {
		panic(fmt.Sprintf("regalloc: %%%d defined twice", inst.ID()))
	}
	var (
		reg Register
		err error
	)
	switch kind {
	case Short, Long:
		if a.inUse(Short)+a.inUse(Long) >= a.opts.MaxRegisters {
			if kind == Short && a.inUse(Spill) < a.opts.SpillSlots {
				reg, err = a.alloc(Spill, a.opts.SpillSlots)
				break
			}
			return Register{}, fmt.Errorf("%w: %d registers live", ErrAllocationExhausted, a.opts.MaxRegisters)
		}
		reg, err = a.alloc(kind, a.opts.MaxRegisters)
	case ConditionCode:
		reg, err = a.alloc(ConditionCode, NumSlots)
	default:
		panic(fmt.Sprintf("regalloc: cannot define into %s space", kind))
	}
	if err != nil {
		return Register{}, err
	}
	a.defs[inst] = reg
	return reg, nil
}

// Define assigns short storage to inst, falling back to a spill slot.
func (a *Allocator) Define(inst *ir.Inst) (Register, error) { return a.define(inst, Short) }

// LongDefine assigns double-width storage to inst.
func (a *Allocator) LongDefine(inst *ir.Inst) (Register, error) { return a.define(inst, Long) }

// DefineConditionCode assigns boolean storage to inst.
func (a *Allocator) DefineConditionCode(inst *ir.Inst) (Register, error) {
	return a.define(inst, ConditionCode)
}

// DefineValue picks the space from the result type of inst.
func (a *Allocator) DefineValue(inst *ir.Inst) (Register, error) {
	switch t := inst.Type(); {
	case t == ir.U1:
		return a.DefineConditionCode(inst)
	case t.IsLong():
		return a.LongDefine(inst)
	}
	return a.Define(inst)
}

// IsAliased reports whether inst shares the storage of its first operand.
func IsAliased(inst *ir.Inst) bool {
	return inst.Opcode().IsAlias()
}

// AliasInst follows alias chains from inst to the instruction owning the
// storage. The result is itself an alias only when the chain ends in an
// immediate.
func AliasInst(inst *ir.Inst) *ir.Inst {
	for IsAliased(inst) {
		next := inst.Arg(0).Inst()
		if next == nil {
			return inst
		}
		inst = next
	}
	return inst
}

// resolve follows alias chains from v to a defined value or an immediate.
func resolve(v ir.Value) ir.Value {
	for {
		inst := v.Inst()
		if inst == nil || !IsAliased(inst) {
			return v
		}
		v = inst.Arg(0)
	}
}

// Peek names v without changing reference counts.
func (a *Allocator) Peek(v ir.Value) Operand {
	r := resolve(v)
	switch {
	case r.IsUndef():
		return Operand{Kind: OperandUndef, Value: r}
	case r.IsImmediate():
		return Operand{Kind: OperandImmediate, Value: r}
	case r.IsEmpty():
		panic("regalloc: empty operand")
	}
	reg, ok := a.defs[r.Inst()]
	if !ok {
		panic(fmt.Sprintf("regalloc: %%%d used before definition", r.Inst().ID()))
	}
	return Operand{Kind: OperandRegister, Register: reg}
}

// Consume names v and drops one use of it. Storage is freed when the
// last use is consumed, so the name stays stable until then.
func (a *Allocator) Consume(v ir.Value) Operand {
	op := a.Peek(v)
	if inst := v.Inst(); inst != nil {
		a.Unref(inst)
	}
	return op
}

func (a *Allocator) remaining(inst *ir.Inst) int {
	if n, ok := a.uses[inst]; ok {
		return n
	}
	return inst.Uses()
}

// Unref drops one use of inst, freeing its storage at zero.
func (a *Allocator) Unref(inst *ir.Inst) {
	n := a.remaining(inst) - 1
	if n < 0 {
		panic(fmt.Sprintf("regalloc: %%%d has no uses left", inst.ID()))
	}
	a.uses[inst] = n
	if n == 0 {
		a.drop(inst)
	}
}

// Release frees inst if nothing uses it. Emitters call it after an
// instruction whose result may be dead.
func (a *Allocator) Release(inst *ir.Inst) {
	if a.remaining(inst) == 0 {
		a.drop(inst)
	}
}

func (a *Allocator) drop(inst *ir.Inst) {
	if a.freed[inst] {
		return
	}
	a.freed[inst] = true
	if IsAliased(inst) {
		if next := inst.Arg(0).Inst(); next != nil {
			a.Unref(next)
		}
		return
	}
	if reg, ok := a.defs[inst]; ok {
		a.used[reg.Kind].clear(reg.Index)
	}
}

// IsLive reports whether reg is currently assigned.
func (a *Allocator) IsLive(reg Register) bool {
	return a.used[reg.Kind].test(reg.Index)
}

// Stats returns the high-water mark of every space.
func (a *Allocator) Stats() Stats {
	return Stats{
		Short:         a.peak[Short],
		Long:          a.peak[Long],
		Spill:         a.peak[Spill],
		ConditionCode: a.peak[ConditionCode],
	}
}
