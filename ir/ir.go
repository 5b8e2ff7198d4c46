// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "fmt"

// Stage is the pipeline stage a guest program runs in.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessellationControl
	StageTessellationEval
	StageGeometry
	StageFragment
	StageCompute
)

var stageNames = [...]string{"vertex", "tess_control", "tess_eval", "geometry", "fragment", "compute"}

// String returns the lower-case stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// ParseStage returns the stage named s.
func ParseStage(s string) (Stage, bool) {
	for i, name := range stageNames {
		if name == s {
			return Stage(i), true
		}
	}
	return 0, false
}

// Block is a straight-line sequence of instructions.
type Block struct {
	insts []*Inst
	index int
}

// Insts returns the instructions of the block in order.
func (b *Block) Insts() []*Inst { return b.insts }

// Index returns the position of the block in the program.
func (b *Block) Index() int { return b.index }

// Remove drops the invalidated instructions for which drop returns true.
func (b *Block) Remove(drop func(*Inst) bool) {
	kept := b.insts[:0]
	for _, inst := range b.insts {
		if !drop(inst) {
			kept = append(kept, inst)
		}
	}
	for i := len(kept); i < len(b.insts); i++ {
		b.insts[i] = nil
	}
	b.insts = kept
}

// NodeKind is the kind of a structured control flow node.
type NodeKind uint8

const (
	NodeBlock NodeKind = iota
	NodeIf
	NodeEndIf
	NodeReturn
)

// Node is an entry of the structured syntax list.
type Node struct {
	Kind  NodeKind
	Block *Block // NodeBlock
	Cond  Value  // NodeIf
}

// Program is a translated guest program.
type Program struct {
	Stage         Stage
	WorkgroupSize [3]uint32
	Blocks        []*Block
	Syntax        []Node
	Info          Info

	nextID int
}

// Insts calls fn for every instruction in program order until fn returns
// false.
func (p *Program) Insts(fn func(*Inst) bool) {
	for _, b := range p.Blocks {
		for _, inst := range b.insts {
			if !fn(inst) {
				return
			}
		}
	}
}

// NumInsts returns the number of instructions.
func (p *Program) NumInsts() int {
	n := 0
	for _, b := range p.Blocks {
		n += len(b.insts)
	}
	return n
}

// Info summarizes the guest resources a program touches.
type Info struct {
	Registers        []Reg
	Predicates       []Pred
	UsesFlags        bool
	ConstantBuffers  []uint32
	UsesGlobalMemory bool
	UsesLocalID      bool
	UsesWorkgroupID  bool
	UsesDemote       bool
	UsesFloat16      bool
	UsesInt64        bool
}

// SetCond replaces the condition of the If node at index i.
func (p *Program) SetCond(i int, v Value) {
	node := &p.Syntax[i]
	if node.Kind != NodeIf {
		panic(fmt.Sprintf("ir: syntax node %d is not an if", i))
	}
	mustType("If", v, U1)
	undoUse(node.Cond)
	node.Cond = v
	use(v)
}

// Compact drops blocks no longer referenced by the syntax list and
// renumbers the rest in syntax order.
func (p *Program) Compact() {
	blocks := p.Blocks[:0]
	for _, node := range p.Syntax {
		if node.Kind == NodeBlock {
			node.Block.index = len(blocks)
			blocks = append(blocks, node.Block)
		}
	}
	for i := len(blocks); i < len(p.Blocks); i++ {
		p.Blocks[i] = nil
	}
	p.Blocks = blocks
}
