// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"strconv"
	"strings"
)

// Dump renders the program as text, one line per instruction in program
// order. The output is deterministic for a given program.
func Dump(p *Program) string {
	var sb strings.Builder
	sb.WriteString("stage ")
	sb.WriteString(p.Stage.String())
	sb.WriteByte('\n')
	depth := 0
	for _, node := range p.Syntax {
		switch node.Kind {
		case NodeBlock:
			writeIndent(&sb, depth)
			sb.WriteString("block ")
			sb.WriteString(strconv.Itoa(node.Block.index))
			sb.WriteString(":\n")
			for _, inst := range node.Block.insts {
				writeIndent(&sb, depth+1)
				DumpInst(&sb, inst)
				sb.WriteByte('\n')
			}
		case NodeIf:
			writeIndent(&sb, depth)
			sb.WriteString("if ")
			sb.WriteString(node.Cond.String())
			sb.WriteByte('\n')
			depth++
		case NodeEndIf:
			depth--
			writeIndent(&sb, depth)
			sb.WriteString("endif\n")
		case NodeReturn:
			writeIndent(&sb, depth)
			sb.WriteString("return\n")
		}
	}
	return sb.String()
}

// DumpInst writes a single instruction.
func DumpInst(sb *strings.Builder, inst *Inst) {
	if inst.Type() != Void {
		sb.WriteByte('%')
		sb.WriteString(strconv.Itoa(inst.id))
		sb.WriteString(" = ")
	}
	sb.WriteString(inst.op.String())
	for i, a := range inst.args {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	if inst.HasFlag(FlagSetsCC) {
		sb.WriteString(" .CC")
	}
}

func writeIndent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}
