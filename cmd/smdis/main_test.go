// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func program(words ...uint64) []byte {
	var data []byte
	for _, w := range words {
		data = binary.LittleEndian.AppendUint64(data, w)
	}
	return data
}

func TestDisassemble(t *testing.T) {
	data := program(
		0x001f8000fc0007e0, // scheduling
		0x5c47020000270100, // LOP.OR R0, R1, R2
		0xffff0000deadbeef,
		0xe30000000007000f, // EXIT
	)

	lines := disassemble(data, 0, false)

	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	if lines[0].Opcode != "sched" {
		t.Errorf("lines[0].Opcode = %q, want sched", lines[0].Opcode)
	}
	if lines[1].Offset != 8 || !strings.Contains(lines[1].Fields, "src_b=2") {
		t.Errorf("lines[1] = %+v", lines[1])
	}
	if lines[1].Guard != "" {
		t.Errorf("unguarded instruction has guard %q", lines[1].Guard)
	}
	if lines[2].Opcode != "???" {
		t.Errorf("lines[2].Opcode = %q, want ???", lines[2].Opcode)
	}
	if lines[3].Opcode != "EXIT" {
		t.Errorf("lines[3].Opcode = %q, want EXIT", lines[3].Opcode)
	}
}

func TestDisassemble_RawAndStart(t *testing.T) {
	data := program(0, 0x5c47020000270100, 0xe30000000007000f)

	lines := disassemble(data, 8, true)

	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0].Offset != 8 || lines[0].Opcode == "sched" {
		t.Errorf("lines[0] = %+v", lines[0])
	}
}

func TestRender(t *testing.T) {
	lines := disassemble(program(0x5c47020000270100), 0, true)

	for _, format := range []string{"table", "markdown", "csv"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := render(&buf, lines, format); err != nil {
				t.Fatalf("render() error = %v", err)
			}
			if !strings.Contains(buf.String(), "5c47020000270100") {
				t.Errorf("output lacks the word:\n%s", buf.String())
			}
		})
	}

	if err := render(&bytes.Buffer{}, lines, "json"); err == nil {
		t.Error("unknown format accepted")
	}
}
