// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command smdis lists the instructions of a Maxwell shader binary with
// their decoded fields.
//
// Usage:
//
//	smdis [options] <program.bin>
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/gogpu/smrecomp/internal/mapfile"
	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/maxwell"
)

var (
	start  = flag.Uint("start", 0, "byte offset of the first instruction")
	raw    = flag.Bool("raw", false, "input has no scheduling control words")
	format = flag.String("format", "table", "output format: table, markdown or csv")
)

// line is one listed word.
type line struct {
	Offset uint32
	Word   uint64
	Guard  string
	Opcode string
	Fields string
}

// disassemble lists the words of data from start. Every fourth word from
// start is a scheduling control word unless raw is set.
func disassemble(data []byte, start uint32, raw bool) []line {
	var lines []line
	for n, off := 0, uint64(start); off+maxwell.InstructionSize <= uint64(len(data)); n, off = n+1, off+maxwell.InstructionSize {
		word := binary.LittleEndian.Uint64(data[off:])
		l := line{Offset: uint32(off), Word: word} //nolint:gosec // G115: off < len(data) fits the mapped range
		if !raw && n%4 == 0 {
			l.Opcode = "sched"
			lines = append(lines, l)
			continue
		}
		op, err := maxwell.Decode(word)
		if err != nil {
			l.Opcode = "???"
			lines = append(lines, l)
			continue
		}
		l.Opcode = op.String()
		l.Guard = ir.NameOf(maxwell.Instruction(word).Guard())
		l.Fields = formatFields(op, word)
		lines = append(lines, l)
	}
	return lines
}

func formatFields(op maxwell.Opcode, word uint64) string {
	var parts []string
	for _, f := range maxwell.FieldsOf(op) {
		if f.Name == "pred" || f.Name == "pred_neg" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", f.Name, f.Extract(word)))
	}
	return strings.Join(parts, " ")
}

func render(w io.Writer, lines []line, format string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Offset", "Word", "Guard", "Opcode", "Fields"})
	for _, l := range lines {
		t.AppendRow(table.Row{
			fmt.Sprintf("0x%04x", l.Offset), fmt.Sprintf("%016x", l.Word), l.Guard, l.Opcode, l.Fields,
		})
	}
	switch format {
	case "table":
		t.Render()
	case "markdown":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: smdis [options] <program.bin>\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		atexit.Exit(1)
	}

	f, err := mapfile.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Register(func() { _ = f.Close() })

	if err := render(os.Stdout, disassemble(f.Data, uint32(*start), *raw), *format); err != nil { //nolint:gosec // G115: offsets beyond 4 GiB are not addressable
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
