// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/smrecomp/ir"
)

// LevelTrace is the slog level of per-instruction tracing.
const LevelTrace = slog.LevelDebug - 4

// schedPeriod is the distance between scheduling control words.
const schedPeriod = 4

// Options configures translation.
type Options struct {
	// MaxInstructions bounds the number of words read, scheduling words
	// included. Zero means no limit.
	MaxInstructions int

	// NoSchedulingWords treats every word as an instruction. Programs
	// built by hand in tests usually have no control words.
	NoSchedulingWords bool

	// Logger receives per-instruction trace records. Nil uses slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns options for translating programs as the guest
// driver lays them out.
func DefaultOptions() Options {
	return Options{}
}

type handler func(t *translator, insn Instruction, op Opcode) error

var handlers [numFamilies]handler

func init() {
	handlers = [numFamilies]handler{
		famNotImplemented: (*translator).notImplemented,
		famBAR:            (*translator).bar,
		famBFE:            (*translator).bfe,
		famBRA:            (*translator).bra,
		famEXIT:           (*translator).exit,
		famFADD:           (*translator).fadd,
		famFADD32I:        (*translator).fadd32i,
		famFFMA:           (*translator).ffma,
		famFMNMX:          (*translator).fmnmx,
		famFMUL:           (*translator).fmul,
		famFMUL32I:        (*translator).fmul32i,
		famFSETP:          (*translator).fsetp,
		famF2I:            (*translator).f2i,
		famHADD2:          (*translator).hadd2,
		famI2F:            (*translator).i2f,
		famIADD:           (*translator).iadd,
		famIADD32I:        (*translator).iadd32i,
		famIMNMX:          (*translator).imnmx,
		famISCADD:         (*translator).iscadd,
		famISET:           (*translator).iset,
		famISETP:          (*translator).isetp,
		famKIL:            (*translator).kil,
		famLDC:            (*translator).ldc,
		famLDG:            (*translator).ldg,
		famSTG:            (*translator).stg,
		famLOP:            (*translator).lop,
		famLOP32I:         (*translator).lop32i,
		famMEMBAR:         (*translator).membar,
		famMOV:            (*translator).mov,
		famMOV32I:         (*translator).mov32i,
		famMUFU:           (*translator).mufu,
		famNOP:            (*translator).nop,
		famPSETP:          (*translator).psetp,
		famS2R:            (*translator).s2r,
		famSEL:            (*translator).sel,
		famSHL:            (*translator).shl,
		famSHR:            (*translator).shr,
	}
}

type translator struct {
	b      *ir.Builder
	env    Environment
	opts   Options
	logger *slog.Logger

	offset uint32
	// regions holds the targets of open forward branches, innermost last.
	regions []uint32
}

// Translate decodes the program served by env and builds its IR.
//
// Translation stops at an unconditional EXIT outside any conditional
// region, at the end of the environment, or after MaxInstructions words.
// On failure no program is returned.
func Translate(env Environment, opts Options) (*ir.Program, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := &translator{
		b:      ir.NewBuilder(env.Stage()),
		env:    env,
		opts:   opts,
		logger: logger,
	}
	if err := t.run(); err != nil {
		return nil, err
	}
	p := t.b.Program()
	if ws, ok := env.(WorkgroupSizer); ok {
		p.WorkgroupSize = ws.WorkgroupSize()
	}
	return p, nil
}

func (t *translator) run() error {
	start := t.env.StartOffset()
	for n := 0; t.opts.MaxInstructions <= 0 || n < t.opts.MaxInstructions; n++ {
		offset := start + uint32(n)*InstructionSize
		t.closeRegions(offset)

		word, err := t.env.ReadInstruction(offset)
		if errors.Is(err, ErrEndOfProgram) {
			break
		}
		if err != nil {
			return fmt.Errorf("maxwell: read at 0x%x: %w", offset, err)
		}
		if !t.opts.NoSchedulingWords && n%schedPeriod == 0 {
			continue
		}
		done, err := t.translateWord(offset, word)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	// Branches past the last word skip the rest of the program.
	for len(t.regions) > 0 {
		t.regions = t.regions[:len(t.regions)-1]
		t.b.EndIf()
	}
	if p := t.b.Program(); len(p.Syntax) == 0 || p.Syntax[len(p.Syntax)-1].Kind != ir.NodeReturn {
		t.b.Return()
	}
	return nil
}

func (t *translator) closeRegions(offset uint32) {
	for n := len(t.regions); n > 0 && t.regions[n-1] == offset; n = len(t.regions) {
		t.regions = t.regions[:n-1]
		t.b.EndIf()
	}
}

// translateWord reports whether the word ended the program.
func (t *translator) translateWord(offset uint32, word uint64) (bool, error) {
	op, err := Decode(word)
	if err != nil {
		return false, &UnknownInstructionError{Offset: offset, Word: word}
	}
	insn := Instruction(word)
	info := opcodeTable[op]
	t.offset = offset
	if t.logger.Enabled(context.Background(), LevelTrace) {
		t.logger.Log(context.Background(), LevelTrace, "translate",
			slog.String("offset", fmt.Sprintf("0x%04x", offset)),
			slog.String("opcode", op.String()),
			slog.String("guard", ir.NameOf(insn.Guard())))
	}

	guard := insn.Guard()
	h := handlers[info.family]
	switch {
	case info.family == famBRA:
		err = h(t, insn, op)
	case guard.Pred == ir.PT && guard.Negated:
		// Never executes.
		return false, nil
	case guard.IsCanonical():
		err = h(t, insn, op)
	default:
		cond, cerr := t.b.Condition(guard)
		if cerr != nil {
			return false, cerr
		}
		t.b.If(cond)
		err = h(t, insn, op)
		t.b.EndIf()
	}
	if err != nil {
		return false, fmt.Errorf("maxwell: %s at 0x%x: %w", op, offset, err)
	}
	done := info.family == famEXIT && guard.IsCanonical() &&
		ir.FlowTest(fFlowTest.Get(insn)) == ir.FlowT && t.b.OpenRegions() == 0
	return done, nil
}

func (t *translator) notImplemented(_ Instruction, op Opcode) error {
	return ir.NewNotImplemented(op.String(), "")
}
