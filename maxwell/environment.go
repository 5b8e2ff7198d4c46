// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import (
	"encoding/binary"

	"github.com/gogpu/smrecomp/ir"
)

// InstructionSize is the size in bytes of one instruction word.
const InstructionSize = 8

// Environment supplies the guest program to the translator.
type Environment interface {
	// ReadInstruction returns the word at a byte offset, or
	// ErrEndOfProgram past the last word.
	ReadInstruction(offset uint32) (uint64, error)
	// StartOffset returns the byte offset of the first word.
	StartOffset() uint32
	// Stage returns the pipeline stage of the program.
	Stage() ir.Stage
}

// WorkgroupSizer is implemented by environments of compute programs.
type WorkgroupSizer interface {
	WorkgroupSize() [3]uint32
}

// WordEnvironment serves a program held as a slice of words.
type WordEnvironment struct {
	Words []uint64
	Start uint32
	// MaxInstructions limits the number of words read from Start,
	// scheduling words included. Zero means no limit.
	MaxInstructions int
	ShaderStage     ir.Stage
	LocalSize       [3]uint32
}

func (e *WordEnvironment) ReadInstruction(offset uint32) (uint64, error) {
	if offset < e.Start || offset%InstructionSize != 0 {
		return 0, ErrEndOfProgram
	}
	n := int((offset - e.Start) / InstructionSize)
	if e.MaxInstructions > 0 && n >= e.MaxInstructions {
		return 0, ErrEndOfProgram
	}
	i := int(offset / InstructionSize)
	if i >= len(e.Words) {
		return 0, ErrEndOfProgram
	}
	return e.Words[i], nil
}

func (e *WordEnvironment) StartOffset() uint32     { return e.Start }
func (e *WordEnvironment) Stage() ir.Stage         { return e.ShaderStage }
func (e *WordEnvironment) WorkgroupSize() [3]uint32 { return e.LocalSize }

// BytesEnvironment serves a program from little-endian bytes, such as a
// mapped file. The slice is read in place.
type BytesEnvironment struct {
	Data            []byte
	Start           uint32
	MaxInstructions int
	ShaderStage     ir.Stage
	LocalSize       [3]uint32
}

func (e *BytesEnvironment) ReadInstruction(offset uint32) (uint64, error) {
	if offset < e.Start || offset%InstructionSize != 0 {
		return 0, ErrEndOfProgram
	}
	if e.MaxInstructions > 0 && int((offset-e.Start)/InstructionSize) >= e.MaxInstructions {
		return 0, ErrEndOfProgram
	}
	end := uint64(offset) + InstructionSize
	if end > uint64(len(e.Data)) {
		return 0, ErrEndOfProgram
	}
	return binary.LittleEndian.Uint64(e.Data[offset:end]), nil
}

func (e *BytesEnvironment) StartOffset() uint32     { return e.Start }
func (e *BytesEnvironment) Stage() ir.Stage         { return e.ShaderStage }
func (e *BytesEnvironment) WorkgroupSize() [3]uint32 { return e.LocalSize }
