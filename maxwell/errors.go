// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import (
	"errors"
	"fmt"
)

// ErrUnknownInstruction is matched by every UnknownInstructionError.
var ErrUnknownInstruction = errors.New("unknown instruction")

// UnknownInstructionError reports a word no encoding matches.
type UnknownInstructionError struct {
	Offset uint32 // byte offset of the word in the program
	Word   uint64
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown instruction 0x%016x at offset 0x%x", e.Word, e.Offset)
}

func (e *UnknownInstructionError) Is(target error) bool {
	return target == ErrUnknownInstruction
}

// ErrEndOfProgram is returned by an Environment when the offset lies past
// the last instruction.
var ErrEndOfProgram = errors.New("end of program")
