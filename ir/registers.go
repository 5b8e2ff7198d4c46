// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "fmt"

// Reg is a guest general purpose register.
type Reg uint8

// RZ always reads as zero and discards writes.
const RZ Reg = 255

// NumRegs is the number of addressable guest registers, RZ included.
const NumRegs = 256

// String returns the assembler spelling of the register.
func (r Reg) String() string {
	if r == RZ {
		return "RZ"
	}
	return fmt.Sprintf("R%d", uint8(r))
}

// Offset returns the register n places after r.
func (r Reg) Offset(n int) Reg {
	if r == RZ {
		return RZ
	}
	return r + Reg(n)
}

// IsAligned reports whether the register index is a multiple of n.
func (r Reg) IsAligned(n int) bool {
	return r == RZ || int(r)%n == 0
}
