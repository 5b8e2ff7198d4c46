// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import (
	"fmt"
	"sort"
)

// Matcher recognizes an encoding from the top 16 bits of a word.
type Matcher struct {
	Opcode   Opcode
	Mask     uint16
	Expected uint16
}

// Matches reports whether word carries the matcher's encoding.
func (m Matcher) Matches(word uint64) bool {
	return uint16(word>>48)&m.Mask == m.Expected
}

// NewMatcher builds a matcher from a 16-character bitstring of '0', '1'
// and '-' (don't care), most significant bit first.
func NewMatcher(op Opcode, pattern string) (Matcher, error) {
	if len(pattern) != 16 {
		return Matcher{}, fmt.Errorf("maxwell: %s pattern %q has %d characters, want 16", op, pattern, len(pattern))
	}
	m := Matcher{Opcode: op}
	for i := 0; i < 16; i++ {
		bit := uint16(1) << (15 - i)
		switch pattern[i] {
		case '0':
			m.Mask |= bit
		case '1':
			m.Mask |= bit
			m.Expected |= bit
		case '-':
		default:
			return Matcher{}, fmt.Errorf("maxwell: %s pattern %q has invalid character %q", op, pattern, pattern[i])
		}
	}
	return m, nil
}

// matchers is sorted by decreasing mask population so that more specific
// encodings are tried first. Every pair is checked for overlap at init.
var matchers = buildMatchers()

func buildMatchers() []Matcher {
	table := make([]Matcher, 0, NumOpcodes)
	for op := Opcode(0); op < NumOpcodes; op++ {
		m, err := NewMatcher(op, opcodeTable[op].pattern)
		if err != nil {
			panic(err)
		}
		table = append(table, m)
	}
	for i := range table {
		for j := i + 1; j < len(table); j++ {
			if overlaps(table[i], table[j]) {
				panic(fmt.Sprintf("maxwell: encodings %s and %s overlap", table[i].Opcode, table[j].Opcode))
			}
		}
	}
	sort.SliceStable(table, func(i, j int) bool {
		return popcount16(table[i].Mask) > popcount16(table[j].Mask)
	})
	return table
}

// overlaps reports whether some word satisfies both matchers.
func overlaps(a, b Matcher) bool {
	common := a.Mask & b.Mask
	return a.Expected&common == b.Expected&common
}

func popcount16(v uint16) int {
	n := 0
	for ; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Matchers returns a copy of the decode table.
func Matchers() []Matcher {
	return append([]Matcher(nil), matchers...)
}

// Decode identifies the encoding of word.
func Decode(word uint64) (Opcode, error) {
	for _, m := range matchers {
		if m.Matches(word) {
			return m.Opcode, nil
		}
	}
	return 0, &UnknownInstructionError{Word: word}
}

func (op Opcode) fixedMask() uint64 {
	m, err := NewMatcher(op, opcodeTable[op].pattern)
	if err != nil {
		panic(err)
	}
	return uint64(m.Mask) << 48
}

// Encode returns a word carrying op's fixed bits with every other bit clear.
// Fields can then be set with Field.Insert.
func Encode(op Opcode) uint64 {
	m, err := NewMatcher(op, opcodeTable[op].pattern)
	if err != nil {
		panic(err)
	}
	return uint64(m.Expected) << 48
}
