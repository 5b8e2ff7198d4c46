// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package regalloc

import "math/bits"

// NumSlots is the size of every index space.
const NumSlots = 4096

type bitset [NumSlots / 64]uint64

// first returns the lowest clear index below limit, or -1.
func (s *bitset) first(limit int) int {
	for i, w := range s {
		if w == ^uint64(0) {
			continue
		}
		n := i*64 + bits.TrailingZeros64(^w)
		if n >= limit {
			return -1
		}
		return n
	}
	return -1
}

func (s *bitset) set(n int)       { s[n/64] |= 1 << (n % 64) }
func (s *bitset) clear(n int)     { s[n/64] &^= 1 << (n % 64) }
func (s *bitset) test(n int) bool { return s[n/64]&(1<<(n%64)) != 0 }

func (s *bitset) count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}
