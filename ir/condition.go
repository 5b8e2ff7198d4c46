// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "strings"

// FlowTest is a condition-code test used by flow control instructions.
type FlowTest uint8

const (
	FlowF FlowTest = iota
	FlowLT
	FlowEQ
	FlowLE
	FlowGT
	FlowNE
	FlowGE
	FlowNUM
	FlowNaN
	FlowLTU
	FlowEQU
	FlowLEU
	FlowGTU
	FlowNEU
	FlowGEU
	FlowT
	FlowOFF
	FlowLO
	FlowSFF
	FlowLS
	FlowHI
	FlowSFT
	FlowHS
	FlowOFT
	FlowCSMTA
	FlowCSMTR
	FlowCSMMX
	FlowFCSMTA
	FlowFCSMTR
	FlowFCSMMX
	FlowRLE
	FlowRGT
)

var flowTestNames = [...]string{
	"F", "LT", "EQ", "LE", "GT", "NE", "GE", "NUM", "NaN", "LTU", "EQU", "LEU",
	"GTU", "NEU", "GEU", "T", "OFF", "LO", "SFF", "LS", "HI", "SFT", "HS", "OFT",
	"CSM_TA", "CSM_TR", "CSM_MX", "FCSM_TA", "FCSM_TR", "FCSM_MX", "RLE", "RGT",
}

// String returns the assembler token for the flow test.
func (f FlowTest) String() string {
	if int(f) < len(flowTestNames) {
		return flowTestNames[f]
	}
	return "<invalid flow test>"
}

// Pred is a guest predicate register.
type Pred uint8

const (
	P0 Pred = iota
	P1
	P2
	P3
	P4
	P5
	P6
	PT
)

// NumPreds is the number of writable predicates.
const NumPreds = 7

// String returns the assembler token for the predicate.
func (p Pred) String() string {
	if p == PT {
		return "PT"
	}
	if p < PT {
		return "P" + string(rune('0'+p))
	}
	return "<invalid pred>"
}

// Condition guards execution of an instruction: a flow test combined with a
// possibly negated predicate.
type Condition struct {
	FlowTest FlowTest
	Pred     Pred
	Negated  bool
}

// Always is the canonical unconditional condition.
var Always = Condition{FlowTest: FlowT, Pred: PT}

// NewPredCondition returns a condition guarded only by a predicate.
func NewPredCondition(pred Pred, negated bool) Condition {
	return Condition{FlowTest: FlowT, Pred: pred, Negated: negated}
}

// IsCanonical reports whether the condition always executes.
func (c Condition) IsCanonical() bool {
	return c.FlowTest == FlowT && c.Pred == PT && !c.Negated
}

// predicateTrivial reports whether the predicate part always passes.
func (c Condition) predicateTrivial() bool {
	return c.Pred == PT && !c.Negated
}

// NameOf returns the canonical text of a condition, empty when it always
// executes.
func NameOf(c Condition) string {
	if c.IsCanonical() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(c.FlowTest.String())
	if !c.predicateTrivial() {
		sb.WriteByte('&')
		if c.Negated {
			sb.WriteByte('!')
		}
		sb.WriteString(c.Pred.String())
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	return NameOf(c)
}
