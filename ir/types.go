// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

// Type is the type of an IR value.
type Type uint8

const (
	Void Type = iota
	Opaque
	U1
	U8
	U16
	U32
	U64
	F16
	F32
	F64
	U32x2
	U32x3
	U32x4
	F16x2
	F32x2

	// Operand kinds carried by immediates only.
	RegType
	PredType
	FlowTestType
)

var typeNames = [...]string{
	Void:         "Void",
	Opaque:       "Opaque",
	U1:           "U1",
	U8:           "U8",
	U16:          "U16",
	U32:          "U32",
	U64:          "U64",
	F16:          "F16",
	F32:          "F32",
	F64:          "F64",
	U32x2:        "U32x2",
	U32x3:        "U32x3",
	U32x4:        "U32x4",
	F16x2:        "F16x2",
	F32x2:        "F32x2",
	RegType:      "Reg",
	PredType:     "Pred",
	FlowTestType: "FlowTest",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Invalid"
}

// IsLong reports whether values of this type need double-width storage.
func (t Type) IsLong() bool {
	return t == U64 || t == F64
}

// IsFloat reports whether the type has floating point elements.
func (t Type) IsFloat() bool {
	switch t {
	case F16, F32, F64, F16x2, F32x2:
		return true
	}
	return false
}

// Components returns the number of vector components of the type.
func (t Type) Components() int {
	switch t {
	case U32x2, F16x2, F32x2:
		return 2
	case U32x3:
		return 3
	case U32x4:
		return 4
	case Void:
		return 0
	}
	return 1
}

// Compatible reports whether a value of type got may be passed where want
// is expected.
func Compatible(want, got Type) bool {
	return want == Opaque || want == got
}
