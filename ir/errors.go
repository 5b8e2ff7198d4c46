// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is matched by every NotImplementedError.
var ErrNotImplemented = errors.New("not implemented")

// NotImplementedError reports an operation the translator or a backend
// cannot handle. It aborts translation of the current program.
type NotImplementedError struct {
	// Opcode names the guest or IR operation.
	Opcode string

	// Detail optionally names the unsupported mode or value.
	Detail string
}

// NewNotImplemented creates a NotImplementedError.
func NewNotImplemented(opcode, detail string) *NotImplementedError {
	return &NotImplementedError{Opcode: opcode, Detail: detail}
}

// NotImplementedf creates a NotImplementedError with a formatted detail.
func NotImplementedf(opcode, format string, args ...any) *NotImplementedError {
	return &NotImplementedError{Opcode: opcode, Detail: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *NotImplementedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s not implemented: %s", e.Opcode, e.Detail)
	}
	return e.Opcode + " not implemented"
}

// Is makes errors.Is(err, ErrNotImplemented) succeed.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}
