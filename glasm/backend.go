// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"fmt"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/profile"
	"github.com/gogpu/smrecomp/regalloc"
)

// WriterFlags control output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagDebugInfo adds a comment naming the IR instruction before
	// its statements.
	WriterFlagDebugInfo WriterFlags = 1 << iota
)

// Options configures GLASM generation.
type Options struct {
	// Registers bounds the temporaries the program may use.
	Registers regalloc.Options

	// WriterFlags control output formatting.
	WriterFlags WriterFlags
}

// DefaultOptions returns options with the full temporary space.
func DefaultOptions() Options {
	return Options{}
}

// TranslationInfo describes the generated program.
type TranslationInfo struct {
	// Bindings lists the constant buffers the program reads.
	Bindings []profile.Binding

	// Extensions lists the OPTION directives the program requires.
	Extensions []string

	// Registers reports the temporaries used per space.
	Registers regalloc.Stats
}

// Compile generates GLASM source for a program. The program is not
// modified.
func Compile(p *ir.Program, prof profile.Profile, bindings profile.Bindings, options Options) (string, TranslationInfo, error) {
	ctx := newContext(p, prof, bindings, &options)
	if err := ctx.writeProgram(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glasm: %w", err)
	}
	info := TranslationInfo{
		Bindings:   ctx.usage.Referenced(),
		Extensions: ctx.options(),
		Registers:  ctx.alloc.Stats(),
	}
	return ctx.String(), info, nil
}
