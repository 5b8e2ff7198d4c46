// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/profile"
	"github.com/gogpu/smrecomp/regalloc"
)

// Extensions enabled on demand.
const (
	extensionInt64     = "GL_ARB_gpu_shader_int64"
	extensionHalfFloat = "GL_AMD_gpu_shader_half_float"
)

// cbufWords is the size of every constant buffer block in uvec4 elements.
const cbufWords = 4096

// Writer generates GLSL source code from a translated program.
type Writer struct {
	program *ir.Program
	profile profile.Profile
	options *Options
	alloc   *regalloc.Allocator
	usage   *profile.Usage

	// Output buffer, and the body of main written before the declarations
	// it needs are known.
	out  strings.Builder
	body strings.Builder

	// Current indentation level of the body
	indent int

	// Guest state touched by the body
	maxReg int
	preds  bool
	flags  bool
	cbufs  map[uint32]bool

	// Output tracking
	extensions      []string
	requiredVersion Version
}

// newWriter creates a new GLSL writer.
func newWriter(p *ir.Program, prof profile.Profile, bindings profile.Bindings, options *Options) *Writer {
	return &Writer{
		program:         p,
		profile:         prof,
		options:         options,
		alloc:           regalloc.New(options.Registers),
		usage:           bindings.Track(),
		indent:          1,
		maxReg:          -1,
		cbufs:           make(map[uint32]bool),
		requiredVersion: VersionFromNumber(prof.GLSLVersion),
	}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeProgram writes the body of main first, then the declarations it
// uses, then the body.
func (w *Writer) writeProgram() error {
	if w.program.Stage == ir.StageCompute && !w.requiredVersion.SupportsCompute() {
		w.requiredVersion = Version430
	}
	for _, node := range w.program.Syntax {
		if err := w.writeNode(node); err != nil {
			return err
		}
	}

	w.writeVersionDirective()
	w.writeExtensions()
	if w.program.Stage == ir.StageCompute {
		w.writeComputeLayout()
	}
	w.writeConstantBuffers()
	w.writeLine("void main(){")
	w.writeGuestState()
	w.writeTemporaries()
	w.out.WriteString(w.body.String())
	w.writeLine("}")
	return nil
}

// writeVersionDirective writes the #version directive.
func (w *Writer) writeVersionDirective() {
	w.writeLine("#version %s", w.requiredVersion)
}

// requireExtension records an extension the body depends on.
func (w *Writer) requireExtension(name string) {
	for _, ext := range w.extensions {
		if ext == name {
			return
		}
	}
	w.extensions = append(w.extensions, name)
}

func (w *Writer) writeExtensions() {
	sort.Strings(w.extensions)
	for _, ext := range w.extensions {
		w.writeLine("#extension %s : enable", ext)
	}
}

// writeComputeLayout writes the compute shader layout declaration.
func (w *Writer) writeComputeLayout() {
	size := w.program.WorkgroupSize
	for i := range size {
		if size[i] == 0 {
			size[i] = 1
		}
	}
	w.writeLine("layout(local_size_x=%d,local_size_y=%d,local_size_z=%d)in;", size[0], size[1], size[2])
}

func (w *Writer) writeConstantBuffers() {
	indices := make([]uint32, 0, len(w.cbufs))
	for index := range w.cbufs {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, index := range indices {
		slot := w.usage.ConstantBuffer(index)
		w.writeLine("layout(std140,binding=%d)uniform cbuf_block%d{uvec4 cbuf%d[%d];};", slot, index, index, cbufWords)
	}
}

// writeGuestState declares zero initialized guest registers, predicates
// and flags.
func (w *Writer) writeGuestState() {
	if w.maxReg >= 0 {
		n := w.maxReg + 1
		w.writeLine("    uint gpr[%d]=uint[%d](%s);", n, n, zeros(n))
	}
	if w.preds {
		w.writeLine("    uint pred[7]=uint[7](%s);", zeros(7))
	}
	if w.flags {
		w.writeLine("    uvec4 flags=uvec4(0u);")
	}
}

func zeros(n int) string {
	return strings.TrimSuffix(strings.Repeat("0u,", n), ",")
}

func (w *Writer) writeTemporaries() {
	stats := w.alloc.Stats()
	declare := func(typ, prefix string, n int) {
		if n == 0 {
			return
		}
		names := make([]string, n)
		for i := range names {
			names[i] = prefix + strconv.Itoa(i)
		}
		w.writeLine("    %s %s;", typ, strings.Join(names, ","))
	}
	declare("uvec4", "r", stats.Short)
	declare("uvec4", "s", stats.Spill)
	declare(w.longType(), "d", stats.Long)
	declare("uint", "f", stats.ConditionCode)
}

// longType is the GLSL type of long temporaries.
func (w *Writer) longType() string {
	if w.profile.SupportInt64 {
		return "uint64_t"
	}
	return "uvec2"
}

// Output helpers

// writeLine writes a line to the output.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// add writes one indented line of the body of main.
func (w *Writer) add(format string, args ...any) {
	w.writeIndent()
	fmt.Fprintf(&w.body, format, args...)
	w.body.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.body.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 1 {
		w.indent--
	}
}

// formatFloat formats a float32 for GLSL output. Values without an exact
// decimal spelling are written as bit patterns.
func formatFloat(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return fmt.Sprintf("uintBitsToFloat(0x%08xu)", math.Float32bits(f))
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
