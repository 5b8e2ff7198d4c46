// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

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

// Header per stage.
var stageHeaders = [...]string{
	ir.StageVertex:              "!!NVvp5.0",
	ir.StageTessellationControl: "!!NVtcp5.0",
	ir.StageTessellationEval:    "!!NVtep5.0",
	ir.StageGeometry:            "!!NVgp5.0",
	ir.StageFragment:            "!!NVfp5.0",
	ir.StageCompute:             "!!NVcp5.0",
}

var swizzle = [4]string{"x", "y", "z", "w"}

// context holds the state of one emission pass.
type context struct {
	program *ir.Program
	profile profile.Profile
	opts    *Options
	alloc   *regalloc.Allocator
	usage   *profile.Usage

	body strings.Builder
	out  strings.Builder

	regs   map[ir.Reg]bool
	preds  map[ir.Pred]bool
	flags  bool
	global bool
	cbufs  map[uint32]bool

	// err holds the first failure raised while formatting operands.
	err error
}

func newContext(p *ir.Program, prof profile.Profile, bindings profile.Bindings, opts *Options) *context {
	return &context{
		program: p,
		profile: prof,
		opts:    opts,
		alloc:   regalloc.New(opts.Registers),
		usage:   bindings.Track(),
		regs:    make(map[ir.Reg]bool),
		preds:   make(map[ir.Pred]bool),
		cbufs:   make(map[uint32]bool),
	}
}

// String returns the generated program.
func (c *context) String() string {
	return c.out.String()
}

// add writes one line of body text.
func (c *context) add(format string, args ...any) {
	fmt.Fprintf(&c.body, format, args...)
	c.body.WriteByte('\n')
}

// writeProgram emits the body first so the header can declare exactly
// what the body used.
func (c *context) writeProgram() error {
	if int(c.program.Stage) >= len(stageHeaders) {
		return fmt.Errorf("unknown stage %d", c.program.Stage)
	}
	for _, node := range c.program.Syntax {
		if err := c.writeNode(node); err != nil {
			return err
		}
	}
	c.writeHeader()
	c.out.WriteString(c.body.String())
	c.out.WriteString("END\n")
	return nil
}

func (c *context) writeNode(node ir.Node) error {
	switch node.Kind {
	case ir.NodeBlock:
		for _, inst := range node.Block.Insts() {
			if err := c.writeInst(inst); err != nil {
				return err
			}
		}
	case ir.NodeIf:
		cond := c.scalar(c.alloc.Consume(node.Cond), ir.U1)
		c.add("MOV.S.CC RC.x,%s;IF NE.x;", cond)
		return c.err
	case ir.NodeEndIf:
		c.add("ENDIF;")
	case ir.NodeReturn:
		c.add("RET;")
	}
	return nil
}

func (c *context) writeInst(inst *ir.Inst) error {
	if c.opts.WriterFlags&WriterFlagDebugInfo != 0 {
		c.add("# %%%d = %s", inst.ID(), inst.Opcode())
	}
	if err := emitTable[inst.Opcode()](c, inst); err != nil {
		return err
	}
	c.alloc.Release(inst)
	return c.err
}

func (c *context) writeHeader() {
	c.out.WriteString(stageHeaders[c.program.Stage])
	c.out.WriteByte('\n')
	for _, option := range c.options() {
		fmt.Fprintf(&c.out, "OPTION %s;\n", option)
	}
	if c.program.Stage == ir.StageCompute {
		size := c.program.WorkgroupSize
		for i := range size {
			if size[i] == 0 {
				size[i] = 1
			}
		}
		fmt.Fprintf(&c.out, "GROUP_SIZE %d %d %d;\n", size[0], size[1], size[2])
	}
	for _, index := range sortedKeys(c.cbufs) {
		slot := c.usage.ConstantBuffer(index)
		fmt.Fprintf(&c.out, "CBUFFER c%d[]={program.buffer[%d]};\n", index, slot)
	}

	stats := c.alloc.Stats()
	temps := make([]string, 0, stats.Short+stats.Spill+stats.ConditionCode+1)
	for i := 0; i < stats.Short; i++ {
		temps = append(temps, "R"+strconv.Itoa(i))
	}
	for i := 0; i < stats.Spill; i++ {
		temps = append(temps, "S"+strconv.Itoa(i))
	}
	for i := 0; i < stats.ConditionCode; i++ {
		temps = append(temps, "F"+strconv.Itoa(i))
	}
	temps = append(temps, "RC")
	fmt.Fprintf(&c.out, "TEMP %s;\n", strings.Join(temps, ","))
	longs := make([]string, 0, stats.Long+1)
	for i := 0; i < stats.Long; i++ {
		longs = append(longs, "D"+strconv.Itoa(i))
	}
	longs = append(longs, "DC")
	fmt.Fprintf(&c.out, "LONG TEMP %s;\n", strings.Join(longs, ","))

	var guest []string
	for _, r := range sortedKeys(c.regs) {
		guest = append(guest, fmt.Sprintf("GPR%d", r))
	}
	predRegs := make(map[int]bool)
	for p := range c.preds {
		predRegs[int(p)/4] = true
	}
	for _, i := range sortedKeys(predRegs) {
		guest = append(guest, fmt.Sprintf("PRED%d", i))
	}
	if c.flags {
		guest = append(guest, "FLAGS")
	}
	if len(guest) > 0 {
		fmt.Fprintf(&c.out, "TEMP %s;\n", strings.Join(guest, ","))
		// Guest state starts out zeroed.
		for _, g := range guest {
			fmt.Fprintf(&c.out, "MOV.U %s,{0,0,0,0};\n", g)
		}
	}
}

// options lists the OPTION directives the body requires.
func (c *context) options() []string {
	opts := []string{"NV_internal"}
	if c.alloc.Stats().Long > 0 {
		opts = append(opts, "NV_gpu_program_fp64")
	}
	if c.global {
		opts = append(opts, "NV_shader_buffer_load", "NV_shader_buffer_store")
	}
	return opts
}

func sortedKeys[K ir.Reg | uint32 | int](m map[K]bool) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// name returns the temporary holding a register operand, without
// component selection.
func name(reg regalloc.Register) string {
	switch reg.Kind {
	case regalloc.Long:
		return "D" + strconv.Itoa(reg.Index)
	case regalloc.Spill:
		return "S" + strconv.Itoa(reg.Index)
	case regalloc.ConditionCode:
		return "F" + strconv.Itoa(reg.Index)
	}
	return "R" + strconv.Itoa(reg.Index)
}

// define assigns storage to the result of inst and returns its name.
func (c *context) define(inst *ir.Inst) (string, error) {
	reg, err := c.alloc.DefineValue(inst)
	if err != nil {
		return "", err
	}
	return name(reg), nil
}

// arg consumes operand i of inst and formats it as a scalar of the type
// the opcode expects.
func (c *context) arg(inst *ir.Inst, i int) string {
	return c.scalar(c.alloc.Consume(inst.Arg(i)), inst.Opcode().ArgType(i))
}

// vector consumes a vector operand and returns the temporary name.
func (c *context) vector(inst *ir.Inst, i int) string {
	op := c.alloc.Consume(inst.Arg(i))
	if op.Kind != regalloc.OperandRegister {
		return "{0,0,0,0}"
	}
	return name(op.Register)
}

// scalar formats a consumed operand as a value of type t.
func (c *context) scalar(op regalloc.Operand, t ir.Type) string {
	switch op.Kind {
	case regalloc.OperandRegister:
		return name(op.Register) + ".x"
	case regalloc.OperandUndef:
		return "0"
	}
	if t == ir.F32 && math.IsNaN(float64(math.Float32frombits(uint32(op.Value.Bits())))) {
		if c.err == nil {
			c.err = ir.NewNotImplemented("GLASM", "NaN immediate")
		}
		return "0"
	}
	return immediate(op.Value.Bits(), t)
}

// immediate formats raw immediate bits as type t.
func immediate(bits uint64, t ir.Type) string {
	switch t {
	case ir.U1:
		if bits != 0 {
			return "-1"
		}
		return "0"
	case ir.F32:
		return float(math.Float32frombits(uint32(bits)))
	case ir.U64, ir.F64:
		return strconv.FormatUint(bits, 10)
	}
	return strconv.FormatInt(int64(int32(uint32(bits))), 10)
}

// float formats an F32 immediate. Infinities are written as out of range
// literals that round to infinity.
func float(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "1e+39"
	case math.IsInf(float64(f), -1):
		return "-1e+39"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// negate formats the negation of an operand, folding immediates.
func negate(operand string) string {
	if strings.HasPrefix(operand, "-") {
		return operand[1:]
	}
	return "-" + operand
}

// signed returns the type suffix for an integer operation that GLASM
// spells as signed.
func (c *context) signed() string {
	if c.profile.HasBrokenSignedOperations {
		return "U"
	}
	return "S"
}
