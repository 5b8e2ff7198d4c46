// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/smrecomp/ir"
	"github.com/gogpu/smrecomp/profile"
	"github.com/gogpu/smrecomp/regalloc"
)

func compile(t *testing.T, p *ir.Program, prof profile.Profile, options Options) (string, TranslationInfo) {
	t.Helper()
	source, info, err := Compile(p, prof, profile.Bindings{}, options)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return source, info
}

func lines(source string) []string {
	return strings.Split(strings.TrimSuffix(source, "\n"), "\n")
}

func countLines(source, line string) int {
	n := 0
	for _, l := range lines(source) {
		if strings.TrimSpace(l) == line {
			n++
		}
	}
	return n
}

func indexOf(source, line string) int {
	for i, l := range lines(source) {
		if strings.TrimSpace(l) == line {
			return i
		}
	}
	return -1
}

func logicalOr(stage ir.Stage) *ir.Program {
	b := ir.NewBuilder(stage)
	x := b.GetRegister(1)
	y := b.GetRegister(2)
	b.SetRegister(0, b.BitwiseOr(x, y))
	b.Return()
	return b.Program()
}

// =============================================================================
// Version Tests
// =============================================================================

func TestVersion_String(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{Version430, "430"},
		{Version440, "440"},
		{Version450, "450"},
		{Version460, "460"},
		{VersionFromNumber(450), "450"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.version.String(); got != tt.want {
				t.Errorf("Version.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersion_SupportsCompute(t *testing.T) {
	if !Version430.SupportsCompute() {
		t.Error("430 should support compute")
	}
	if (Version{Major: 4, Minor: 20}).SupportsCompute() {
		t.Error("420 should not support compute")
	}
}

// =============================================================================
// Dispatch Table
// =============================================================================

func TestEmitTable_Complete(t *testing.T) {
	for op := ir.Opcode(0); op < ir.NumOpcodes; op++ {
		if emitTable[op] == nil {
			t.Errorf("no emitter for %s", op)
		}
	}
}

// =============================================================================
// Program Layout
// =============================================================================

func TestCompile_LogicalOr(t *testing.T) {
	source, info := compile(t, logicalOr(ir.StageFragment), profile.Default(), DefaultOptions())

	want := strings.Join([]string{
		"#version 450",
		"void main(){",
		"    uint gpr[3]=uint[3](0u,0u,0u);",
		"    uvec4 r0,r1;",
		"    r0.x=gpr[1];",
		"    r1.x=gpr[2];",
		"    r0.x=r0.x|r1.x;",
		"    gpr[0]=r0.x;",
		"    return;",
		"}",
	}, "\n") + "\n"
	if source != want {
		t.Errorf("Compile() =\n%s\nwant\n%s", source, want)
	}
	if n := countLines(source, "r0.x=r0.x|r1.x;"); n != 1 {
		t.Errorf("OR statements = %d, want 1", n)
	}
	if info.RequiredVersion != Version450 {
		t.Errorf("RequiredVersion = %v, want 450", info.RequiredVersion)
	}
	if len(info.UsedExtensions) != 0 {
		t.Errorf("UsedExtensions = %v, want none", info.UsedExtensions)
	}
	if info.Registers.Short != 2 {
		t.Errorf("Registers.Short = %d, want 2", info.Registers.Short)
	}
}

func TestCompile_ProfileVersion(t *testing.T) {
	prof := profile.Default()
	prof.GLSLVersion = 460

	source, info := compile(t, logicalOr(ir.StageVertex), prof, DefaultOptions())

	if got := lines(source)[0]; got != "#version 460" {
		t.Errorf("directive = %q", got)
	}
	if info.RequiredVersion != Version460 {
		t.Errorf("RequiredVersion = %v, want 460", info.RequiredVersion)
	}
}

func TestCompile_InvalidProfile(t *testing.T) {
	prof := profile.Default()
	prof.GLSLVersion = 330

	_, _, err := Compile(logicalOr(ir.StageVertex), prof, profile.Bindings{}, DefaultOptions())
	if err == nil || !strings.HasPrefix(err.Error(), "glsl: ") {
		t.Errorf("Compile() error = %v, want glsl profile error", err)
	}
}

func TestCompile_Compute(t *testing.T) {
	b := ir.NewBuilder(ir.StageCompute)
	b.SetRegister(0, b.CompositeExtract(b.LocalInvocationID(), 1))
	b.Barrier()
	p := b.Program()
	p.WorkgroupSize = [3]uint32{8, 4, 0}

	source, _ := compile(t, p, profile.Default(), DefaultOptions())

	for _, want := range []string{
		"layout(local_size_x=8,local_size_y=4,local_size_z=1)in;",
		"r0.xyz=gl_LocalInvocationID;",
		"r0.x=r0.y;",
		"gpr[0]=r0.x;",
		"barrier();",
	} {
		if countLines(source, want) != 1 {
			t.Errorf("missing %q in\n%s", want, source)
		}
	}
}

func TestCompile_DebugInfo(t *testing.T) {
	source, _ := compile(t, logicalOr(ir.StageFragment), profile.Default(), Options{WriterFlags: WriterFlagDebugInfo})
	if countLines(source, "// %2 = BitwiseOr32") != 1 {
		t.Errorf("missing debug comment in\n%s", source)
	}
}

// =============================================================================
// Statements
// =============================================================================

func TestCompile_StructuredIf(t *testing.T) {
	b := ir.NewBuilder(ir.StageFragment)
	b.If(b.IEqual(b.GetRegister(0), ir.Imm32(0)))
	b.SetRegister(1, ir.Imm32(5))
	b.EndIf()
	b.Return()

	source, info := compile(t, b.Program(), profile.Default(), DefaultOptions())

	body := lines(source)
	want := []string{
		"    r0.x=gpr[0];",
		"    f0=uint(r0.x==0u);",
		"    if(f0!=0u){",
		"        gpr[1]=5u;",
		"    }",
		"    return;",
		"}",
	}
	if got := body[len(body)-len(want):]; !reflect.DeepEqual(got, want) {
		t.Errorf("body = %q, want %q", got, want)
	}
	if countLines(source, "uint f0;") != 1 {
		t.Errorf("missing condition temporary in\n%s", source)
	}
	if info.Registers.ConditionCode != 1 {
		t.Errorf("Registers.ConditionCode = %d, want 1", info.Registers.ConditionCode)
	}
}

func TestCompile_AddWithFlags(t *testing.T) {
	b := ir.NewBuilder(ir.StageFragment)
	sum := b.IAdd(b.GetRegister(1), b.GetRegister(2))
	b.SetZFlag(b.GetZeroFromOp(sum))
	b.SetCFlag(b.GetCarryFromOp(sum))
	b.SetRegister(0, sum)

	source, _ := compile(t, b.Program(), profile.Default(), DefaultOptions())

	for _, want := range []string{
		"uvec4 flags=uvec4(0u);",
		"r0.x=r0.x+r1.x;",
		"flags.x=f1;",
		"flags.z=f0;",
		"gpr[0]=r0.x;",
	} {
		if countLines(source, want) != 1 {
			t.Errorf("missing %q in\n%s", want, source)
		}
	}
	carry := indexOf(source, "f0=uint(r0.x>~r1.x);")
	add := indexOf(source, "r0.x=r0.x+r1.x;")
	zero := indexOf(source, "f1=uint(r0.x==0u);")
	if carry < 0 || zero < 0 || !(carry < add && add < zero) {
		t.Errorf("carry, sum and zero out of order in\n%s", source)
	}
}

func TestCompile_Templates(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *ir.Builder) ir.Value
		want  string
	}{
		{
			name: "FPMul",
			build: func(b *ir.Builder) ir.Value {
				return b.BitCast(ir.U32, b.FPMul(b.BitCast(ir.F32, b.GetRegister(1)), ir.ImmF32(2)))
			},
			want: "r0.x=floatBitsToUint(uintBitsToFloat(r0.x)*2.0);",
		},
		{
			name: "ShiftRightArithmetic",
			build: func(b *ir.Builder) ir.Value {
				return b.ShiftRightArithmetic(b.GetRegister(1), ir.Imm32(3))
			},
			want: "r0.x=uint(int(r0.x)>>3u);",
		},
		{
			name: "SignedMin",
			build: func(b *ir.Builder) ir.Value {
				return b.IMin(b.GetRegister(1), ir.Imm32(0), true)
			},
			want: "r0.x=uint(min(int(r0.x),int(0u)));",
		},
		{
			name: "BitFieldExtractSigned",
			build: func(b *ir.Builder) ir.Value {
				return b.BitFieldExtract(b.GetRegister(1), ir.Imm32(4), ir.Imm32(8), true)
			},
			want: "r0.x=uint(bitfieldExtract(int(r0.x),int(4u),int(8u)));",
		},
		{
			name: "Select",
			build: func(b *ir.Builder) ir.Value {
				return b.Select(b.IEqual(b.GetRegister(1), ir.Imm32(0)), ir.Imm32(1), ir.Imm32(0))
			},
			want: "r0.x=f0!=0u?1u:0u;",
		},
		{
			name: "ConvertFToI",
			build: func(b *ir.Builder) ir.Value {
				return b.ConvertFToI(b.BitCast(ir.F32, b.GetRegister(1)), true)
			},
			want: "r0.x=uint(int(uintBitsToFloat(r0.x)));",
		},
		{
			name: "CompositeInsert",
			build: func(b *ir.Builder) ir.Value {
				vec := b.CompositeConstruct(b.GetRegister(1), ir.Imm32(7))
				return b.CompositeExtract(b.CompositeInsert(vec, ir.Imm32(9), 0), 1)
			},
			want: "r0.xy=uvec2(9u,r0.y);",
		},
		{
			name: "InfinityImmediate",
			build: func(b *ir.Builder) ir.Value {
				return b.BitCast(ir.U32, b.FPAdd(b.BitCast(ir.F32, b.GetRegister(1)), ir.ImmF32Bits(0x7f800000)))
			},
			want: "r0.x=floatBitsToUint(uintBitsToFloat(r0.x)+uintBitsToFloat(0x7f800000u));",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ir.NewBuilder(ir.StageFragment)
			b.SetRegister(0, tt.build(b))
			source, _ := compile(t, b.Program(), profile.Default(), DefaultOptions())
			if countLines(source, tt.want) != 1 {
				t.Errorf("missing %q in\n%s", tt.want, source)
			}
		})
	}
}

func TestCompile_FloatCompare(t *testing.T) {
	tests := []struct {
		op   ir.Opcode
		want string
	}{
		{ir.OpFPOrdLessThan32, "f0=uint(uintBitsToFloat(r0.x)<uintBitsToFloat(r1.x));"},
		{ir.OpFPOrdNotEqual32, "f0=uint(uintBitsToFloat(r0.x)!=uintBitsToFloat(r1.x)&&!isnan(uintBitsToFloat(r0.x))&&!isnan(uintBitsToFloat(r1.x)));"},
		{ir.OpFPUnordGreaterThan32, "f0=uint(uintBitsToFloat(r0.x)>uintBitsToFloat(r1.x)||isnan(uintBitsToFloat(r0.x))||isnan(uintBitsToFloat(r1.x)));"},
		{ir.OpFPUnordNotEqual32, "f0=uint(uintBitsToFloat(r0.x)!=uintBitsToFloat(r1.x));"},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			b := ir.NewBuilder(ir.StageFragment)
			x := b.BitCast(ir.F32, b.GetRegister(1))
			y := b.BitCast(ir.F32, b.GetRegister(2))
			b.SetPred(ir.P0, b.FPCompare(tt.op, x, y))

			source, _ := compile(t, b.Program(), profile.Default(), DefaultOptions())

			for _, want := range []string{tt.want, "pred[0]=f0;", "uint pred[7]=uint[7](0u,0u,0u,0u,0u,0u,0u);"} {
				if countLines(source, want) != 1 {
					t.Errorf("missing %q in\n%s", want, source)
				}
			}
		})
	}
}

// =============================================================================
// Capabilities
// =============================================================================

func int64Program() *ir.Program {
	b := ir.NewBuilder(ir.StageFragment)
	wide := b.UConvert(ir.U64, b.GetRegister(1))
	sum := b.IAdd(wide, ir.Imm64(5))
	b.SetRegister(0, b.UConvert(ir.U32, sum))
	return b.Program()
}

func TestCompile_Int64(t *testing.T) {
	_, _, err := Compile(int64Program(), profile.Default(), profile.Bindings{}, DefaultOptions())
	if !errors.Is(err, ir.ErrNotImplemented) {
		t.Fatalf("Compile() error = %v, want ErrNotImplemented", err)
	}

	prof := profile.Default()
	prof.SupportInt64 = true
	source, info := compile(t, int64Program(), prof, DefaultOptions())

	for _, want := range []string{
		"#extension GL_ARB_gpu_shader_int64 : enable",
		"uint64_t d0;",
		"d0=uint64_t(r0.x);",
		"d0=d0+5ul;",
		"r0.x=uint(d0);",
	} {
		if countLines(source, want) != 1 {
			t.Errorf("missing %q in\n%s", want, source)
		}
	}
	if !reflect.DeepEqual(info.UsedExtensions, []string{extensionInt64}) {
		t.Errorf("UsedExtensions = %v", info.UsedExtensions)
	}
	if info.Registers.Long != 1 {
		t.Errorf("Registers.Long = %d, want 1", info.Registers.Long)
	}
}

func TestCompile_PackUint2x32WithoutInt64(t *testing.T) {
	b := ir.NewBuilder(ir.StageFragment)
	wide := b.PackUint2x32(b.CompositeConstruct(b.GetRegister(1), b.GetRegister(2)))
	b.SetRegister(0, b.UConvert(ir.U32, wide))

	source, info := compile(t, b.Program(), profile.Default(), DefaultOptions())

	for _, want := range []string{
		"uvec2 d0;",
		"d0=r0.xy;",
		"r0.x=d0.x;",
	} {
		if countLines(source, want) != 1 {
			t.Errorf("missing %q in\n%s", want, source)
		}
	}
	if len(info.UsedExtensions) != 0 {
		t.Errorf("UsedExtensions = %v, want none", info.UsedExtensions)
	}
}

func TestCompile_HalfAdd(t *testing.T) {
	build := func() *ir.Program {
		b := ir.NewBuilder(ir.StageFragment)
		x := b.BitCast(ir.F16x2, b.GetRegister(1))
		y := b.BitCast(ir.F16x2, b.GetRegister(2))
		b.SetRegister(0, b.BitCast(ir.U32, b.FPAdd16x2(x, y)))
		return b.Program()
	}

	source, info := compile(t, build(), profile.Default(), DefaultOptions())
	if countLines(source, "r0.x=packHalf2x16(unpackHalf2x16(r0.x)+unpackHalf2x16(r1.x));") != 1 {
		t.Errorf("missing fallback half add in\n%s", source)
	}
	if len(info.UsedExtensions) != 0 {
		t.Errorf("UsedExtensions = %v, want none", info.UsedExtensions)
	}

	prof := profile.Default()
	prof.SupportFloat16 = true
	source, info = compile(t, build(), prof, DefaultOptions())
	if countLines(source, "r0.x=packFloat2x16(unpackFloat2x16(r0.x)+unpackFloat2x16(r1.x));") != 1 {
		t.Errorf("missing native half add in\n%s", source)
	}
	if !reflect.DeepEqual(info.UsedExtensions, []string{extensionHalfFloat}) {
		t.Errorf("UsedExtensions = %v", info.UsedExtensions)
	}
}

// =============================================================================
// Resources
// =============================================================================

func TestCompile_ConstantBuffers(t *testing.T) {
	b := ir.NewBuilder(ir.StageVertex)
	b.SetRegister(0, b.GetCbuf(ir.Imm32(3), ir.Imm32(20)))
	b.SetRegister(1, b.GetCbuf(ir.Imm32(1), b.GetRegister(2)))
	bindings := profile.Bindings{ConstantBufferBase: 2, ConstantBuffers: map[uint32]uint32{3: 5}}

	source, info, err := Compile(b.Program(), profile.Default(), bindings, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	for _, want := range []string{
		"layout(std140,binding=3)uniform cbuf_block1{uvec4 cbuf1[4096];};",
		"layout(std140,binding=5)uniform cbuf_block3{uvec4 cbuf3[4096];};",
		"r0.x=cbuf3[1][1];",
		"r0.x=cbuf1[r0.x>>4u][(r0.x>>2u)&3u];",
	} {
		if countLines(source, want) != 1 {
			t.Errorf("missing %q in\n%s", want, source)
		}
	}
	wantBindings := []profile.Binding{{Index: 1, Slot: 3}, {Index: 3, Slot: 5}}
	if !reflect.DeepEqual(info.Bindings, wantBindings) {
		t.Errorf("Bindings = %v, want %v", info.Bindings, wantBindings)
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stage   ir.Stage
		build   func(b *ir.Builder)
		options Options
		target  error
	}{
		{
			name:  "AllocationExhausted",
			stage: ir.StageFragment,
			build: func(b *ir.Builder) {
				b.SetRegister(0, b.BitwiseOr(b.GetRegister(1), b.GetRegister(2)))
			},
			options: Options{Registers: regalloc.Options{MaxRegisters: 1}},
			target:  regalloc.ErrAllocationExhausted,
		},
		{
			name:  "GlobalMemory",
			stage: ir.StageCompute,
			build: func(b *ir.Builder) {
				b.SetRegister(0, b.LoadGlobal(32, b.UConvert(ir.U64, b.GetRegister(2))))
			},
			target: ir.ErrNotImplemented,
		},
		{
			name:  "DemoteOutsideFragment",
			stage: ir.StageVertex,
			build: func(b *ir.Builder) {
				b.DemoteToHelperInvocation()
			},
			target: ir.ErrNotImplemented,
		},
		{
			name:  "InvocationOutsideCompute",
			stage: ir.StageFragment,
			build: func(b *ir.Builder) {
				b.SetRegister(0, b.CompositeExtract(b.WorkgroupID(), 0))
			},
			target: ir.ErrNotImplemented,
		},
		{
			name:  "DynamicConstantBuffer",
			stage: ir.StageVertex,
			build: func(b *ir.Builder) {
				b.SetRegister(0, b.GetCbuf(b.GetRegister(1), ir.Imm32(0)))
			},
			target: ir.ErrNotImplemented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ir.NewBuilder(tt.stage)
			tt.build(b)
			_, _, err := Compile(b.Program(), profile.Default(), profile.Bindings{}, tt.options)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Compile() error = %v, want %v", err, tt.target)
			}
			if !strings.HasPrefix(err.Error(), "glsl: ") {
				t.Errorf("error %q lacks backend prefix", err)
			}
		})
	}
}
