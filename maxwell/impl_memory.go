// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

import "github.com/gogpu/smrecomp/ir"

// Memory access sizes of LDG, STG and LDC.
const (
	sizeU8 = iota
	sizeS8
	sizeU16
	sizeS16
	sizeB32
	sizeB64
	sizeB128
)

func accessBits(name string, size uint64) (int, error) {
	switch size {
	case sizeB32:
		return 32, nil
	case sizeB64:
		return 64, nil
	case sizeB128:
		return 128, nil
	case sizeU8, sizeS8, sizeU16, sizeS16:
		return 0, ir.NotImplementedf(name, "%d-bit access", 8<<(size/2))
	}
	return 0, ir.NotImplementedf(name, "size %d", size)
}

// globalAddress forms the 64-bit address of LDG and STG. With .E the
// address register pair holds a full address.
func (t *translator) globalAddress(name string, insn Instruction) (ir.Value, error) {
	reg := ir.Reg(fMemAddr.Get(insn))
	var addr ir.Value
	if fMemE.Bool(insn) {
		if reg == ir.RZ || reg+1 == ir.RZ {
			return ir.Value{}, ir.NotImplementedf(name, "address register pair %s", reg)
		}
		addr = t.b.PackUint2x32(t.b.CompositeConstruct(t.x(reg), t.x(reg+1)))
	} else {
		addr = t.b.UConvert(ir.U64, t.x(reg))
	}
	if offset := fMemOffset.Int(insn); offset != 0 {
		addr = t.b.IAdd(addr, ir.Imm64(uint64(offset)))
	}
	return addr, nil
}

func (t *translator) ldg(insn Instruction, _ Opcode) error {
	bits, err := accessBits("LDG", fMemSize.Get(insn))
	if err != nil {
		return err
	}
	dest := insn.Dest()
	if n := bits / 32; !dest.IsAligned(n) {
		return ir.NotImplementedf("LDG", "unaligned destination %s", dest)
	}
	addr, err := t.globalAddress("LDG", insn)
	if err != nil {
		return err
	}
	v := t.b.LoadGlobal(bits, addr)
	if bits == 32 {
		t.setX(dest, v)
		return nil
	}
	for i := 0; i < bits/32; i++ {
		t.setX(dest.Offset(i), t.b.CompositeExtract(v, i))
	}
	return nil
}

func (t *translator) stg(insn Instruction, _ Opcode) error {
	bits, err := accessBits("STG", fMemSize.Get(insn))
	if err != nil {
		return err
	}
	src := insn.Dest()
	if n := bits / 32; !src.IsAligned(n) {
		return ir.NotImplementedf("STG", "unaligned source %s", src)
	}
	addr, err := t.globalAddress("STG", insn)
	if err != nil {
		return err
	}
	var v ir.Value
	switch bits {
	case 32:
		v = t.x(src)
	case 64:
		v = t.b.CompositeConstruct(t.x(src), t.x(src.Offset(1)))
	case 128:
		v = t.b.CompositeConstruct(t.x(src), t.x(src.Offset(1)), t.x(src.Offset(2)), t.x(src.Offset(3)))
	}
	t.b.WriteGlobal(addr, v)
	return nil
}

// ldc reads a constant buffer at an immediate offset plus an optional
// register offset.
func (t *translator) ldc(insn Instruction, _ Opcode) error {
	if mode := fLdcMode.Get(insn); mode != 0 {
		return ir.NotImplementedf("LDC", "mode %d", mode)
	}
	var words int
	switch size := fMemSize.Get(insn); size {
	case sizeB32:
		words = 1
	case sizeB64:
		words = 2
	default:
		return ir.NotImplementedf("LDC", "size %d", size)
	}
	dest := insn.Dest()
	if !dest.IsAligned(words) {
		return ir.NotImplementedf("LDC", "unaligned destination %s", dest)
	}
	binding := ir.Imm32(uint32(fLdcIndex.Get(insn)))
	imm := fLdcOffset.Int(insn)
	reg := insn.SrcA()
	if reg == ir.RZ && imm < 0 {
		return ir.NotImplementedf("LDC", "negative offset %d", imm)
	}
	for i := 0; i < words; i++ {
		var offset ir.Value
		if reg == ir.RZ {
			offset = ir.Imm32(uint32(imm) + uint32(4*i))
		} else {
			offset = t.b.IAdd(t.x(reg), ir.ImmS32(int32(imm)+int32(4*i)))
		}
		t.setX(dest.Offset(i), t.b.GetCbuf(binding, offset))
	}
	return nil
}

// System registers read by S2R.
const (
	srTIDX   = 0x21
	srTIDY   = 0x22
	srTIDZ   = 0x23
	srCTAIDX = 0x25
	srCTAIDY = 0x26
	srCTAIDZ = 0x27
)

func (t *translator) s2r(insn Instruction, _ Opcode) error {
	var v ir.Value
	switch sr := fS2RReg.Get(insn); sr {
	case srTIDX, srTIDY, srTIDZ:
		v = t.b.CompositeExtract(t.b.LocalInvocationID(), int(sr-srTIDX))
	case srCTAIDX, srCTAIDY, srCTAIDZ:
		v = t.b.CompositeExtract(t.b.WorkgroupID(), int(sr-srCTAIDX))
	default:
		return ir.NotImplementedf("S2R", "system register %#x", sr)
	}
	t.setX(insn.Dest(), v)
	return nil
}
