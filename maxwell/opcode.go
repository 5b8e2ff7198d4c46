// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package maxwell

// Opcode identifies a guest instruction encoding.
type Opcode uint8

const (
	BAR Opcode = iota
	BFECbuf
	BFEReg
	BFEImm
	BRA
	EXIT
	FADDCbuf
	FADDReg
	FADDImm
	FADD32I
	FFMACR
	FFMARC
	FFMAReg
	FFMAImm
	FMNMXCbuf
	FMNMXReg
	FMNMXImm
	FMULCbuf
	FMULReg
	FMULImm
	FMUL32I
	FSETPCbuf
	FSETPReg
	FSETPImm
	F2ICbuf
	F2IReg
	F2IImm
	HADD2Reg
	I2FCbuf
	I2FReg
	I2FImm
	IADDCbuf
	IADDReg
	IADDImm
	IADD32I
	IMNMXCbuf
	IMNMXReg
	IMNMXImm
	IPA
	ISCADDCbuf
	ISCADDReg
	ISCADDImm
	ISETCbuf
	ISETReg
	ISETImm
	ISETPCbuf
	ISETPReg
	ISETPImm
	KIL
	LDC
	LDG
	STG
	LOPCbuf
	LOPReg
	LOPImm
	LOP32I
	MEMBAR
	MOVCbuf
	MOVReg
	MOVImm
	MOV32I
	MUFU
	NOP
	PSETP
	S2R
	SELCbuf
	SELReg
	SELImm
	SHLCbuf
	SHLReg
	SHLImm
	SHRCbuf
	SHRReg
	SHRImm
	SSY
	SYNC
	TEX
	TEXS
	XMADCbuf
	XMADReg
	XMADImm
	XMADRC

	NumOpcodes
)

// Form selects where the B (and C) operands of an ALU instruction come from.
type Form uint8

const (
	FormNone  Form = iota
	FormReg        // B from a register
	FormCbuf       // B from a constant buffer
	FormImm        // B from a 20-bit immediate
	FormImm32      // B from a 32-bit immediate
	FormRC         // B from a register, C from a constant buffer
	FormCR         // B from a constant buffer, C from a register
)

type family uint8

const (
	famNotImplemented family = iota
	famBAR
	famBFE
	famBRA
	famEXIT
	famFADD
	famFADD32I
	famFFMA
	famFMNMX
	famFMUL
	famFMUL32I
	famFSETP
	famF2I
	famHADD2
	famI2F
	famIADD
	famIADD32I
	famIMNMX
	famISCADD
	famISET
	famISETP
	famKIL
	famLDC
	famLDG
	famSTG
	famLOP
	famLOP32I
	famMEMBAR
	famMOV
	famMOV32I
	famMUFU
	famNOP
	famPSETP
	famS2R
	famSEL
	famSHL
	famSHR

	numFamilies
)

type opcodeInfo struct {
	name    string
	pattern string
	family  family
	form    Form
}

var opcodeTable = [NumOpcodes]opcodeInfo{
	BAR:        {"BAR", "1111000010101---", famBAR, FormNone},
	BFECbuf:    {"BFE_C", "0100110000000---", famBFE, FormCbuf},
	BFEReg:     {"BFE_R", "0101110000000---", famBFE, FormReg},
	BFEImm:     {"BFE_IMM", "0011100-00000---", famBFE, FormImm},
	BRA:        {"BRA", "111000100100----", famBRA, FormNone},
	EXIT:       {"EXIT", "111000110000----", famEXIT, FormNone},
	FADDCbuf:   {"FADD_C", "0100110001011---", famFADD, FormCbuf},
	FADDReg:    {"FADD_R", "0101110001011---", famFADD, FormReg},
	FADDImm:    {"FADD_IMM", "0011100-01011---", famFADD, FormImm},
	FADD32I:    {"FADD32I", "000010----------", famFADD32I, FormImm32},
	FFMACR:     {"FFMA_CR", "010010011-------", famFFMA, FormCR},
	FFMARC:     {"FFMA_RC", "010100011-------", famFFMA, FormRC},
	FFMAReg:    {"FFMA_RR", "010110011-------", famFFMA, FormReg},
	FFMAImm:    {"FFMA_IMM", "0011001-1-------", famFFMA, FormImm},
	FMNMXCbuf:  {"FMNMX_C", "0100110001100---", famFMNMX, FormCbuf},
	FMNMXReg:   {"FMNMX_R", "0101110001100---", famFMNMX, FormReg},
	FMNMXImm:   {"FMNMX_IMM", "0011100-01100---", famFMNMX, FormImm},
	FMULCbuf:   {"FMUL_C", "0100110001101---", famFMUL, FormCbuf},
	FMULReg:    {"FMUL_R", "0101110001101---", famFMUL, FormReg},
	FMULImm:    {"FMUL_IMM", "0011100-01101---", famFMUL, FormImm},
	FMUL32I:    {"FMUL32I", "00011110--------", famFMUL32I, FormImm32},
	FSETPCbuf:  {"FSETP_C", "010010111011----", famFSETP, FormCbuf},
	FSETPReg:   {"FSETP_R", "010110111011----", famFSETP, FormReg},
	FSETPImm:   {"FSETP_IMM", "0011011-1011----", famFSETP, FormImm},
	F2ICbuf:    {"F2I_C", "0100110010110---", famF2I, FormCbuf},
	F2IReg:     {"F2I_R", "0101110010110---", famF2I, FormReg},
	F2IImm:     {"F2I_IMM", "0011100-10110---", famF2I, FormImm},
	HADD2Reg:   {"HADD2_R", "0101110100010---", famHADD2, FormReg},
	I2FCbuf:    {"I2F_C", "0100110010111---", famI2F, FormCbuf},
	I2FReg:     {"I2F_R", "0101110010111---", famI2F, FormReg},
	I2FImm:     {"I2F_IMM", "0011100-10111---", famI2F, FormImm},
	IADDCbuf:   {"IADD_C", "0100110000010---", famIADD, FormCbuf},
	IADDReg:    {"IADD_R", "0101110000010---", famIADD, FormReg},
	IADDImm:    {"IADD_IMM", "0011100-00010---", famIADD, FormImm},
	IADD32I:    {"IADD32I", "0001110---------", famIADD32I, FormImm32},
	IMNMXCbuf:  {"IMNMX_C", "0100110000100---", famIMNMX, FormCbuf},
	IMNMXReg:   {"IMNMX_R", "0101110000100---", famIMNMX, FormReg},
	IMNMXImm:   {"IMNMX_IMM", "0011100-00100---", famIMNMX, FormImm},
	IPA:        {"IPA", "11100000--------", famNotImplemented, FormNone},
	ISCADDCbuf: {"ISCADD_C", "0100110000011---", famISCADD, FormCbuf},
	ISCADDReg:  {"ISCADD_R", "0101110000011---", famISCADD, FormReg},
	ISCADDImm:  {"ISCADD_IMM", "0011100-00011---", famISCADD, FormImm},
	ISETCbuf:   {"ISET_C", "010010110101----", famISET, FormCbuf},
	ISETReg:    {"ISET_R", "010110110101----", famISET, FormReg},
	ISETImm:    {"ISET_IMM", "0011011-0101----", famISET, FormImm},
	ISETPCbuf:  {"ISETP_C", "010010110110----", famISETP, FormCbuf},
	ISETPReg:   {"ISETP_R", "010110110110----", famISETP, FormReg},
	ISETPImm:   {"ISETP_IMM", "0011011-0110----", famISETP, FormImm},
	KIL:        {"KIL", "111000110011----", famKIL, FormNone},
	LDC:        {"LD_C", "1110111110010---", famLDC, FormNone},
	LDG:        {"LDG", "1110111011010---", famLDG, FormNone},
	STG:        {"STG", "1110111011011---", famSTG, FormNone},
	LOPCbuf:    {"LOP_C", "0100110001000---", famLOP, FormCbuf},
	LOPReg:     {"LOP_R", "0101110001000---", famLOP, FormReg},
	LOPImm:     {"LOP_IMM", "0011100001000---", famLOP, FormImm},
	LOP32I:     {"LOP32I", "000001----------", famLOP32I, FormImm32},
	MEMBAR:     {"MEMBAR", "1110111110011---", famMEMBAR, FormNone},
	MOVCbuf:    {"MOV_C", "0100110010011---", famMOV, FormCbuf},
	MOVReg:     {"MOV_R", "0101110010011---", famMOV, FormReg},
	MOVImm:     {"MOV_IMM", "0011100-10011---", famMOV, FormImm},
	MOV32I:     {"MOV32_IMM", "000000010000----", famMOV32I, FormImm32},
	MUFU:       {"MUFU", "0101000010000---", famMUFU, FormNone},
	NOP:        {"NOP", "0101000010110---", famNOP, FormNone},
	PSETP:      {"PSETP", "0101000010010---", famPSETP, FormNone},
	S2R:        {"S2R", "1111000011001---", famS2R, FormNone},
	SELCbuf:    {"SEL_C", "0100110010100---", famSEL, FormCbuf},
	SELReg:     {"SEL_R", "0101110010100---", famSEL, FormReg},
	SELImm:     {"SEL_IMM", "0011100010100---", famSEL, FormImm},
	SHLCbuf:    {"SHL_C", "0100110001001---", famSHL, FormCbuf},
	SHLReg:     {"SHL_R", "0101110001001---", famSHL, FormReg},
	SHLImm:     {"SHL_IMM", "0011100-01001---", famSHL, FormImm},
	SHRCbuf:    {"SHR_C", "0100110000101---", famSHR, FormCbuf},
	SHRReg:     {"SHR_R", "0101110000101---", famSHR, FormReg},
	SHRImm:     {"SHR_IMM", "0011100-00101---", famSHR, FormImm},
	SSY:        {"SSY", "111000101001----", famNotImplemented, FormNone},
	SYNC:       {"SYNC", "1111000011111---", famNotImplemented, FormNone},
	TEX:        {"TEX", "110000----111---", famNotImplemented, FormNone},
	TEXS:       {"TEXS", "1101100---------", famNotImplemented, FormNone},
	XMADCbuf:   {"XMAD_CR", "0100111---------", famNotImplemented, FormCbuf},
	XMADReg:    {"XMAD_RR", "0101101100------", famNotImplemented, FormReg},
	XMADImm:    {"XMAD_IMM", "0011011-00------", famNotImplemented, FormImm},
	XMADRC:     {"XMAD_RC", "010100010-------", famNotImplemented, FormRC},
}

// String returns the assembler mnemonic of the encoding.
func (op Opcode) String() string {
	if op < NumOpcodes {
		return opcodeTable[op].name
	}
	return "INVALID"
}

// Form returns the operand form of the encoding.
func (op Opcode) Form() Form {
	return opcodeTable[op].form
}

// Pattern returns the matcher bitstring over the top 16 bits.
func (op Opcode) Pattern() string {
	return opcodeTable[op].pattern
}
