// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ir

import "fmt"

// Opcode identifies an IR operation.
type Opcode uint16

const (
	OpIdentity Opcode = iota

	// Synchronization and termination
	OpBarrier
	OpWorkgroupMemoryBarrier
	OpDeviceMemoryBarrier
	OpDemoteToHelperInvocation

	// Guest context
	OpGetRegister
	OpSetRegister
	OpGetPred
	OpSetPred
	OpGetZFlag
	OpGetSFlag
	OpGetCFlag
	OpGetOFlag
	OpSetZFlag
	OpSetSFlag
	OpSetCFlag
	OpSetOFlag
	OpGetCbufU32
	OpLocalInvocationID
	OpWorkgroupID

	// Global memory
	OpLoadGlobal32
	OpLoadGlobal64
	OpLoadGlobal128
	OpWriteGlobal32
	OpWriteGlobal64
	OpWriteGlobal128

	// Pseudo-operations attached to a producer
	OpGetZeroFromOp
	OpGetSignFromOp
	OpGetCarryFromOp
	OpGetOverflowFromOp

	// Composites
	OpCompositeConstructU32x2
	OpCompositeConstructU32x3
	OpCompositeConstructU32x4
	OpCompositeExtractU32x2
	OpCompositeExtractU32x3
	OpCompositeExtractU32x4
	OpCompositeInsertU32x2
	OpCompositeInsertU32x3
	OpCompositeInsertU32x4

	// Select
	OpSelectU1
	OpSelectU32
	OpSelectU64
	OpSelectF32

	// Bit casts and packing
	OpBitCastU32F32
	OpBitCastF32U32
	OpBitCastU32F16x2
	OpBitCastF16x2U32
	OpPackUint2x32
	OpUnpackUint2x32

	// Floating point
	OpFPAbs32
	OpFPAdd32
	OpFPAdd16x2
	OpFPFma32
	OpFPMul32
	OpFPNeg32
	OpFPSaturate32
	OpFPMin32
	OpFPMax32
	OpFPRecip32
	OpFPRecipSqrt32
	OpFPSqrt
	OpFPSin
	OpFPCos
	OpFPExp2
	OpFPLog2
	OpFPRoundEven32
	OpFPFloor32
	OpFPCeil32
	OpFPTrunc32
	OpFPOrdEqual32
	OpFPUnordEqual32
	OpFPOrdNotEqual32
	OpFPUnordNotEqual32
	OpFPOrdLessThan32
	OpFPUnordLessThan32
	OpFPOrdGreaterThan32
	OpFPUnordGreaterThan32
	OpFPOrdLessThanEqual32
	OpFPUnordLessThanEqual32
	OpFPOrdGreaterThanEqual32
	OpFPUnordGreaterThanEqual32
	OpFPIsNan32

	// Integer
	OpIAdd32
	OpIAdd64
	OpISub32
	OpIMul32
	OpINeg32
	OpIAbs32
	OpShiftLeftLogical32
	OpShiftRightLogical32
	OpShiftRightArithmetic32
	OpBitwiseAnd32
	OpBitwiseOr32
	OpBitwiseXor32
	OpBitFieldInsert
	OpBitFieldSExtract
	OpBitFieldUExtract
	OpBitReverse32
	OpBitCount32
	OpBitwiseNot32
	OpFindSMsb32
	OpFindUMsb32
	OpSMin32
	OpUMin32
	OpSMax32
	OpUMax32
	OpSLessThan
	OpULessThan
	OpIEqual
	OpSLessThanEqual
	OpULessThanEqual
	OpSGreaterThan
	OpUGreaterThan
	OpINotEqual
	OpSGreaterThanEqual
	OpUGreaterThanEqual

	// Logical
	OpLogicalOr
	OpLogicalAnd
	OpLogicalXor
	OpLogicalNot

	// Conversions
	OpConvertS32F32
	OpConvertU32F32
	OpConvertF32S32
	OpConvertF32U32
	OpConvertU64U32
	OpConvertU32U64

	NumOpcodes
)

type opcodeInfo struct {
	name   string
	result Type
	args   []Type
}

func info(name string, result Type, args ...Type) opcodeInfo {
	return opcodeInfo{name: name, result: result, args: args}
}

var opcodeTable = [NumOpcodes]opcodeInfo{
	OpIdentity: info("Identity", Opaque, Opaque),

	OpBarrier:                  info("Barrier", Void),
	OpWorkgroupMemoryBarrier:   info("WorkgroupMemoryBarrier", Void),
	OpDeviceMemoryBarrier:      info("DeviceMemoryBarrier", Void),
	OpDemoteToHelperInvocation: info("DemoteToHelperInvocation", Void),

	OpGetRegister:       info("GetRegister", U32, RegType),
	OpSetRegister:       info("SetRegister", Void, RegType, U32),
	OpGetPred:           info("GetPred", U1, PredType),
	OpSetPred:           info("SetPred", Void, PredType, U1),
	OpGetZFlag:          info("GetZFlag", U1),
	OpGetSFlag:          info("GetSFlag", U1),
	OpGetCFlag:          info("GetCFlag", U1),
	OpGetOFlag:          info("GetOFlag", U1),
	OpSetZFlag:          info("SetZFlag", Void, U1),
	OpSetSFlag:          info("SetSFlag", Void, U1),
	OpSetCFlag:          info("SetCFlag", Void, U1),
	OpSetOFlag:          info("SetOFlag", Void, U1),
	OpGetCbufU32:        info("GetCbufU32", U32, U32, U32),
	OpLocalInvocationID: info("LocalInvocationId", U32x3),
	OpWorkgroupID:       info("WorkgroupId", U32x3),

	OpLoadGlobal32:   info("LoadGlobal32", U32, U64),
	OpLoadGlobal64:   info("LoadGlobal64", U32x2, U64),
	OpLoadGlobal128:  info("LoadGlobal128", U32x4, U64),
	OpWriteGlobal32:  info("WriteGlobal32", Void, U64, U32),
	OpWriteGlobal64:  info("WriteGlobal64", Void, U64, U32x2),
	OpWriteGlobal128: info("WriteGlobal128", Void, U64, U32x4),

	OpGetZeroFromOp:     info("GetZeroFromOp", U1, Opaque),
	OpGetSignFromOp:     info("GetSignFromOp", U1, Opaque),
	OpGetCarryFromOp:    info("GetCarryFromOp", U1, Opaque),
	OpGetOverflowFromOp: info("GetOverflowFromOp", U1, Opaque),

	OpCompositeConstructU32x2: info("CompositeConstructU32x2", U32x2, U32, U32),
	OpCompositeConstructU32x3: info("CompositeConstructU32x3", U32x3, U32, U32, U32),
	OpCompositeConstructU32x4: info("CompositeConstructU32x4", U32x4, U32, U32, U32, U32),
	OpCompositeExtractU32x2:   info("CompositeExtractU32x2", U32, U32x2, U32),
	OpCompositeExtractU32x3:   info("CompositeExtractU32x3", U32, U32x3, U32),
	OpCompositeExtractU32x4:   info("CompositeExtractU32x4", U32, U32x4, U32),
	OpCompositeInsertU32x2:    info("CompositeInsertU32x2", U32x2, U32x2, U32, U32),
	OpCompositeInsertU32x3:    info("CompositeInsertU32x3", U32x3, U32x3, U32, U32),
	OpCompositeInsertU32x4:    info("CompositeInsertU32x4", U32x4, U32x4, U32, U32),

	OpSelectU1:  info("SelectU1", U1, U1, U1, U1),
	OpSelectU32: info("SelectU32", U32, U1, U32, U32),
	OpSelectU64: info("SelectU64", U64, U1, U64, U64),
	OpSelectF32: info("SelectF32", F32, U1, F32, F32),

	OpBitCastU32F32:   info("BitCastU32F32", U32, F32),
	OpBitCastF32U32:   info("BitCastF32U32", F32, U32),
	OpBitCastU32F16x2: info("BitCastU32F16x2", U32, F16x2),
	OpBitCastF16x2U32: info("BitCastF16x2U32", F16x2, U32),
	OpPackUint2x32:    info("PackUint2x32", U64, U32x2),
	OpUnpackUint2x32:  info("UnpackUint2x32", U32x2, U64),

	OpFPAbs32:                   info("FPAbs32", F32, F32),
	OpFPAdd32:                   info("FPAdd32", F32, F32, F32),
	OpFPAdd16x2:                 info("FPAdd16x2", F16x2, F16x2, F16x2),
	OpFPFma32:                   info("FPFma32", F32, F32, F32, F32),
	OpFPMul32:                   info("FPMul32", F32, F32, F32),
	OpFPNeg32:                   info("FPNeg32", F32, F32),
	OpFPSaturate32:              info("FPSaturate32", F32, F32),
	OpFPMin32:                   info("FPMin32", F32, F32, F32),
	OpFPMax32:                   info("FPMax32", F32, F32, F32),
	OpFPRecip32:                 info("FPRecip32", F32, F32),
	OpFPRecipSqrt32:             info("FPRecipSqrt32", F32, F32),
	OpFPSqrt:                    info("FPSqrt", F32, F32),
	OpFPSin:                     info("FPSin", F32, F32),
	OpFPCos:                     info("FPCos", F32, F32),
	OpFPExp2:                    info("FPExp2", F32, F32),
	OpFPLog2:                    info("FPLog2", F32, F32),
	OpFPRoundEven32:             info("FPRoundEven32", F32, F32),
	OpFPFloor32:                 info("FPFloor32", F32, F32),
	OpFPCeil32:                  info("FPCeil32", F32, F32),
	OpFPTrunc32:                 info("FPTrunc32", F32, F32),
	OpFPOrdEqual32:              info("FPOrdEqual32", U1, F32, F32),
	OpFPUnordEqual32:            info("FPUnordEqual32", U1, F32, F32),
	OpFPOrdNotEqual32:           info("FPOrdNotEqual32", U1, F32, F32),
	OpFPUnordNotEqual32:         info("FPUnordNotEqual32", U1, F32, F32),
	OpFPOrdLessThan32:           info("FPOrdLessThan32", U1, F32, F32),
	OpFPUnordLessThan32:         info("FPUnordLessThan32", U1, F32, F32),
	OpFPOrdGreaterThan32:        info("FPOrdGreaterThan32", U1, F32, F32),
	OpFPUnordGreaterThan32:      info("FPUnordGreaterThan32", U1, F32, F32),
	OpFPOrdLessThanEqual32:      info("FPOrdLessThanEqual32", U1, F32, F32),
	OpFPUnordLessThanEqual32:    info("FPUnordLessThanEqual32", U1, F32, F32),
	OpFPOrdGreaterThanEqual32:   info("FPOrdGreaterThanEqual32", U1, F32, F32),
	OpFPUnordGreaterThanEqual32: info("FPUnordGreaterThanEqual32", U1, F32, F32),
	OpFPIsNan32:                 info("FPIsNan32", U1, F32),

	OpIAdd32:                 info("IAdd32", U32, U32, U32),
	OpIAdd64:                 info("IAdd64", U64, U64, U64),
	OpISub32:                 info("ISub32", U32, U32, U32),
	OpIMul32:                 info("IMul32", U32, U32, U32),
	OpINeg32:                 info("INeg32", U32, U32),
	OpIAbs32:                 info("IAbs32", U32, U32),
	OpShiftLeftLogical32:     info("ShiftLeftLogical32", U32, U32, U32),
	OpShiftRightLogical32:    info("ShiftRightLogical32", U32, U32, U32),
	OpShiftRightArithmetic32: info("ShiftRightArithmetic32", U32, U32, U32),
	OpBitwiseAnd32:           info("BitwiseAnd32", U32, U32, U32),
	OpBitwiseOr32:            info("BitwiseOr32", U32, U32, U32),
	OpBitwiseXor32:           info("BitwiseXor32", U32, U32, U32),
	OpBitFieldInsert:         info("BitFieldInsert", U32, U32, U32, U32, U32),
	OpBitFieldSExtract:       info("BitFieldSExtract", U32, U32, U32, U32),
	OpBitFieldUExtract:       info("BitFieldUExtract", U32, U32, U32, U32),
	OpBitReverse32:           info("BitReverse32", U32, U32),
	OpBitCount32:             info("BitCount32", U32, U32),
	OpBitwiseNot32:           info("BitwiseNot32", U32, U32),
	OpFindSMsb32:             info("FindSMsb32", U32, U32),
	OpFindUMsb32:             info("FindUMsb32", U32, U32),
	OpSMin32:                 info("SMin32", U32, U32, U32),
	OpUMin32:                 info("UMin32", U32, U32, U32),
	OpSMax32:                 info("SMax32", U32, U32, U32),
	OpUMax32:                 info("UMax32", U32, U32, U32),
	OpSLessThan:              info("SLessThan", U1, U32, U32),
	OpULessThan:              info("ULessThan", U1, U32, U32),
	OpIEqual:                 info("IEqual", U1, U32, U32),
	OpSLessThanEqual:         info("SLessThanEqual", U1, U32, U32),
	OpULessThanEqual:         info("ULessThanEqual", U1, U32, U32),
	OpSGreaterThan:           info("SGreaterThan", U1, U32, U32),
	OpUGreaterThan:           info("UGreaterThan", U1, U32, U32),
	OpINotEqual:              info("INotEqual", U1, U32, U32),
	OpSGreaterThanEqual:      info("SGreaterThanEqual", U1, U32, U32),
	OpUGreaterThanEqual:      info("UGreaterThanEqual", U1, U32, U32),

	OpLogicalOr:  info("LogicalOr", U1, U1, U1),
	OpLogicalAnd: info("LogicalAnd", U1, U1, U1),
	OpLogicalXor: info("LogicalXor", U1, U1, U1),
	OpLogicalNot: info("LogicalNot", U1, U1),

	OpConvertS32F32: info("ConvertS32F32", U32, F32),
	OpConvertU32F32: info("ConvertU32F32", U32, F32),
	OpConvertF32S32: info("ConvertF32S32", F32, U32),
	OpConvertF32U32: info("ConvertF32U32", F32, U32),
	OpConvertU64U32: info("ConvertU64U32", U64, U32),
	OpConvertU32U64: info("ConvertU32U64", U32, U64),
}

// String returns the opcode name used in dumps.
func (op Opcode) String() string {
	if op < NumOpcodes {
		return opcodeTable[op].name
	}
	return fmt.Sprintf("Opcode(%d)", uint16(op))
}

// ResultType returns the result type of the opcode.
func (op Opcode) ResultType() Type {
	return opcodeTable[op].result
}

// NumArgs returns the number of operands the opcode takes.
func (op Opcode) NumArgs() int {
	return len(opcodeTable[op].args)
}

// ArgType returns the expected type of operand i.
func (op Opcode) ArgType(i int) Type {
	return opcodeTable[op].args[i]
}

// IsPseudo reports whether the opcode is a pseudo-operation that reads
// flags produced by another instruction.
func (op Opcode) IsPseudo() bool {
	switch op {
	case OpGetZeroFromOp, OpGetSignFromOp, OpGetCarryFromOp, OpGetOverflowFromOp:
		return true
	}
	return false
}

// IsAlias reports whether the opcode only reinterprets the bits of its
// first operand.
func (op Opcode) IsAlias() bool {
	switch op {
	case OpIdentity, OpBitCastU32F32, OpBitCastF32U32, OpBitCastU32F16x2, OpBitCastF16x2U32:
		return true
	}
	return false
}

// MayHaveSideEffects reports whether the operation must be kept even when
// its result is unused.
func (op Opcode) MayHaveSideEffects() bool {
	switch op {
	case OpBarrier, OpWorkgroupMemoryBarrier, OpDeviceMemoryBarrier,
		OpDemoteToHelperInvocation,
		OpSetRegister, OpSetPred, OpSetZFlag, OpSetSFlag, OpSetCFlag, OpSetOFlag,
		OpWriteGlobal32, OpWriteGlobal64, OpWriteGlobal128:
		return true
	}
	return false
}

// pseudoIndex maps a pseudo-operation to its slot on the producer.
func pseudoIndex(op Opcode) int {
	return int(op - OpGetZeroFromOp)
}
