package pica

// OpCode is the 6 bit vertex shader opcode field (spec §3, "Instruction
// Word").
type OpCode uint32

const (
	OpAdd OpCode = iota
	OpMul
	OpDp3
	OpDp4
	OpRcp
	OpRsq
	OpMov
	OpCall
	OpNop
	OpEnd
	opCodeCount
)

func (op OpCode) isKnown() bool {
	return op < opCodeCount
}

// RegisterType tags where a source or destination register pointer
// resolves to, per spec §4.3.
type RegisterType uint32

const (
	RegInput RegisterType = iota
	RegTemporary
	RegFloatUniform
)

// Instruction is one decoded vertex shader instruction. Bit-exact parity
// with real PICA200 hardware encoding is explicitly out of scope (spec
// §1 Non-goals); this repository defines its own compact 32 bit packing
// documented below, self-consistent and
// good enough to exercise every opcode and addressing mode spec §4.3
// requires. Register index fields are 4 bits wide, matching the 16-input
// / 16-temporary register file sizes from spec §3 exactly; FloatUniform
// indices addressable directly from an instruction share that width
// (a shader wanting a uniform beyond index 15 loads it through a
// temporary via MOV first — CommandProcessor and tests never need more).
//
// Word layout, MSB to LSB, for all opcodes except OpCall:
//
//	[31:26] opcode        (6 bits)
//	[25:21] dest          (5 bits, 0-31: <8 output slot, 0x10-0x1F temporary)
//	[20:19] src1 type     (2 bits)
//	[18:15] src1 index    (4 bits)
//	[14:13] src2 type     (2 bits)
//	[12:9]  src2 index    (4 bits)
//	[8]     inverse       (1 bit)
//	[7:0]   operand_desc_id (8 bits, indexes swizzle memory)
//
// OpCall reuses only the opcode field, packing [25:16] dest_offset (10
// bits): CALL pushes the current PC+1 onto the call stack and jumps to
// dest_offset; the subroutine returns to that saved PC whenever its own
// END instruction runs with a non-empty call stack (spec §4.3's CALL/END
// scenario). There is no num_instr/span field — CALL and END are a plain
// push/pop pair.
type Instruction struct {
	OpCode        OpCode
	Dest          uint32
	Src1          uint32
	Src1Type      RegisterType
	Src2          uint32
	Src2Type      RegisterType
	Inverse       bool
	OperandDescID uint32
	DestOffset    uint32
}

func DecodeInstruction(word uint32) Instruction {
	op := OpCode((word >> 26) & 0x3f)
	if op == OpCall {
		return Instruction{
			OpCode:     op,
			DestOffset: (word >> 16) & 0x3ff,
		}
	}
	return Instruction{
		OpCode:        op,
		Dest:          (word >> 21) & 0x1f,
		Src1Type:      RegisterType((word >> 19) & 0x3),
		Src1:          (word >> 15) & 0xf,
		Src2Type:      RegisterType((word >> 13) & 0x3),
		Src2:          (word >> 9) & 0xf,
		Inverse:       word&0x100 != 0,
		OperandDescID: word & 0xff,
	}
}

// EncodeInstruction is the inverse of DecodeInstruction, used by tests
// and the shader assembler helper to build shader-memory words.
func EncodeInstruction(instr Instruction) uint32 {
	if instr.OpCode == OpCall {
		return uint32(instr.OpCode)<<26 | (instr.DestOffset&0x3ff)<<16
	}
	word := uint32(instr.OpCode) << 26
	word |= (instr.Dest & 0x1f) << 21
	word |= (uint32(instr.Src1Type) & 0x3) << 19
	word |= (instr.Src1 & 0xf) << 15
	word |= (uint32(instr.Src2Type) & 0x3) << 13
	word |= (instr.Src2 & 0xf) << 9
	if instr.Inverse {
		word |= 0x100
	}
	word |= instr.OperandDescID & 0xff
	return word
}
