package pica

// SwizzlePattern is a decoded operand descriptor word: per spec §3, "each
// instruction's operand descriptor selects, per source operand, which of
// the four source components maps to each destination lane, an optional
// per-source negate, and a destination write mask." Component indices are
// 0=x, 1=y, 2=z, 3=w throughout.
//
// Word layout, MSB to LSB (self-defined; see the note on Instruction for
// why this repository does not chase PICA200's literal bit positions):
//
//	[31:28] dest write mask, one bit per component, MSB = x
//	[27]    negate src1
//	[26:19] src1 component select, 2 bits per destination lane (x,y,z,w)
//	[18]    negate src2
//	[17:10] src2 component select, 2 bits per destination lane
type SwizzlePattern struct {
	DestMask   [4]bool
	NegateSrc1 bool
	Src1Select [4]uint8
	NegateSrc2 bool
	Src2Select [4]uint8
}

func DecodeSwizzlePattern(word uint32) SwizzlePattern {
	var p SwizzlePattern
	for i := 0; i < 4; i++ {
		p.DestMask[i] = word&(1<<uint(31-i)) != 0
	}
	p.NegateSrc1 = word&(1<<27) != 0
	src1Bits := (word >> 19) & 0xff
	p.NegateSrc2 = word&(1<<18) != 0
	src2Bits := (word >> 10) & 0xff
	for i := 0; i < 4; i++ {
		shift := uint(6 - 2*i)
		p.Src1Select[i] = uint8((src1Bits >> shift) & 0x3)
		p.Src2Select[i] = uint8((src2Bits >> shift) & 0x3)
	}
	return p
}

func EncodeSwizzlePattern(p SwizzlePattern) uint32 {
	var word uint32
	for i := 0; i < 4; i++ {
		if p.DestMask[i] {
			word |= 1 << uint(31-i)
		}
	}
	if p.NegateSrc1 {
		word |= 1 << 27
	}
	if p.NegateSrc2 {
		word |= 1 << 18
	}
	var src1Bits, src2Bits uint32
	for i := 0; i < 4; i++ {
		shift := uint(6 - 2*i)
		src1Bits |= uint32(p.Src1Select[i]&0x3) << shift
		src2Bits |= uint32(p.Src2Select[i]&0x3) << shift
	}
	word |= src1Bits << 19
	word |= src2Bits << 10
	return word
}

// IdentitySwizzle is x.xyzw with no negation and a full write mask, the
// default an assembler helper should start from.
var IdentitySwizzle = SwizzlePattern{
	DestMask:   [4]bool{true, true, true, true},
	Src1Select: [4]uint8{0, 1, 2, 3},
	Src2Select: [4]uint8{0, 1, 2, 3},
}

// applySwizzle produces the shuffled, optionally negated 4 lane operand
// read out of src according to select/negate, matching vertex_shader.cpp's
// GetSourceSwizzled.
func applySwizzle(src Vec4F24, select_ [4]uint8, negate bool) Vec4F24 {
	var out Vec4F24
	for i := 0; i < 4; i++ {
		lane := src.Lane(int(select_[i]))
		if negate {
			lane = lane.Neg()
		}
		out.SetLane(i, lane)
	}
	return out
}
