package pica

// shaderMemSize and swizzleMemSize are the vertex shader's two program
// banks, each addressed by a 10 bit index (spec §3, "up to 1024 32 bit
// words"). Both are plain arrays rather than slices: CommandProcessor
// writes them one word at a time as register-file side effects, mirroring
// how vertex_shader.cpp's shader_memory/swizzle_data arrays are filled by
// SubmitShaderMemoryChange/SubmitSwizzleDataChange.
const (
	shaderMemSize  = 1024
	swizzleMemSize = 1024
)

// ShaderMemory holds the vertex shader's instruction words and swizzle
// pattern (operand descriptor) words, plus the current write cursors used
// by the CommandProcessor's autoincrement register writes.
type ShaderMemory struct {
	Code    [shaderMemSize]uint32
	Swizzle [swizzleMemSize]uint32

	codeIndex    uint32
	swizzleIndex uint32
}

// SetCodeIndex sets the next write offset for SubmitShaderWord, mirroring
// the VS_PROGRAM_ADDR/VS_PROGRAM_DATA autoincrement register pair.
func (m *ShaderMemory) SetCodeIndex(index uint32) { m.codeIndex = index % shaderMemSize }

// SubmitShaderWord stores word at the current code index and advances it,
// per spec §5's register-file trigger for VS_PROGRAM_DATA.
func (m *ShaderMemory) SubmitShaderWord(word uint32) {
	m.Code[m.codeIndex] = word
	m.codeIndex = (m.codeIndex + 1) % shaderMemSize
}

// SetSwizzleIndex sets the next write offset for SubmitSwizzleWord.
func (m *ShaderMemory) SetSwizzleIndex(index uint32) { m.swizzleIndex = index % swizzleMemSize }

// SubmitSwizzleWord stores word at the current swizzle index and advances
// it, per spec §5's register-file trigger for VS_SWIZZLE_DATA.
func (m *ShaderMemory) SubmitSwizzleWord(word uint32) {
	m.Swizzle[m.swizzleIndex] = word
	m.swizzleIndex = (m.swizzleIndex + 1) % swizzleMemSize
}

// Instruction decodes and returns the instruction at pc. The caller is
// responsible for the ≤1023 bound check described by spec §7's
// "exceeding shader memory is a fatal decode error"; RunShader performs
// that check itself and returns a decodeError once pc reaches
// shaderMemSize. The % here only keeps the array access in range.
func (m *ShaderMemory) Instruction(pc uint32) Instruction {
	return DecodeInstruction(m.Code[pc%shaderMemSize])
}

// SwizzlePattern decodes and returns the operand descriptor at id.
func (m *ShaderMemory) SwizzlePattern(id uint32) SwizzlePattern {
	return DecodeSwizzlePattern(m.Swizzle[id%swizzleMemSize])
}
