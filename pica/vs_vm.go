package pica

import "fmt"

// maxCallStackDepth bounds CALL nesting; exceeding it means a runaway or
// malformed shader program and is reported via stackOverflowPanic rather
// than looping forever, mirroring vertex_shader.cpp's fixed-size
// call_stack array.
const maxCallStackDepth = 8

// OutputMapEntry configures one of the vertex shader's output registers:
// which semantic code (spec §3's "vs_output_attributes[i].map_{x,y,z,w}")
// feeds each of its four lanes. CommandProcessor fills these from
// register-file writes; RunShader only reads them.
type OutputMapEntry struct {
	MapX, MapY, MapZ, MapW uint32
}

// DefaultOutputMap is the identity mapping used when a test or caller
// doesn't care about custom semantic routing: output register 0 feeds
// position, register 1 feeds color, register 2 feeds tc0/tc1 (spec §3's
// worked example).
var DefaultOutputMap = [7]OutputMapEntry{
	{MapX: 0, MapY: 1, MapZ: 2, MapW: 3},
	{MapX: 4, MapY: 5, MapZ: 6, MapW: 7},
	{MapX: 8, MapY: 9, MapZ: 10, MapW: 11},
}

// VSState is one vertex shader invocation's register file: 16 temporaries
// and 16 float uniforms, direct analogs of vertex_shader.cpp's
// input_register_table/temporary_register/uniform arrays. A fresh
// VSState is created per vertex by RunShader; FloatUniform is the one
// piece of state a caller preloads, since uniforms are shader constants
// shared across every vertex in a batch.
type VSState struct {
	Temporary    [16]Vec4F24
	FloatUniform [16]Vec4F24

	debugMaxOffset    uint32 // highest PC reached, for diagnostics only
	debugMaxOpDescIDs uint32 // highest operand descriptor id referenced
}

// resolve returns the named source register's current value, unswizzled.
func (s *VSState) resolve(input *InputVertex, typ RegisterType, index uint32) Vec4F24 {
	switch typ {
	case RegInput:
		return input.Attr[index%16]
	case RegTemporary:
		return s.Temporary[index%16]
	case RegFloatUniform:
		return s.FloatUniform[index%16]
	default:
		return Vec4F24{}
	}
}

// writeDest stores value's masked lanes into either a temporary register
// or, when dest < 8, the output register table via outputMap.
func writeDest(s *VSState, out *OutputVertex, outputMap [7]OutputMapEntry, dest uint32, value Vec4F24, mask [4]bool) {
	if dest < 8 && dest < uint32(len(outputMap)) {
		entry := outputMap[dest]
		semantics := [4]uint32{entry.MapX, entry.MapY, entry.MapZ, entry.MapW}
		for lane := 0; lane < 4; lane++ {
			if mask[lane] {
				*outputLane(out, semantics[lane]) = value.Lane(lane)
			}
		}
		return
	}
	temp := dest % 16
	for lane := 0; lane < 4; lane++ {
		if mask[lane] {
			s.Temporary[temp].SetLane(lane, value.Lane(lane))
		}
	}
}

// ShaderDebugStats reports the high-water marks vertex_shader.cpp's
// debug build tracks per invocation: the furthest program counter
// reached and the highest operand descriptor id referenced. Purely
// diagnostic, surfaced on the debug HUD; RunShader's control flow never
// consults them.
type ShaderDebugStats struct {
	MaxOffset   uint32
	MaxOpDescID uint32
}

// RunShader executes the shader program starting at entryPoint against
// one input vertex and returns the resulting output vertex. stats, if
// non-nil, is filled with this invocation's debug counters. This is the
// direct transform of vertex_shader.cpp's RunShader/ProcessShaderCode: a
// fetch/decode/execute loop over ADD, MUL, DP3, DP4, RCP, RSQ, MOV, CALL,
// END and NOP, where CALL pushes a return address and END pops it (or
// halts when the call stack is empty). An unknown opcode is logged and
// executed as NOP; the only error returned is a program counter that
// runs off the end of shader memory.
func RunShader(mem *ShaderMemory, uniforms [16]Vec4F24, input InputVertex, entryPoint uint32, outputMap [7]OutputMapEntry, stats *ShaderDebugStats) (OutputVertex, error) {
	state := &VSState{FloatUniform: uniforms}
	var out OutputVertex
	if stats != nil {
		defer func() {
			stats.MaxOffset = state.debugMaxOffset
			stats.MaxOpDescID = state.debugMaxOpDescIDs
		}()
	}

	// callStack holds return PCs; CALL pushes pc+1, END pops and resumes
	// there without incrementing. An empty stack at END terminates the
	// shader (spec §4.3).
	var callStack []uint32
	pc := entryPoint % shaderMemSize

	for {
		if pc >= shaderMemSize {
			return out, &decodeError{pc: pc, reason: "program counter out of shader memory"}
		}
		if pc > state.debugMaxOffset {
			state.debugMaxOffset = pc
		}

		instr := mem.Instruction(pc)
		if !instr.OpCode.isKnown() {
			logDecodeError("vs_vm", "unknown opcode at pc %d, treated as NOP", pc)
			instr.OpCode = OpNop
		}

		switch instr.OpCode {
		case OpEnd:
			if len(callStack) == 0 {
				return out, nil
			}
			pc = callStack[len(callStack)-1]
			callStack = callStack[:len(callStack)-1]

		case OpNop:
			pc++

		case OpCall:
			if len(callStack) >= maxCallStackDepth {
				panic(stackOverflowPanic{pc: pc})
			}
			callStack = append(callStack, pc+1)
			pc = instr.DestOffset % shaderMemSize

		default:
			if instr.OperandDescID > state.debugMaxOpDescIDs {
				state.debugMaxOpDescIDs = instr.OperandDescID
			}
			swizzle := mem.SwizzlePattern(instr.OperandDescID)
			execArithmetic(state, &out, outputMap, &input, instr, swizzle)
			pc++
		}
	}
}

// execArithmetic performs the data-processing opcodes: ADD, MUL, DP3,
// DP4, RCP, RSQ, MOV. Swizzle selection and negation are applied to each
// source before the op runs; the result is written through the same
// destination write mask logic regardless of opcode, matching
// vertex_shader.cpp's shared "src1/src2 -> dest" plumbing.
func execArithmetic(s *VSState, out *OutputVertex, outputMap [7]OutputMapEntry, input *InputVertex, instr Instruction, swizzle SwizzlePattern) {
	rawSrc1 := s.resolve(input, instr.Src1Type, instr.Src1)
	rawSrc2 := s.resolve(input, instr.Src2Type, instr.Src2)
	if instr.Inverse {
		rawSrc1, rawSrc2 = rawSrc2, rawSrc1
	}
	src1 := applySwizzle(rawSrc1, swizzle.Src1Select, swizzle.NegateSrc1)
	src2 := applySwizzle(rawSrc2, swizzle.Src2Select, swizzle.NegateSrc2)

	var result Vec4F24
	switch instr.OpCode {
	case OpAdd:
		for i := 0; i < 4; i++ {
			result.SetLane(i, src1.Lane(i).Add(src2.Lane(i)))
		}
	case OpMul:
		for i := 0; i < 4; i++ {
			result.SetLane(i, src1.Lane(i).Mul(src2.Lane(i)))
		}
	case OpMov:
		result = src1
	case OpDp3:
		dot := src1.X.Mul(src2.X).Add(src1.Y.Mul(src2.Y)).Add(src1.Z.Mul(src2.Z))
		for i := 0; i < 4; i++ {
			result.SetLane(i, dot)
		}
	case OpDp4:
		dot := src1.X.Mul(src2.X).Add(src1.Y.Mul(src2.Y)).Add(src1.Z.Mul(src2.Z)).Add(src1.W.Mul(src2.W))
		for i := 0; i < 4; i++ {
			result.SetLane(i, dot)
		}
	case OpRcp:
		recip := FromFloat32(1).Div(src1.X)
		for i := 0; i < 4; i++ {
			result.SetLane(i, recip)
		}
	case OpRsq:
		rsq := FromFloat32(1).Div(src1.X)
		rsq = FromFloat32(sqrtNonNeg(rsq.ToFloat32()))
		for i := 0; i < 4; i++ {
			result.SetLane(i, rsq)
		}
	}

	writeDest(s, out, outputMap, instr.Dest, result, swizzle.DestMask)
}

func sqrtNonNeg(f float32) float32 {
	if f < 0 {
		f = -f
	}
	// Newton-Raphson from a coarse seed; adequate for a software VM where
	// bit-exact hardware RSQ behavior is explicitly out of scope.
	if f == 0 {
		return 0
	}
	x := f
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + f/x)
	}
	return x
}

// decodeError reports the one fatal shader decode failure: a program
// counter that has run off the end of shader memory. Unknown opcodes are
// not fatal — they are logged and treated as a NOP so execution
// continues.
type decodeError struct {
	pc     uint32
	reason string
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("vertex shader decode error at pc %d: %s", e.pc, e.reason)
}
