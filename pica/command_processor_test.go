package pica

import "testing"

func vec4Words(v Vec4F24) []uint32 {
	return []uint32{uint32(v.X), uint32(v.Y), uint32(v.Z), uint32(v.W)}
}

func vertexWords(attrs [16]Vec4F24) []uint32 {
	var words []uint32
	for _, a := range attrs {
		words = append(words, vec4Words(a)...)
	}
	return words
}

// headerWord packs a command list packet header: reg is the first
// register targeted, burst is the number of parameter words following,
// consecutive selects whether reg repeats or increments per word.
func headerWord(reg uint32, burst int, consecutive bool) uint32 {
	word := reg<<cmdHeaderRegisterShift | 0xf<<cmdHeaderMaskShift | uint32(burst)&cmdHeaderBurstLenMask
	if consecutive {
		word |= cmdHeaderConsecutiveBit
	}
	return word
}

// appendRegisterBurst appends one packet writing burstWords into reg,
// repeating reg for every word (consecutive) or incrementing it.
func appendRegisterBurst(words *[]uint32, reg uint32, burstWords []uint32, consecutive bool) {
	*words = append(*words, headerWord(reg, len(burstWords), consecutive))
	*words = append(*words, burstWords...)
}

// appendVertexSubmit appends the packet sequence that streams one
// vertex's 16 attributes through the vertex-attribute registers and
// fires the submit trigger, per the command-processor's register-file
// wire format.
func appendVertexSubmit(words *[]uint32, attrs [16]Vec4F24) {
	appendRegisterBurst(words, RegVertexAttrIndex, []uint32{0}, false)
	appendRegisterBurst(words, RegVertexAttrData, vertexWords(attrs), true)
	appendRegisterBurst(words, RegVertexSubmitTrigger, []uint32{1}, false)
}

func appendDrawTriangle(words *[]uint32) {
	appendRegisterBurst(words, RegDrawTriangleTrigger, []uint32{1}, false)
}

func TestCommandProcessorDrawsTriangle(t *testing.T) {
	mem := NewRAM(1 << 16)
	shaderMem := &ShaderMemory{}
	shaderMem.Swizzle[0] = EncodeSwizzlePattern(IdentitySwizzle)
	// A pass-through shader: o0 (position) = v0, o1 (color) = v1.
	shaderMem.Code[0] = EncodeInstruction(Instruction{OpCode: OpMov, Dest: 0, Src1Type: RegInput, Src1: 0})
	shaderMem.Code[1] = EncodeInstruction(Instruction{OpCode: OpMov, Dest: 1, Src1Type: RegInput, Src1: 1})
	shaderMem.Code[2] = EncodeInstruction(Instruction{OpCode: OpEnd})

	fb := NewFramebuffer(8, 8)
	tev := &TevPipeline{}
	for i := range tev.Stages {
		tev.Stages[i] = IdentityTevStage
	}
	rast := &Rasterizer{Framebuffer: fb, Tev: tev}
	cp := &CommandProcessor{
		Memory:     mem,
		ShaderMem:  shaderMem,
		Rasterizer: rast,
		Viewport:   Viewport{Width: 8, Height: 8},
		OutputMap:  DefaultOutputMap,
		EntryPoint: 0,
	}
	regs := NewRegisterFile(shaderMem, tev, [3]*Texture{}, &cp.OutputMap)
	WireRegisters(cp, regs)

	corner := func(clipX, clipY float32, color Vec4F24) [16]Vec4F24 {
		var attrs [16]Vec4F24
		attrs[0] = Vec4F24{X: FromFloat32(clipX), Y: FromFloat32(clipY), Z: FromFloat32(0), W: FromFloat32(1)}
		attrs[1] = color
		return attrs
	}
	white := Vec4F24{X: FromFloat32(1), Y: FromFloat32(1), Z: FromFloat32(1), W: FromFloat32(1)}

	var words []uint32
	appendVertexSubmit(&words, corner(-0.8, -0.8, white))
	appendVertexSubmit(&words, corner(0.8, -0.8, white))
	appendVertexSubmit(&words, corner(-0.8, 0.8, white))
	appendDrawTriangle(&words)

	for i, w := range words {
		mem.Store32(uint32(i*4), w)
	}

	cp.ProcessCommandList(0, len(words))

	drawn := false
	for _, c := range fb.Color {
		if c != 0 {
			drawn = true
			break
		}
	}
	if !drawn {
		t.Fatal("expected ProcessCommandList to rasterize at least one pixel")
	}
	if cp.LastPixelCount == 0 {
		t.Fatal("LastPixelCount should reflect the triangle just rasterized")
	}
	if !cp.HasLastTriangle {
		t.Fatal("HasLastTriangle should be set after a successful draw")
	}
	if cp.LastDebugStats.MaxOffset != 2 {
		t.Fatalf("LastDebugStats.MaxOffset = %d, want 2 (pc of the END)", cp.LastDebugStats.MaxOffset)
	}
}

func TestCommandProcessorRecoversFromShaderStackOverflow(t *testing.T) {
	mem := NewRAM(1 << 12)
	shaderMem := &ShaderMemory{}
	// pc 0 calls itself, forcing unbounded recursion until
	// maxCallStackDepth is exceeded.
	shaderMem.Code[0] = EncodeInstruction(Instruction{OpCode: OpCall, DestOffset: 0})

	fb := NewFramebuffer(4, 4)
	tev := &TevPipeline{}
	for i := range tev.Stages {
		tev.Stages[i] = IdentityTevStage
	}
	cp := &CommandProcessor{
		Memory:     mem,
		ShaderMem:  shaderMem,
		Rasterizer: &Rasterizer{Framebuffer: fb, Tev: tev},
		Viewport:   Viewport{Width: 4, Height: 4},
		OutputMap:  DefaultOutputMap,
	}
	regs := NewRegisterFile(shaderMem, tev, [3]*Texture{}, &cp.OutputMap)
	WireRegisters(cp, regs)

	var words []uint32
	var attrs [16]Vec4F24
	appendVertexSubmit(&words, attrs)
	appendVertexSubmit(&words, attrs)
	appendVertexSubmit(&words, attrs)
	appendDrawTriangle(&words)
	for i, w := range words {
		mem.Store32(uint32(i*4), w)
	}

	cp.ProcessCommandList(0, len(words)) // must not panic out of the call
}

func TestCommandProcessorRegisterWritesConfigureOutputMap(t *testing.T) {
	mem := NewRAM(1 << 12)
	shaderMem := &ShaderMemory{}
	fb := NewFramebuffer(4, 4)
	tev := &TevPipeline{}
	cp := &CommandProcessor{
		Memory:     mem,
		ShaderMem:  shaderMem,
		Rasterizer: &Rasterizer{Framebuffer: fb, Tev: tev},
		Viewport:   Viewport{Width: 4, Height: 4},
	}
	regs := NewRegisterFile(shaderMem, tev, [3]*Texture{}, &cp.OutputMap)
	WireRegisters(cp, regs)

	var words []uint32
	packed := uint32(4)<<24 | uint32(5)<<16 | uint32(6)<<8 | uint32(7)
	appendRegisterBurst(&words, outputMapReg(0), []uint32{packed}, false)
	for i, w := range words {
		mem.Store32(uint32(i*4), w)
	}
	cp.ProcessCommandList(0, len(words))

	want := OutputMapEntry{MapX: 4, MapY: 5, MapZ: 6, MapW: 7}
	if cp.OutputMap[0] != want {
		t.Fatalf("OutputMap[0] = %+v, want %+v", cp.OutputMap[0], want)
	}
}
