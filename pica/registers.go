package pica

import "sync"

// Register IDs are word offsets into the MMIO register file (spec §6).
// Only the registers this repository's CommandProcessor and transfer
// engines actually act on are named individually; the texture unit, TEV
// stage, and vertex-shader output map blocks below are addressed by
// stride instead of one named constant per slot, matching spec §2's
// "indexed array... mapped to strongly typed accessor views" rather than
// enumerating every field by hand.
const (
	RegMemoryFillDstAddr uint32 = iota
	RegMemoryFillWidth
	RegMemoryFillHeight
	RegMemoryFillValue
	RegMemoryFillTrigger

	RegFramebufferAddr
	RegFramebufferWidth
	RegFramebufferHeight
	RegFramebufferFormat
	RegFramebufferSwapTrigger

	RegDisplayTransferSrcAddr
	RegDisplayTransferDstAddr
	RegDisplayTransferWidth
	RegDisplayTransferHeight
	RegDisplayTransferTrigger

	RegCmdListAddr
	RegCmdListSize
	RegCmdListTrigger

	RegVSEntryPoint
	RegVSProgramAddr
	RegVSProgramData
	RegVSSwizzleAddr
	RegVSSwizzleData
	RegVSUniformIndex
	RegVSUniformData0
	RegVSUniformData1
	RegVSUniformData2
	RegVSUniformData3
	RegVSUniformLoadTrigger

	RegVertexAttrIndex
	RegVertexAttrData
	RegVertexSubmitTrigger
	RegDrawTriangleTrigger

	RegIRQStatus

	// RegTexUnitBase is the start of three texUnitRegCount-wide blocks, one
	// per texture unit, addressed via texUnitReg(unit, offset).
	RegTexUnitBase
)

// texUnitRegCount registers describe one texture unit: physical address,
// width, height, wrap modes, enable flag, and a load trigger that copies
// the unit's whole tiled pixel storage (every 8x8 tile the width and
// height touch, 3 bytes a texel) from guest memory at the configured
// address into the unit's Texture, per spec §3's Texture Unit record.
const texUnitRegCount = 6

const (
	texRegAddr uint32 = iota
	texRegWidth
	texRegHeight
	texRegWrap
	texRegEnable
	texRegLoadTrigger
)

// texUnitReg returns the register id for the given field of texture unit
// unit (0, 1, or 2).
func texUnitReg(unit int, offset uint32) uint32 {
	return RegTexUnitBase + uint32(unit)*texUnitRegCount + offset
}

// tevStageRegCount registers configure one TEV stage: packed color/alpha
// sources, packed color/alpha operands, packed color/alpha ops, and the
// per-stage constant color, per spec §3's TEV Stage record.
const tevStageRegCount = 4

const (
	tevRegSources uint32 = iota
	tevRegOperands
	tevRegOps
	tevRegConstant
)

// RegTevStageBase is the start of six tevStageRegCount-wide blocks, one
// per TEV stage, addressed via tevStageReg(stage, offset).
var RegTevStageBase = RegTexUnitBase + texUnitRegCount*3

// tevStageReg returns the register id for the given field of TEV stage
// stage (0..5).
func tevStageReg(stage int, offset uint32) uint32 {
	return RegTevStageBase + uint32(stage)*tevStageRegCount + offset
}

// RegVSOutputMapBase is the start of seven one-word slots, each packing a
// vs_output_attributes[i].map_{x,y,z,w} semantic-code quartet into one
// byte per lane, addressed via outputMapReg(slot).
var RegVSOutputMapBase = RegTevStageBase + tevStageRegCount*6

func outputMapReg(slot int) uint32 { return RegVSOutputMapBase + uint32(slot) }

// NumIDs is the size of the dense register array; it must stay last.
var NumIDs = RegVSOutputMapBase + 7

// RegisterFile is the dense, addressable register bank spec §5 describes:
// most registers are plain storage, a handful trigger side effects on
// write (memory fill, framebuffer swap, display transfer, command list
// submission, vertex submission, triangle draw, uniform load, texture
// load), matching hw/gpu.cpp's Write<T> switch. Writes to trigger
// registers call back into the owning GPU rather than performing the
// side effect inline, since the side effect needs guest memory and the
// other subsystems the register file itself doesn't hold. Texture unit,
// TEV stage, and VS output map writes are applied directly to the
// Rasterizer/CommandProcessor state they configure, the same "write
// updates live state immediately" behavior as the existing VS program
// and swizzle registers.
type RegisterFile struct {
	mu   sync.RWMutex
	regs []uint32

	shaderMem *ShaderMemory
	tev       *TevPipeline
	textures  [3]*Texture
	outputMap *[7]OutputMapEntry

	vertexAttrBuf   [64]uint32
	vertexAttrIndex uint32

	// OnMemoryFillTrigger, OnFramebufferSwap, OnDisplayTransferTrigger,
	// OnCommandListTrigger, OnVertexSubmitTrigger, OnDrawTriangleTrigger,
	// OnUniformLoadTrigger, and OnTextureLoadTrigger are invoked
	// synchronously from Write when the corresponding trigger register is
	// written with a nonzero value. They are nil until GPUCore (or a test)
	// wires them up; a write to a trigger register with no handler
	// installed is silently stored with no side effect, useful for
	// register-file-only unit tests.
	OnMemoryFillTrigger      func()
	OnFramebufferSwap        func()
	OnDisplayTransferTrigger func()
	OnCommandListTrigger     func()
	OnVertexSubmitTrigger    func(attrs [64]uint32)
	OnDrawTriangleTrigger    func()
	OnUniformLoadTrigger     func()
	OnTextureLoadTrigger     [3]func()
}

// NewRegisterFile builds a register file backing the given shader memory,
// TEV pipeline, texture units, and vertex-shader output map. tev and each
// entry of textures must be non-nil; outputMap must point at storage the
// caller keeps alive (typically a CommandProcessor's OutputMap field).
func NewRegisterFile(shaderMem *ShaderMemory, tev *TevPipeline, textures [3]*Texture, outputMap *[7]OutputMapEntry) *RegisterFile {
	return &RegisterFile{
		regs:      make([]uint32, NumIDs),
		shaderMem: shaderMem,
		tev:       tev,
		textures:  textures,
		outputMap: outputMap,
	}
}

// Read returns the current value of register id.
func (r *RegisterFile) Read(id uint32) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= NumIDs {
		return 0
	}
	return r.regs[id]
}

// Write stores val into register id and fires any side effect the write
// triggers, per spec §5's "writes to certain registers are observable
// side effects, not just state changes." Out-of-range indices are logged
// and ignored, per spec §7.
func (r *RegisterFile) Write(id, val uint32) {
	r.mu.Lock()
	if id >= NumIDs {
		r.mu.Unlock()
		logDecodeError("registers", "write to out-of-range register %d", id)
		return
	}
	r.regs[id] = val

	switch id {
	case RegVSProgramAddr:
		r.shaderMem.SetCodeIndex(val)
	case RegVSProgramData:
		r.shaderMem.SubmitShaderWord(val)
	case RegVSSwizzleAddr:
		r.shaderMem.SetSwizzleIndex(val)
	case RegVSSwizzleData:
		r.shaderMem.SubmitSwizzleWord(val)
	case RegVertexAttrIndex:
		r.vertexAttrIndex = val % 64
	case RegVertexAttrData:
		r.vertexAttrBuf[r.vertexAttrIndex] = val
		r.vertexAttrIndex = (r.vertexAttrIndex + 1) % 64
	}

	switch {
	case id >= RegTexUnitBase && id < RegTevStageBase:
		r.writeTexUnitRegister(id, val)
	case id >= RegTevStageBase && id < RegVSOutputMapBase:
		r.writeTevStageRegister(id, val)
	case id >= RegVSOutputMapBase && id < NumIDs:
		r.writeOutputMapRegister(id, val)
	}

	var vertexSnapshot [64]uint32
	if id == RegVertexSubmitTrigger {
		vertexSnapshot = r.vertexAttrBuf
	}
	r.mu.Unlock()

	if val == 0 {
		return
	}
	switch id {
	case RegMemoryFillTrigger:
		if r.OnMemoryFillTrigger != nil {
			r.OnMemoryFillTrigger()
		}
	case RegFramebufferSwapTrigger:
		if r.OnFramebufferSwap != nil {
			r.OnFramebufferSwap()
		}
	case RegDisplayTransferTrigger:
		if r.OnDisplayTransferTrigger != nil {
			r.OnDisplayTransferTrigger()
		}
	case RegCmdListTrigger:
		if r.OnCommandListTrigger != nil {
			r.OnCommandListTrigger()
		}
	case RegVertexSubmitTrigger:
		if r.OnVertexSubmitTrigger != nil {
			r.OnVertexSubmitTrigger(vertexSnapshot)
		}
	case RegDrawTriangleTrigger:
		if r.OnDrawTriangleTrigger != nil {
			r.OnDrawTriangleTrigger()
		}
	case RegVSUniformLoadTrigger:
		if r.OnUniformLoadTrigger != nil {
			r.OnUniformLoadTrigger()
		}
	default:
		if id >= RegTexUnitBase && id < RegTevStageBase && (id-RegTexUnitBase)%texUnitRegCount == texRegLoadTrigger {
			unit := (id - RegTexUnitBase) / texUnitRegCount
			if r.OnTextureLoadTrigger[unit] != nil {
				r.OnTextureLoadTrigger[unit]()
			}
		}
	}
}

// writeTexUnitRegister applies a texture-unit configuration write
// directly to the corresponding Texture, mirroring the immediate-effect
// style already used for VS program/swizzle writes. texRegAddr and
// texRegLoadTrigger are handled by Write itself: the address is only
// consulted, and pixels loaded, when the unit's load trigger fires.
func (r *RegisterFile) writeTexUnitRegister(id, val uint32) {
	unit := (id - RegTexUnitBase) / texUnitRegCount
	if unit >= 3 {
		return
	}
	t := r.textures[unit]
	switch (id - RegTexUnitBase) % texUnitRegCount {
	case texRegWidth:
		t.Width = int(val)
		resizeTexturePixels(t)
	case texRegHeight:
		t.Height = int(val)
		resizeTexturePixels(t)
	case texRegWrap:
		t.WrapS = WrapMode(val & 0x3)
		t.WrapT = WrapMode((val >> 2) & 0x3)
	case texRegEnable:
		t.Enabled = val != 0
	}
}

// resizeTexturePixels reallocates a texture's tiled pixel storage after
// its width or height changes via register write, the same tile-count
// formula NewTexture uses.
func resizeTexturePixels(t *Texture) {
	tiles := ((t.Width + 7) / 8) * ((t.Height + 7) / 8)
	t.Pixels = make([]byte, tiles*64*3)
}

// writeTevStageRegister decodes one packed TEV stage configuration word
// into the corresponding TevStage field.
func (r *RegisterFile) writeTevStageRegister(id, val uint32) {
	stage := (id - RegTevStageBase) / tevStageRegCount
	if stage >= 6 {
		return
	}
	s := &r.tev.Stages[stage]
	switch (id - RegTevStageBase) % tevStageRegCount {
	case tevRegSources:
		for i := uint32(0); i < 3; i++ {
			s.ColorSrc[i] = TevSource((val >> (i * 3)) & 0x7)
			s.AlphaSrc[i] = TevSource((val >> (9 + i*3)) & 0x7)
		}
	case tevRegOperands:
		for i := uint32(0); i < 3; i++ {
			s.ColorOperand[i] = TevOperand((val >> (i * 2)) & 0x3)
			s.AlphaOperand[i] = TevOperand((val >> (6 + i*2)) & 0x3)
		}
	case tevRegOps:
		s.ColorOp = TevCombineOp(val & 0x7)
		s.AlphaOp = TevCombineOp((val >> 3) & 0x7)
	case tevRegConstant:
		s.Constant = Vec4U8{
			R: uint8(val >> 24),
			G: uint8(val >> 16),
			B: uint8(val >> 8),
			A: uint8(val),
		}
	}
}

// writeOutputMapRegister decodes one packed vs_output_attributes[slot]
// word into an OutputMapEntry.
func (r *RegisterFile) writeOutputMapRegister(id, val uint32) {
	slot := id - RegVSOutputMapBase
	if slot >= 7 {
		return
	}
	r.outputMap[slot] = OutputMapEntry{
		MapX: (val >> 24) & 0xff,
		MapY: (val >> 16) & 0xff,
		MapZ: (val >> 8) & 0xff,
		MapW: val & 0xff,
	}
}

// FloatUniform reads the four uniform-data slots back as one Vec4F24,
// used by CommandProcessor when RegVSUniformIndex selects a register the
// vertex shader will read at RegFloatUniform addressing.
func (r *RegisterFile) FloatUniform() Vec4F24 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Vec4F24{
		X: Float24(r.regs[RegVSUniformData0]),
		Y: Float24(r.regs[RegVSUniformData1]),
		Z: Float24(r.regs[RegVSUniformData2]),
		W: Float24(r.regs[RegVSUniformData3]),
	}
}
