package pica

// cyclesPerLine and linesPerFrame set the vblank pulse cadence Tick
// advances by, the software analog of gpu.cpp's Update() line/vblank
// timer (PDC0/PDC1 in the original hardware).
const (
	cyclesPerLine = 400
	linesPerFrame = 400
)

// GPUCore wires together every subsystem this package exposes into one
// addressable device: the register file, shader memory, command
// processor, transfer/fill engines, and a Framebuffer, the same "one
// struct owns everything, dispatch by address range" shape as
// interconnect.go's Interconnect but scoped to the GPU core alone
// (no CPU, no BIOS, no other peripherals in this spec's scope).
type GPUCore struct {
	Memory    GuestMemory
	Registers *RegisterFile
	ShaderMem *ShaderMemory
	CmdProc   *CommandProcessor
	Fill      *FillEngine
	Transfer  *TransferEngine

	Framebuffer *Framebuffer

	Debugger *DebugConsole

	line       int
	frameCount uint64

	// OnVBlank, when set, is called once per completed frame, letting a
	// Presenter know a new Framebuffer is ready to display.
	OnVBlank func()
}

// Option configures a GPUCore at construction, the same "zero-arg
// constructor with sane defaults" precedent as NewGPU()/NewDMA()
// generalized to a pluggable GuestMemory and an optional debug hook.
type Option func(*gpuCoreConfig)

type gpuCoreConfig struct {
	memory   GuestMemory
	fbWidth  int
	fbHeight int
	debugger bool
}

// WithMemory supplies the guest memory backing store. Defaults to a 4MiB
// RAM if omitted.
func WithMemory(mem GuestMemory) Option {
	return func(c *gpuCoreConfig) { c.memory = mem }
}

// WithFramebufferSize sets the output framebuffer dimensions. Defaults
// to 400x240, the 3DS's top-screen resolution.
func WithFramebufferSize(width, height int) Option {
	return func(c *gpuCoreConfig) { c.fbWidth, c.fbHeight = width, height }
}

// WithDebugger attaches a DebugConsole to the returned GPUCore. Nothing
// in the production command-processor or VM path imports golang.org/x/term
// or the clipboard package; only debugconsole.go does, so a GPUCore built
// without this option never touches a terminal.
func WithDebugger() Option {
	return func(c *gpuCoreConfig) { c.debugger = true }
}

// NewGPUCore builds a fully wired GPU core from the given options.
func NewGPUCore(opts ...Option) *GPUCore {
	cfg := gpuCoreConfig{fbWidth: 400, fbHeight: 240}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.memory == nil {
		cfg.memory = NewRAM(4 << 20)
	}
	mem := cfg.memory

	shaderMem := &ShaderMemory{}
	fb := NewFramebuffer(cfg.fbWidth, cfg.fbHeight)

	tev := &TevPipeline{}
	for i := range tev.Stages {
		tev.Stages[i] = IdentityTevStage
	}
	textures := [3]*Texture{NewTexture(8, 8), NewTexture(8, 8), NewTexture(8, 8)}
	for _, t := range textures {
		t.Enabled = false
	}

	rast := &Rasterizer{Framebuffer: fb, Tev: tev, Textures: textures}
	cmdProc := &CommandProcessor{
		Memory:     mem,
		ShaderMem:  shaderMem,
		Rasterizer: rast,
		Viewport:   Viewport{Width: float32(cfg.fbWidth), Height: float32(cfg.fbHeight)},
		OutputMap:  DefaultOutputMap,
	}

	regs := NewRegisterFile(shaderMem, tev, textures, &cmdProc.OutputMap)
	WireRegisters(cmdProc, regs)

	m := &GPUCore{
		Memory:      mem,
		Registers:   regs,
		ShaderMem:   shaderMem,
		CmdProc:     cmdProc,
		Fill:        &FillEngine{Memory: mem},
		Transfer:    &TransferEngine{Memory: mem},
		Framebuffer: fb,
	}

	regs.OnCommandListTrigger = func() {
		addr := regs.Read(RegCmdListAddr)
		size := regs.Read(RegCmdListSize)
		cmdProc.EntryPoint = regs.Read(RegVSEntryPoint)
		cmdProc.ProcessCommandList(addr, int(size))
	}
	for i := range textures {
		unit := i
		regs.OnTextureLoadTrigger[unit] = func() {
			t := textures[unit]
			addr := regs.Read(texUnitReg(unit, texRegAddr))
			data := mem.LoadBytes(addr, len(t.Pixels))
			copy(t.Pixels, data)
		}
	}
	regs.OnMemoryFillTrigger = func() {
		m.Fill.Fill(
			regs.Read(RegMemoryFillDstAddr),
			int(regs.Read(RegMemoryFillWidth)),
			int(regs.Read(RegMemoryFillHeight)),
			regs.Read(RegMemoryFillValue),
		)
	}
	regs.OnDisplayTransferTrigger = func() {
		m.Transfer.DisplayTransfer(
			regs.Read(RegDisplayTransferSrcAddr),
			regs.Read(RegDisplayTransferDstAddr),
			int(regs.Read(RegDisplayTransferWidth)),
			int(regs.Read(RegDisplayTransferHeight)),
		)
	}
	regs.OnFramebufferSwap = func() {
		if m.OnVBlank != nil {
			m.OnVBlank()
		}
	}

	if cfg.debugger {
		m.Debugger = NewDebugConsole(m)
	}

	return m
}

// MMIORead/MMIOWrite expose the register file at RegBase-relative
// addresses, for a bus/interconnect layer sitting in front of GPUCore.
func (m *GPUCore) MMIORead(addr uint32) uint32 {
	index, ok := MMIORange.RegisterIndex(addr)
	if !ok {
		logDecodeError("mmio", "read from unmapped address 0x%x", addr)
		return 0
	}
	return m.Registers.Read(index)
}

func (m *GPUCore) MMIOWrite(addr, val uint32) {
	index, ok := MMIORange.RegisterIndex(addr)
	if !ok {
		logDecodeError("mmio", "write to unmapped address 0x%x", addr)
		return
	}
	m.Registers.Write(index, val)
}

// MMIOReadSized and MMIOWriteSized handle byte/halfword-width MMIO
// accesses. The register file is defined only in terms of 32-bit words,
// so any width other than 4 is logged and dropped (a read returns 0)
// rather than attempting a sub-word splice.
func (m *GPUCore) MMIOReadSized(addr uint32, size int) uint32 {
	if size != 4 {
		logDecodeError("mmio", "unsupported %d-byte read at 0x%x", size, addr)
		return 0
	}
	return m.MMIORead(addr)
}

func (m *GPUCore) MMIOWriteSized(addr uint32, val uint32, size int) {
	if size != 4 {
		logDecodeError("mmio", "unsupported %d-byte write at 0x%x", size, addr)
		return
	}
	m.MMIOWrite(addr, val)
}

// SetFloatUniform preloads one of the vertex shader's constant registers
// ahead of a draw, the host-side counterpart of a guest writing
// RegVSUniformIndex, RegVSUniformData0-3 and RegVSUniformLoadTrigger via
// the command list.
func (m *GPUCore) SetFloatUniform(index uint32, v Vec4F24) {
	m.CmdProc.loadUniform(index, v)
}

// SubmitShaderWord and SubmitSwizzleWord append one word to the shader
// or swizzle-pattern code banks at the current write index.
func (m *GPUCore) SubmitShaderWord(word uint32)  { m.ShaderMem.SubmitShaderWord(word) }
func (m *GPUCore) SubmitSwizzleWord(word uint32) { m.ShaderMem.SubmitSwizzleWord(word) }

// Tick advances the internal line counter by cycles worth of scanlines
// and fires OnVBlank once a full frame has elapsed, matching gpu.cpp's
// Update() pulse-driven vblank scheduling rather than an explicit
// "present now" call.
func (m *GPUCore) Tick(cycles uint64) {
	m.line += int(cycles) / cyclesPerLine
	for m.line >= linesPerFrame {
		m.line -= linesPerFrame
		m.frameCount++
		if m.OnVBlank != nil {
			m.OnVBlank()
		}
	}
}

func (m *GPUCore) FrameCount() uint64 { return m.frameCount }
