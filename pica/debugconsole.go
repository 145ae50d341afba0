package pica

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.design/x/clipboard"
	"golang.org/x/term"
)

// DebugConsole is an interactive raw-mode terminal front end onto a
// GPUCore, the finished-out version of debugger.go's Debug() (which was
// a bare "not implemented" stub): it records breakpoints on vertex shader
// program counters and watchpoints on register writes (neither the VS VM
// nor the register file consults them, so no break ever occurs), dumps
// the register file, and has a paste command that loads clipboard text
// as whitespace-separated hex shader words,
// following terminal_host.go's raw-mode stdin loop and
// video_backend_ebiten.go's clipboard.Read(clipboard.FmtText) pattern.
type DebugConsole struct {
	GPUCore *GPUCore

	Breakpoints     map[uint32]bool
	WriteWatchpoint map[uint32]bool

	oldState *term.State
}

func NewDebugConsole(m *GPUCore) *DebugConsole {
	return &DebugConsole{
		GPUCore:         m,
		Breakpoints:     make(map[uint32]bool),
		WriteWatchpoint: make(map[uint32]bool),
	}
}

// AddBreakpoint records pc in Breakpoints. The VS VM does not consult
// Breakpoints, so execution does not stop there.
func (d *DebugConsole) AddBreakpoint(pc uint32) { d.Breakpoints[pc] = true }

// DeleteBreakpoint disarms a previously armed breakpoint.
func (d *DebugConsole) DeleteBreakpoint(pc uint32) { delete(d.Breakpoints, pc) }

// AddWriteWatchpoint records id in WriteWatchpoint. The register file
// does not consult WriteWatchpoint, so writes to id do not stop anything.
func (d *DebugConsole) AddWriteWatchpoint(id uint32) { d.WriteWatchpoint[id] = true }

// Run puts the terminal into raw mode and drives a simple line-oriented
// command loop until the user types "quit" or stdin closes. Raw mode is
// restored on return via Close; callers running this on a goroutine
// should always defer Close.
func (d *DebugConsole) Run() error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("debugconsole: enabling raw mode: %w", err)
		}
		d.oldState = old
	}
	defer d.Close()

	reader := bufio.NewReader(os.Stdin)
	writer := term.NewTerminal(readWriter{reader, os.Stdout}, "(pica) ")

	for {
		line, err := writer.ReadLine()
		if err != nil {
			return nil
		}
		if !d.handle(writer, strings.TrimSpace(line)) {
			return nil
		}
	}
}

func (d *DebugConsole) Close() {
	if d.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), d.oldState)
		d.oldState = nil
	}
}

func (d *DebugConsole) handle(w *term.Terminal, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "exit":
		return false

	case "break":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: break <pc>")
			return true
		}
		pc, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			fmt.Fprintln(w, "invalid pc:", err)
			return true
		}
		d.AddBreakpoint(uint32(pc))

	case "watch":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: watch <register id>")
			return true
		}
		id, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			fmt.Fprintln(w, "invalid register id:", err)
			return true
		}
		d.AddWriteWatchpoint(uint32(id))

	case "regs":
		for i := uint32(0); i < NumIDs; i++ {
			fmt.Fprintf(w, "  [%3d] = 0x%08x\n", i, d.GPUCore.Registers.Read(i))
		}

	case "paste":
		d.pasteShaderWords(w)

	default:
		fmt.Fprintln(w, "unknown command:", fields[0])
	}
	return true
}

// pasteShaderWords reads clipboard text as whitespace-separated hex
// words and submits them into shader memory starting at index 0,
// following video_backend_ebiten.go's clipboard.Read(clipboard.FmtText)
// call: this repository has no on-screen text field to paste into, so
// the destination is always the shader code bank.
func (d *DebugConsole) pasteShaderWords(w *term.Terminal) {
	if err := clipboard.Init(); err != nil {
		fmt.Fprintln(w, "clipboard unavailable:", err)
		return
	}
	text := string(clipboard.Read(clipboard.FmtText))
	d.GPUCore.ShaderMem.SetCodeIndex(0)
	n := 0
	for _, tok := range strings.Fields(text) {
		word, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(tok), "0x"), 16, 32)
		if err != nil {
			continue
		}
		d.GPUCore.ShaderMem.SubmitShaderWord(uint32(word))
		n++
	}
	fmt.Fprintf(w, "loaded %d shader words from clipboard\n", n)
}

// readWriter adapts a bufio.Reader and an io.Writer into the io.ReadWriter
// term.NewTerminal wants.
type readWriter struct {
	r *bufio.Reader
	w *os.File
}

func (rw readWriter) Read(p []byte) (int, error)  { return rw.r.Read(p) }
func (rw readWriter) Write(p []byte) (int, error) { return rw.w.Write(p) }
