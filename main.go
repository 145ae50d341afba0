package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Toysoft/swgpu/pica"
)

func main() {
	width := flag.Int("width", 400, "framebuffer width")
	height := flag.Int("height", 240, "framebuffer height")
	memSize := flag.Int("memsize", 8*1024*1024, "guest memory size in bytes")
	debug := flag.Bool("debug", false, "start the interactive debug console instead of a window")
	hud := flag.Bool("hud", false, "overlay debug counters and the last submitted triangle's wireframe")
	flag.Parse()

	log.Printf("swgpu: allocating %d bytes of guest memory", *memSize)
	start := time.Now()
	mem := pica.NewRAM(*memSize)
	log.Printf("swgpu: allocated in %s", time.Since(start))

	opts := []pica.Option{pica.WithMemory(mem), pica.WithFramebufferSize(*width, *height)}
	if *debug {
		opts = append(opts, pica.WithDebugger())
	}
	core := pica.NewGPUCore(opts...)

	if *debug {
		if err := core.Debugger.Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	presenter := pica.NewEbitenPresenter(core)
	presenter.Debug = *hud
	ebiten.SetWindowSize(*width*2, *height*2)
	ebiten.SetWindowTitle("swgpu")
	if err := ebiten.RunGame(presenter); err != nil {
		log.Fatal(err)
	}
}
