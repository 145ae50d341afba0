package pica

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Presenter receives completed frames from a GPUCore. Non-goal: any
// windowing/input beyond what's needed to look at the framebuffer while
// developing against this package (spec's Non-goals exclude a full
// emulator frontend).
type Presenter interface {
	Present(fb *Framebuffer)
}

// ToImage converts a Framebuffer's packed RGBA8 pixels into a standard
// library image.Image, the direct transform of imagebuf.go's ToImage
// (which unpacked RGB555 VRAM into an image.RGBA for on-screen display).
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			packed := fb.Color[y*fb.Width+x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = byte(packed >> 16) // R
			img.Pix[i+1] = byte(packed >> 8)  // G
			img.Pix[i+2] = byte(packed)       // B
			img.Pix[i+3] = byte(packed >> 24) // A
		}
	}
	return img
}

// EbitenPresenter drives an ebiten window showing the GPUCore's
// framebuffer plus a one-line HUD, the transform of renderer.ebiten.go's
// EbitenRenderer.Draw (which pushed vertex-colored triangles through
// screen.DrawTriangles) to this package's fully-software-rasterized
// pipeline: the triangles are already resolved to pixels by Rasterizer,
// so presentation is normally just a texture blit plus overlay text; the
// Debug flag additionally reproduces EbitenRenderer.Draw's own
// DrawTriangles call as a Gouraud-shaded overlay of the most recently
// submitted triangle.
type EbitenPresenter struct {
	GPUCore *GPUCore
	Debug   bool

	image   *ebiten.Image
	overlay *ebiten.Image
}

func NewEbitenPresenter(m *GPUCore) *EbitenPresenter {
	p := &EbitenPresenter{
		GPUCore: m,
		image:   ebiten.NewImage(m.Framebuffer.Width, m.Framebuffer.Height),
		overlay: ebiten.NewImage(1, 1),
	}
	p.overlay.Fill(color.White)
	m.OnVBlank = p.refresh
	return p
}

func (p *EbitenPresenter) refresh() {
	p.image.WritePixels(p.GPUCore.Framebuffer.ToImage().Pix)
}

func (p *EbitenPresenter) Update() error {
	p.GPUCore.Tick(cyclesPerLine * linesPerFrame / 60)
	return nil
}

func (p *EbitenPresenter) Draw(screen *ebiten.Image) {
	screen.DrawImage(p.image, nil)
	ebitenutil.DebugPrint(screen, "swgpu")

	cp := p.GPUCore.CmdProc
	hudLine := fmt.Sprintf("frame %d", p.GPUCore.FrameCount())
	if p.Debug {
		hudLine = fmt.Sprintf("%s  max_offset=%d max_opdesc_id=%d pixels=%d",
			hudLine, cp.LastDebugStats.MaxOffset, cp.LastDebugStats.MaxOpDescID, cp.LastPixelCount)
		if cp.HasLastTriangle {
			p.drawWireframe(screen, cp.LastTriangle)
		}
	}

	hud := renderHUDText(hudLine)
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(4, float64(p.GPUCore.Framebuffer.Height-14))
	screen.DrawImage(ebiten.NewImageFromImage(hud), opts)
}

// drawWireframe overlays the last drawn triangle's screen-space
// vertices, Gouraud-shaded from their interpolated colors, exactly the
// vertices/indices/DrawTriangles call shape of EbitenRenderer.Draw, just
// fed from AssembledVertex instead of a PushQuad'd command buffer.
func (p *EbitenPresenter) drawWireframe(screen *ebiten.Image, tri [3]AssembledVertex) {
	var verts [3]ebiten.Vertex
	for i, v := range tri {
		verts[i] = ebiten.Vertex{
			DstX:   float32(v.ScreenX) / 16,
			DstY:   float32(v.ScreenY) / 16,
			SrcX:   0,
			SrcY:   0,
			ColorR: v.Color.R().ToFloat32(),
			ColorG: v.Color.G().ToFloat32(),
			ColorB: v.Color.B().ToFloat32(),
			ColorA: 0.35,
		}
	}
	screen.DrawTriangles(verts[:], []uint16{0, 1, 2}, p.overlay, nil)
}

// renderHUDText rasterizes s with basicfont into a small RGBA image,
// following video_backend_ebiten.go's use of basicfont for its overlay
// text: this repository draws with golang.org/x/image/font's Drawer
// directly instead of an ebiten text package, since basicfont.Face7x13
// is a plain image/font.Face and needs no ebiten-specific glyph atlas.
func renderHUDText(s string) *image.RGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Ceil() + 2
	img := image.NewRGBA(image.Rect(0, 0, width, 14))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(1, 11),
	}
	d.DrawString(s)
	return img
}

func (p *EbitenPresenter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.GPUCore.Framebuffer.Width, p.GPUCore.Framebuffer.Height
}
