package pica

// Framebuffer is the rasterizer's render target: a packed RGBA8 color
// buffer plus a 16-bit depth buffer, both linear (not tiled) since the
// display transfer engine is what tiles pixels back into guest VRAM.
// This core assumes 16-bit depth throughout, per the Framebuffer Config
// register view.
type Framebuffer struct {
	Width, Height int
	Color         []uint32
	Depth         []uint16
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]uint32, width*height),
		Depth:  make([]uint16, width*height),
	}
}

func (fb *Framebuffer) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return 0, false
	}
	return y*fb.Width + x, true
}

// DrawPixel writes a packed RGBA8 color, per spec §4.5.
func (fb *Framebuffer) DrawPixel(x, y int, packed uint32) {
	if i, ok := fb.index(x, y); ok {
		fb.Color[i] = packed
	}
}

func (fb *Framebuffer) GetDepth(x, y int) uint16 {
	if i, ok := fb.index(x, y); ok {
		return fb.Depth[i]
	}
	return 0xffff
}

func (fb *Framebuffer) SetDepth(x, y int, depth uint16) {
	if i, ok := fb.index(x, y); ok {
		fb.Depth[i] = depth
	}
}

// depthToU16 converts an interpolated 0..1 depth value to the 16-bit
// integer format the framebuffer stores, per the depth formula's
// "* 65535, rounded to u16" final step.
func depthToU16(z float32) uint16 {
	scaled := z*65535 + 0.5
	if scaled < 0 {
		return 0
	}
	if scaled > 65535 {
		return 65535
	}
	return uint16(scaled)
}

// orient2d is the signed area (doubled) of the triangle (a, b, c) in
// Q12.4 fixed point, positive when c is to the left of the directed edge
// a->b. This is the same edge function rasterizer.cpp's ProcessTriangle
// evaluates per pixel per edge.
func orient2d(ax, ay, bx, by, cx, cy int32) int64 {
	return int64(bx-ax)*int64(cy-ay) - int64(by-ay)*int64(cx-ax)
}

// isTopLeftEdge reports whether the directed edge (x0,y0)->(x1,y1) is a
// "top" edge (horizontal, going right) or a "left" edge (going up,
// y1 < y0, in the y-down screen coordinates the rasterizer uses),
// the standard top-left fill rule rasterizer.cpp applies via
// IsRightSideOrFlatBottomEdge so shared edges between adjacent triangles
// are rasterized by exactly one of them.
func isTopLeftEdge(x0, y0, x1, y1 int32) bool {
	return (y0 == y1 && x1 > x0) || y1 < y0
}

// Rasterizer scan-converts one triangle at a time into a Framebuffer,
// sampling up to three textures and running them through a TevPipeline
// per fragment, per spec §4.5/§4.6/§4.7. There is no depth test: depth
// is written unconditionally, per spec §4.5/§9.
type Rasterizer struct {
	Framebuffer *Framebuffer
	Tev         *TevPipeline
	Textures    [3]*Texture
}

// FillTriangle rasterizes the triangle formed by verts. Degenerate
// triangles (zero signed area) are silently skipped, matching
// rasterizer.cpp's early-out rather than treating them as an error.
func (r *Rasterizer) FillTriangle(verts [3]AssembledVertex) int {
	v0, v1, v2 := verts[0], verts[1], verts[2]

	area := orient2d(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY)
	if area == 0 {
		return 0
	}

	minX := min3(v0.ScreenX, v1.ScreenX, v2.ScreenX) >> 4
	maxX := max3(v0.ScreenX, v1.ScreenX, v2.ScreenX) >> 4
	minY := min3(v0.ScreenY, v1.ScreenY, v2.ScreenY) >> 4
	maxY := max3(v0.ScreenY, v1.ScreenY, v2.ScreenY) >> 4

	minX = clampI32(minX, 0, int32(r.Framebuffer.Width-1))
	maxX = clampI32(maxX, 0, int32(r.Framebuffer.Width-1))
	minY = clampI32(minY, 0, int32(r.Framebuffer.Height-1))
	maxY = clampI32(maxY, 0, int32(r.Framebuffer.Height-1))

	bias0 := edgeBias(isTopLeftEdge(v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY))
	bias1 := edgeBias(isTopLeftEdge(v2.ScreenX, v2.ScreenY, v0.ScreenX, v0.ScreenY))
	bias2 := edgeBias(isTopLeftEdge(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY))

	pixels := 0
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			sx := fixed12_4(float32(px)) + 8 // sample at pixel center
			sy := fixed12_4(float32(py)) + 8

			w0 := orient2d(v1.ScreenX, v1.ScreenY, v2.ScreenX, v2.ScreenY, sx, sy) + bias0
			w1 := orient2d(v2.ScreenX, v2.ScreenY, v0.ScreenX, v0.ScreenY, sx, sy) + bias1
			w2 := orient2d(v0.ScreenX, v0.ScreenY, v1.ScreenX, v1.ScreenY, sx, sy) + bias2

			inside := (w0 >= 0 && w1 >= 0 && w2 >= 0) || (w0 <= 0 && w1 <= 0 && w2 <= 0)
			if !inside {
				continue
			}

			b0 := float32(w0) / float32(area)
			b1 := float32(w1) / float32(area)
			b2 := float32(w2) / float32(area)

			if r.shadePixel(int(px), int(py), b0, b1, b2, v0, v1, v2) {
				pixels++
			}
		}
	}
	return pixels
}

// shadePixel performs perspective-correct interpolation of every varying
// (color, three texture coordinate pairs), matching rasterizer.cpp's
// GetInterpolatedAttribute: barycentric weights are first divided
// through by each vertex's InvW, then renormalized, so the interpolation
// is correct in clip space rather than screen space. Depth is
// interpolated linearly with the screen-space weights.
func (r *Rasterizer) shadePixel(x, y int, b0, b1, b2 float32, v0, v1, v2 AssembledVertex) bool {
	p0 := b0 * v0.InvW
	p1 := b1 * v1.InvW
	p2 := b2 * v2.InvW
	sum := p0 + p1 + p2
	if sum == 0 {
		return false
	}
	p0, p1, p2 = p0/sum, p1/sum, p2/sum

	depth := b0*v0.Depth + b1*v1.Depth + b2*v2.Depth

	color := lerpVec4U8(p0, p1, p2, v0.Color, v1.Color, v2.Color)
	tc0 := lerpVec2F24(p0, p1, p2, v0.TC0, v1.TC0, v2.TC0)
	tc1 := lerpVec2F24(p0, p1, p2, v0.TC1, v1.TC1, v2.TC1)
	tc2 := lerpVec2F24(p0, p1, p2, v0.TC2, v1.TC2, v2.TC2)

	in := TevInputs{Primary: color}
	if r.Textures[0] != nil {
		in.Texture0 = r.Textures[0].Sample(tc0.X.ToFloat32(), tc0.Y.ToFloat32())
	}
	if r.Textures[1] != nil {
		in.Texture1 = r.Textures[1].Sample(tc1.X.ToFloat32(), tc1.Y.ToFloat32())
	}
	if r.Textures[2] != nil {
		in.Texture2 = r.Textures[2].Sample(tc2.X.ToFloat32(), tc2.Y.ToFloat32())
	}

	final := color
	if r.Tev != nil {
		final = r.Tev.Evaluate(in)
	}

	r.Framebuffer.DrawPixel(x, y, final.Pack())
	r.Framebuffer.SetDepth(x, y, depthToU16(depth))
	return true
}

func lerpVec4U8(b0, b1, b2 float32, a, b, c Vec4F24) Vec4U8 {
	f := func(x, y, z Float24) uint8 {
		return clampU8(int32((b0*x.ToFloat32() + b1*y.ToFloat32() + b2*z.ToFloat32()) * 255))
	}
	return Vec4U8{
		R: f(a.X, b.X, c.X),
		G: f(a.Y, b.Y, c.Y),
		B: f(a.Z, b.Z, c.Z),
		A: f(a.W, b.W, c.W),
	}
}

func lerpVec2F24(b0, b1, b2 float32, a, b, c Vec2F24) Vec2F24 {
	return Vec2F24{
		X: FromFloat32(b0*a.X.ToFloat32() + b1*b.X.ToFloat32() + b2*c.X.ToFloat32()),
		Y: FromFloat32(b0*a.Y.ToFloat32() + b1*b.Y.ToFloat32() + b2*c.Y.ToFloat32()),
	}
}

func edgeBias(topLeft bool) int64 {
	if topLeft {
		return 0
	}
	return -1
}

func min3(a, b, c int32) int32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int32) int32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
