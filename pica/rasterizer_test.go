package pica

import "testing"

func solidVertex(x, y int32, color Vec4U8) AssembledVertex {
	return AssembledVertex{
		ScreenX: x * 16,
		ScreenY: y * 16,
		InvW:    1,
		Depth:   0.5,
		Color: Vec4F24{
			X: FromFloat32(float32(color.R) / 255),
			Y: FromFloat32(float32(color.G) / 255),
			Z: FromFloat32(float32(color.B) / 255),
			W: FromFloat32(float32(color.A) / 255),
		},
	}
}

func TestRasterizerFillsInteriorNotExterior(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	rast := &Rasterizer{Framebuffer: fb}

	red := Vec4U8{R: 255, A: 255}
	verts := [3]AssembledVertex{
		solidVertex(0, 0, red),
		solidVertex(6, 0, red),
		solidVertex(0, 6, red),
	}
	rast.FillTriangle(verts)

	if fb.Color[1*8+1] == 0 {
		t.Errorf("pixel (1,1) should be inside the triangle and drawn")
	}
	if fb.Color[6*8+6] != 0 {
		t.Errorf("pixel (6,6) should be outside the triangle and untouched")
	}
}

func TestRasterizerSharedEdgeDrawnOnce(t *testing.T) {
	// Two triangles sharing the diagonal edge from (0,0) to (4,4) should
	// together cover every pixel in the 4x4 square exactly once,
	// verifying the top-left fill rule doesn't double-draw or leave gaps
	// along the shared edge.
	fb := NewFramebuffer(4, 4)
	rast := &Rasterizer{Framebuffer: fb}

	c1 := Vec4U8{R: 255, A: 255}
	c2 := Vec4U8{G: 255, A: 255}

	rast.FillTriangle([3]AssembledVertex{
		solidVertex(0, 0, c1),
		solidVertex(4, 0, c1),
		solidVertex(0, 4, c1),
	})
	firstPass := make([]uint32, len(fb.Color))
	copy(firstPass, fb.Color)

	fb2 := NewFramebuffer(4, 4)
	rast2 := &Rasterizer{Framebuffer: fb2}
	rast2.FillTriangle([3]AssembledVertex{
		solidVertex(4, 0, c2),
		solidVertex(4, 4, c2),
		solidVertex(0, 4, c2),
	})

	overlap := 0
	for i := range firstPass {
		if firstPass[i] != 0 && fb2.Color[i] != 0 {
			overlap++
		}
	}
	if overlap != 0 {
		t.Errorf("triangles sharing an edge overlapped on %d pixels", overlap)
	}
	gaps := 0
	for i := range firstPass {
		if firstPass[i] == 0 && fb2.Color[i] == 0 {
			gaps++
		}
	}
	if gaps != 0 {
		t.Errorf("triangles sharing an edge left %d pixels of the square uncovered", gaps)
	}
}

func TestRasterizerDegenerateTriangleSkipped(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	rast := &Rasterizer{Framebuffer: fb}
	red := Vec4U8{R: 255, A: 255}

	// Three colinear points: zero area.
	rast.FillTriangle([3]AssembledVertex{
		solidVertex(0, 0, red),
		solidVertex(1, 1, red),
		solidVertex(2, 2, red),
	})
	for _, c := range fb.Color {
		if c != 0 {
			t.Fatalf("degenerate triangle drew a pixel, want no-op")
		}
	}
}

func TestRasterizerPerspectiveCorrectInterpolation(t *testing.T) {
	fb := NewFramebuffer(16, 1)
	rast := &Rasterizer{Framebuffer: fb}

	near := AssembledVertex{
		ScreenX: 0, ScreenY: 8,
		InvW: 1, Depth: 0.5,
		Color: Vec4F24{X: FromFloat32(1)},
	}
	far := AssembledVertex{
		ScreenX: 16 * 16, ScreenY: 8,
		InvW: 0.25, Depth: 0.5,
		Color: Vec4F24{X: FromFloat32(0)},
	}
	third := AssembledVertex{
		ScreenX: 8 * 16, ScreenY: 32,
		InvW: 1, Depth: 0.5,
	}

	rast.FillTriangle([3]AssembledVertex{near, far, third})

	// Under perspective-correct interpolation the crossover point where
	// red drops toward zero is pulled away from the screen-space midpoint
	// toward the far (larger W) vertex; a purely linear interpolation
	// would put it near x=8. Red must fall from x=3 to x=8, and at x=8
	// it must still be above half: screen-linear weights give about 119
	// there, while perspective-correct weights with the 4x difference in
	// InvW give about 198.
	leftPixel := fb.Color[3] >> 16 & 0xff
	midPixel := fb.Color[8] >> 16 & 0xff
	if leftPixel <= midPixel {
		t.Errorf("expected perspective correction to bias red > at x=3 (%d) than x=8 (%d)", leftPixel, midPixel)
	}
	if midPixel <= 0x80 {
		t.Errorf("expected perspective correction to keep red above half at x=8, got %d", midPixel)
	}
}
