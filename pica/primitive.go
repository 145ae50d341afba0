package pica

// Viewport describes the screen-space mapping applied after the
// perspective divide, per spec §4.4.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// fixed12_4 converts a screen-space float coordinate into rasterizer.cpp's
// Q12.4 fixed point representation: 4 fractional bits, used throughout
// the edge function math so fill-rule bias comparisons are exact
// integers instead of float comparisons.
func fixed12_4(v float32) int32 {
	return int32(v * 16)
}

// AssembledVertex is one triangle corner after the perspective divide and
// viewport transform: fixed-point screen coordinates plus the reciprocal
// of the clip-space W (needed for perspective-correct interpolation) and the
// vertex's varyings, unchanged from OutputVertex.
type AssembledVertex struct {
	ScreenX, ScreenY int32 // Q12.4 fixed point
	InvW             float32
	Depth            float32 // normalized 0..1, written to the depth buffer
	Color            Vec4F24
	TC0, TC1, TC2    Vec2F24
}

// AssembleTriangle performs the perspective divide and viewport transform
// on three vertex shader outputs, producing the inputs Rasterizer.FillTriangle
// needs. W == 0 is not a hardware fault: it is clamped away from zero so
// Float24's own non-panicking division rule (spec §4.1) extends to the
// primitive assembler.
func AssembleTriangle(vp Viewport, a, b, c OutputVertex) [3]AssembledVertex {
	return [3]AssembledVertex{
		assembleVertex(vp, a),
		assembleVertex(vp, b),
		assembleVertex(vp, c),
	}
}

func assembleVertex(vp Viewport, v OutputVertex) AssembledVertex {
	w := v.Pos.W.ToFloat32()
	if w == 0 {
		w = 1e-8
	}
	invW := 1 / w

	ndcX := v.Pos.X.ToFloat32() * invW
	ndcY := v.Pos.Y.ToFloat32() * invW
	ndcZ := v.Pos.Z.ToFloat32() * invW

	screenX := vp.X + (ndcX*0.5+0.5)*vp.Width
	screenY := vp.Y + (1-(ndcY*0.5+0.5))*vp.Height
	depth := ndcZ*0.5 + 0.5

	return AssembledVertex{
		ScreenX: fixed12_4(screenX),
		ScreenY: fixed12_4(screenY),
		InvW:    invW,
		Depth:   depth,
		Color:   v.Color,
		TC0:     v.TC0,
		TC1:     v.TC1,
		TC2:     v.TC2,
	}
}
