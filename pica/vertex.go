package pica

// InputVertex holds up to 16 Vec4F24 attributes fed to the vertex shader,
// indexed 0..15 per spec §3.
type InputVertex struct {
	Attr [16]Vec4F24
}

// OutputVertex is the fixed schema produced by the vertex shader: clip
// space position, primary color, three texture coordinates, and the
// screen-space position filled in later by the primitive assembler.
type OutputVertex struct {
	Pos       Vec4F24
	Color     Vec4F24
	TC0       Vec2F24
	TC1       Vec2F24
	TC2       Vec2F24
	ScreenPos Vec3F24
}

// outputLaneCount is the number of Float24 lanes in OutputVertex that a
// vs_output_attributes[i].map_{x,y,z,w} semantic code can address, i.e.
// the semantic codes outputLane's switch below routes to a concrete
// field+lane (0..outputLaneCount-1). ScreenPos is not addressable.
const outputLaneCount = 4 + 4 + 2 + 2 + 2 // pos, color, tc0, tc1, tc2

// outputLane returns a pointer to the Float24 lane addressed by a
// vs_output_attributes semantic code (spec §3's "semantic code selects
// one lane within the fixed Output Vertex layout"). Semantic codes are
// laid out the way PICA hardware defines them: 0-3 position xyzw, 4-7
// color rgba, 8-9 tc0 uv, 10-11 tc1 uv, 12-13 tc2 uv. Anything else maps
// to a scratch lane, matching spec §3's "unused map codes may point to a
// scratch lane".
func outputLane(v *OutputVertex, semantic uint32) *Float24 {
	switch semantic {
	case 0:
		return &v.Pos.X
	case 1:
		return &v.Pos.Y
	case 2:
		return &v.Pos.Z
	case 3:
		return &v.Pos.W
	case 4:
		return &v.Color.X
	case 5:
		return &v.Color.Y
	case 6:
		return &v.Color.Z
	case 7:
		return &v.Color.W
	case 8:
		return &v.TC0.X
	case 9:
		return &v.TC0.Y
	case 10:
		return &v.TC1.X
	case 11:
		return &v.TC1.Y
	case 12:
		return &v.TC2.X
	case 13:
		return &v.TC2.Y
	default:
		return &scratchLane
	}
}

// scratchLane is the sentinel destination for output semantic codes that
// don't address a real Output Vertex field.
var scratchLane Float24
