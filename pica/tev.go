package pica

// TevSource names one of the color/alpha value slots a TEV stage can
// pull from, per spec §4.7.
type TevSource uint8

const (
	SourcePrimaryColor TevSource = iota
	SourceTexture0
	SourceTexture1
	SourceTexture2
	SourcePrevious
	SourceConstant
)

// TevOperand selects a component view of a TevSource: its RGB, its
// alpha, or the one's complement of either.
type TevOperand uint8

const (
	OperandSourceColor TevOperand = iota
	OperandOneMinusSourceColor
	OperandSourceAlpha
	OperandOneMinusSourceAlpha
)

// TevCombineOp is the arithmetic a stage applies to its (up to three)
// selected operands.
type TevCombineOp uint8

const (
	CombineReplace TevCombineOp = iota
	CombineModulate
	CombineAdd
	CombineAddSigned
	CombineLerp
	CombineSubtract
)

// TevStage is one of the pipeline's up to six combiner stages, each
// independently configuring its color and alpha combine, mirroring
// rasterizer.cpp's GetColorSource/GetAlphaSource/GetColorModifier/
// GetAlphaModifier/ColorCombine/AlphaCombine free functions collapsed
// into one struct plus method per spec's "6-stage TEV combiner".
type TevStage struct {
	ColorSrc     [3]TevSource
	ColorOperand [3]TevOperand
	ColorOp      TevCombineOp

	AlphaSrc     [3]TevSource
	AlphaOperand [3]TevOperand
	AlphaOp      TevCombineOp

	Constant Vec4U8
}

// IdentityTevStage passes the primary fragment color through unmodified,
// a sane default for stages a shader leaves unconfigured.
var IdentityTevStage = TevStage{
	ColorSrc:     [3]TevSource{SourcePrimaryColor, SourcePrimaryColor, SourcePrimaryColor},
	ColorOperand: [3]TevOperand{OperandSourceColor, OperandSourceColor, OperandSourceColor},
	ColorOp:      CombineReplace,
	AlphaSrc:     [3]TevSource{SourcePrimaryColor, SourcePrimaryColor, SourcePrimaryColor},
	AlphaOperand: [3]TevOperand{OperandSourceAlpha, OperandSourceAlpha, OperandSourceAlpha},
	AlphaOp:      CombineReplace,
}

// TevInputs bundles the value slots every stage reads from: the
// interpolated primary fragment color and up to three sampled texture
// colors. Previous is threaded through by TevPipeline.Evaluate.
type TevInputs struct {
	Primary            Vec4U8
	Texture0, Texture1, Texture2 Vec4U8
}

func (in *TevInputs) resolve(src TevSource, previous Vec4U8, constant Vec4U8) Vec4U8 {
	switch src {
	case SourceTexture0:
		return in.Texture0
	case SourceTexture1:
		return in.Texture1
	case SourceTexture2:
		return in.Texture2
	case SourcePrevious:
		return previous
	case SourceConstant:
		return constant
	default:
		return in.Primary
	}
}

func applyColorOperand(v Vec4U8, op TevOperand) [3]int32 {
	c := [3]int32{int32(v.R), int32(v.G), int32(v.B)}
	switch op {
	case OperandOneMinusSourceColor:
		return [3]int32{0xff - c[0], 0xff - c[1], 0xff - c[2]}
	case OperandSourceAlpha:
		a := int32(v.A)
		return [3]int32{a, a, a}
	case OperandOneMinusSourceAlpha:
		a := 0xff - int32(v.A)
		return [3]int32{a, a, a}
	default:
		return c
	}
}

func applyAlphaOperand(v Vec4U8, op TevOperand) int32 {
	switch op {
	case OperandOneMinusSourceAlpha:
		return 0xff - int32(v.A)
	case OperandSourceColor:
		return int32(v.R)
	case OperandOneMinusSourceColor:
		return 0xff - int32(v.R)
	default:
		return int32(v.A)
	}
}

func combineChannel(op TevCombineOp, a, b, c int32) int32 {
	switch op {
	case CombineModulate:
		return (a * b) / 0xff
	case CombineAdd:
		return a + b
	case CombineAddSigned:
		return a + b - 0x80
	case CombineLerp:
		return (a*c + b*(0xff-c)) / 0xff
	case CombineSubtract:
		return a - b
	default: // CombineReplace
		return a
	}
}

// Evaluate runs this stage against in and the running previous value,
// producing the new previous color+alpha for the next stage.
func (s *TevStage) Evaluate(in *TevInputs, previous Vec4U8) Vec4U8 {
	c0 := applyColorOperand(in.resolve(s.ColorSrc[0], previous, s.Constant), s.ColorOperand[0])
	c1 := applyColorOperand(in.resolve(s.ColorSrc[1], previous, s.Constant), s.ColorOperand[1])
	c2 := applyColorOperand(in.resolve(s.ColorSrc[2], previous, s.Constant), s.ColorOperand[2])

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		rgb[i] = clampU8(combineChannel(s.ColorOp, c0[i], c1[i], c2[i]))
	}

	a0 := applyAlphaOperand(in.resolve(s.AlphaSrc[0], previous, s.Constant), s.AlphaOperand[0])
	a1 := applyAlphaOperand(in.resolve(s.AlphaSrc[1], previous, s.Constant), s.AlphaOperand[1])
	a2 := applyAlphaOperand(in.resolve(s.AlphaSrc[2], previous, s.Constant), s.AlphaOperand[2])
	alpha := clampU8(combineChannel(s.AlphaOp, a0, a1, a2))

	return Vec4U8{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}
}

// TevPipeline is the fixed six-stage combiner a fragment's final color
// passes through before DrawPixel, per spec §4.7.
type TevPipeline struct {
	Stages [6]TevStage
}

// Evaluate threads TevInputs.Primary through as the initial "previous"
// value and runs all six stages in order, returning the final fragment
// color.
func (p *TevPipeline) Evaluate(in TevInputs) Vec4U8 {
	previous := in.Primary
	for i := range p.Stages {
		previous = p.Stages[i].Evaluate(&in, previous)
	}
	return previous
}
