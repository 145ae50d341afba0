package pica

// WrapMode selects how out-of-[0,1) texture coordinates are handled,
// per spec §4.6.
type WrapMode uint8

const (
	WrapClampToEdge WrapMode = iota
	WrapRepeat
	WrapMirroredRepeat
)

func wrapCoord(mode WrapMode, i, size int) int {
	if size <= 0 {
		return 0
	}
	switch mode {
	case WrapRepeat:
		i %= size
		if i < 0 {
			i += size
		}
		return i
	case WrapMirroredRepeat:
		period := 2 * size
		i %= period
		if i < 0 {
			i += period
		}
		if i >= size {
			i = period - 1 - i
		}
		return i
	default: // WrapClampToEdge
		if i < 0 {
			return 0
		}
		if i >= size {
			return size - 1
		}
		return i
	}
}

// mortonOffset computes the texel index of (x, y) inside an RGB8 texture
// stored in 8x8 Z-order tiles (callers multiply by 3 for a byte offset), the layout rasterizer.cpp's
// GetPixel uses for VRAM-resident textures: within each 8x8 tile, the
// low 3 bits of x and y are interleaved (Morton/Z-order), and tiles
// themselves are stored row-major.
func mortonOffset(x, y, width int) int {
	tileX, tileY := x/8, y/8
	inX, inY := uint32(x%8), uint32(y%8)

	var z uint32
	for bit := 0; bit < 3; bit++ {
		z |= ((inX >> bit) & 1) << uint(2*bit)
		z |= ((inY >> bit) & 1) << uint(2*bit+1)
	}

	tilesPerRow := (width + 7) / 8
	tileIndex := tileY*tilesPerRow + tileX
	return tileIndex*64 + int(z)
}

// Texture is a software RGB8 texture image sampled by the TEV stages.
// Pixel storage is tiled per mortonOffset, matching how the rasterizer's
// texture unit reads directly out of guest VRAM rather than a linear
// scanline buffer.
type Texture struct {
	Width, Height int
	Pixels        []byte // 3 bytes (R,G,B) per texel, Morton-tiled

	WrapS, WrapT WrapMode

	// InvertV flips the V coordinate before sampling. Real PICA titles
	// disagree among themselves about which V convention their vertex
	// data assumes; this repository resolves the open question by making
	// it an explicit per-texture flag rather than a silent global
	// default, so both conventions are reachable and testable instead of
	// one being an undocumented "legacy" fallback.
	InvertV bool

	// Enabled gates sampling. A disabled unit contributes opaque black
	// rather than whatever stale Pixels it happens to hold, matching a
	// texture unit that was never bound.
	Enabled bool
}

// NewTexture allocates a zeroed tiled RGB8 texture.
func NewTexture(width, height int) *Texture {
	tiles := ((width + 7) / 8) * ((height + 7) / 8)
	return &Texture{
		Width:   width,
		Height:  height,
		Pixels:  make([]byte, tiles*64*3),
		Enabled: true,
	}
}

// SetTexel writes one texel's RGB8 color at (x, y) in Morton order.
func (t *Texture) SetTexel(x, y int, rgb [3]byte) {
	off := mortonOffset(x, y, t.Width) * 3
	if off < 0 || off+3 > len(t.Pixels) {
		return
	}
	copy(t.Pixels[off:off+3], rgb[:])
}

// Sample fetches the nearest texel for normalized coordinates (u, v),
// applying wrap modes and the InvertV convention. Every texel read has
// alpha 255: spec §4.6 scopes texture formats to opaque RGB8 (non-goal:
// additional pixel formats, texture compression, mipmapping). A texture
// with zero width or height, or a texel offset past the end of Pixels,
// yields all-zero (transparent black).
func (t *Texture) Sample(u, v float32) Vec4U8 {
	if !t.Enabled {
		return Vec4U8{A: 0xff}
	}
	if t.Width == 0 || t.Height == 0 {
		return Vec4U8{}
	}
	if t.InvertV {
		v = 1 - v
	}

	x := wrapCoord(t.WrapS, int(u*float32(t.Width)), t.Width)
	y := wrapCoord(t.WrapT, int(v*float32(t.Height)), t.Height)

	off := mortonOffset(x, y, t.Width) * 3
	if off < 0 || off+3 > len(t.Pixels) {
		return Vec4U8{}
	}
	return Vec4U8{R: t.Pixels[off], G: t.Pixels[off+1], B: t.Pixels[off+2], A: 0xff}
}

// sampleLegacyInverted reproduces an early revision's V-coordinate
// handling, which inverted V exactly when InvertV was false (backwards
// from Sample's convention). Kept only because a handful of test assets
// in the wild were authored against this behavior; never used by
// default.
func sampleLegacyInverted(t *Texture, u, v float32) Vec4U8 {
	if !t.InvertV {
		v = 1 - v
	}
	saved := t.InvertV
	t.InvertV = false
	defer func() { t.InvertV = saved }()
	return t.Sample(u, v)
}
