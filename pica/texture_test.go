package pica

import "testing"

func TestTextureMortonRoundTrip(t *testing.T) {
	tex := NewTexture(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			tex.SetTexel(x, y, [3]byte{byte(x * 10), byte(y * 10), 1})
		}
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := tex.Sample(float32(x)/16+0.01, float32(y)/16+0.01)
			if c.R != byte(x*10) || c.G != byte(y*10) {
				t.Fatalf("texel (%d,%d) = %+v, want R=%d G=%d", x, y, c, byte(x*10), byte(y*10))
			}
		}
	}
}

func TestTextureWrapModes(t *testing.T) {
	tex := NewTexture(4, 1)
	tex.SetTexel(0, 0, [3]byte{1, 0, 0})
	tex.SetTexel(3, 0, [3]byte{9, 0, 0})

	tex.WrapS = WrapRepeat
	if c := tex.Sample(1.0, 0); c.R != 1 {
		t.Errorf("repeat wrap at u=1.0 should read texel 0, got R=%d", c.R)
	}

	tex.WrapS = WrapClampToEdge
	if c := tex.Sample(2.0, 0); c.R != 9 {
		t.Errorf("clamp wrap at u=2.0 should read the last texel, got R=%d", c.R)
	}

	tex.WrapS = WrapMirroredRepeat
	if c := tex.Sample(-0.01, 0); c.R != 1 {
		t.Errorf("mirrored repeat at u=-0.01 should read texel 0, got R=%d", c.R)
	}
}

func TestTextureDisabledUnitSamplesOpaqueBlack(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.SetTexel(0, 0, [3]byte{255, 255, 255})
	tex.Enabled = false

	c := tex.Sample(0, 0)
	if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 0xff {
		t.Fatalf("disabled unit sampled %+v, want opaque black", c)
	}
}

func TestTextureSampleLegacyInvertedIsOppositeOfDefault(t *testing.T) {
	tex := NewTexture(1, 2)
	tex.SetTexel(0, 0, [3]byte{1, 0, 0})
	tex.SetTexel(0, 1, [3]byte{2, 0, 0})

	normal := tex.Sample(0, 0.25)
	legacy := sampleLegacyInverted(tex, 0, 0.25)
	if normal.R == legacy.R {
		t.Fatalf("sampleLegacyInverted should read the opposite texel from Sample")
	}
	if tex.InvertV {
		t.Fatalf("sampleLegacyInverted must not leave InvertV mutated")
	}
}

func TestTextureInvertV(t *testing.T) {
	tex := NewTexture(1, 2)
	tex.SetTexel(0, 0, [3]byte{1, 0, 0})
	tex.SetTexel(0, 1, [3]byte{2, 0, 0})

	tex.InvertV = false
	top := tex.Sample(0, 0.25)
	tex.InvertV = true
	inverted := tex.Sample(0, 0.25)

	if top.R == inverted.R {
		t.Fatalf("expected InvertV to change which texel is sampled")
	}
}
