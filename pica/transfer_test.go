package pica

import "testing"

func TestFillEngineByteSwapsValue(t *testing.T) {
	mem := NewRAM(64)
	fe := &FillEngine{Memory: mem}

	fe.Fill(0, 4, 1, 0x11223344)

	want := bswap32(0x11223344)
	for i := 0; i < 4; i++ {
		if got := mem.Load32(uint32(i * 4)); got != want {
			t.Fatalf("word %d = 0x%08x, want 0x%08x", i, got, want)
		}
	}
}

func TestDisplayTransferConvertsRGBA8ToTiledRGB8(t *testing.T) {
	mem := NewRAM(4096)
	te := &TransferEngine{Memory: mem}

	const w, h = 8, 8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixel := Vec4U8{R: byte(x), G: byte(y), B: 7, A: 255}.Pack()
			mem.Store32(uint32((y*w+x)*4), pixel)
		}
	}

	te.DisplayTransfer(0, 1024, w, h)

	off := mortonOffset(3, 5, w) * 3
	rgb := mem.LoadBytes(1024+uint32(off), 3)
	if rgb[0] != 3 || rgb[1] != 5 || rgb[2] != 7 {
		t.Fatalf("texel (3,5) = %v, want [3 5 7]", rgb)
	}
}
