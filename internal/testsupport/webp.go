package testsupport

import (
	"encoding/binary"
	"image/color"
	"testing"
)

// WriteWebP writes a w×h lossless WebP filled with c.
func WriteWebP(t testing.TB, path string, w, h int, c color.NRGBA) {
	t.Helper()
	if w < 1 || h < 1 || w > 1<<14 || h > 1<<14 {
		t.Fatalf("webp dimensions out of range: %dx%d", w, h)
	}
	WriteBytes(t, path, solidWebP(w, h, c))
}

// solidWebP encodes a VP8L bitstream whose five prefix codes each hold a
// single symbol, so every pixel costs zero bits.
func solidWebP(w, h int, c color.NRGBA) []byte {
	var bw lsbWriter
	bw.write(0x2f, 8)
	bw.write(uint32(w-1), 14)
	bw.write(uint32(h-1), 14)
	alphaHint := uint32(0)
	if c.A != 0xff {
		alphaHint = 1
	}
	bw.write(alphaHint, 1)
	bw.write(0, 3) // version
	bw.write(0, 1) // no transforms
	bw.write(0, 1) // no color cache
	bw.write(0, 1) // no meta prefix codes
	// Green, red, blue, alpha, distance.
	for _, sym := range []uint8{c.G, c.R, c.B, c.A, 0} {
		bw.write(1, 1) // simple code
		bw.write(0, 1) // one symbol
		bw.write(1, 1) // 8-bit symbol
		bw.write(uint32(sym), 8)
	}
	payload := bw.bytes()

	chunk := make([]byte, 0, 8+len(payload)+1)
	chunk = append(chunk, 'V', 'P', '8', 'L')
	chunk = binary.LittleEndian.AppendUint32(chunk, uint32(len(payload)))
	chunk = append(chunk, payload...)
	if len(payload)%2 == 1 {
		chunk = append(chunk, 0)
	}

	out := make([]byte, 0, 12+len(chunk))
	out = append(out, 'R', 'I', 'F', 'F')
	out = binary.LittleEndian.AppendUint32(out, uint32(4+len(chunk)))
	out = append(out, 'W', 'E', 'B', 'P')
	return append(out, chunk...)
}

type lsbWriter struct {
	buf   []byte
	acc   uint64
	nBits uint
}

func (b *lsbWriter) write(v uint32, n uint) {
	b.acc |= uint64(v&(1<<n-1)) << b.nBits
	b.nBits += n
	for b.nBits >= 8 {
		b.buf = append(b.buf, byte(b.acc))
		b.acc >>= 8
		b.nBits -= 8
	}
}

func (b *lsbWriter) bytes() []byte {
	if b.nBits > 0 {
		b.buf = append(b.buf, byte(b.acc))
		b.acc, b.nBits = 0, 0
	}
	return b.buf
}
