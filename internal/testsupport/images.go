package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

// ExifDateLayout is the layout EXIF uses for DateTimeOriginal.
const ExifDateLayout = "2006:01:02 15:04:05"

// NewImage returns a w×h RGBA image filled with a noisy pattern so encoders
// do not collapse it to a trivial payload.
func NewImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x*7 + y*13), G: uint8(x * y), B: uint8(x ^ y), A: 0xff})
		}
	}
	return img
}

// WritePNG encodes a w×h PNG at path.
func WritePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, NewImage(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	WriteBytes(t, path, buf.Bytes())
}

// WriteJPEG encodes a w×h JPEG at path.
func WriteJPEG(t testing.TB, path string, w, h int) {
	t.Helper()
	WriteBytes(t, path, encodeJPEG(t, w, h))
}

// WriteJPEGWithExif encodes a w×h JPEG carrying an EXIF DateTimeOriginal tag.
func WriteJPEGWithExif(t testing.TB, path string, w, h int, taken time.Time) {
	t.Helper()
	plain := encodeJPEG(t, w, h)
	segment := exifSegment(taken.Format(ExifDateLayout))

	out := make([]byte, 0, len(plain)+len(segment))
	out = append(out, plain[:2]...) // SOI
	out = append(out, segment...)
	out = append(out, plain[2:]...)
	WriteBytes(t, path, out)
}

// WriteGIF encodes a single-frame w×h GIF at path.
func WriteGIF(t testing.TB, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, NewImage(w, h), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	WriteBytes(t, path, buf.Bytes())
}

// WriteBMP encodes a w×h BMP at path.
func WriteBMP(t testing.TB, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, NewImage(w, h)); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	WriteBytes(t, path, buf.Bytes())
}

// pngHeaderLen covers the signature and the IHDR chunk.
const pngHeaderLen = 8 + 4 + 4 + 13 + 4

// WriteTruncatedPNG writes the first two thirds of a valid w×h PNG, producing
// a file whose header parses but whose pixel data does not.
func WriteTruncatedPNG(t testing.TB, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, NewImage(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()
	keep := max(len(data)*2/3, pngHeaderLen)
	if keep >= len(data) {
		t.Fatalf("png of %d bytes too small to truncate", len(data))
	}
	WriteBytes(t, path, data[:keep])
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SetModTime sets both access and modification time of path.
func SetModTime(t testing.TB, path string, ts time.Time) {
	t.Helper()
	if err := os.Chtimes(path, ts, ts); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func encodeJPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, NewImage(w, h), &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// exifSegment builds a minimal big-endian APP1 segment: IFD0 holds only the
// Exif IFD pointer and the Exif IFD holds only DateTimeOriginal.
func exifSegment(date string) []byte {
	value := append([]byte(date), 0)

	const (
		ifd0Offset = 8
		exifOffset = ifd0Offset + 2 + 12 + 4
		dataOffset = exifOffset + 2 + 12 + 4
	)

	be := binary.BigEndian
	var tiff bytes.Buffer
	tiff.WriteString("MM")
	_ = binary.Write(&tiff, be, uint16(42))
	_ = binary.Write(&tiff, be, uint32(ifd0Offset))

	// IFD0: ExifIFDPointer (0x8769, LONG).
	_ = binary.Write(&tiff, be, uint16(1))
	_ = binary.Write(&tiff, be, uint16(0x8769))
	_ = binary.Write(&tiff, be, uint16(4))
	_ = binary.Write(&tiff, be, uint32(1))
	_ = binary.Write(&tiff, be, uint32(exifOffset))
	_ = binary.Write(&tiff, be, uint32(0))

	// Exif IFD: DateTimeOriginal (0x9003, ASCII).
	_ = binary.Write(&tiff, be, uint16(1))
	_ = binary.Write(&tiff, be, uint16(0x9003))
	_ = binary.Write(&tiff, be, uint16(2))
	_ = binary.Write(&tiff, be, uint32(len(value)))
	_ = binary.Write(&tiff, be, uint32(dataOffset))
	_ = binary.Write(&tiff, be, uint32(0))

	tiff.Write(value)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	segment := []byte{0xFF, 0xE1, 0, 0}
	be.PutUint16(segment[2:], uint16(len(payload)+2))
	return append(segment, payload...)
}
