package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"imgcat/internal/catalog"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := catalog.Wrap(catalog.ErrDecode, "decode config", "/photos/a.png", base)
	if !errors.Is(err, catalog.ErrDecode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"decode error", "decode config", "/photos/a.png", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{catalog.Wrap(catalog.ErrIO, "stat", "/x", nil), catalog.KindIO},
		{catalog.Wrap(catalog.ErrDecode, "decode", "/x", nil), catalog.KindDecode},
		{catalog.Wrap(catalog.ErrUnsupportedFormat, "decode", "/x", nil), catalog.KindUnsupportedFormat},
		{catalog.Wrap(catalog.ErrStorage, "upsert", "/x", nil), catalog.KindStorage},
		{fmt.Errorf("%w: bad", catalog.ErrInvalidRecord), catalog.KindInvalidRecord},
		{fmt.Errorf("extract: %w", context.Canceled), catalog.KindCanceled},
		{errors.New("mystery"), catalog.KindUnknown},
	}
	for _, tc := range cases {
		if got := catalog.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]catalog.Format{
		"jpg":  catalog.FormatJPEG,
		"JPEG": catalog.FormatJPEG,
		"png":  catalog.FormatPNG,
		" gif": catalog.FormatGIF,
		"bmp":  catalog.FormatBMP,
		"WebP": catalog.FormatWebP,
	}
	for input, want := range cases {
		got, err := catalog.ParseFormat(input)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := catalog.ParseFormat("tiff"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
