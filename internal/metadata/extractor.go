package metadata

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"imgcat/internal/catalog"
)

// Options configures an Extractor.
type Options struct {
	// VerifyPixels decodes the full image instead of only its header so
	// truncated or corrupt pixel data is reported as a decode error.
	VerifyPixels bool
	// Providers is the capture-date chain, consulted in order. Nil selects
	// DefaultProviders(time.Local, ModeModified).
	Providers []DateProvider
	// Now stamps Record.ScannedAt. Defaults to time.Now.
	Now func() time.Time
}

// Extractor produces catalog records from image files. It is safe for
// concurrent use.
type Extractor struct {
	verifyPixels bool
	providers    []DateProvider
	now          func() time.Time
}

// New constructs an Extractor.
func New(opts Options) *Extractor {
	providers := opts.Providers
	if providers == nil {
		providers = DefaultProviders(time.Local, ModeModified)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Extractor{
		verifyPixels: opts.VerifyPixels,
		providers:    append([]DateProvider(nil), providers...),
		now:          now,
	}
}

// Extract reads path and returns its catalog record. Failures wrap
// catalog.ErrIO, catalog.ErrDecode or catalog.ErrUnsupportedFormat. Extract
// never writes.
func (e *Extractor) Extract(ctx context.Context, path string) (catalog.Record, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Record{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return catalog.Record{}, catalog.Wrap(catalog.ErrIO, "resolve path", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return catalog.Record{}, catalog.Wrap(catalog.ErrIO, "stat", abs, err)
	}
	if !info.Mode().IsRegular() {
		return catalog.Record{}, catalog.Wrap(catalog.ErrIO, "stat", abs, errors.New("not a regular file"))
	}

	width, height, format, err := e.decode(abs)
	if err != nil {
		return catalog.Record{}, err
	}

	subject := Subject{Path: abs, Info: info, Format: format}
	createdAt, source := e.captureDate(subject)

	return catalog.Record{
		Path:          abs,
		FileName:      filepath.Base(abs),
		FileSizeBytes: info.Size(),
		Width:         width,
		Height:        height,
		Format:        format,
		CreatedAt:     createdAt.UTC(),
		DateSource:    source,
		ScannedAt:     e.now().UTC(),
	}, nil
}

func (e *Extractor) decode(path string) (int, int, catalog.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", catalog.Wrap(catalog.ErrIO, "open", path, err)
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", classifyDecodeError(path, "decode header", err)
	}
	format, ok := catalog.FormatFromDecoder(name)
	if !ok {
		return 0, 0, "", catalog.Wrap(catalog.ErrUnsupportedFormat, "decode header", path, fmt.Errorf("decoder %q", name))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, "", catalog.Wrap(catalog.ErrDecode, "decode header", path, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height))
	}

	if e.verifyPixels {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return 0, 0, "", catalog.Wrap(catalog.ErrIO, "rewind", path, err)
		}
		if _, _, err := image.Decode(f); err != nil {
			return 0, 0, "", classifyDecodeError(path, "decode pixels", err)
		}
	}
	return cfg.Width, cfg.Height, format, nil
}

func classifyDecodeError(path, op string, err error) error {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, image.ErrFormat):
		return catalog.Wrap(catalog.ErrUnsupportedFormat, op, path, err)
	case errors.As(err, &pathErr):
		return catalog.Wrap(catalog.ErrIO, op, path, err)
	default:
		return catalog.Wrap(catalog.ErrDecode, op, path, err)
	}
}

func (e *Extractor) captureDate(subject Subject) (time.Time, catalog.DateSource) {
	for _, provider := range e.providers {
		if provider == nil {
			continue
		}
		if ts, ok := provider.CaptureDate(subject); ok && !ts.IsZero() {
			return ts, provider.Source()
		}
	}
	return subject.Info.ModTime(), catalog.DateSourceFilesystem
}
