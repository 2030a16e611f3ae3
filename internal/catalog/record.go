package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies the container format detected from file content.
type Format string

const (
	FormatJPEG Format = "JPEG"
	FormatPNG  Format = "PNG"
	FormatGIF  Format = "GIF"
	FormatBMP  Format = "BMP"
	FormatWebP Format = "WebP"
)

var allFormats = []Format{FormatJPEG, FormatPNG, FormatGIF, FormatBMP, FormatWebP}

// Formats returns every format the catalog understands.
func Formats() []Format {
	out := make([]Format, len(allFormats))
	copy(out, allFormats)
	return out
}

// FormatFromDecoder maps an image decoder registration name (as returned by
// image.DecodeConfig) to a Format.
func FormatFromDecoder(name string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpeg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "gif":
		return FormatGIF, true
	case "bmp":
		return FormatBMP, true
	case "webp":
		return FormatWebP, true
	default:
		return "", false
	}
}

// ParseFormat accepts user input such as "jpg", "PNG" or "webp".
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "jpg" {
		normalized = "jpeg"
	}
	if format, ok := FormatFromDecoder(normalized); ok {
		return format, nil
	}
	return "", fmt.Errorf("unknown image format %q", value)
}

// DateSource records which provider supplied Record.CreatedAt.
type DateSource string

const (
	DateSourceExif       DateSource = "exif"
	DateSourceFilesystem DateSource = "filesystem"
)

// Record is one cataloged image, keyed by Path.
type Record struct {
	Path          string
	FileName      string
	FileSizeBytes int64
	Width         int
	Height        int
	Format        Format
	CreatedAt     time.Time
	DateSource    DateSource
	ScannedAt     time.Time
}

// Validate reports whether the record satisfies the catalog invariants.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidRecord)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %s has non-positive dimensions %dx%d", ErrInvalidRecord, r.Path, r.Width, r.Height)
	}
	if r.FileSizeBytes < 0 {
		return fmt.Errorf("%w: %s has negative size", ErrInvalidRecord, r.Path)
	}
	if r.Format == "" {
		return fmt.Errorf("%w: %s has no format", ErrInvalidRecord, r.Path)
	}
	return nil
}

// RunRecord summarizes one completed scan in the scan_runs table.
type RunRecord struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Succeeded  int
	Failed     int
	Canceled   bool
}

// FormatStat aggregates catalog rows for one format.
type FormatStat struct {
	Format     Format
	Count      int64
	TotalBytes int64
}

// String renders a short description for logs and errors.
func (r Record) String() string {
	return fmt.Sprintf("%s (%s %dx%d)", r.Path, r.Format, r.Width, r.Height)
}
