package metadata

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"imgcat/internal/catalog"
)

// ExifDateLayout is the fixed layout of EXIF date/time tags.
const ExifDateLayout = "2006:01:02 15:04:05"

// Filesystem timestamp selectors for FilesystemProvider.
const (
	ModeModified = "modified"
	ModeBirth    = "birth"
)

// Subject is the file a DateProvider inspects.
type Subject struct {
	Path   string
	Info   fs.FileInfo
	Format catalog.Format
}

// DateProvider yields an optional capture date for a file. Providers never
// fail: an absent or unreadable value is reported as ok == false.
type DateProvider interface {
	Source() catalog.DateSource
	CaptureDate(subject Subject) (time.Time, bool)
}

// DefaultProviders returns the EXIF provider followed by the filesystem
// provider for mode.
func DefaultProviders(loc *time.Location, mode string) []DateProvider {
	return []DateProvider{
		ExifProvider{Location: loc},
		FilesystemProvider{Mode: mode},
	}
}

// ExifProvider reads DateTimeOriginal, then DateTimeDigitized, from JPEG
// files. EXIF dates carry no zone and are interpreted in Location.
type ExifProvider struct {
	Location *time.Location
}

func (ExifProvider) Source() catalog.DateSource { return catalog.DateSourceExif }

func (p ExifProvider) CaptureDate(subject Subject) (time.Time, bool) {
	if subject.Format != catalog.FormatJPEG {
		return time.Time{}, false
	}
	f, err := os.Open(subject.Path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return time.Time{}, false
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		if ts, ok := ParseExifDate(raw, loc); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseExifDate parses an EXIF date string. Zeroed placeholder dates such as
// "0000:00:00 00:00:00" are rejected.
func ParseExifDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(ExifDateLayout, raw, loc)
	if err != nil || ts.Year() < 1800 {
		return time.Time{}, false
	}
	return ts, true
}

// FilesystemProvider reports the modification time, or the birth time in
// ModeBirth where the filesystem records one.
type FilesystemProvider struct {
	Mode string
}

func (FilesystemProvider) Source() catalog.DateSource { return catalog.DateSourceFilesystem }

func (p FilesystemProvider) CaptureDate(subject Subject) (time.Time, bool) {
	if p.Mode == ModeBirth {
		if ts, ok := birthTime(subject.Path); ok {
			return ts, true
		}
	}
	if subject.Info == nil {
		return time.Time{}, false
	}
	return subject.Info.ModTime(), true
}
