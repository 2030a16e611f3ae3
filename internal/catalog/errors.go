package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO                = errors.New("io error")
	ErrDecode            = errors.New("decode error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrStorage           = errors.New("storage error")
	ErrInvalidRecord     = errors.New("invalid record")
)

// Error kinds reported in run summaries and structured logs.
const (
	KindIO                = "io"
	KindDecode            = "decode"
	KindUnsupportedFormat = "unsupported_format"
	KindStorage           = "storage"
	KindInvalidRecord     = "invalid_record"
	KindCanceled          = "canceled"
	KindUnknown           = "unknown"
)

// Wrap tags err with marker and prefixes the operation and path so the final
// message is self-describing. marker should be one of the sentinels above.
func Wrap(marker error, operation, path string, err error) error {
	detail := buildDetail(operation, path)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind classifies err by the sentinel it wraps.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrInvalidRecord):
		return KindInvalidRecord
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

func buildDetail(operation, path string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if path = strings.TrimSpace(path); path != "" {
		parts = append(parts, path)
	}
	if len(parts) == 0 {
		return "catalog failure"
	}
	return strings.Join(parts, " ")
}
