package logging

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

const defaultErrorHint = "rerun with debug logging for details"

// WarnWithContext logs a per-file problem. Every line carries event_type,
// error_hint and impact; missing ones are filled with defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logEvent(logger, slog.LevelWarn, msg, attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
		String(FieldImpact, "file left out of the catalog"),
	)
}

// ErrorWithContext logs a failure that stops a run. Every line carries
// event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logEvent(logger, slog.LevelError, msg, attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
	)
}

// logEvent appends each default whose key attrs lacks and emits the record
// with the source of the exported helper's caller.
func logEvent(logger *slog.Logger, level slog.Level, msg string, attrs []Attr, defaults ...Attr) {
	if logger == nil {
		return
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	for _, d := range defaults {
		if !HasAttrKey(attrs, d.Key) {
			attrs = append(attrs, d)
		}
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, logEvent, WarnWithContext/ErrorWithContext
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.AddAttrs(attrs...)
	_ = logger.Handler().Handle(ctx, record)
}
