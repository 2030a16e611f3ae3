// Package logging assembles the slog loggers used by imgcat.
//
// It owns the console and JSON handlers, maps configured levels and outputs
// onto them, and exposes context helpers so pipeline code can tag log lines
// with the scan run, stage and file path. A no-op logger is provided for tests
// and wiring code that cannot fail.
package logging
