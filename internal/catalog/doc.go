// Package catalog persists image metadata records in SQLite and defines the
// error taxonomy shared by the scan pipeline.
//
// The Store owns the database handle, applies embedded migrations on open,
// and exposes an idempotent Upsert keyed on file path alongside the read
// queries used by the CLI (Get, List, Stats, Runs). Every write is a single
// statement so readers never observe a partially written row; concurrent
// scans of the same catalog are prevented with an advisory lock file.
//
// Failures anywhere in the pipeline are tagged with one of the sentinel
// markers in errors.go so callers can classify them with errors.Is or Kind
// without parsing messages.
package catalog
