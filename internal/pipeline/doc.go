// Package pipeline runs one catalog scan: walk the root, extract metadata for
// each candidate file on a worker pool, and upsert the results.
//
// Extraction is concurrent; persistence is not. Every Sink.Upsert call is made
// from the goroutine that called Run, so the store has a single writer. Each
// file ends as a success or a Failure in the run Summary, and no per-file
// error stops the run. Only an unreadable root is fatal.
//
// Cancelling the context stops dispatch. Files already handed to a worker are
// still extracted and persisted, so an interrupted scan leaves every record it
// reported as succeeded in the store.
package pipeline
