package pipeline

import (
	"context"
	"fmt"
	"iter"
	"time"

	"imgcat/internal/catalog"
)

// WalkFunc enumerates candidate files under root. An error means the root
// itself is unusable.
type WalkFunc func(root string) (iter.Seq[string], error)

// Extractor turns a path into a catalog record.
type Extractor interface {
	Extract(ctx context.Context, path string) (catalog.Record, error)
}

// Sink persists records. It is only ever called from one goroutine.
type Sink interface {
	Upsert(ctx context.Context, rec catalog.Record) error
}

// Stage names the step a file failed in.
type Stage string

const (
	StageExtract Stage = "extract"
	StagePersist Stage = "persist"
)

// Result is the outcome for one file: a record, or a failure.
type Result struct {
	Path    string
	Record  catalog.Record
	Failure *Failure
}

// OK reports whether the file was cataloged.
func (r Result) OK() bool { return r.Failure == nil }

// Failure describes why a file is absent from the catalog.
type Failure struct {
	Path  string
	Stage Stage
	Kind  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", f.Stage, f.Kind, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Summary is the externally observable result of a run.
// Processed always equals Succeeded + Failed.
type Summary struct {
	RunID      string
	Root       string
	Processed  int
	Succeeded  int
	Failed     int
	Failures   []Failure
	StartedAt  time.Time
	FinishedAt time.Time
	Canceled   bool
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunRecord converts the summary into its scan_runs row.
func (s Summary) RunRecord() catalog.RunRecord {
	return catalog.RunRecord{
		ID:         s.RunID,
		Root:       s.Root,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Processed:  s.Processed,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Canceled:   s.Canceled,
	}
}

func (s *Summary) add(res Result) {
	s.Processed++
	if res.OK() {
		s.Succeeded++
		return
	}
	s.Failed++
	s.Failures = append(s.Failures, *res.Failure)
}
