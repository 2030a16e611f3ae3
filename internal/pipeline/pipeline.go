package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"imgcat/internal/catalog"
	"imgcat/internal/logging"
)

// Options configures a Pipeline.
type Options struct {
	// Workers is the number of concurrent extractors. Zero or less selects
	// runtime.NumCPU().
	Workers int
	Logger  *slog.Logger
	// OnResult, when set, observes every result after it has been persisted.
	// It runs on the writer goroutine and must not block.
	OnResult func(Result)
	Now      func() time.Time
}

// Pipeline wires a walker, an extractor and a sink.
type Pipeline struct {
	walk      WalkFunc
	extractor Extractor
	sink      Sink
	workers   int
	logger    *slog.Logger
	onResult  func(Result)
	now       func() time.Time
}

// New constructs a Pipeline.
func New(walk WalkFunc, extractor Extractor, sink Sink, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		walk:      walk,
		extractor: extractor,
		sink:      sink,
		workers:   workers,
		logger:    logging.NewComponentLogger(opts.Logger, "pipeline"),
		onResult:  opts.OnResult,
		now:       now,
	}
}

// Run scans root once. A root error is returned as is with an empty count
// summary. Otherwise Run returns the summary of every file it handled, plus
// ctx.Err() when the run was cut short.
func (p *Pipeline) Run(ctx context.Context, root string) (Summary, error) {
	if p.walk == nil || p.extractor == nil || p.sink == nil {
		return Summary{}, errors.New("pipeline: walk, extractor and sink are required")
	}

	summary := Summary{
		RunID:     uuid.NewString(),
		Root:      root,
		StartedAt: p.now(),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, p.logger)

	seq, err := p.walk(root)
	if err != nil {
		summary.FinishedAt = p.now()
		logging.ErrorWithContext(logger, "scan root unusable", "scan_root_failed",
			logging.String(logging.FieldPath, root),
			logging.String(logging.FieldErrorKind, catalog.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the root exists and is a readable directory"),
		)
		return summary, err
	}

	logger.Info("scan started",
		logging.String(logging.FieldPath, root),
		logging.Int("workers", p.workers),
	)

	paths := make(chan string)
	results := make(chan Result, p.workers)

	// Work already handed to a worker runs to completion after cancellation.
	workCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				results <- p.extract(workCtx, path)
			}
		}()
	}

	// Set only when a path was left undispatched; a cancel that lands after
	// the last path does not make the run partial.
	var stoppedEarly atomic.Bool
	go func() {
		defer close(paths)
		for path := range seq {
			if ctx.Err() != nil {
				stoppedEarly.Store(true)
				return
			}
			select {
			case <-ctx.Done():
				stoppedEarly.Store(true)
				return
			case paths <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.OK() {
			if err := p.sink.Upsert(workCtx, res.Record); err != nil {
				res.Failure = &Failure{Path: res.Path, Stage: StagePersist, Kind: catalog.Kind(err), Err: err}
			}
		}
		summary.add(res)
		p.report(logger, res)
		if p.onResult != nil {
			p.onResult(res)
		}
	}

	summary.FinishedAt = p.now()
	summary.Canceled = stoppedEarly.Load()

	logger.Info("scan finished",
		logging.Int("processed", summary.Processed),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Bool("canceled", summary.Canceled),
		logging.Duration("duration", summary.Duration()),
	)

	if summary.Canceled {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (p *Pipeline) extract(ctx context.Context, path string) Result {
	rec, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return Result{
			Path:    path,
			Failure: &Failure{Path: path, Stage: StageExtract, Kind: catalog.Kind(err), Err: err},
		}
	}
	return Result{Path: path, Record: rec}
}

func (p *Pipeline) report(logger *slog.Logger, res Result) {
	if res.OK() {
		logger.Debug("image cataloged",
			logging.String(logging.FieldPath, res.Record.Path),
			logging.String("format", string(res.Record.Format)),
			logging.Int("width", res.Record.Width),
			logging.Int("height", res.Record.Height),
			logging.String("date_source", string(res.Record.DateSource)),
		)
		return
	}
	f := res.Failure
	logging.WarnWithContext(logger, "file not cataloged", "file_failed",
		logging.String(logging.FieldPath, f.Path),
		logging.String(logging.FieldStage, string(f.Stage)),
		logging.String(logging.FieldErrorKind, f.Kind),
		logging.Error(f.Err),
		logging.String(logging.FieldErrorHint, hintFor(f.Kind)),
	)
}

func hintFor(kind string) string {
	switch kind {
	case catalog.KindIO:
		return "check that the file still exists and is readable"
	case catalog.KindDecode:
		return "file is truncated or corrupt; re-export or remove it"
	case catalog.KindUnsupportedFormat:
		return "content is not a supported image format despite its extension"
	case catalog.KindStorage:
		return "check free disk space and catalog file permissions"
	case catalog.KindInvalidRecord:
		return "extractor produced an incomplete record; rerun with debug logging"
	default:
		return "rerun with debug logging for details"
	}
}
