package catalog

import (
	"context"
	"errors"
	"strings"
)

// RecordRun stores the outcome of a completed scan.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return Wrap(ErrStorage, "record scan run", run.Root, errors.New("run id is empty"))
	}
	err := s.execWithRetry(
		ctx,
		`INSERT INTO scan_runs (id, root, started_at, finished_at, processed, succeeded, failed, canceled)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             finished_at = excluded.finished_at,
             processed = excluded.processed,
             succeeded = excluded.succeeded,
             failed = excluded.failed,
             canceled = excluded.canceled`,
		run.ID,
		run.Root,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Processed,
		run.Succeeded,
		run.Failed,
		boolToInt(run.Canceled),
	)
	if err != nil {
		return Wrap(ErrStorage, "record scan run", run.Root, err)
	}
	return nil
}

// Runs returns the most recent scans first. A zero limit returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []struct {
		ID         string `db:"id"`
		Root       string `db:"root"`
		StartedAt  string `db:"started_at"`
		FinishedAt string `db:"finished_at"`
		Processed  int    `db:"processed"`
		Succeeded  int    `db:"succeeded"`
		Failed     int    `db:"failed"`
		Canceled   int    `db:"canceled"`
	}
	err := s.db.SelectContext(
		ensureContext(ctx),
		&rows,
		`SELECT id, root, started_at, finished_at, processed, succeeded, failed, canceled
         FROM scan_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, Wrap(ErrStorage, "list scan runs", "", err)
	}
	runs := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, RunRecord{
			ID:         row.ID,
			Root:       row.Root,
			StartedAt:  parseTime(row.StartedAt),
			FinishedAt: parseTime(row.FinishedAt),
			Processed:  row.Processed,
			Succeeded:  row.Succeeded,
			Failed:     row.Failed,
			Canceled:   row.Canceled != 0,
		})
	}
	return runs, nil
}
