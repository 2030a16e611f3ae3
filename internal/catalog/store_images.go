package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const imageColumns = "path, file_name, file_size_bytes, width, height, format, created_at, date_source, scanned_at"

type imageRow struct {
	Path          string `db:"path"`
	FileName      string `db:"file_name"`
	FileSizeBytes int64  `db:"file_size_bytes"`
	Width         int    `db:"width"`
	Height        int    `db:"height"`
	Format        string `db:"format"`
	CreatedAt     string `db:"created_at"`
	DateSource    string `db:"date_source"`
	ScannedAt     string `db:"scanned_at"`
}

func (r imageRow) record() Record {
	return Record{
		Path:          r.Path,
		FileName:      r.FileName,
		FileSizeBytes: r.FileSizeBytes,
		Width:         r.Width,
		Height:        r.Height,
		Format:        Format(r.Format),
		CreatedAt:     parseTime(r.CreatedAt),
		DateSource:    DateSource(r.DateSource),
		ScannedAt:     parseTime(r.ScannedAt),
	}
}

// Upsert inserts rec or overwrites the row that shares its path. The path is
// stored byte for byte; only lookup_path is normalised. The write is a single
// statement, so it is atomic with respect to readers.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	scannedAt := rec.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}
	err := s.execWithRetry(
		ctx,
		`INSERT INTO images (`+imageColumns+`, lookup_path)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             file_name = excluded.file_name,
             file_size_bytes = excluded.file_size_bytes,
             width = excluded.width,
             height = excluded.height,
             format = excluded.format,
             created_at = excluded.created_at,
             date_source = excluded.date_source,
             scanned_at = excluded.scanned_at,
             lookup_path = excluded.lookup_path`,
		rec.Path,
		rec.FileName,
		rec.FileSizeBytes,
		rec.Width,
		rec.Height,
		string(rec.Format),
		formatTime(rec.CreatedAt),
		string(rec.DateSource),
		formatTime(scannedAt),
		lookupPath(rec.Path),
	)
	if err != nil {
		return Wrap(ErrStorage, "upsert image", rec.Path, err)
	}
	return nil
}

// Get returns the record stored for path, or nil when no row exists. An
// exact match wins; otherwise the first row (by path) whose NFC form equals
// the NFC form of path is returned.
func (s *Store) Get(ctx context.Context, path string) (*Record, error) {
	ctx = ensureContext(ctx)
	rec, err := s.getWhere(ctx, `path = ?`, path)
	if err != nil || rec != nil {
		return rec, err
	}
	return s.getWhere(ctx, `lookup_path = ? ORDER BY path LIMIT 1`, lookupPath(path))
}

func (s *Store) getWhere(ctx context.Context, where, arg string) (*Record, error) {
	var row imageRow
	err := s.db.GetContext(ctx, &row, `SELECT `+imageColumns+` FROM images WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Wrap(ErrStorage, "get image", arg, err)
	}
	rec := row.record()
	return &rec, nil
}

func lookupPath(path string) string {
	return norm.NFC.String(path)
}

// ListOptions filters and pages List results. A zero Limit returns every row.
// PathPrefix matches either the stored path or its NFC form.
type ListOptions struct {
	Format     Format
	PathPrefix string
	Limit      int
	Offset     int
}

// List returns records ordered by path.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)
	if opts.Format != "" {
		clauses = append(clauses, "format = ?")
		args = append(args, string(opts.Format))
	}
	if prefix := strings.TrimSpace(opts.PathPrefix); prefix != "" {
		clauses = append(clauses, "(instr(path, ?) = 1 OR instr(lookup_path, ?) = 1)")
		args = append(args, prefix, lookupPath(prefix))
	}

	query := `SELECT ` + imageColumns + ` FROM images`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY path"

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []imageRow
	if err := s.db.SelectContext(ensureContext(ctx), &rows, query, args...); err != nil {
		return nil, Wrap(ErrStorage, "list images", "", err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// Count returns the number of cataloged images.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ensureContext(ctx), &count, "SELECT COUNT(1) FROM images"); err != nil {
		return 0, Wrap(ErrStorage, "count images", "", err)
	}
	return count, nil
}

// Stats aggregates row counts and total bytes per format.
func (s *Store) Stats(ctx context.Context) ([]FormatStat, error) {
	var rows []struct {
		Format     string `db:"format"`
		Count      int64  `db:"count"`
		TotalBytes int64  `db:"total_bytes"`
	}
	err := s.db.SelectContext(
		ensureContext(ctx),
		&rows,
		`SELECT format, COUNT(1) AS count, COALESCE(SUM(file_size_bytes), 0) AS total_bytes
         FROM images GROUP BY format ORDER BY format`,
	)
	if err != nil {
		return nil, Wrap(ErrStorage, "image stats", "", err)
	}
	stats := make([]FormatStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, FormatStat{Format: Format(row.Format), Count: row.Count, TotalBytes: row.TotalBytes})
	}
	return stats, nil
}

// storedTimeLayout is fixed width so text ordering matches time ordering.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
