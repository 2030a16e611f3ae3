package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"imgcat/internal/catalog"
	"imgcat/internal/pipeline"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type recordView struct {
	Path          string    `json:"path"`
	FileName      string    `json:"file_name"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Format        string    `json:"format"`
	CreatedAt     time.Time `json:"created_at"`
	DateSource    string    `json:"date_source"`
	ScannedAt     time.Time `json:"scanned_at"`
}

func newRecordView(rec catalog.Record) recordView {
	return recordView{
		Path:          rec.Path,
		FileName:      rec.FileName,
		FileSizeBytes: rec.FileSizeBytes,
		Width:         rec.Width,
		Height:        rec.Height,
		Format:        string(rec.Format),
		CreatedAt:     rec.CreatedAt,
		DateSource:    string(rec.DateSource),
		ScannedAt:     rec.ScannedAt,
	}
}

type failureView struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type summaryView struct {
	RunID      string        `json:"run_id"`
	Root       string        `json:"root"`
	Processed  int           `json:"processed"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Canceled   bool          `json:"canceled"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	DurationMS int64         `json:"duration_ms"`
	Failures   []failureView `json:"failures"`
}

func newSummaryView(s pipeline.Summary) summaryView {
	view := summaryView{
		RunID:      s.RunID,
		Root:       s.Root,
		Processed:  s.Processed,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Canceled:   s.Canceled,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		DurationMS: s.Duration().Milliseconds(),
		Failures:   make([]failureView, 0, len(s.Failures)),
	}
	for _, f := range s.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		view.Failures = append(view.Failures, failureView{
			Path:  f.Path,
			Stage: string(f.Stage),
			Kind:  f.Kind,
			Error: msg,
		})
	}
	return view
}

type runView struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Processed  int       `json:"processed"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Canceled   bool      `json:"canceled"`
}

func newRunView(r catalog.RunRecord) runView {
	return runView(r)
}

type formatStatView struct {
	Format     string `json:"format"`
	Count      int64  `json:"count"`
	TotalBytes int64  `json:"total_bytes"`
}
