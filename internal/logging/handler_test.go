package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestTeeHandlerCollapsesNilAndSingle(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner); h != inner {
		t.Fatal("expected a single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsPerHandlerLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := TeeHandler(infoHandler, debugHandler)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to be enabled when any handler accepts the level")
	}

	logger := slog.New(h).With(slog.String("run_id", "r1")).WithGroup("file")
	logger.Debug("debug only", slog.String("path", "/a.png"))
	logger.Info("both")

	if bytes.Contains(infoBuf.Bytes(), []byte("debug only")) {
		t.Fatal("info handler received a debug record")
	}
	if !bytes.Contains(debugBuf.Bytes(), []byte("debug only")) {
		t.Fatal("debug handler missed the debug record")
	}
	for name, buf := range map[string]*bytes.Buffer{"info": &infoBuf, "debug": &debugBuf} {
		if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"r1"`)) {
			t.Fatalf("%s handler missing inherited attrs: %s", name, buf.String())
		}
	}
}

type failingHandler struct{ NoopHandler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTeeHandlerKeepsWritingPastAFailingHandler(t *testing.T) {
	var buf bytes.Buffer
	h := TeeHandler(failingHandler{}, slog.NewJSONHandler(&buf, nil))

	err := slog.New(h).Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0))
	if err == nil {
		t.Fatal("expected the failing handler's error to be reported")
	}
	if !bytes.Contains(buf.Bytes(), []byte("still written")) {
		t.Fatal("expected the healthy handler to receive the record")
	}
}

func TestJSONHandlerShapesKeys(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newJSONHandler(&buf, slog.LevelDebug, false)).Warn("shaped")
	for _, want := range []string{`"ts":"`, `"level":"warn"`, `"msg":"shaped"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in %s", want, buf.String())
		}
	}
	if bytes.Contains(buf.Bytes(), []byte(`"time"`)) {
		t.Fatalf("expected time key renamed, got %s", buf.String())
	}
}

func TestComposeSubject(t *testing.T) {
	cases := []struct {
		runID, stage, want string
	}{
		{"", "", ""},
		{"abc", "", "run abc"},
		{"", "persist", "persist"},
		{"0123456789", "extract", "run 01234567 (extract)"},
	}
	for _, tc := range cases {
		if got := composeSubject(tc.runID, tc.stage); got != tc.want {
			t.Fatalf("composeSubject(%q, %q) = %q, want %q", tc.runID, tc.stage, got, tc.want)
		}
	}
}
