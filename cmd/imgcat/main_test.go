package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"imgcat/internal/catalog"
	"imgcat/internal/config"
	"imgcat/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	root       string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("IMGCAT_ROOT", "")
	t.Setenv("IMGCAT_DATABASE", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, root: cfg.Paths.RootDir}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nroot_dir = %q\ndatabase = %q\nlog_dir = %q\n\n[scan]\nworkers = %d\nexif_timezone = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.RootDir,
		cfg.Paths.Database,
		cfg.Paths.LogDir,
		cfg.Scan.Workers,
		cfg.Scan.ExifTimezone,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestCLIScanListShowStats(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.root, "wide.png"), 100, 50)
	testsupport.WriteJPEG(t, filepath.Join(env.root, "album", "photo.jpg"), 8, 6)
	testsupport.WriteFile(t, filepath.Join(env.root, "notes.txt"), 32)

	out, _, err := runCLI(t, []string{"scan", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var summary summaryView
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode scan summary: %v\n%s", err, out)
	}
	if summary.Processed != 2 || summary.Succeeded != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	out, _, err = runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var records []recordView
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	out, _, err = runCLI(t, []string{"list", "--format", "png"}, env.configPath)
	if err != nil {
		t.Fatalf("list --format: %v", err)
	}
	requireContains(t, out, "wide.png")
	requireContains(t, out, "100x50")
	if strings.Contains(out, "photo.jpg") {
		t.Fatalf("format filter leaked jpeg rows:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"show", filepath.Join(env.root, "wide.png"), "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var rec recordView
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if rec.Width != 100 || rec.Height != 50 || rec.Format != string(catalog.FormatPNG) {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, _, err := runCLI(t, []string{"show", filepath.Join(env.root, "missing.png")}, env.configPath); err == nil {
		t.Fatal("expected show of uncataloged path to fail")
	}

	out, _, err = runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "JPEG")
	requireContains(t, out, "PNG")

	out, _, err = runCLI(t, []string{"runs", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID || runs[0].Succeeded != 2 {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestCLIScanReportsFailuresWithoutFailing(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.root, "ok.png"), 4, 4)
	testsupport.WriteFile(t, filepath.Join(env.root, "broken.jpg"), 128)

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan with per-file failures should succeed: %v", err)
	}
	requireContains(t, out, "Scan complete")
	requireContains(t, out, "broken.jpg")
	requireContains(t, out, catalog.KindUnsupportedFormat)

	out, _, err = runCLI(t, []string{"scan", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	var summary summaryView
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Failed != 1 || len(summary.Failures) != 1 || summary.Failures[0].Kind != catalog.KindUnsupportedFormat {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestCLIScanRootPolicy(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(testsupport.BaseDir(env.cfg), "not-yet")

	if _, _, err := runCLI(t, []string{"scan", "--no-create", missing}, env.configPath); err == nil {
		t.Fatal("expected scan of missing root with --no-create to fail")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatalf("--no-create must not create the root, stat err=%v", err)
	}

	out, _, err := runCLI(t, []string{"scan", "--json", missing}, env.configPath)
	if err != nil {
		t.Fatalf("scan creating root: %v", err)
	}
	if info, err := os.Stat(missing); err != nil || !info.IsDir() {
		t.Fatalf("expected root to be created, err=%v", err)
	}
	requireContains(t, out, `"processed": 0`)
}

func TestCLIScanRefusesWhileLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(filepath.Dir(env.cfg.Paths.Database), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	lock, err := catalog.AcquireLock(env.cfg.Paths.Database)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"scan"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another scan") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.Database)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[logging]\nformat = \"yaml\"\n"), 0o644); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, bad); err == nil {
		t.Fatal("expected validate to reject bad config")
	}
}

func TestRelativeToHandlesSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "target")
	if err := os.MkdirAll(filepath.Join(target, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	failed := filepath.Join(target, "sub", "bad.jpg")
	if got := relativeTo(link, failed); got != filepath.Join("sub", "bad.jpg") {
		t.Fatalf("expected path relative to resolved root, got %q", got)
	}
	if got := relativeTo(target, failed); got != filepath.Join("sub", "bad.jpg") {
		t.Fatalf("expected path relative to root, got %q", got)
	}
	outside := filepath.Join(base, "elsewhere.jpg")
	if got := relativeTo(link, outside); got != outside {
		t.Fatalf("expected path outside root unchanged, got %q", got)
	}
}

func TestCLIScanSymlinkedRootListsRelativeFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.root, "nested", "broken.png"), 64)
	link := filepath.Join(testsupport.BaseDir(env.cfg), "images-link")
	if err := os.Symlink(env.root, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	out, _, err := runCLI(t, []string{"scan", link}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, filepath.Join("nested", "broken.png"))
	if strings.Contains(out, filepath.Join(env.root, "nested", "broken.png")) {
		t.Fatalf("expected failure path relative to root:\n%s", out)
	}
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var shown config.Config
	if err := toml.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("config show output is not TOML: %v\n%s", err, out)
	}
	if shown.Paths.Database != env.cfg.Paths.Database || shown.Scan.Workers != env.cfg.Scan.Workers {
		t.Fatalf("unexpected effective config %+v", shown)
	}
	if shown.Logging.Level != "error" {
		t.Fatalf("expected file value for logging.level, got %q", shown.Logging.Level)
	}
}

func TestConfigValidateRejectsMissingRootWithoutCreate(t *testing.T) {
	env := setupCLITestEnv(t)
	body, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	patched := strings.Replace(string(body), "[scan]", "create_root = false\n\n[scan]", 1)
	if err := os.WriteFile(env.configPath, []byte(patched), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatalf("expected validate to fail for a missing root, got:\n%s", out)
	}
	requireContains(t, out, "(missing)")

	if err := os.MkdirAll(env.root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("validate with existing root: %v", err)
	}
	requireContains(t, out, "(exists)")
	requireContains(t, out, "Configuration valid")
}
