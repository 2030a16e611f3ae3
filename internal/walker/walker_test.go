package walker_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"imgcat/internal/catalog"
	"imgcat/internal/testsupport"
	"imgcat/internal/walker"
)

func collect(t *testing.T, root string, opts walker.Options) []string {
	t.Helper()
	seq, err := walker.Walk(root, opts)
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	var out []string
	for path := range seq {
		out = append(out, path)
	}
	slices.Sort(out)
	return out
}

func TestWalkFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(root, "a.png"), 2, 2)
	testsupport.WriteJPEG(t, filepath.Join(root, "nested", "deeper", "B.JPG"), 2, 2)
	testsupport.WriteFile(t, filepath.Join(root, "c.WebP"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "notes.txt"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "noext"), 8)
	testsupport.WritePNG(t, filepath.Join(root, "image.png.bak"), 2, 2)
	if err := os.MkdirAll(filepath.Join(root, "folder.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got := collect(t, root, walker.Options{})
	want := []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "c.WebP"),
		filepath.Join(root, "nested", "deeper", "B.JPG"),
	}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected paths:\n got  %v\n want %v", got, want)
	}
}

func TestWalkCustomExtensions(t *testing.T) {
	root := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(root, "a.png"), 2, 2)
	testsupport.WriteGIF(t, filepath.Join(root, "b.gif"), 2, 2)

	got := collect(t, root, walker.Options{Extensions: []string{".GIF"}})
	if len(got) != 1 || filepath.Base(got[0]) != "b.gif" {
		t.Fatalf("expected only b.gif, got %v", got)
	}
}

func TestWalkIsRestartable(t *testing.T) {
	root := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(root, "a.png"), 2, 2)

	seq, err := walker.Walk(root, walker.Options{})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	first := 0
	for range seq {
		first++
	}
	testsupport.WritePNG(t, filepath.Join(root, "b.png"), 2, 2)
	second := 0
	for range seq {
		second++
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected fresh walk per range, got first=%d second=%d", first, second)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		testsupport.WritePNG(t, filepath.Join(root, name), 2, 2)
	}
	seq, err := walker.Walk(root, walker.Options{})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected a single yielded path, got %d", count)
	}
}

func TestWalkSkipsSymlinksAndHidden(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(outside, "elsewhere.png"), 2, 2)
	testsupport.WritePNG(t, filepath.Join(root, "real.png"), 2, 2)
	testsupport.WritePNG(t, filepath.Join(root, ".cache", "hidden.png"), 2, 2)
	testsupport.WritePNG(t, filepath.Join(root, ".dot.png"), 2, 2)
	if err := os.Symlink(filepath.Join(root, "real.png"), filepath.Join(root, "link.png")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "linked-dir")); err != nil {
		t.Fatalf("symlink dir: %v", err)
	}

	all := collect(t, root, walker.Options{})
	if len(all) != 3 {
		t.Fatalf("expected real and hidden files without symlinks, got %v", all)
	}
	for _, path := range all {
		if filepath.Base(path) == "link.png" || filepath.Base(path) == "elsewhere.png" {
			t.Fatalf("symlink followed: %v", all)
		}
	}

	visible := collect(t, root, walker.Options{SkipHidden: true})
	if len(visible) != 1 || filepath.Base(visible[0]) != "real.png" {
		t.Fatalf("expected only real.png with SkipHidden, got %v", visible)
	}
}

func TestWalkRootErrors(t *testing.T) {
	base := t.TempDir()
	missing := filepath.Join(base, "missing")
	if _, err := walker.Walk(missing, walker.Options{}); !errors.Is(err, catalog.ErrIO) {
		t.Fatalf("expected ErrIO for missing root, got %v", err)
	}

	file := filepath.Join(base, "file.png")
	testsupport.WritePNG(t, file, 2, 2)
	if _, err := walker.Walk(file, walker.Options{}); !errors.Is(err, catalog.ErrIO) {
		t.Fatalf("expected ErrIO for file root, got %v", err)
	}
}

func TestWalkSkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(root, "ok.png"), 2, 2)
	locked := filepath.Join(root, "locked")
	testsupport.WritePNG(t, filepath.Join(locked, "hidden.png"), 2, 2)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var skipped []string
	got := collect(t, root, walker.Options{OnSkip: func(path string, err error) {
		skipped = append(skipped, path)
	}})
	if len(got) != 1 || filepath.Base(got[0]) != "ok.png" {
		t.Fatalf("expected walk to continue past unreadable dir, got %v", got)
	}
	if len(skipped) == 0 {
		t.Fatal("expected OnSkip to report the unreadable directory")
	}
}

func TestSupported(t *testing.T) {
	cases := map[string]bool{
		"a.jpg":      true,
		"a.JPEG":     true,
		"dir/b.webp": true,
		"c.tiff":     false,
		"d":          false,
		"e.png.txt":  false,
	}
	for path, want := range cases {
		if got := walker.Supported(path, nil); got != want {
			t.Fatalf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
	if walker.Supported("a.jpg", []string{"png"}) {
		t.Fatal("expected custom set to exclude jpg")
	}
}
