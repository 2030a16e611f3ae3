package walker

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"imgcat/internal/catalog"
)

// DefaultExtensions is the supported extension set used when Options leaves
// Extensions empty.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}

// Options tunes traversal.
type Options struct {
	// Extensions lists lower-case extensions without the leading dot.
	Extensions []string
	// SkipHidden skips entries whose name starts with a dot.
	SkipHidden bool
	// OnSkip, when set, is told about entries skipped because of an error.
	OnSkip func(path string, err error)
}

// Walk checks that root is a readable directory and returns a sequence of the
// regular files below it whose extension is supported. Each range over the
// sequence walks the tree again.
func Walk(root string, opts Options) (iter.Seq[string], error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, catalog.Wrap(catalog.ErrIO, "resolve scan root", root, err)
	}
	// The root itself may be a symlink; entries below it are never followed.
	if info, err := os.Lstat(abs); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
	}
	if err := checkRoot(abs); err != nil {
		return nil, err
	}

	exts := extensionSet(opts.Extensions)
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				opts.skip(path, err)
				if path == abs {
					return filepath.SkipAll
				}
				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if path != abs && opts.SkipHidden && strings.HasPrefix(entry.Name(), ".") {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() || !entry.Type().IsRegular() {
				return nil
			}
			if !supported(path, exts) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}, nil
}

// Supported reports whether path carries one of exts (case-insensitive). An
// empty exts selects DefaultExtensions.
func Supported(path string, exts []string) bool {
	return supported(path, extensionSet(exts))
}

func supported(path string, exts map[string]struct{}) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	_, ok := exts[ext]
	return ok
}

func extensionSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return catalog.Wrap(catalog.ErrIO, "stat scan root", root, err)
	}
	if !info.IsDir() {
		return catalog.Wrap(catalog.ErrIO, "open scan root", root, errors.New("not a directory"))
	}
	dir, err := os.Open(root)
	if err != nil {
		return catalog.Wrap(catalog.ErrIO, "open scan root", root, err)
	}
	defer dir.Close()
	if _, err := dir.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return catalog.Wrap(catalog.ErrIO, "read scan root", root, err)
	}
	return nil
}

func (o Options) skip(path string, err error) {
	if o.OnSkip != nil {
		o.OnSkip(path, fmt.Errorf("walk %s: %w", path, err))
	}
}
