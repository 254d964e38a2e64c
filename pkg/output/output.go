// Package output persists rendered documents. Writes are atomic and skip
// files whose bytes already match, so reruns leave unchanged files alone.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/dkoosis/tabledoc/internal/metrics"
	"github.com/dkoosis/tabledoc/pkg/render"
)

// Outcome is what Write did with a document.
type Outcome string

const (
	Written   Outcome = "written"
	Unchanged Outcome = "unchanged"
)

// DirError reports an output directory that cannot be created or written.
type DirError struct {
	Dir string
	Err error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("output directory %s is not usable: %v", e.Dir, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }

// Writer writes documents below one directory. Not safe for concurrent use.
type Writer struct {
	dir     string
	metrics *metrics.Recorder
}

// Option configures a Writer.
type Option func(*Writer)

// WithMetrics counts write outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(w *Writer) { w.metrics = r }
}

// New creates dir when missing and checks that files can be created in it.
func New(dir string, opts ...Option) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &DirError{Dir: dir, Err: errors.New("no directory configured")}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &DirError{Dir: dir, Err: err}
	}
	check, err := os.CreateTemp(dir, ".tabledoc-check-*")
	if err != nil {
		return nil, &DirError{Dir: dir, Err: err}
	}
	name := check.Name()
	_ = check.Close()
	_ = os.Remove(name)

	w := &Writer{dir: dir}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns the absolute location of a document path.
func (w *Writer) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document path %q escapes the output directory", rel)
	}
	return filepath.Join(w.dir, clean), nil
}

// Write stores doc. Existing files with identical content are not touched.
func (w *Writer) Write(ctx context.Context, doc render.Document) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := w.Path(doc.Path)
	if err != nil {
		return "", err
	}
	content := []byte(doc.Content)

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, content):
		clog.FromContext(ctx).Debugf("unchanged %s", path)
		w.metrics.Document(string(Unchanged))
		return Unchanged, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if err := writeAtomic(path, content); err != nil {
		return "", err
	}
	clog.FromContext(ctx).Debugf("wrote %s (%d bytes)", path, len(content))
	w.metrics.Document(string(Written))
	return Written, nil
}

// Result pairs a document path with its write outcome.
type Result struct {
	Path    string
	Outcome Outcome
}

// WriteAll writes docs in order and stops at the first failure.
func (w *Writer) WriteAll(ctx context.Context, docs []render.Document) ([]Result, error) {
	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		o, err := w.Write(ctx, d)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Path: d.Path, Outcome: o})
	}
	return results, nil
}

// writeAtomic writes to a temp file in the target directory, syncs it and
// renames it over path.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	tmpName = ""
	return nil
}
