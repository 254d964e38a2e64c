package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/tabledoc/internal/metrics"
	"github.com/dkoosis/tabledoc/pkg/render"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "tables")
	w, err := New(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, dir, w.Dir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "writability check file must be removed")
}

func TestNew_UnusableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := New(filepath.Join(file, "docs"))
	var dirErr *DirError
	require.True(t, errors.As(err, &dirErr))
	assert.Equal(t, filepath.Join(file, "docs"), dirErr.Dir)

	_, err = New("  ")
	assert.True(t, errors.As(err, &dirErr))
}

func TestWrite_RerunLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	rec := metrics.New()
	w, err := New(t.TempDir(), WithMetrics(rec))
	require.NoError(t, err)

	doc := render.Document{Path: "math-test.md", Content: "# Math Test\n"}
	o, err := w.Write(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, Written, o)

	path := filepath.Join(w.Dir(), "math-test.md")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	o, err = w.Write(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, o)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "mtime changed on identical rewrite")

	doc.Content = "# Math Test\n\nchanged\n"
	o, err = w.Write(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, Written, o)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, string(got))

	want := `
# HELP tabledoc_documents_total Documents handled by the output writer, by outcome.
# TYPE tabledoc_documents_total counter
tabledoc_documents_total{outcome="unchanged"} 1
tabledoc_documents_total{outcome="written"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Gatherer(), strings.NewReader(want), "tabledoc_documents_total"))
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	results, err := w.WriteAll(context.Background(), []render.Document{
		{Path: "a.md", Content: "a\n"},
		{Path: "nested/b.md", Content: "b\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Result{{"a.md", Written}, {"nested/b.md", Written}}, results)

	var names []string
	require.NoError(t, filepath.WalkDir(w.Dir(), func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			rel, _ := filepath.Rel(w.Dir(), p)
			names = append(names, filepath.ToSlash(rel))
		}
		return err
	}))
	assert.Equal(t, []string{"a.md", "nested/b.md"}, names)
}

func TestWrite_RejectsEscapingPaths(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	for _, p := range []string{"../x.md", "/etc/x.md", "."} {
		_, err := w.Write(context.Background(), render.Document{Path: p})
		assert.Error(t, err, p)
	}
}

func TestWrite_CanceledContext(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Write(ctx, render.Document{Path: "a.md"})
	assert.ErrorIs(t, err, context.Canceled)
}
