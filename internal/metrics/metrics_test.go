package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.RowIngested("passed")
	r.RowIngested("passed")
	r.RowIngested("failed")
	r.ConsistencyError()
	r.TableDropped()
	r.Document("written")
	r.Document("unchanged")
	r.Document("unchanged")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rows.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.consistency))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tablesDropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.documents.WithLabelValues("unchanged")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RowIngested("passed")
		r.ConsistencyError()
		r.TableDropped()
		r.Document("written")
	})
}

func TestRecorder_WriteFile(t *testing.T) {
	r := New()
	r.RowIngested("error")
	path := filepath.Join(t.TempDir(), "tabledoc.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tabledoc_rows_ingested_total{verdict="error"} 1`)
}
