// Package metrics counts what a generation run did, on a private
// Prometheus registry that the CLI can dump in textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the run counters. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	rows          *prometheus.CounterVec
	consistency   prometheus.Counter
	tablesDropped prometheus.Counter
	documents     *prometheus.CounterVec
}

// New registers the counters on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabledoc",
			Name:      "rows_ingested_total",
			Help:      "Row records ingested, by verdict.",
		}, []string{"verdict"}),
		consistency: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabledoc",
			Name:      "consistency_errors_total",
			Help:      "Rows whose column set disagreed with their table.",
		}),
		tablesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabledoc",
			Name:      "tables_dropped_total",
			Help:      "Tables dropped at finalize because no rows were executed.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabledoc",
			Name:      "documents_total",
			Help:      "Documents handled by the output writer, by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(r.rows, r.consistency, r.tablesDropped, r.documents)
	return r
}

// RowIngested counts one row with the given verdict.
func (r *Recorder) RowIngested(verdict string) {
	if r == nil {
		return
	}
	r.rows.WithLabelValues(verdict).Inc()
}

// ConsistencyError counts one inconsistent row.
func (r *Recorder) ConsistencyError() {
	if r == nil {
		return
	}
	r.consistency.Inc()
}

// TableDropped counts one empty table removed at finalize.
func (r *Recorder) TableDropped() {
	if r == nil {
		return
	}
	r.tablesDropped.Inc()
}

// Document counts one document with outcome "written" or "unchanged".
func (r *Recorder) Document(outcome string) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(outcome).Inc()
}

// Gatherer exposes the registry, for tests and custom exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile dumps the counters in the node exporter textfile format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
