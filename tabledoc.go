// Package tabledoc generates documentation from table-driven test results.
//
// An Engine ingests one record per executed table row, rebuilds each table
// with its input and expectation columns, and writes one Markdown or
// AsciiDoc document per test suite:
//
//	eng, err := tabledoc.New(cfg)
//	...
//	_ = eng.Ingest(row) // from any number of goroutines
//	res, err := eng.Run(ctx)
package tabledoc

import (
	"context"
	"errors"
	"sync"

	"github.com/chainguard-dev/clog"

	"github.com/dkoosis/tabledoc/internal/config"
	"github.com/dkoosis/tabledoc/internal/metrics"
	"github.com/dkoosis/tabledoc/pkg/aggregate"
	"github.com/dkoosis/tabledoc/pkg/column"
	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/output"
	"github.com/dkoosis/tabledoc/pkg/record"
	"github.com/dkoosis/tabledoc/pkg/render"
)

// Engine runs one generation: ingest, finalize, render, write.
type Engine struct {
	cfg      config.Config
	agg      *aggregate.Aggregator
	renderer render.Renderer
	writer   *output.Writer
	metrics  *metrics.Recorder

	mu        sync.Mutex
	rejected  int
	malformed int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records run counters on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// New validates cfg, prepares the output directory and returns an engine.
// Configuration problems, an unusable output directory included, are
// returned as *config.Error before any row is accepted.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := column.New(cfg.ExpectationPattern)
	if err != nil {
		return nil, &config.Error{Field: "expectationPattern", Value: cfg.ExpectationPattern, Err: errors.Unwrap(err)}
	}
	e := &Engine{cfg: cfg}
	for _, o := range opts {
		o(e)
	}
	r, err := render.New(cfg.RenderFormat(), render.Options{Align: cfg.Align, TemplateDir: cfg.TemplateDir})
	if err != nil {
		return nil, &config.Error{Field: "templateDir", Value: cfg.TemplateDir, Err: err}
	}
	e.renderer = r
	w, err := output.New(cfg.OutputDir, output.WithMetrics(e.metrics))
	if err != nil {
		return nil, &config.Error{Field: "outputDir", Value: cfg.OutputDir, Err: err}
	}
	e.writer = w
	e.agg = aggregate.New(classifier,
		aggregate.WithScenarioColumn(cfg.ScenarioColumn),
		aggregate.WithMetrics(e.metrics),
	)
	return e, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Renderer returns the renderer selected by the configured format.
func (e *Engine) Renderer() render.Renderer { return e.renderer }

// Ingest adds one row record. Safe for concurrent use. A returned
// *aggregate.ConsistencyError reflects the rows seen so far; the run result
// reports what holds after finalize.
func (e *Engine) Ingest(r record.Row) error {
	return e.agg.Ingest(r)
}

// Declare registers a table and its metadata ahead of its rows.
func (e *Engine) Declare(ref aggregate.TableRef) error {
	return e.agg.Declare(ref)
}

// Finalize freezes the document tree. Later calls return the same tree.
func (e *Engine) Finalize(ctx context.Context) *doctree.Tree {
	return e.agg.Finalize(ctx)
}

// Render finalizes if needed and renders the tree into documents.
func (e *Engine) Render(ctx context.Context) ([]render.Document, error) {
	tree := e.Finalize(ctx)
	return render.Documents(ctx, e.renderer, tree, render.LayoutOptions{
		Layout:     e.cfg.RenderLayout(),
		Index:      e.cfg.Index,
		IndexTitle: e.cfg.IndexTitle,
		IndexDepth: e.cfg.RenderIndexDepth(),
	})
}

// Result summarizes a run.
type Result struct {
	Tree              *doctree.Tree
	Stats             doctree.Stats
	Documents         []output.Result
	Written           int
	Unchanged         int
	TablesDropped     int
	ConsistencyErrors []*aggregate.ConsistencyError
	// Rejected counts rows refused as invalid; Malformed counts spool
	// documents that could not be decoded.
	Rejected  int
	Malformed int
}

// Failed reports whether any row failed or any table is broken.
func (r *Result) Failed() bool {
	return r.Stats.Status() == "fail"
}

// Run reads the configured input directory when one is set, then
// finalizes, renders and writes every document. Write failures abort the
// run; failing rows do not.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	log := clog.FromContext(ctx)
	if e.cfg.InputDir != "" {
		if err := e.IngestDir(ctx, e.cfg.InputDir); err != nil {
			return nil, err
		}
	}

	docs, err := e.Render(ctx)
	if err != nil {
		return nil, err
	}
	written, err := e.writer.WriteAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	tree := e.Finalize(ctx)
	res := &Result{
		Tree:              tree,
		Stats:             doctree.ComputeStats(tree),
		Documents:         written,
		TablesDropped:     e.agg.Dropped(),
		ConsistencyErrors: consistencyErrors(tree),
	}
	for _, d := range written {
		if d.Outcome == output.Written {
			res.Written++
		} else {
			res.Unchanged++
		}
	}
	e.mu.Lock()
	res.Rejected, res.Malformed = e.rejected, e.malformed
	e.mu.Unlock()

	log.Infof("wrote %d documents to %s (%d unchanged)", res.Written, e.writer.Dir(), res.Unchanged)
	return res, nil
}

// consistencyErrors collects the table problems left in the finalized
// tree, in tree order.
func consistencyErrors(tree *doctree.Tree) []*aggregate.ConsistencyError {
	var out []*aggregate.ConsistencyError
	for _, s := range tree.Suites {
		for _, sc := range s.Scenarios {
			for _, t := range sc.Tables {
				var ce *aggregate.ConsistencyError
				if errors.As(t.Problem, &ce) {
					out = append(out, ce)
				}
			}
		}
	}
	return out
}
