// Package aggregate merges row records arriving from concurrent test workers
// into a document tree. Lookups are guarded per suite, scenario and table so
// that ingests for different tables never wait on each other.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/chainguard-dev/clog"

	"github.com/dkoosis/tabledoc/internal/metrics"
	"github.com/dkoosis/tabledoc/pkg/column"
	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/naming"
	"github.com/dkoosis/tabledoc/pkg/record"
)

// Aggregator builds a document tree from row records.
type Aggregator struct {
	classifier     *column.Classifier
	scenarioColumn string
	metrics        *metrics.Recorder

	// phase is read-locked by every ingest and write-locked once by
	// Finalize, so finalize observes all completed ingests.
	phase     sync.RWMutex
	finalized atomic.Bool
	tree      *doctree.Tree
	dropped   int

	suites sync.Map // suite id -> *suiteNode
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithScenarioColumn marks the named column as the scenario column.
func WithScenarioColumn(name string) Option {
	return func(a *Aggregator) { a.scenarioColumn = name }
}

// WithMetrics records ingest counters on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Aggregator) { a.metrics = r }
}

// New returns an empty aggregator. A nil classifier treats every column as input.
func New(classifier *column.Classifier, opts ...Option) *Aggregator {
	a := &Aggregator{classifier: classifier}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TableRef declares a table before (or without) any rows, carrying its
// descriptive metadata.
type TableRef struct {
	Suite       string
	Scenario    string
	Table       int
	Title       string
	Description string
}

type meta struct {
	value string
	key   record.Key
	set   bool
}

// offer keeps the value from the lowest row identity, so the result does not
// depend on arrival order. Equal identities replace: last write wins.
func (m *meta) offer(v string, k record.Key) {
	if v == "" {
		return
	}
	if m.set && keyLess(m.key, k) {
		return
	}
	m.value, m.key, m.set = v, k, true
}

type suiteNode struct {
	id          string
	mu          sync.Mutex
	title       meta
	description meta
	scenarios   map[string]*scenarioNode
}

type scenarioNode struct {
	id          string
	mu          sync.Mutex
	title       meta
	description meta
	tables      map[int]*tableNode
}

type tableNode struct {
	key         TableKey
	mu          sync.Mutex
	title       meta
	description meta
	columns     []doctree.Column
	roles       map[string]column.Role
	rows        map[int]record.Row
}

// Ingest merges one row into the tree. A row whose column set disagrees with
// the table's first row is still stored, and the table is marked broken; the
// returned *ConsistencyError concerns that table only. Ingest after Finalize
// returns a *doctree.StateError.
func (a *Aggregator) Ingest(r record.Row) error {
	a.phase.RLock()
	defer a.phase.RUnlock()
	if a.finalized.Load() {
		return &doctree.StateError{Op: "ingest", Reason: "aggregator already finalized"}
	}
	if err := r.Validate(); err != nil {
		return err
	}
	r = r.Clone()
	k := r.Key()

	su := a.suite(k.Suite)
	su.mu.Lock()
	su.title.offer(r.SuiteTitle, k)
	su.description.offer(r.SuiteDescription, k)
	sc := su.scenario(k.Scenario)
	su.mu.Unlock()

	sc.mu.Lock()
	sc.title.offer(r.ScenarioTitle, k)
	sc.description.offer(r.ScenarioDescription, k)
	tb := sc.table(tableKeyOf(k))
	sc.mu.Unlock()

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.title.offer(r.TableTitle, k)
	tb.description.offer(r.TableDescription, k)
	if tb.columns == nil {
		tb.columns, tb.roles = a.classify(r)
	}
	tb.rows[k.Index] = r
	a.metrics.RowIngested(string(r.Verdict))

	if extra, missing := diffColumns(tb.roles, r); len(extra) > 0 || len(missing) > 0 {
		a.metrics.ConsistencyError()
		return &ConsistencyError{
			Table:     tb.key,
			Row:       k.Index,
			Reference: firstIndexExcept(tb.rows, k.Index),
			Extra:     extra,
			Missing:   missing,
		}
	}
	return nil
}

// Declare registers a table and its metadata. Declared tables that never
// receive a row are dropped at finalize with a warning.
func (a *Aggregator) Declare(ref TableRef) error {
	a.phase.RLock()
	defer a.phase.RUnlock()
	if a.finalized.Load() {
		return &doctree.StateError{Op: "declare", Reason: "aggregator already finalized"}
	}
	k := record.Key{Suite: ref.Suite, Scenario: ref.Scenario, Table: ref.Table, Index: -1}
	su := a.suite(ref.Suite)
	su.mu.Lock()
	sc := su.scenario(ref.Scenario)
	su.mu.Unlock()

	sc.mu.Lock()
	tb := sc.table(tableKeyOf(k))
	sc.mu.Unlock()

	tb.mu.Lock()
	tb.title.offer(ref.Title, k)
	tb.description.offer(ref.Description, k)
	tb.mu.Unlock()
	return nil
}

func (a *Aggregator) suite(id string) *suiteNode {
	if v, ok := a.suites.Load(id); ok {
		return v.(*suiteNode)
	}
	v, _ := a.suites.LoadOrStore(id, &suiteNode{id: id, scenarios: make(map[string]*scenarioNode)})
	return v.(*suiteNode)
}

// scenario must be called with su.mu held.
func (su *suiteNode) scenario(id string) *scenarioNode {
	sc, ok := su.scenarios[id]
	if !ok {
		sc = &scenarioNode{id: id, tables: make(map[int]*tableNode)}
		su.scenarios[id] = sc
	}
	return sc
}

// table must be called with sc.mu held.
func (sc *scenarioNode) table(key TableKey) *tableNode {
	tb, ok := sc.tables[key.Table]
	if !ok {
		tb = &tableNode{key: key, rows: make(map[int]record.Row)}
		sc.tables[key.Table] = tb
	}
	return tb
}

func (a *Aggregator) classify(r record.Row) ([]doctree.Column, map[string]column.Role) {
	cols := make([]doctree.Column, len(r.Cells))
	roles := make(map[string]column.Role, len(r.Cells))
	for i, c := range r.Cells {
		role := a.classifier.Classify(c.Column)
		cols[i] = doctree.Column{
			Name:     c.Column,
			Role:     role,
			Order:    i,
			Scenario: a.scenarioColumn != "" && c.Column == a.scenarioColumn,
		}
		roles[c.Column] = role
	}
	return cols, roles
}

// Finalize freezes the tree: suites and scenarios sorted by id, tables by
// index and rows by row index. Tables without rows are dropped with a
// warning. Calling Finalize again returns the same tree.
func (a *Aggregator) Finalize(ctx context.Context) *doctree.Tree {
	a.phase.Lock()
	defer a.phase.Unlock()
	if a.finalized.Load() {
		return a.tree
	}
	a.finalized.Store(true)
	log := clog.FromContext(ctx)

	var suites []*doctree.Suite
	a.suites.Range(func(_, v any) bool {
		su := v.(*suiteNode)
		out := &doctree.Suite{
			ID:          su.id,
			Title:       su.title.value,
			Description: su.description.value,
		}
		if out.Title == "" {
			out.Title = naming.Title(naming.SimpleName(su.id))
		}
		for _, sc := range su.scenarios {
			s := a.freezeScenario(ctx, sc)
			if len(s.Tables) == 0 {
				log.Warnf("dropping scenario %s/%s: no table produced any rows", su.id, sc.id)
				continue
			}
			out.Scenarios = append(out.Scenarios, s)
		}
		if len(out.Scenarios) == 0 {
			return true
		}
		sort.Slice(out.Scenarios, func(i, j int) bool { return out.Scenarios[i].ID < out.Scenarios[j].ID })
		suites = append(suites, out)
		return true
	})
	sort.Slice(suites, func(i, j int) bool { return suites[i].ID < suites[j].ID })

	a.tree = doctree.Freeze(suites)
	stats := doctree.ComputeStats(a.tree)
	log.Infof("finalized %d suites, %d tables, %d rows (%d failed, %d errors, %d broken tables)",
		stats.Suites, stats.Tables, stats.Rows, stats.Failed, stats.Errored, stats.Problems)
	return a.tree
}

// Dropped returns how many tables Finalize removed for having no rows.
func (a *Aggregator) Dropped() int {
	a.phase.RLock()
	defer a.phase.RUnlock()
	return a.dropped
}

func (a *Aggregator) freezeScenario(ctx context.Context, sc *scenarioNode) *doctree.Scenario {
	out := &doctree.Scenario{
		ID:          sc.id,
		Title:       sc.title.value,
		Description: sc.description.value,
	}
	if out.Title == "" {
		out.Title = naming.Title(sc.id)
	}
	for _, tb := range sc.tables {
		if len(tb.rows) == 0 {
			clog.FromContext(ctx).Warnf("dropping table %s: no rows were executed", tb.key)
			a.metrics.TableDropped()
			a.dropped++
			continue
		}
		out.Tables = append(out.Tables, a.freezeTable(tb))
	}
	sort.Slice(out.Tables, func(i, j int) bool { return out.Tables[i].Index < out.Tables[j].Index })
	return out
}

// freezeTable orders rows by index and re-derives consistency from the
// lowest-indexed row, so the outcome is independent of arrival order.
func (a *Aggregator) freezeTable(tb *tableNode) *doctree.Table {
	indices := make([]int, 0, len(tb.rows))
	for i := range tb.rows {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	rows := make([]record.Row, len(indices))
	for i, idx := range indices {
		rows[i] = tb.rows[idx]
	}
	out := &doctree.Table{
		Index:       tb.key.Table,
		Title:       tb.title.value,
		Description: tb.description.value,
		Rows:        rows,
	}

	ref := rows[0]
	out.Columns = make([]doctree.Column, len(ref.Cells))
	for i, c := range ref.Cells {
		role, ok := tb.roles[c.Column]
		if !ok {
			role = a.classifier.Classify(c.Column)
		}
		out.Columns[i] = doctree.Column{
			Name:     c.Column,
			Role:     role,
			Order:    i,
			Scenario: a.scenarioColumn != "" && c.Column == a.scenarioColumn,
		}
	}

	refSet := make(map[string]column.Role, len(ref.Cells))
	for _, c := range out.Columns {
		refSet[c.Name] = c.Role
	}
	for _, r := range rows[1:] {
		if extra, missing := diffColumns(refSet, r); len(extra) > 0 || len(missing) > 0 {
			out.Problem = &ConsistencyError{
				Table:     tb.key,
				Row:       r.Index,
				Reference: ref.Index,
				Extra:     extra,
				Missing:   missing,
			}
			break
		}
	}
	return out
}

// diffColumns compares r's columns against the reference set, returning
// names r adds (in row order) and names it lacks (sorted).
func diffColumns(ref map[string]column.Role, r record.Row) (extra, missing []string) {
	seen := make(map[string]struct{}, len(r.Cells))
	for _, c := range r.Cells {
		seen[c.Column] = struct{}{}
		if _, ok := ref[c.Column]; !ok {
			extra = append(extra, c.Column)
		}
	}
	for name := range ref {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return extra, missing
}

func firstIndexExcept(rows map[int]record.Row, skip int) int {
	first := -1
	for i := range rows {
		if i == skip {
			continue
		}
		if first == -1 || i < first {
			first = i
		}
	}
	return first
}

func keyLess(a, b record.Key) bool {
	if a.Suite != b.Suite {
		return a.Suite < b.Suite
	}
	if a.Scenario != b.Scenario {
		return a.Scenario < b.Scenario
	}
	if a.Table != b.Table {
		return a.Table < b.Table
	}
	return a.Index < b.Index
}
