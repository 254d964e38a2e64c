package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/tabledoc/internal/metrics"
	"github.com/dkoosis/tabledoc/pkg/column"
	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/record"
)

func loginRow(index int, user string) record.Row {
	return record.Row{
		Suite: "S1", Scenario: "Login", Table: 0, Index: index,
		Cells: []record.Cell{
			{Column: "User", Value: user},
			{Column: "Expected Result", Value: "ok", Actual: record.Str("ok")},
		},
		Verdict: record.Passed,
	}
}

func newAggregator(t *testing.T, opts ...Option) *Aggregator {
	t.Helper()
	return New(column.MustNew("^Expected"), opts...)
}

func TestIngest_ClassifiesColumnsOnFirstRow(t *testing.T) {
	a := newAggregator(t)
	require.NoError(t, a.Ingest(loginRow(0, "alice")))

	tree := a.Finalize(context.Background())
	require.Len(t, tree.Suites, 1)
	tb := tree.Suites[0].Scenarios[0].Tables[0]
	require.Len(t, tb.Columns, 2)
	assert.Equal(t, column.Input, tb.Columns[0].Role)
	assert.Equal(t, column.Expectation, tb.Columns[1].Role)
	assert.Equal(t, 1, tb.Columns[1].Order)
}

func TestIngest_ConcurrentArrivalIsOrderedByRowIndex(t *testing.T) {
	a := newAggregator(t)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, r := range []record.Row{loginRow(1, "bob"), loginRow(0, "alice")} {
		wg.Add(1)
		go func(r record.Row) {
			defer wg.Done()
			<-start
			assert.NoError(t, a.Ingest(r))
		}(r)
	}
	close(start)
	wg.Wait()

	rows := a.Finalize(context.Background()).Suites[0].Scenarios[0].Tables[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, 1, rows[1].Index)
}

func TestIngest_ManyWorkersProduceSameTreeAsSerial(t *testing.T) {
	var rows []record.Row
	for s, suite := range []string{"S2", "S1", "S3"} {
		for sc, scenario := range []string{"Logout", "Login"} {
			for tb := 0; tb < 2; tb++ {
				for i := 9; i >= 0; i-- {
					r := loginRow(i, "u")
					r.Suite, r.Scenario, r.Table = suite, scenario, tb
					r.Cells[0].Value = suite + scenario + string(rune('a'+i+s+sc))
					rows = append(rows, r)
				}
			}
		}
	}

	serial := newAggregator(t)
	for _, r := range rows {
		require.NoError(t, serial.Ingest(r))
	}
	want := serial.Finalize(context.Background())

	parallel := newAggregator(t)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(rows); i += 8 {
				assert.NoError(t, parallel.Ingest(rows[len(rows)-1-i]))
			}
		}(w)
	}
	wg.Wait()
	got := parallel.Finalize(context.Background())

	if diff := cmp.Diff(want.Suites, got.Suites); diff != "" {
		t.Fatalf("tree depends on arrival order (-serial +parallel):\n%s", diff)
	}
	assert.Equal(t, []string{"S1", "S2", "S3"}, []string{got.Suites[0].ID, got.Suites[1].ID, got.Suites[2].ID})
	assert.Equal(t, "Login", got.Suites[0].Scenarios[0].ID)
}

func TestIngest_DuplicateIdentityIsIdempotent(t *testing.T) {
	once := newAggregator(t)
	require.NoError(t, once.Ingest(loginRow(0, "alice")))
	twice := newAggregator(t)
	require.NoError(t, twice.Ingest(loginRow(0, "alice")))
	require.NoError(t, twice.Ingest(loginRow(0, "alice")))

	ctx := context.Background()
	if diff := cmp.Diff(once.Finalize(ctx).Suites, twice.Finalize(ctx).Suites); diff != "" {
		t.Fatalf("replay changed the tree:\n%s", diff)
	}
}

func TestIngest_LastWriteWins(t *testing.T) {
	a := newAggregator(t)
	first := loginRow(0, "alice")
	first.Verdict = record.Failed
	first.Detail = "flaky"
	require.NoError(t, a.Ingest(first))
	require.NoError(t, a.Ingest(loginRow(0, "alice")))

	rows := a.Finalize(context.Background()).Suites[0].Scenarios[0].Tables[0].Rows
	require.Len(t, rows, 1)
	assert.Equal(t, record.Passed, rows[0].Verdict)
	assert.Empty(t, rows[0].Detail)
}

func TestIngest_UnseenColumnBreaksOnlyThatTable(t *testing.T) {
	a := newAggregator(t)
	require.NoError(t, a.Ingest(loginRow(0, "alice")))

	bad := loginRow(1, "bob")
	bad.Cells = append(bad.Cells, record.Cell{Column: "Password", Value: "secret"})
	err := a.Ingest(bad)
	var ce *ConsistencyError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"Password"}, ce.Extra)
	assert.Equal(t, 1, ce.Row)

	other := loginRow(0, "carol")
	other.Table = 1
	require.NoError(t, a.Ingest(other))

	tables := a.Finalize(context.Background()).Suites[0].Scenarios[0].Tables
	require.Len(t, tables, 2)
	require.Error(t, tables[0].Problem)
	assert.Contains(t, tables[0].Problem.Error(), `unexpected columns "Password"`)
	assert.NoError(t, tables[1].Problem)
}

func TestFinalize_ConsistencyIsJudgedAgainstLowestRow(t *testing.T) {
	a := newAggregator(t)
	bad := loginRow(1, "bob")
	bad.Cells = append(bad.Cells, record.Cell{Column: "Password", Value: "secret"})
	require.NoError(t, a.Ingest(bad))
	require.Error(t, a.Ingest(loginRow(0, "alice")))

	tb := a.Finalize(context.Background()).Suites[0].Scenarios[0].Tables[0]
	var ce *ConsistencyError
	require.True(t, errors.As(tb.Problem, &ce))
	assert.Equal(t, 1, ce.Row)
	assert.Equal(t, 0, ce.Reference)
	assert.Len(t, tb.Columns, 2)
}

func TestIngest_AfterFinalizeIsStateError(t *testing.T) {
	a := newAggregator(t)
	require.NoError(t, a.Ingest(loginRow(0, "alice")))
	first := a.Finalize(context.Background())

	err := a.Ingest(loginRow(1, "bob"))
	var se *doctree.StateError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ingest", se.Op)

	assert.Same(t, first, a.Finalize(context.Background()))
	assert.True(t, first.Frozen())
}

func TestIngest_RejectsInvalidRows(t *testing.T) {
	a := newAggregator(t)
	r := loginRow(0, "alice")
	r.Suite = ""
	assert.Error(t, a.Ingest(r))
}

func TestFinalize_DropsDeclaredTablesWithoutRows(t *testing.T) {
	rec := metrics.New()
	a := newAggregator(t, WithMetrics(rec))
	require.NoError(t, a.Declare(TableRef{Suite: "S1", Scenario: "Login", Table: 3, Title: "Never ran"}))
	require.NoError(t, a.Declare(TableRef{Suite: "S9", Scenario: "Empty", Table: 0}))
	require.NoError(t, a.Ingest(loginRow(0, "alice")))

	tree := a.Finalize(context.Background())
	require.Len(t, tree.Suites, 1)
	require.Len(t, tree.Suites[0].Scenarios[0].Tables, 1)
	assert.Equal(t, 0, tree.Suites[0].Scenarios[0].Tables[0].Index)
	assert.Equal(t, 2, a.Dropped())
}

func TestFinalize_MetadataAndTitles(t *testing.T) {
	a := newAggregator(t, WithScenarioColumn("User"))
	r1 := loginRow(1, "bob")
	r1.Suite = "org.example.LoginTest"
	r1.ScenarioTitle = "Later title"
	r0 := loginRow(0, "alice")
	r0.Suite = "org.example.LoginTest"
	r0.ScenarioTitle = "Users can log in"
	r0.TableDescription = "Known accounts."
	require.NoError(t, a.Ingest(r1))
	require.NoError(t, a.Ingest(r0))
	require.NoError(t, a.Declare(TableRef{Suite: "org.example.LoginTest", Scenario: "Login", Table: 0, Title: "Accounts"}))

	su := a.Finalize(context.Background()).Suites[0]
	assert.Equal(t, "Login Test", su.Title)
	assert.Equal(t, "Users can log in", su.Scenarios[0].Title)
	tb := su.Scenarios[0].Tables[0]
	assert.Equal(t, "Accounts", tb.Title)
	assert.Equal(t, "Known accounts.", tb.Description)
	assert.True(t, tb.Columns[0].Scenario)
	assert.False(t, tb.Columns[1].Scenario)
}
