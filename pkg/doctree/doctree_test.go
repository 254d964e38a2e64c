package doctree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/tabledoc/pkg/column"
	"github.com/dkoosis/tabledoc/pkg/record"
)

func sampleTable() *Table {
	return &Table{
		Columns: []Column{
			{Name: "a", Role: column.Input, Order: 0},
			{Name: "Expected Sum", Role: column.Expectation, Order: 1},
			{Name: "Expected Sign", Role: column.Expectation, Order: 2},
		},
		Rows: []record.Row{
			{Index: 0, Verdict: record.Passed, Cells: []record.Cell{
				{Column: "a", Value: "1"},
				{Column: "Expected Sum", Value: "2", Actual: record.Str("2")},
				{Column: "Expected Sign", Value: "+", Actual: record.Str("+")},
			}},
			{Index: 1, Verdict: record.Failed, DisplayName: "[2] 2 + 2 = 5", Cells: []record.Cell{
				{Column: "a", Value: "2"},
				{Column: "Expected Sum", Value: "5", Actual: record.Str("4")},
				{Column: "Expected Sign", Value: "+", Actual: record.Str("+")},
			}},
		},
	}
}

func TestTable_Split(t *testing.T) {
	tb := sampleTable()
	assert.False(t, tb.Split(tb.Columns[0]), "inputs never split")
	assert.True(t, tb.Split(tb.Columns[1]), "failed row with differing actual splits")
	assert.False(t, tb.Split(tb.Columns[2]), "matching actual stays single")
}

func TestTable_SplitIgnoresPassedRows(t *testing.T) {
	tb := sampleTable()
	tb.Rows[1].Verdict = record.Passed
	assert.False(t, tb.Split(tb.Columns[1]))
}

func TestTable_FailuresAndLabel(t *testing.T) {
	tb := sampleTable()
	failures := tb.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "[2] 2 + 2 = 5", Label(failures[0]))
	assert.Equal(t, "Row 0", Label(tb.Rows[0]))
}

func TestTree_RequireFrozen(t *testing.T) {
	var open Tree
	err := open.RequireFrozen("render")
	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "render", stateErr.Op)

	assert.NoError(t, Freeze(nil).RequireFrozen("render"))
}

func TestComputeStats(t *testing.T) {
	tree := Freeze([]*Suite{{
		ID: "S1",
		Scenarios: []*Scenario{{
			ID:     "Add",
			Tables: []*Table{sampleTable(), {Problem: errors.New("bad")}},
		}},
	}})
	s := ComputeStats(tree)
	assert.Equal(t, 1, s.Suites)
	assert.Equal(t, 2, s.Tables)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Problems)
	assert.Equal(t, "fail", s.Status())
}
