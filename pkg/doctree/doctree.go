// Package doctree defines the document tree built from ingested rows.
// The tree is pure data; renderers decide presentation.
package doctree

import (
	"fmt"

	"github.com/dkoosis/tabledoc/pkg/column"
	"github.com/dkoosis/tabledoc/pkg/record"
)

// StateError reports an operation invoked in the wrong lifecycle phase,
// such as ingesting after finalize or rendering before it.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Column describes one table column. Role is fixed per table.
type Column struct {
	Name     string
	Role     column.Role
	Order    int
	Scenario bool
}

// IsExpectation reports whether the column holds expected values.
func (c Column) IsExpectation() bool { return c.Role == column.Expectation }

// Table is an ordered set of columns and rows. When Problem is set the
// rows are not trustworthy and renderers show a diagnostic instead.
type Table struct {
	Index       int
	Title       string
	Description string
	Columns     []Column
	Rows        []record.Row
	Problem     error
}

// Scenario groups the tables of one test method.
type Scenario struct {
	ID          string
	Title       string
	Description string
	Tables      []*Table
}

// Suite groups the scenarios of one test source unit.
type Suite struct {
	ID          string
	Title       string
	Description string
	Scenarios   []*Scenario
}

// Tree is the ordered collection of suites handed to renderers.
type Tree struct {
	Suites []*Suite
	frozen bool
}

// Freeze wraps suites, already in final order, in a read-only tree.
func Freeze(suites []*Suite) *Tree {
	return &Tree{Suites: suites, frozen: true}
}

// Frozen reports whether the tree is finalized and safe to render.
func (t *Tree) Frozen() bool { return t != nil && t.frozen }

// RequireFrozen returns a StateError for op when the tree is not finalized.
func (t *Tree) RequireFrozen(op string) error {
	if !t.Frozen() {
		return &StateError{Op: op, Reason: "document tree is not finalized"}
	}
	return nil
}
