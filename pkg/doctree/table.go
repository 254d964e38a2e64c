package doctree

import (
	"strconv"

	"github.com/dkoosis/tabledoc/pkg/record"
)

// Split reports whether expectation column col must be shown as separate
// expected and actual sub-columns: true when a non-passing row carries an
// actual value that differs from the written one.
func (t *Table) Split(col Column) bool {
	if !col.IsExpectation() {
		return false
	}
	for _, r := range t.Rows {
		if r.Verdict == record.Passed {
			continue
		}
		if c, ok := r.Cell(col.Name); ok && c.Differs() {
			return true
		}
	}
	return false
}

// Failures returns the non-passing rows in table order.
func (t *Table) Failures() []record.Row {
	var out []record.Row
	for _, r := range t.Rows {
		if r.Verdict != record.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Label names a row for failure listings.
func Label(r record.Row) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return "Row " + strconv.Itoa(r.Index)
}
