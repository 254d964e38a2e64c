package aggregate

import (
	"fmt"
	"strings"

	"github.com/dkoosis/tabledoc/pkg/record"
)

// TableKey identifies a table within a run.
type TableKey struct {
	Suite    string
	Scenario string
	Table    int
}

func (k TableKey) String() string {
	return fmt.Sprintf("%s/%s/table[%d]", k.Suite, k.Scenario, k.Table)
}

func tableKeyOf(k record.Key) TableKey {
	return TableKey{Suite: k.Suite, Scenario: k.Scenario, Table: k.Table}
}

// ConsistencyError reports a row whose column set disagrees with the
// column set fixed by the table's reference row. It affects one table only.
type ConsistencyError struct {
	Table     TableKey
	Row       int
	Reference int
	Extra     []string
	Missing   []string
}

func (e *ConsistencyError) Error() string {
	var parts []string
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected columns "+quoteAll(e.Extra))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns "+quoteAll(e.Missing))
	}
	return fmt.Sprintf("table %s: row %d disagrees with row %d: %s",
		e.Table, e.Row, e.Reference, strings.Join(parts, "; "))
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, ", ")
}
