// Package record defines the per-row execution records produced by a
// table-driven test run. Records are values: once handed to the aggregator
// they are never mutated.
package record

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Verdict is the outcome of one executed table row.
type Verdict string

const (
	Passed Verdict = "passed"
	Failed Verdict = "failed"
	Error  Verdict = "error"
)

// ParseVerdict accepts the canonical names plus the pass/fail spellings
// used by most test runners.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed", "pass", "ok", "success":
		return Passed, nil
	case "failed", "fail", "failure":
		return Failed, nil
	case "error", "errored", "aborted":
		return Error, nil
	}
	return "", fmt.Errorf("unknown verdict %q", s)
}

// UnmarshalYAML lets spool files use any spelling ParseVerdict accepts.
func (v *Verdict) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseVerdict(s)
	if err != nil {
		// A TypeError lets stream decoders skip the document and go on.
		return &yaml.TypeError{Errors: []string{fmt.Sprintf("line %d: %v", node.Line, err)}}
	}
	*v = parsed
	return nil
}

// Key identifies a row within a run.
type Key struct {
	Suite    string
	Scenario string
	Table    int
	Index    int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/table[%d]/row[%d]", k.Suite, k.Scenario, k.Table, k.Index)
}

// Cell is one column of a row, in source order. Actual is set only for
// expectation columns whose observed value was captured.
type Cell struct {
	Column string  `yaml:"column"`
	Value  string  `yaml:"value"`
	Actual *string `yaml:"actual,omitempty"`
}

// Observed returns the actual value when present, otherwise the written value.
func (c Cell) Observed() string {
	if c.Actual != nil {
		return *c.Actual
	}
	return c.Value
}

// Differs reports whether an actual value was captured and disagrees with
// the written value.
func (c Cell) Differs() bool {
	return c.Actual != nil && *c.Actual != c.Value
}

// Row is one executed table row plus its verdict.
type Row struct {
	Suite    string `yaml:"suite"`
	Scenario string `yaml:"scenario"`
	Table    int    `yaml:"table"`
	Index    int    `yaml:"row"`

	Cells   []Cell  `yaml:"cells,omitempty"`
	Verdict Verdict `yaml:"verdict,omitempty"`
	Detail  string  `yaml:"detail,omitempty"`

	DisplayName         string `yaml:"displayName,omitempty"`
	SuiteTitle          string `yaml:"suiteTitle,omitempty"`
	SuiteDescription    string `yaml:"suiteDescription,omitempty"`
	ScenarioTitle       string `yaml:"scenarioTitle,omitempty"`
	ScenarioDescription string `yaml:"scenarioDescription,omitempty"`
	TableTitle          string `yaml:"tableTitle,omitempty"`
	TableDescription    string `yaml:"tableDescription,omitempty"`
}

// Key returns the row's identity.
func (r Row) Key() Key {
	return Key{Suite: r.Suite, Scenario: r.Scenario, Table: r.Table, Index: r.Index}
}

// Columns returns the column names in source order.
func (r Row) Columns() []string {
	names := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		names[i] = c.Column
	}
	return names
}

// Cell looks up a cell by column name.
func (r Row) Cell(column string) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Column == column {
			return c, true
		}
	}
	return Cell{}, false
}

// Validate checks the fields the aggregator relies on.
func (r Row) Validate() error {
	if r.Suite == "" {
		return fmt.Errorf("row %s: missing suite id", r.Key())
	}
	if r.Scenario == "" {
		return fmt.Errorf("row %s: missing scenario id", r.Key())
	}
	if r.Table < 0 || r.Index < 0 {
		return fmt.Errorf("row %s: negative table or row index", r.Key())
	}
	if len(r.Cells) == 0 {
		return fmt.Errorf("row %s: no cells", r.Key())
	}
	seen := make(map[string]struct{}, len(r.Cells))
	for _, c := range r.Cells {
		if _, dup := seen[c.Column]; dup {
			return fmt.Errorf("row %s: duplicate column %q", r.Key(), c.Column)
		}
		seen[c.Column] = struct{}{}
	}
	switch r.Verdict {
	case Passed, Failed, Error:
	default:
		return fmt.Errorf("row %s: unknown verdict %q", r.Key(), r.Verdict)
	}
	return nil
}

// Clone returns a deep copy so callers may keep mutating their own value.
func (r Row) Clone() Row {
	out := r
	out.Cells = make([]Cell, len(r.Cells))
	for i, c := range r.Cells {
		if c.Actual != nil {
			v := *c.Actual
			c.Actual = &v
		}
		out.Cells[i] = c
	}
	return out
}

// Str returns a pointer to s, for building cells with actual values.
func Str(s string) *string { return &s }
