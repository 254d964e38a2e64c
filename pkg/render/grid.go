package render

import (
	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/naming"
	"github.com/dkoosis/tabledoc/pkg/record"
)

// part says which value of a cell a rendered column shows.
type part int

const (
	partObserved part = iota // value, or actual when one was captured
	partExpected
	partActual
)

// gridColumn is one rendered column. A split expectation column yields two.
type gridColumn struct {
	source doctree.Column
	header string
	part   part
}

type grid struct {
	columns []gridColumn
	rows    [][]string
	verdict []record.Verdict
}

func buildGrid(t *doctree.Table) grid {
	var g grid
	for _, c := range t.Columns {
		name := naming.NFC(c.Name)
		if t.Split(c) {
			g.columns = append(g.columns,
				gridColumn{source: c, header: name + " (expected)", part: partExpected},
				gridColumn{source: c, header: name + " (actual)", part: partActual},
			)
			continue
		}
		g.columns = append(g.columns, gridColumn{source: c, header: name, part: partObserved})
	}
	for _, r := range t.Rows {
		cells := make([]string, len(g.columns))
		for i, gc := range g.columns {
			c, _ := r.Cell(gc.source.Name)
			var v string
			switch gc.part {
			case partExpected:
				v = c.Value
			case partActual:
				if c.Differs() {
					v = *c.Actual
				}
			default:
				v = c.Observed()
			}
			cells[i] = naming.NFC(normalizeNewlines(v))
		}
		g.rows = append(g.rows, cells)
		g.verdict = append(g.verdict, r.Verdict)
	}
	return g
}
