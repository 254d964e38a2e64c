package doctree

import "github.com/dkoosis/tabledoc/pkg/record"

// Stats holds aggregate counts across a tree.
type Stats struct {
	Suites    int
	Scenarios int
	Tables    int
	Rows      int
	Passed    int
	Failed    int
	Errored   int
	Problems  int
}

// ComputeStats walks the tree once.
func ComputeStats(t *Tree) Stats {
	var s Stats
	if t == nil {
		return s
	}
	s.Suites = len(t.Suites)
	for _, su := range t.Suites {
		s.Scenarios += len(su.Scenarios)
		for _, sc := range su.Scenarios {
			s.Tables += len(sc.Tables)
			for _, tb := range sc.Tables {
				if tb.Problem != nil {
					s.Problems++
				}
				s.Rows += len(tb.Rows)
				for _, r := range tb.Rows {
					switch r.Verdict {
					case record.Passed:
						s.Passed++
					case record.Failed:
						s.Failed++
					case record.Error:
						s.Errored++
					}
				}
			}
		}
	}
	return s
}

// Status returns "fail" when any row did not pass or any table is broken.
func (s Stats) Status() string {
	if s.Failed > 0 || s.Errored > 0 || s.Problems > 0 {
		return "fail"
	}
	return "pass"
}
