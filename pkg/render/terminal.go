package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tabledoc/pkg/doctree"
)

// Terminal renders a short styled report of a finalized tree for the CLI.
// Generated documents never go through it.
type Terminal struct {
	theme       Theme
	width       int
	maxFailures int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, maxFailures: 10}
}

// Summary renders the status line followed by the first failing rows.
func (t *Terminal) Summary(tree *doctree.Tree) string {
	st := doctree.ComputeStats(tree)
	var sb strings.Builder

	mark := t.theme.Passed
	if st.Status() != "pass" {
		mark = t.theme.Failed
	}
	line := fmt.Sprintf("%s %d suites, %d tables, %d rows", mark.Glyph, st.Suites, st.Tables, st.Rows)
	sb.WriteString(mark.Style.Render(line))
	sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("  (%d passed, %d failed, %d errored)", st.Passed, st.Failed, st.Errored)))
	sb.WriteString("\n")

	lines := t.failureLines(tree)
	if len(lines) == 0 {
		return sb.String()
	}
	header := "Failing rows"
	if len(lines) > t.maxFailures {
		header += fmt.Sprintf(" (first %d of %d)", t.maxFailures, len(lines))
		lines = lines[:t.maxFailures]
	}
	sb.WriteString(t.theme.Heading.Render(header))
	sb.WriteString("\n")
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) failureLines(tree *doctree.Tree) []string {
	if !tree.Frozen() {
		return nil
	}
	var out []string
	for _, su := range tree.Suites {
		for _, sc := range su.Scenarios {
			for _, tb := range sc.Tables {
				where := su.Title + " / " + sc.Title
				if tb.Problem != nil {
					out = append(out, "  "+t.theme.Problem.Render()+
						t.truncate(where)+t.theme.Muted.Render("  inconsistent columns"))
					continue
				}
				for _, r := range tb.Failures() {
					out = append(out, "  "+t.theme.ForVerdict(r.Verdict).Render()+
						t.truncate(where+" / "+doctree.Label(r))+t.theme.Muted.Render("  "+verdictWord(string(r.Verdict))))
				}
			}
		}
	}
	return out
}

func (t *Terminal) truncate(s string) string {
	limit := t.width - 16
	if limit < 20 {
		limit = 20
	}
	return runewidth.Truncate(oneLine(s), limit, "...")
}
