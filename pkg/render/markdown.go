package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/naming"
)

// MarkdownRenderer emits GitHub-flavored Markdown with pipe tables.
type MarkdownRenderer struct {
	align bool
}

// NewMarkdown returns a Markdown renderer.
func NewMarkdown(opts Options) *MarkdownRenderer {
	return &MarkdownRenderer{align: opts.Align}
}

func (m *MarkdownRenderer) Format() Format { return Markdown }

func (m *MarkdownRenderer) Render(tree *doctree.Tree) (string, error) {
	if err := tree.RequireFrozen("render"); err != nil {
		return "", err
	}
	blocks := []string{"# " + consolidatedTitle}
	for _, s := range tree.Suites {
		blocks = append(blocks, m.suiteBlocks(s, 2)...)
	}
	return joinBlocks(blocks), nil
}

func (m *MarkdownRenderer) RenderSuite(s *doctree.Suite) (string, error) {
	return joinBlocks(m.suiteBlocks(s, 1)), nil
}

func (m *MarkdownRenderer) RenderIndex(title string, entries []IndexEntry) (string, error) {
	var list strings.Builder
	writeMdEntries(&list, entries, 0)
	return joinBlocks([]string{"# " + mdInline(title), list.String()}), nil
}

// Anchors follows GitHub's heading ids: the suite title counts and
// repeats get -1, -2 and so on.
func (m *MarkdownRenderer) Anchors(s *doctree.Suite) Anchors {
	return outline(s, true, gfmAnchor, func(base string, n int) string {
		return base + "-" + strconv.Itoa(n)
	})
}

func writeMdEntries(sb *strings.Builder, entries []IndexEntry, depth int) {
	for _, e := range entries {
		fmt.Fprintf(sb, "%s* [%s](./%s)\n", strings.Repeat("  ", depth), mdInline(e.Title), e.Path)
		writeMdEntries(sb, e.Children, depth+1)
	}
}

// gfmAnchor lowercases a heading, drops punctuation and turns spaces into
// hyphens.
func gfmAnchor(title string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(mdInline(title)) {
		switch {
		case c == ' ':
			b.WriteRune('-')
		case c == '-' || c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.Is(unicode.M, c):
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (m *MarkdownRenderer) suiteBlocks(s *doctree.Suite, level int) []string {
	blocks := []string{heading(level, s.Title), mdText(s.Description)}
	for _, sc := range s.Scenarios {
		blocks = append(blocks, heading(level+1, sc.Title), mdText(sc.Description))
		for _, t := range sc.Tables {
			if t.Title != "" {
				blocks = append(blocks, heading(level+2, t.Title))
			}
			blocks = append(blocks, mdText(t.Description))
			blocks = append(blocks, m.table(t)...)
		}
	}
	return blocks
}

func (m *MarkdownRenderer) table(t *doctree.Table) []string {
	if t.Problem != nil {
		return []string{"> **Table could not be rendered.** " + mdInline(t.Problem.Error())}
	}
	g := buildGrid(t)

	header := make([]string, len(g.columns))
	for i, c := range g.columns {
		header[i] = mdCell(c.header)
	}
	body := make([][]string, len(g.rows))
	for i, row := range g.rows {
		body[i] = make([]string, len(row))
		for j, c := range row {
			body[i][j] = mdCell(c)
		}
	}

	widths := make([]int, len(header))
	if m.align {
		for i, h := range header {
			widths[i] = max(3, runewidth.StringWidth(h))
		}
		for _, row := range body {
			for j, c := range row {
				widths[j] = max(widths[j], runewidth.StringWidth(c))
			}
		}
	}

	var sb strings.Builder
	writeRow(&sb, header, widths)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = strings.Repeat("-", max(3, widths[i]))
	}
	writeRow(&sb, sep, nil)
	for _, row := range body {
		writeRow(&sb, row, widths)
	}

	blocks := []string{sb.String()}
	if failed := failures(t); failed != "" {
		blocks = append(blocks, "**Failed rows**", failed)
	}
	return blocks
}

func writeRow(sb *strings.Builder, cells []string, widths []int) {
	sb.WriteString("|")
	for i, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(c)
		if widths != nil && widths[i] > 0 {
			sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(c)))
		}
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func failures(t *doctree.Table) string {
	rows := t.Failures()
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- **%s** (%s)\n", mdInline(doctree.Label(r)), verdictWord(string(r.Verdict)))
		detail := strings.TrimRight(naming.NFC(normalizeNewlines(r.Detail)), "\n")
		if detail == "" {
			continue
		}
		fence := "```"
		for strings.Contains(detail, fence) {
			fence += "`"
		}
		sb.WriteString("\n  " + fence + "\n")
		for _, line := range strings.Split(detail, "\n") {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("  " + fence + "\n")
	}
	return sb.String()
}

func heading(level int, title string) string {
	return strings.Repeat("#", level) + " " + mdInline(title)
}

// mdText renders a free-text description as a paragraph.
func mdText(s string) string {
	return strings.TrimSpace(naming.NFC(normalizeNewlines(s)))
}

func mdInline(s string) string {
	return oneLine(naming.NFC(s))
}

// mdCell escapes a cell for a GFM pipe table. Backslashes directly before
// a pipe are doubled so they survive the pipe's own escape.
func mdCell(s string) string {
	if strings.ContainsRune(s, '|') {
		var b strings.Builder
		run := 0
		for _, c := range s {
			switch c {
			case '\\':
				run++
				continue
			case '|':
				b.WriteString(strings.Repeat(`\`, 2*run))
				b.WriteString(`\|`)
			default:
				b.WriteString(strings.Repeat(`\`, run))
				b.WriteRune(c)
			}
			run = 0
		}
		b.WriteString(strings.Repeat(`\`, run))
		s = b.String()
	}
	return strings.ReplaceAll(s, "\n", "<br>")
}
