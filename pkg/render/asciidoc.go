package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/naming"
)

// AsciiDocRenderer emits AsciiDoc. Cell values pass through verbatim and
// carry roles (expectation, scenario, actual, verdict) for stylesheets.
type AsciiDocRenderer struct{}

// NewAsciiDoc returns an AsciiDoc renderer.
func NewAsciiDoc() *AsciiDocRenderer { return &AsciiDocRenderer{} }

func (a *AsciiDocRenderer) Format() Format { return AsciiDoc }

func (a *AsciiDocRenderer) Render(tree *doctree.Tree) (string, error) {
	if err := tree.RequireFrozen("render"); err != nil {
		return "", err
	}
	blocks := []string{"= " + adocPass(consolidatedTitle)}
	for _, s := range tree.Suites {
		blocks = append(blocks, a.suiteBlocks(s, 1)...)
	}
	return joinBlocks(blocks), nil
}

func (a *AsciiDocRenderer) RenderSuite(s *doctree.Suite) (string, error) {
	return joinBlocks(a.suiteBlocks(s, 0)), nil
}

func (a *AsciiDocRenderer) RenderIndex(title string, entries []IndexEntry) (string, error) {
	var list strings.Builder
	writeAdocEntries(&list, entries, 1)
	return joinBlocks([]string{"= " + adocPass(oneLine(title)), list.String()}), nil
}

// Anchors follows Asciidoctor's generated section ids. The document title
// is not a section, so it takes no id.
func (a *AsciiDocRenderer) Anchors(s *doctree.Suite) Anchors {
	return outline(s, false, adocID, func(base string, n int) string {
		return base + "_" + strconv.Itoa(n+1)
	})
}

func writeAdocEntries(sb *strings.Builder, entries []IndexEntry, depth int) {
	for _, e := range entries {
		fmt.Fprintf(sb, "%s xref:./%s[%s]\n", strings.Repeat("*", depth), e.Path, adocPass(oneLine(e.Title)))
		writeAdocEntries(sb, e.Children, depth+1)
	}
}

// adocID derives a section id: "_" prefix, lowercase, spaces dots and
// hyphens as "_", other punctuation removed.
func adocID(title string) string {
	var b strings.Builder
	b.WriteByte('_')
	for _, c := range strings.ToLower(oneLine(naming.NFC(title))) {
		switch {
		case c == ' ' || c == '.' || c == '-' || c == '_':
			if !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		case unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.Is(unicode.M, c):
			b.WriteRune(c)
		}
	}
	id := b.String()
	if len(id) > 1 {
		id = strings.TrimSuffix(id, "_")
	}
	return id
}

func (a *AsciiDocRenderer) suiteBlocks(s *doctree.Suite, level int) []string {
	blocks := []string{adocHeading(level, s.Title), adocText(s.Description)}
	for _, sc := range s.Scenarios {
		blocks = append(blocks, adocHeading(level+1, sc.Title), adocText(sc.Description))
		for _, t := range sc.Tables {
			if t.Title != "" {
				blocks = append(blocks, adocHeading(level+2, t.Title))
			}
			blocks = append(blocks, adocText(t.Description))
			blocks = append(blocks, a.table(t)...)
		}
	}
	return blocks
}

func (a *AsciiDocRenderer) table(t *doctree.Table) []string {
	if t.Problem != nil {
		return []string{"[WARNING]\n====\nTable could not be rendered: " + adocPass(oneLine(t.Problem.Error())) + "\n===="}
	}
	g := buildGrid(t)

	var sb strings.Builder
	cols := make([]string, len(g.columns))
	for i := range cols {
		cols[i] = "1"
	}
	fmt.Fprintf(&sb, "[%%header,cols=\"%s\"]\n|===\n", strings.Join(cols, ","))
	for _, c := range g.columns {
		roles := columnRoles(c)
		if len(roles) == 0 {
			sb.WriteString("|" + adocValue(c.header) + "\n")
			continue
		}
		fmt.Fprintf(&sb, "|[.%s]#%s#\n", strings.Join(roles, "."), adocValue(c.header))
	}
	for i, row := range g.rows {
		sb.WriteString("\n")
		for j, cell := range row {
			roles := append(columnRoles(g.columns[j]), string(g.verdict[i]))
			value := adocValue(cell)
			fmt.Fprintf(&sb, "a|[.%s]#%s#\n", strings.Join(roles, "."), value)
		}
	}
	sb.WriteString("\n|===")

	blocks := []string{sb.String()}
	if failed := adocFailures(t); failed != "" {
		blocks = append(blocks, ".Failed rows\n"+failed)
	}
	return blocks
}

func columnRoles(c gridColumn) []string {
	var roles []string
	if c.source.IsExpectation() {
		roles = append(roles, "expectation")
	}
	if c.source.Scenario {
		roles = append(roles, "scenario")
	}
	if c.part == partActual {
		roles = append(roles, "actual")
	}
	return roles
}

func adocFailures(t *doctree.Table) string {
	rows := t.Failures()
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "* *%s* (%s)", adocPass(oneLine(doctree.Label(r))), verdictWord(string(r.Verdict)))
		detail := strings.TrimRight(naming.NFC(normalizeNewlines(r.Detail)), "\n")
		if detail == "" {
			continue
		}
		delim := "----"
		for containsLine(detail, delim) {
			delim += "-"
		}
		fmt.Fprintf(&sb, "\n+\n%s\n%s\n%s", delim, detail, delim)
	}
	return sb.String()
}

func containsLine(text, line string) bool {
	for _, l := range strings.Split(text, "\n") {
		if l == line {
			return true
		}
	}
	return false
}

func adocHeading(level int, title string) string {
	return strings.Repeat("=", level+1) + " " + adocPass(oneLine(naming.NFC(title)))
}

func adocText(s string) string {
	return strings.TrimSpace(naming.NFC(normalizeNewlines(s)))
}

// adocValue renders a cell value. Empty values become {empty}, line breaks
// become hard breaks, and pipes are escaped outside the passthroughs.
func adocValue(s string) string {
	if s == "" {
		return "{empty}"
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		parts := strings.Split(line, "|")
		for j, p := range parts {
			if p != "" {
				parts[j] = adocPass(p)
			}
		}
		lines[i] = strings.Join(parts, `\|`)
	}
	return strings.Join(lines, " +\n")
}

// adocPass wraps s in an inline passthrough so markup characters print
// literally.
func adocPass(s string) string {
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "++") && !strings.HasSuffix(s, "+") {
		return "++" + s + "++"
	}
	return "pass:[" + strings.ReplaceAll(s, "]", `\]`) + "]"
}
