package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/naming"
)

const (
	suiteTemplatePrefix = "suite."
	indexTemplatePrefix = "index."
	templateSuffix      = ".tmpl"
)

// DiscoverFormats lists the template formats in dir, sorted by name. A
// format needs both suite.<name>.tmpl and index.<name>.tmpl; names that
// collide with a built-in format are ignored. An empty dir has none.
func DiscoverFormats(dir string) ([]Format, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory: %w", err)
	}
	suites := make(map[string]bool)
	indexes := make(map[string]bool)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if name, ok := templateFormat(e.Name(), suiteTemplatePrefix); ok {
			suites[name] = true
		}
		if name, ok := templateFormat(e.Name(), indexTemplatePrefix); ok {
			indexes[name] = true
		}
	}
	var out []Format
	for name := range suites {
		if _, err := ParseFormat(name); err == nil || !indexes[name] {
			continue
		}
		out = append(out, Format(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func templateFormat(file, prefix string) (string, bool) {
	name, ok := strings.CutPrefix(file, prefix)
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, templateSuffix)
	if !ok || name == "" || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}

// SuiteData is what a suite template executes with.
type SuiteData struct {
	ID          string
	Title       string
	Description string
	Scenarios   []ScenarioData
}

// ScenarioData is one scenario of a SuiteData.
type ScenarioData struct {
	ID          string
	Title       string
	Description string
	Anchor      string
	Tables      []TableData
}

// TableData is one table with its cells already laid out: expectation
// columns that need it are split into expected and actual columns.
// Problem is set instead of Columns and Rows when the table is broken.
type TableData struct {
	Title       string
	Description string
	Anchor      string
	Problem     string
	Columns     []ColumnData
	Rows        []RowData
	Failures    []FailureData
}

// ColumnData is a table header with its roles (expectation, scenario,
// actual).
type ColumnData struct {
	Header string
	Roles  []string
}

// RowData is one table row.
type RowData struct {
	Verdict string
	Cells   []string
}

// FailureData is a non-passing row listed below its table.
type FailureData struct {
	Label   string
	Verdict string
	Detail  string
}

// IndexData is what an index template executes with.
type IndexData struct {
	Title   string
	Entries []IndexEntry
}

// TemplateRenderer renders a user-supplied text/template format. Templates
// get the sprig function library.
type TemplateRenderer struct {
	format Format
	suite  *template.Template
	index  *template.Template
}

// LoadTemplates parses the suite and index templates of f from dir.
func LoadTemplates(dir string, f Format) (*TemplateRenderer, error) {
	if dir == "" {
		return nil, fmt.Errorf("format %q needs a template directory", f)
	}
	suite, err := parseTemplate(filepath.Join(dir, suiteTemplatePrefix+string(f)+templateSuffix))
	if err != nil {
		return nil, err
	}
	index, err := parseTemplate(filepath.Join(dir, indexTemplatePrefix+string(f)+templateSuffix))
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{format: f, suite: suite, index: index}, nil
}

func parseTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	funcs := sprig.TxtFuncMap()
	funcs["oneLine"] = oneLine
	funcs["pipeCell"] = mdCell
	t, err := template.New(filepath.Base(path)).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	return t, nil
}

func (r *TemplateRenderer) Format() Format { return r.format }

// Render concatenates the suite documents of tree.
func (r *TemplateRenderer) Render(tree *doctree.Tree) (string, error) {
	if err := tree.RequireFrozen("render"); err != nil {
		return "", err
	}
	blocks := make([]string, 0, len(tree.Suites))
	for _, s := range tree.Suites {
		text, err := r.RenderSuite(s)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, text)
	}
	return joinBlocks(blocks), nil
}

func (r *TemplateRenderer) RenderSuite(s *doctree.Suite) (string, error) {
	return execute(r.suite, suiteData(s, r.Anchors(s)))
}

func (r *TemplateRenderer) RenderIndex(title string, entries []IndexEntry) (string, error) {
	return execute(r.index, IndexData{Title: title, Entries: entries})
}

// Anchors are slugs of the heading titles, since the syntax of a template
// format is unknown.
func (r *TemplateRenderer) Anchors(s *doctree.Suite) Anchors {
	return outline(s, true, naming.Slug, func(base string, n int) string {
		return fmt.Sprintf("%s-%d", base, n)
	})
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func suiteData(s *doctree.Suite, anchors Anchors) SuiteData {
	d := SuiteData{ID: s.ID, Title: s.Title, Description: mdText(s.Description)}
	for _, sc := range s.Scenarios {
		sd := ScenarioData{
			ID:          sc.ID,
			Title:       sc.Title,
			Description: mdText(sc.Description),
			Anchor:      anchors.Scenarios[sc],
		}
		for _, t := range sc.Tables {
			sd.Tables = append(sd.Tables, tableData(t, anchors.Tables[t]))
		}
		d.Scenarios = append(d.Scenarios, sd)
	}
	return d
}

func tableData(t *doctree.Table, anchor string) TableData {
	td := TableData{Title: t.Title, Description: mdText(t.Description), Anchor: anchor}
	if t.Problem != nil {
		td.Problem = t.Problem.Error()
		return td
	}
	g := buildGrid(t)
	for _, c := range g.columns {
		td.Columns = append(td.Columns, ColumnData{Header: c.header, Roles: columnRoles(c)})
	}
	for i, row := range g.rows {
		td.Rows = append(td.Rows, RowData{Verdict: string(g.verdict[i]), Cells: row})
	}
	for _, r := range t.Failures() {
		td.Failures = append(td.Failures, FailureData{
			Label:   doctree.Label(r),
			Verdict: verdictWord(string(r.Verdict)),
			Detail:  strings.TrimRight(naming.NFC(normalizeNewlines(r.Detail)), "\n"),
		})
	}
	return td
}
