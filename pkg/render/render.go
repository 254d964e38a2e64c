// Package render turns a finalized document tree into Markdown or AsciiDoc.
// Renderers hold no mutable state, so one frozen tree may be rendered by
// several of them at once.
package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/tabledoc/pkg/doctree"
)

// Format names an output syntax. Markdown and AsciiDoc are built in; any
// other value names a template format loaded from a template directory.
type Format string

const (
	Markdown Format = "markdown"
	AsciiDoc Format = "asciidoc"
)

// Formats lists the built-in formats in display order.
func Formats() []Format { return []Format{Markdown, AsciiDoc} }

// ParseFormat accepts a built-in format name or one of its aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return Markdown, nil
	case "asciidoc", "adoc", "asciidoctor", "structured-markup":
		return AsciiDoc, nil
	}
	return "", fmt.Errorf("unknown format %q (expected markdown or asciidoc)", s)
}

// ResolveFormat accepts a built-in format, or the name of a template
// format found in templateDir. The error lists every available format.
func ResolveFormat(s, templateDir string) (Format, error) {
	if f, err := ParseFormat(s); err == nil {
		return f, nil
	}
	name := strings.TrimSpace(s)
	custom, err := DiscoverFormats(templateDir)
	if err != nil {
		return "", err
	}
	available := make([]string, 0, len(custom)+2)
	for _, f := range Formats() {
		available = append(available, string(f))
	}
	for _, f := range custom {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
		available = append(available, string(f))
	}
	return "", fmt.Errorf("unknown format %q (available: %s)", s, strings.Join(available, ", "))
}

// Builtin reports whether f is rendered without templates.
func (f Format) Builtin() bool { return f == Markdown || f == AsciiDoc }

// Extension returns the file extension, including the dot. Template
// formats use their name.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case AsciiDoc:
		return ".adoc"
	}
	return "." + string(f)
}

// IndexEntry is one link in an index document. Children link into the
// entry's document when the index lists more than one level.
type IndexEntry struct {
	Title    string
	Path     string
	Children []IndexEntry
}

// Anchors holds the link fragments of the scenario and titled table
// headings of one suite document.
type Anchors struct {
	Scenarios map[*doctree.Scenario]string
	Tables    map[*doctree.Table]string
}

// Renderer converts a frozen tree to text.
type Renderer interface {
	Format() Format
	// Render returns the whole tree as one document.
	Render(tree *doctree.Tree) (string, error)
	// RenderSuite returns the document for one suite of a frozen tree.
	RenderSuite(s *doctree.Suite) (string, error)
	// RenderIndex returns a document linking to other documents.
	RenderIndex(title string, entries []IndexEntry) (string, error)
	// Anchors returns the fragments RenderSuite gives s's headings.
	Anchors(s *doctree.Suite) Anchors
}

// New returns the renderer for f. Template formats are loaded from
// opts.TemplateDir.
func New(f Format, opts Options) (Renderer, error) {
	switch f {
	case Markdown:
		return NewMarkdown(opts), nil
	case AsciiDoc:
		return NewAsciiDoc(), nil
	}
	t, err := LoadTemplates(opts.TemplateDir, f)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Options tune renderer output.
type Options struct {
	// Align pads Markdown table cells to a common display width.
	Align bool
	// TemplateDir holds suite.<format>.tmpl and index.<format>.tmpl files.
	TemplateDir string
}

const consolidatedTitle = "Table Tests"

// joinBlocks separates non-empty blocks by one blank line and ends the
// document with a single newline.
func joinBlocks(blocks []string) string {
	kept := blocks[:0:0]
	for _, b := range blocks {
		if b = strings.TrimRight(b, "\n"); b != "" {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n\n") + "\n"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// verdictWord is the lowercase verdict used in failure listings.
func verdictWord(v string) string {
	if v == "" {
		return "failed"
	}
	return v
}

// headingIDs assigns fragments to the headings of one document in order.
// The first use of a base keeps it; later uses get dup(base, n), n from 1.
type headingIDs struct {
	id   func(title string) string
	dup  func(base string, n int) string
	seen map[string]int
}

func (h *headingIDs) next(title string) string {
	base := h.id(title)
	n := h.seen[base]
	h.seen[base] = n + 1
	if n == 0 {
		return base
	}
	return h.dup(base, n)
}

// outline walks the headings of a suite document. countSuite is set when
// the suite title itself takes a fragment.
func outline(s *doctree.Suite, countSuite bool, id func(string) string, dup func(string, int) string) Anchors {
	h := &headingIDs{id: id, dup: dup, seen: map[string]int{}}
	a := Anchors{Scenarios: map[*doctree.Scenario]string{}, Tables: map[*doctree.Table]string{}}
	if countSuite {
		h.next(s.Title)
	}
	for _, sc := range s.Scenarios {
		a.Scenarios[sc] = h.next(sc.Title)
		for _, t := range sc.Tables {
			if t.Title != "" {
				a.Tables[t] = h.next(t.Title)
			}
		}
	}
	return a
}
