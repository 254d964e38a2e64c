package render

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/tabledoc/pkg/doctree"
	"github.com/dkoosis/tabledoc/pkg/naming"
)

// Layout selects how suites map to files.
type Layout string

const (
	PerSuite     Layout = "per-suite"
	Consolidated Layout = "consolidated"
)

// DocumentKind distinguishes suite documents from generated indexes.
type DocumentKind string

const (
	KindSuite        DocumentKind = "suite"
	KindIndex        DocumentKind = "index"
	KindConsolidated DocumentKind = "consolidated"
)

// Document is one rendered output file. Path is relative to the output
// directory and uses forward slashes.
type Document struct {
	Path    string
	Kind    DocumentKind
	SuiteID string
	Title   string
	Content string
}

// MaxIndexDepth lists suites, scenarios and titled tables.
const MaxIndexDepth = 3

// LayoutOptions control Documents.
type LayoutOptions struct {
	Layout Layout
	Index  bool
	// IndexTitle heads the index or consolidated document.
	IndexTitle string
	// IndexDepth is the number of levels the index lists: 1 (or less)
	// lists suites, 2 adds scenarios and 3 adds titled tables.
	IndexDepth int
	// Workers bounds concurrent suite rendering; zero means one per suite.
	Workers int
}

// Documents renders tree into files. Suites render concurrently into fixed
// slots, so the result order follows the tree, never scheduling.
func Documents(ctx context.Context, r Renderer, tree *doctree.Tree, opts LayoutOptions) ([]Document, error) {
	if err := tree.RequireFrozen("render"); err != nil {
		return nil, err
	}
	title := opts.IndexTitle
	if title == "" {
		title = consolidatedTitle
	}
	ext := r.Format().Extension()

	if opts.Layout == Consolidated {
		text, err := r.Render(tree)
		if err != nil {
			return nil, err
		}
		return []Document{{Path: "tables" + ext, Kind: KindConsolidated, Title: title, Content: text}}, nil
	}

	names := FileNames(tree)
	docs := make([]Document, len(tree.Suites))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, s := range tree.Suites {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := r.RenderSuite(s)
			if err != nil {
				return fmt.Errorf("rendering suite %s: %w", s.ID, err)
			}
			docs[i] = Document{
				Path:    names[s.ID] + ext,
				Kind:    KindSuite,
				SuiteID: s.ID,
				Title:   s.Title,
				Content: text,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Index && len(docs) > 0 {
		entries := make([]IndexEntry, len(docs))
		for i, d := range docs {
			entries[i] = indexEntry(r, tree.Suites[i], d.Path, opts.IndexDepth)
		}
		text, err := r.RenderIndex(title, entries)
		if err != nil {
			return nil, fmt.Errorf("rendering index: %w", err)
		}
		docs = append(docs, Document{
			Path:    "index" + ext,
			Kind:    KindIndex,
			Title:   title,
			Content: text,
		})
	}
	return docs, nil
}

// indexEntry links to a suite document and, below depth, to the headings
// inside it.
func indexEntry(r Renderer, s *doctree.Suite, path string, depth int) IndexEntry {
	e := IndexEntry{Title: s.Title, Path: path}
	if depth < 2 {
		return e
	}
	anchors := r.Anchors(s)
	for _, sc := range s.Scenarios {
		child := IndexEntry{Title: sc.Title, Path: path + "#" + anchors.Scenarios[sc]}
		if depth >= 3 {
			for _, t := range sc.Tables {
				if id, ok := anchors.Tables[t]; ok {
					child.Children = append(child.Children, IndexEntry{Title: t.Title, Path: path + "#" + id})
				}
			}
		}
		e.Children = append(e.Children, child)
	}
	return e
}

// FileNames maps suite ids to file stems. The stem is the slug of the
// suite's simple name; suites whose simple names collide use the slug of
// their full id, with a numeric suffix as a last resort.
func FileNames(tree *doctree.Tree) map[string]string {
	bySimple := make(map[string][]string)
	for _, s := range tree.Suites {
		stem := naming.Slug(naming.SimpleName(s.ID))
		bySimple[stem] = append(bySimple[stem], s.ID)
	}

	names := make(map[string]string, len(tree.Suites))
	used := make(map[string]bool, len(tree.Suites))
	stems := make([]string, 0, len(bySimple))
	for stem := range bySimple {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	for _, stem := range stems {
		if ids := bySimple[stem]; len(ids) == 1 && stem != "" && stem != "index" && stem != "tables" {
			names[ids[0]] = stem
			used[stem] = true
		}
	}
	for _, s := range tree.Suites {
		if _, ok := names[s.ID]; ok {
			continue
		}
		base := naming.Slug(s.ID)
		if base == "" {
			base = "suite"
		}
		stem := base
		for n := 2; used[stem] || stem == "index" || stem == "tables"; n++ {
			stem = base + "-" + strconv.Itoa(n)
		}
		names[s.ID] = stem
		used[stem] = true
	}
	return names
}
