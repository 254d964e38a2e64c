package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dkoosis/tabledoc"
)

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// writeSummaryTable lists every document with its outcome, followed by the
// run totals.
func writeSummaryTable(w io.Writer, res *tabledoc.Result, outputDir string) error {
	if len(res.Documents) > 0 {
		docs := newTable(w, []string{"Document", "Outcome"})
		for _, d := range res.Documents {
			if err := docs.Append([]string{displayPath(outputDir, d.Path), string(d.Outcome)}); err != nil {
				return err
			}
		}
		if err := docs.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	totals := newTable(w, []string{"Written", "Unchanged", "Tables dropped", "Consistency errors", "Rejected rows", "Malformed"})
	if err := totals.Append([]string{
		fmt.Sprint(res.Written),
		fmt.Sprint(res.Unchanged),
		fmt.Sprint(res.TablesDropped),
		fmt.Sprint(len(res.ConsistencyErrors)),
		fmt.Sprint(res.Rejected),
		fmt.Sprint(res.Malformed),
	}); err != nil {
		return err
	}
	return totals.Render()
}
