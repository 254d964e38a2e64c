package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/tabledoc/pkg/render"
)

func newFormatsCmd() *cobra.Command {
	var templateDir string
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the supported output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			custom, err := render.DiscoverFormats(templateDir)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), []string{"Format", "Extension", "Aliases"})
			aliases := map[render.Format]string{
				render.Markdown: "md",
				render.AsciiDoc: "adoc, asciidoctor, structured-markup",
			}
			for _, f := range append(render.Formats(), custom...) {
				alias := aliases[f]
				if !f.Builtin() {
					alias = "(template)"
				}
				if err := t.Append([]string{string(f), f.Extension(), alias}); err != nil {
					return err
				}
			}
			return t.Render()
		},
	}
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Also list template formats found in this directory")
	return cmd
}
