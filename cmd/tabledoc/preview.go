package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "preview <file.md>",
		Short: "Render a generated Markdown document in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if ext := strings.ToLower(filepath.Ext(path)); ext != ".md" && ext != ".markdown" {
				return fmt.Errorf("preview supports Markdown documents only, got %s", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := []glamour.TermRendererOption{glamour.WithWordWrap(termWidth(out))}
			switch {
			case style != "":
				opts = append(opts, glamour.WithStandardStyle(style))
			case isTTYWriter(out):
				opts = append(opts, glamour.WithAutoStyle())
			default:
				opts = append(opts, glamour.WithStandardStyle("notty"))
			}
			r, err := glamour.NewTermRenderer(opts...)
			if err != nil {
				return fmt.Errorf("creating markdown renderer: %w", err)
			}
			rendered, err := r.Render(string(data))
			if err != nil {
				return fmt.Errorf("rendering %s: %w", path, err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "Glamour style (dark, light, notty, ...); default detects the terminal")
	return cmd
}
