package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &generateOptions{}
	root := &cobra.Command{
		Use:   "tabledoc",
		Short: "Generate documentation from table-driven test results",
		Long: `tabledoc reads the row records left by table-driven tests and writes one
Markdown or AsciiDoc document per test suite, showing each table with its
expected and actual values.

Without a subcommand it behaves like "tabledoc generate".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	opts.bind(root)

	root.AddCommand(
		newGenerateCmd(),
		newFormatsCmd(),
		newPreviewCmd(),
		newVersionCmd(),
	)
	return root
}
