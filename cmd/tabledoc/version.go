package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/tabledoc/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tabledoc",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tabledoc version %s\n", version.String())
		},
	}
}
