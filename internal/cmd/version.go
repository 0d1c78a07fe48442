package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "evan %s\n", a.build.Version)
			fmt.Fprintf(out, "Commit: %s\n", a.build.Commit)
			fmt.Fprintf(out, "Built: %s\n", a.build.Date)
			return nil
		},
	}
}
