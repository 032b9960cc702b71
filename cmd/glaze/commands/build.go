package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run every task once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := buildOptions(cmd)
			opts.OutputMode, _ = cmd.Flags().GetString("output-mode")
			return c.app.Build(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringP("output-mode", "o", "auto", "Progress output: auto, tui, or linear")

	return cmd
}
