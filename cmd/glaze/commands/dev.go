package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/glaze/internal/app"
)

func (c *CLI) newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Build, then rebuild on changes and serve with live reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			noServer, _ := cmd.Flags().GetBool("no-server")

			return c.app.Dev(cmd.Context(), app.DevOptions{
				BuildOptions: buildOptions(cmd),
				Host:         host,
				Port:         port,
				NoServer:     noServer,
			})
		},
	}
	cmd.Flags().StringP("host", "H", "", "Host to bind the dev server to (default from glaze.yaml, then localhost)")
	cmd.Flags().IntP("port", "p", 0, "Port to bind the dev server to (default from glaze.yaml, then 3000)")
	cmd.Flags().Bool("no-server", false, "Watch and rebuild without serving")
	return cmd
}
