package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build all assets once",
		Long: "Build cleans the output directory, copies static assets, aggregates the vendor\n" +
			"bundles, compiles scripts and styles and renders the pages.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), options(cmd))
		},
	}
	cmd.Flags().Bool("prod", false, "Build for production: minified output without source maps")
	return cmd
}
