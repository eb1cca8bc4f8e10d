package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/core/domain"
)

func (c *CLI) newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Build, then serve the output and rebuild on change",
		Long: "Dev runs a full build, serves the output directory with live reload and\n" +
			"rebuilds only the targets affected by each file change until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Dev(cmd.Context(), options(cmd))
		},
	}
	cmd.Flags().Bool("prod", false, "Build for production: minified output without source maps")
	cmd.Flags().IntP("port", "p", 8080, "Preview server port")
	cmd.Flags().String("host", "localhost", "Preview server host")
	cmd.Flags().Duration("debounce", domain.DefaultDebounce, "Window for coalescing file events")
	return cmd
}
