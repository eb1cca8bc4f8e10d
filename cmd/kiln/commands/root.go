// Package commands implements the CLI commands for the kiln asset build tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "Build and serve front-end assets with incremental rebuilds",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Info(),
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("root", "C", ".", "Project root directory")
	flags.String("log-format", domain.LogFormatAuto, "Log format: auto, pretty or json")
	flags.IntP("parallelism", "j", 0, "Maximum number of concurrently running tasks (0 uses all CPUs)")
	flags.Bool("verbose", false, "Enable debug logging")
	flags.StringP("output", "o", "build", "Output directory, relative to the project root")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newDevCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// options collects the project root and the merged flag set of cmd.
func options(cmd *cobra.Command) app.Options {
	root, _ := cmd.Flags().GetString("root")
	return app.Options{Root: root, Flags: cmd.Flags()}
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
