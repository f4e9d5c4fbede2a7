package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for relint
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relint",
		Short: "Multi-checker lint runner with automatic fixing",
		Long: `Relint runs an ordered roster of content checkers over a set of files
and either reports violations or rewrites the files in place.

The checker roster is loaded from .relint/config.yaml: each checker names
the include/exclude patterns that select its files, plus checker-specific
options. Checkers run in document order; per-file work within a checker is
parallelized.`,
		Version: Version,
		// Silence usage and cobra's own error echo; main owns the error
		// banner and the lint-failed sentinel must stay quiet.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewFixCommand())
	cmd.AddCommand(NewCheckersCommand())

	return cmd
}
