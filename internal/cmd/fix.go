package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mwalters/relint/internal/engine"
)

// NewFixCommand creates the fix command
func NewFixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <file-or-directory>...",
		Short: "Rewrite files to resolve fixable lint violations",
		Long: `Run the configured checker roster and write corrected content back to
the working tree. Each write is atomic; an interrupted run never leaves a
half-written file behind.

The command exits nonzero whenever violations were found, including ones
it fixed: rewritten files still need review and a commit.

Examples:
  # Fix everything under the current directory
  relint fix .

  # Fix specific files with more workers
  relint fix --jobs 8 docs/ README.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, engine.ModeFix)
		},
	}

	addLintFlags(cmd)

	return cmd
}
