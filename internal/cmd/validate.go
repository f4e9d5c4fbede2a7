package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mwalters/relint/internal/engine"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-directory>...",
		Short: "Check files for lint violations without modifying them",
		Long: `Check the given files against the configured checker roster.

Directories are expanded recursively. Violations are reported to stderr;
the command exits 0 only when every file is clean.

When fixable violations are found, validate attempts one automatic fix
pass. On a terminal it asks first; with --non-interactive (or under CI)
it fixes without asking. Files repaired this way still fail the run so
the changes get reviewed and committed.

Examples:
  # Validate the whole tree
  relint validate .

  # Validate specific files
  relint validate README.md frontend/i18n/en.json

  # Validate the staged (index) content instead of the working tree
  relint validate --cached .

  # CI usage: no prompts, machine-friendly
  CI=1 relint validate --non-interactive --log-level warn .`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, engine.ModeValidate)
		},
	}

	addLintFlags(cmd)
	cmd.Flags().Bool("cached", false, "Read file content from the source control index (staged blobs)")

	return cmd
}
