package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mwalters/relint/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Lint violations were already reported; anything else gets the
		// generic error banner.
		if !errors.Is(err, cmd.ErrLintFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
