package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwalters/relint/internal/checker"
)

// NewCheckersCommand creates the checkers command
func NewCheckersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checkers",
		Short: "List the built-in checkers and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := checker.NewRegistry()
			for _, name := range registry.Names() {
				chk, err := registry.New(name, nil)
				if err != nil {
					return fmt.Errorf("failed to instantiate checker %q: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, strings.Join(capabilities(chk), ", "))
			}
			return nil
		},
	}
}

// capabilities names the execution modes a checker participates in.
func capabilities(chk checker.Checker) []string {
	var caps []string
	if _, ok := chk.(checker.PerFile); ok {
		caps = append(caps, "per-file")
	}
	if _, ok := chk.(checker.WholeSet); ok {
		caps = append(caps, "whole-set")
	}
	return caps
}
