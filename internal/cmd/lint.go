package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mwalters/relint/internal/cache"
	"github.com/mwalters/relint/internal/checker"
	"github.com/mwalters/relint/internal/config"
	"github.com/mwalters/relint/internal/engine"
	"github.com/mwalters/relint/internal/filelock"
	"github.com/mwalters/relint/internal/fileutil"
	"github.com/mwalters/relint/internal/logger"
	"github.com/mwalters/relint/internal/source"
)

// ErrLintFailed signals a completed run that found violations. main exits
// nonzero without printing the generic error banner; the reporter already
// said everything worth saying.
var ErrLintFailed = errors.New("lint failed")

// addLintFlags registers the flags shared by validate and fix.
func addLintFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .relint/config.yaml)")
	cmd.Flags().Int("jobs", -1, "Maximum concurrent file checks (0 = twice the CPU count, -1 = use config)")
	cmd.Flags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	cmd.Flags().Bool("non-interactive", false, "Never prompt; assume yes for automatic fixes")
}

// loadLintConfig loads the configuration, merges flag overrides and
// validates the result.
func loadLintConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only non-default values)
	var jobsPtr *int
	if cmd.Flags().Changed("jobs") {
		jobs, _ := cmd.Flags().GetInt("jobs")
		jobsPtr = &jobs
	}

	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &level
	}

	cfg.MergeWithFlags(jobsPtr, logLevelPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runLint is the shared pipeline behind validate and fix.
func runLint(cmd *cobra.Command, args []string, mode engine.Mode) error {
	cfg, err := loadLintConfig(cmd)
	if err != nil {
		return err
	}

	files, err := fileutil.ExpandArgs(args)
	if err != nil {
		return fmt.Errorf("failed to resolve file arguments: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files to lint.\n")
		return nil
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	eng := engine.NewEngine(
		checker.NewRegistry(),
		source.NewTreeSource(root),
		engine.NewReporter(errOut, root, colorizeFor(errOut)),
	)
	eng.Logger = logger.NewConsoleLogger(errOut, cfg.LogLevel)
	eng.Jobs = cfg.MaxConcurrency
	eng.FixCommand = func(paths []string) string {
		return "relint fix " + strings.Join(paths, " ")
	}

	if cached, _ := cmd.Flags().GetBool("cached"); cached {
		eng.Origin = source.SourceControlIndex
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(resolvePath(root, cfg.Cache.Path))
		if err != nil {
			return fmt.Errorf("failed to open verdict cache: %w", err)
		}
		defer store.Close()
		eng.Cache = store
	}

	// Writers race with each other, so only one fix-capable run may touch
	// the tree at a time. Validate runs still write through the auto-fix
	// retry, so both modes take the lock.
	lock := filelock.NewRunLock(filepath.Join(root, ".relint", "lock"))
	if err := lock.Acquire(); err != nil {
		return fmt.Errorf("another relint run is already writing to this tree: %w", err)
	}
	defer lock.Release()

	if mode == engine.ModeValidate && isInteractive(cmd) {
		eng.Prompt = stdinPrompt(cmd.InOrStdin(), errOut)
	}

	outcome, session, err := eng.Run(cmd.Context(), cfg.Checkers, files, mode)
	if err != nil {
		return err
	}

	if outcome == engine.OutcomeClean {
		fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) checked, no violations.\n", len(files))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) checked, %d with violations.\n", len(files), session.Len())
	return ErrLintFailed
}

// isInteractive reports whether the run may prompt: stdin is a terminal,
// --non-interactive was not given, and we are not inside CI.
func isInteractive(cmd *cobra.Command) bool {
	if nonInteractive, _ := cmd.Flags().GetBool("non-interactive"); nonInteractive {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	stdin, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd())
}

// stdinPrompt asks a yes/no question on the error stream and reads one
// line. Anything but an explicit yes declines.
func stdinPrompt(in io.Reader, out io.Writer) func(string) bool {
	reader := bufio.NewReader(in)
	return func(question string) bool {
		fmt.Fprintf(out, "%s [y/N] ", question)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func colorizeFor(w io.Writer) bool {
	if w == os.Stdout || w == os.Stderr {
		return !color.NoColor
	}
	return false
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
