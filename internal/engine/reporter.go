package engine

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/mwalters/relint/internal/filelock"
)

// Reporter emits per-file outcomes to the operator-facing error stream
// and, in fix mode, persists corrected content. It is the only component
// that ever mutates the filesystem, and each write is atomic: a crash
// mid-write leaves the target file in its prior state.
//
// Colors are passed in explicitly rather than read from process-wide
// state, so tests and the re-invoked fix pipeline control their own
// formatting.
type Reporter struct {
	out      io.Writer
	root     string
	colorize bool

	fail   *color.Color
	header *color.Color
}

// NewReporter creates a Reporter writing diagnostics to out and files
// under root (relative violation paths resolve against it).
func NewReporter(out io.Writer, root string, colorize bool) *Reporter {
	return &Reporter{
		out:      out,
		root:     root,
		colorize: colorize,
		fail:     color.New(color.FgRed),
		header:   color.New(color.FgCyan, color.Bold),
	}
}

// Process walks one checker's collected outcomes in order. For each failed
// or changed path it prints a diagnostic and records a violation; paths
// with unchanged content record nothing. In fix mode changed files are
// rewritten atomically; a failed write aborts with a WriteFailure since
// the outcome can no longer be trusted.
func (r *Reporter) Process(mode Mode, outcomes []FileOutcome) ([]Violation, error) {
	var violations []Violation

	for _, outcome := range outcomes {
		if outcome.Failure != nil {
			fmt.Fprintf(r.out, "File %s lint failed:\n%s\n",
				r.paint(r.fail, outcome.Path), outcome.Failure.Message)
			violations = append(violations, Violation{Path: outcome.Path, Fixable: outcome.Failure.Fixable})
			continue
		}

		if !outcome.Changed() {
			continue
		}

		if mode == ModeValidate {
			fmt.Fprintf(r.out, "File %s lint failed: %s\n",
				r.paint(r.header, outcome.Path), r.paintAll(r.fail, outcome.Violations))
			violations = append(violations, Violation{Path: outcome.Path, Fixable: true})
			continue
		}

		// Fix mode. A successful rewrite is definitionally fixable.
		fmt.Fprintf(r.out, "Fixing %s\n", r.paint(r.header, outcome.Path))
		if err := filelock.Rewrite(r.resolve(outcome.Path), outcome.Corrected); err != nil {
			return nil, &WriteFailure{Path: outcome.Path, Err: err}
		}
		violations = append(violations, Violation{Path: outcome.Path, Fixable: true})
	}

	return violations, nil
}

// Errorf prints an operator-facing message to the error stream.
func (r *Reporter) Errorf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Failf prints an operator-facing message with the failure color applied
// to the whole line.
func (r *Reporter) Failf(format string, args ...any) {
	r.Errorf("%s", r.paint(r.fail, fmt.Sprintf(format, args...)))
}

func (r *Reporter) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.root, path)
}

func (r *Reporter) paint(c *color.Color, s string) string {
	if !r.colorize {
		return s
	}
	return c.Sprint(s)
}

func (r *Reporter) paintAll(c *color.Color, items []string) string {
	if len(items) == 0 {
		return r.paint(c, "content requires fixes")
	}
	painted := make([]string, len(items))
	for i, item := range items {
		painted[i] = r.paint(c, item)
	}
	return strings.Join(painted, ", ")
}
