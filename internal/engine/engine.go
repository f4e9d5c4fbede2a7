// Package engine implements the lint orchestration core: checker dispatch,
// per-file and whole-set execution, violation aggregation, and the
// fix-vs-validate outcome decision with its bounded auto-fix retry.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mwalters/relint/internal/cache"
	"github.com/mwalters/relint/internal/checker"
	"github.com/mwalters/relint/internal/config"
	"github.com/mwalters/relint/internal/logger"
	"github.com/mwalters/relint/internal/source"
)

// Logger is the logging surface the engine needs. A nil Logger disables
// logging; reporter output is unaffected.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Engine runs an ordered roster of checkers over a candidate file list and
// decides the terminal outcome.
type Engine struct {
	Registry *checker.Registry
	Source   source.ContentSource
	Origin   source.Origin
	Reporter *Reporter
	Logger   Logger

	// Cache is the optional clean-verdict cache; nil disables it.
	Cache *cache.Store

	// Jobs bounds the per-file worker pool (0 = twice the number of CPUs).
	Jobs int

	// Prompt gates the auto-fix retry in validate mode. nil means proceed
	// without asking (the non-interactive behavior).
	Prompt func(question string) bool

	// FixCommand renders the manual fix command line shown to the operator
	// when automatic fixing is declined or incomplete. nil omits the hint.
	FixCommand func(paths []string) string

	// restrict, when non-nil, narrows which paths may be reported or
	// rewritten. The auto-fix retry sets it to the fixable paths of the
	// prior pass: checkers still observe their full file set (a cross-file
	// checker needs the complete set to compute a fix for the violating
	// member), but outcomes for other paths are discarded before the
	// reporter runs.
	restrict map[string]bool
}

// NewEngine constructs an Engine with the required collaborators. Optional
// fields (Cache, Prompt, FixCommand, Logger, Jobs) are set directly on the
// returned value.
func NewEngine(registry *checker.Registry, src source.ContentSource, reporter *Reporter) *Engine {
	return &Engine{
		Registry: registry,
		Source:   src,
		Reporter: reporter,
	}
}

// Run executes the full pipeline: resolve every checker in the roster
// (failing fast before any work if one is unknown), run them in order,
// aggregate violations, and decide the outcome. In validate mode a fixable
// session triggers exactly one auto-fix retry, modeled as a recursive
// fix-mode run whose writes are restricted to the fixable paths.
//
// The returned error is fatal (ConfigurationError, WriteFailure, context
// cancellation); per-file and per-batch CheckFailures never surface here,
// they are folded into the SessionResult.
func (e *Engine) Run(ctx context.Context, roster []config.CheckerSpec, files []string, mode Mode) (Outcome, *SessionResult, error) {
	runID := uuid.New().String()
	e.logDebug(fmt.Sprintf("run %s: mode %s, %d candidate files, %d checkers",
		runID, mode, len(files), len(roster)))

	// Resolve the whole roster up front: an unknown checker name aborts
	// the run before any file is read or written.
	checkers := make([]checker.Checker, len(roster))
	for i, spec := range roster {
		chk, err := e.Registry.New(spec.Name, spec.Options)
		if err != nil {
			return OutcomeUnfixableErrors, nil, NewConfigurationError(
				fmt.Sprintf("cannot resolve checker %q", spec.Name), err)
		}
		// A checker must choose one execution shape. Running both phases
		// against the same pre-fix snapshot would produce two outcomes per
		// path, and in fix mode the second write would clobber the first.
		if _, perFile := chk.(checker.PerFile); perFile {
			if _, wholeSet := chk.(checker.WholeSet); wholeSet {
				return OutcomeUnfixableErrors, nil, NewConfigurationError(
					fmt.Sprintf("checker %q implements both per-file and whole-set execution", spec.Name), nil)
			}
		}
		checkers[i] = chk
	}

	session := NewSessionResult()
	for i, spec := range roster {
		violations, err := e.runChecker(ctx, spec, checkers[i], files, mode)
		if err != nil {
			return OutcomeUnfixableErrors, session, err
		}
		e.logDebug(fmt.Sprintf("run %s: checker %s reported %d violation(s)",
			runID, spec.Name, len(violations)))
		session.AddAll(violations)
	}
	e.logDebug(fmt.Sprintf("run %s: %d violating path(s) total", runID, session.Len()))

	return e.decide(ctx, roster, files, session, mode)
}

// runChecker executes one checker: filter, execute (per-file and whole-set
// phases concurrently), report, aggregate. It blocks until every task for
// this checker finishes; the next checker sees a fully resolved state,
// including any files the reporter just rewrote.
func (e *Engine) runChecker(ctx context.Context, spec config.CheckerSpec, chk checker.Checker, files []string, mode Mode) ([]Violation, error) {
	filtered, err := FilterPaths(files, spec.Include, spec.Exclude)
	if err != nil {
		return nil, NewConfigurationError(fmt.Sprintf("checker %q", spec.Name), err)
	}
	e.logDebug(fmt.Sprintf("%s: %d of %d files to consider", spec.Name, len(filtered), len(files)))
	if len(filtered) == 0 {
		return nil, nil
	}

	cacheKey := spec.Name + ":" + optionsDigest(spec.Options)

	// A restricted run narrows what a per-file checker processes, but a
	// whole-set checker always sees its full filtered set: it may need
	// files outside the restriction to compute fixes for those inside it.
	perFilePaths := filtered
	if e.restrict != nil {
		perFilePaths = intersectPaths(filtered, e.restrict)
	}

	var perFileOutcomes, wholeSetOutcomes []FileOutcome
	g, gctx := errgroup.WithContext(ctx)
	if pf, ok := chk.(checker.PerFile); ok {
		g.Go(func() error {
			var err error
			perFileOutcomes, err = e.runPerFile(gctx, pf, cacheKey, perFilePaths)
			return err
		})
	}
	if ws, ok := chk.(checker.WholeSet); ok {
		g.Go(func() error {
			var err error
			wholeSetOutcomes, err = e.runWholeSet(gctx, ws, filtered)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcomes := append(perFileOutcomes, wholeSetOutcomes...)
	if e.restrict != nil {
		kept := make([]FileOutcome, 0, len(outcomes))
		for _, o := range outcomes {
			if e.restrict[o.Path] {
				kept = append(kept, o)
			}
		}
		outcomes = kept
	}
	return e.Reporter.Process(mode, outcomes)
}

// intersectPaths keeps the paths present in keep, preserving order.
func intersectPaths(paths []string, keep map[string]bool) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if keep[p] {
			out = append(out, p)
		}
	}
	return out
}

// decide computes the terminal outcome from the accumulated session.
func (e *Engine) decide(ctx context.Context, roster []config.CheckerSpec, files []string, session *SessionResult, mode Mode) (Outcome, *SessionResult, error) {
	if session.Empty() {
		e.logInfo("no lint violations")
		return OutcomeClean, session, nil
	}

	if !session.AnyFixable() {
		e.Reporter.Failf("Errors cannot be automatically fixed.")
		return OutcomeUnfixableErrors, session, nil
	}

	if mode == ModeFix {
		e.Reporter.Errorf("Files written to working tree. Please commit them before pushing.")
		return OutcomeWrittenToDisk, session, nil
	}

	// Validate mode with fixable violations: exactly one bounded retry,
	// re-running the pipeline in fix mode with writes restricted to the
	// fixable paths. Fix mode never retries, so the recursion depth is
	// bounded at one.
	fixable := session.FixablePaths()

	if e.Prompt != nil && !e.Prompt(fmt.Sprintf("Fix %d file(s) automatically?", len(fixable))) {
		e.reportFixHint(fixable)
		return OutcomeValidationFailedUnfixable, session, nil
	}

	retry := e.retryEngine(fixable)
	e.logInfo(fmt.Sprintf("attempting automatic fixes for %d file(s)", len(fixable)))
	_, retrySession, err := retry.Run(ctx, roster, files, ModeFix)
	if err != nil {
		return OutcomeValidationFailedUnfixable, session, err
	}

	// A fix run records a violation for every file it repaired, so a
	// fixable path absent from the retry session was not rewritten. Only
	// claim success when every fixable path was actually repaired and
	// nothing unfixable remained.
	repaired := !retrySession.HasUnfixable()
	for _, p := range fixable {
		if !retrySession.Contains(p) {
			repaired = false
			break
		}
	}
	if !repaired {
		e.reportFixHint(fixable)
		return OutcomeValidationFailedUnfixable, session, nil
	}

	e.Reporter.Failf("Lint validation errors.")
	e.Reporter.Errorf("Violations were fixed on disk. Please review and commit the changes.")
	return OutcomeValidationFailedFixed, session, nil
}

// retryEngine clones the engine for the re-invoked fix pipeline: no
// prompting, no logging (the operator already saw the validate output;
// only reporter diagnostics matter here), corrected content always read
// from the working tree so the retry fixes what is actually on disk, and
// writes restricted to the given fixable paths.
func (e *Engine) retryEngine(fixable []string) *Engine {
	retry := *e
	retry.Prompt = nil
	retry.Origin = source.WorkingTree
	retry.Logger = logger.NewNoOpLogger()
	retry.restrict = make(map[string]bool, len(fixable))
	for _, p := range fixable {
		retry.restrict[p] = true
	}
	return &retry
}

func (e *Engine) reportFixHint(fixable []string) {
	e.Reporter.Failf("Lint validation errors.")
	if e.FixCommand != nil {
		e.Reporter.Errorf("Please run `%s` to fix them.", e.FixCommand(fixable))
	}
}

// optionsDigest derives a short stable digest of a checker's options blob,
// so cached verdicts are invalidated when the configuration changes.
func optionsDigest(opts map[string]any) string {
	if len(opts) == 0 {
		return "default"
	}
	data, err := yaml.Marshal(opts)
	if err != nil {
		return "unhashed"
	}
	return cache.HashContent(data)[:12]
}

func (e *Engine) logTrace(message string) {
	if e.Logger != nil {
		e.Logger.LogTrace(message)
	}
}

func (e *Engine) logDebug(message string) {
	if e.Logger != nil {
		e.Logger.LogDebug(message)
	}
}

func (e *Engine) logInfo(message string) {
	if e.Logger != nil {
		e.Logger.LogInfo(message)
	}
}

func (e *Engine) logWarn(message string) {
	if e.Logger != nil {
		e.Logger.LogWarn(message)
	}
}
