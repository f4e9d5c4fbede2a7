// Package checker defines the capability contract implemented by every
// pluggable checker, and the built-in checker roster.
//
// A checker is pure with respect to the orchestrator: given content it
// returns (possibly unchanged) corrected content plus violation
// descriptions. Checkers never perform their own I/O; content arrives from
// the engine and corrected content is written back by the engine's
// reporter.
package checker

import (
	"errors"
	"fmt"
)

// Checker is the common surface of every capability. Concrete checkers
// additionally implement exactly one of PerFile or WholeSet; the engine
// dispatches on those interfaces and rejects a checker claiming both, since
// two phases over the same pre-fix snapshot would race on the written file.
type Checker interface {
	Name() string
}

// ContentLookup returns the snapshot content for one of the filtered paths
// handed to a WholeSet checker. The engine prefetches all content before
// invoking the checker, so lookups never block on I/O.
type ContentLookup func(path string) ([]byte, error)

// PerFile is the capability variant that operates on one file's content
// independently of all others. CheckFile must be safe to call concurrently
// for distinct paths: implementations hold no per-call mutable state, or
// synchronize it internally.
//
// A returned error of type *CheckFailure means the checker could not
// process the content (for example unparseable input); the engine records
// it as a violation with the declared fixability instead of crashing.
type PerFile interface {
	Checker
	CheckFile(path string, content []byte) (newContent []byte, violations []string, err error)
}

// WholeSet is the capability variant that must see every candidate file at
// once, for cross-file consistency checks. It runs exactly once per checker
// invocation and is never parallelized internally.
//
// On failure the whole batch fails: the engine marks every filtered path
// with the failure's fixability, since no per-path resolution is possible.
type WholeSet interface {
	Checker
	CheckAll(paths []string, lookup ContentLookup) (newContents, originals map[string][]byte, violations []string, err error)
}

// CheckFailure reports that a checker could not process its input. Fixable
// declares whether a fix run could repair the condition; most parse-level
// failures cannot be fixed automatically.
type CheckFailure struct {
	Checker string
	Message string
	Fixable bool
}

// Error implements the error interface.
func (e *CheckFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Checker, e.Message)
}

// AsCheckFailure extracts a *CheckFailure from an error chain.
func AsCheckFailure(err error) (*CheckFailure, bool) {
	var cf *CheckFailure
	if errors.As(err, &cf) {
		return cf, true
	}
	return nil, false
}
