package engine

// Mode selects whether the engine writes corrected content or only
// reports it.
type Mode int

const (
	// ModeValidate reports violations without touching disk, then may
	// trigger one bounded auto-fix retry.
	ModeValidate Mode = iota
	// ModeFix writes corrected content back to the working tree.
	ModeFix
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeValidate:
		return "validate"
	case ModeFix:
		return "fix"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of one run, computed once from the
// SessionResult and the run mode.
type Outcome int

const (
	// OutcomeClean means no violations at all.
	OutcomeClean Outcome = iota
	// OutcomeUnfixableErrors means violations exist and none can be fixed
	// automatically.
	OutcomeUnfixableErrors
	// OutcomeWrittenToDisk means a fix run rewrote files; the caller must
	// still review and commit them, so this is not a success.
	OutcomeWrittenToDisk
	// OutcomeValidationFailedFixed means a validate run found fixable
	// violations and the auto-fix retry repaired them on disk.
	OutcomeValidationFailedFixed
	// OutcomeValidationFailedUnfixable means a validate run found
	// violations the auto-fix retry could not (or was not allowed to)
	// repair.
	OutcomeValidationFailedUnfixable
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeClean:
		return "clean"
	case OutcomeUnfixableErrors:
		return "unfixable-errors"
	case OutcomeWrittenToDisk:
		return "written-to-disk"
	case OutcomeValidationFailedFixed:
		return "validation-failed-fixed"
	case OutcomeValidationFailedUnfixable:
		return "validation-failed-unfixable"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to the process exit status. Only a clean run
// succeeds; written fixes still require an explicit re-check and commit.
func (o Outcome) ExitCode() int {
	if o == OutcomeClean {
		return 0
	}
	return 1
}
