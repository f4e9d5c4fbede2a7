package engine

import (
	"errors"
	"fmt"
)

// ConfigurationError is fatal and aborts the whole run before any checker
// does work: unknown checker names, malformed patterns, malformed
// configuration documents. No partial output is produced.
type ConfigurationError struct {
	Message string
	Err     error
}

// NewConfigurationError creates a ConfigurationError wrapping err.
func NewConfigurationError(message string, err error) *ConfigurationError {
	return &ConfigurationError{Message: message, Err: err}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration: %s", e.Message)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// WriteFailure means corrected content could not be persisted. It is fatal
// for the run: the Outcome cannot be trusted if a write silently failed.
// The atomic write discipline guarantees the target file itself is not
// corrupted.
type WriteFailure struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *WriteFailure) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *WriteFailure) Unwrap() error {
	return e.Err
}

// IsConfigurationError checks if the error is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsWriteFailure checks if the error is or wraps a WriteFailure.
func IsWriteFailure(err error) bool {
	var wf *WriteFailure
	return errors.As(err, &wf)
}
