package fstage

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := queue.Apply(fs, calc, root, logger)
//	if errors.Is(err, fstage.ErrNotFound) {
//	    // Handle a missing source path
//	}
var (
	// ErrInvalidArgument indicates an API invariant violation caught at the
	// boundary (non-prefix paths, absolute/relative mismatch, non-positive
	// undo count). Never routed through an ErrorPolicy.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates a path does not exist on the filesystem.
	ErrNotFound = errors.New("path not found")

	// ErrAlreadyExists indicates a path unexpectedly exists.
	ErrAlreadyExists = errors.New("path already exists")

	// ErrAccessDenied indicates the filesystem refused the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrFilesystemLoop indicates a symbolic link cycle was detected while
	// following links.
	ErrFilesystemLoop = errors.New("filesystem loop detected")

	// ErrAtomicMoveUnsupported indicates an atomic rename could not be
	// performed, typically because source and target live on different
	// devices.
	ErrAtomicMoveUnsupported = errors.New("atomic move not supported")

	// ErrInvalidPath indicates a path converter rejected a path for the
	// target filesystem.
	ErrInvalidPath = errors.New("invalid path for target filesystem")

	// ErrApprovalDenied indicates the user denied approval for an apply.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrApplyFailed indicates a queued action failed during apply.
	ErrApplyFailed = errors.New("apply failed")

	// ErrConfigInvalid indicates the project configuration could not be used.
	ErrConfigInvalid = errors.New("invalid configuration")
)

// IOError is the single catchable I/O-failure condition reported by the
// filesystem layer. Kind is always one of the I/O sentinel errors above (or
// nil for unclassified failures), so errors.Is(err, fstage.ErrNotFound) and
// friends work on any wrapped IOError.
type IOError struct {
	Op   string // operation that failed, e.g. "rename", "readdir"
	Path string // path the operation was applied to
	Kind error  // matching sentinel, nil if unclassified
	Err  error  // underlying cause
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's kind.
func (e *IOError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewIOError builds an IOError. Kind may be nil for unclassified failures.
func NewIOError(op, path string, kind, err error) *IOError {
	return &IOError{Op: op, Path: path, Kind: kind, Err: err}
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// ErrApplyFailed comes first: Apply joins it with the underlying cause,
	// and the cause (an argument or config error) must not reclassify a
	// failed apply.
	switch {
	case errors.Is(err, ErrApplyFailed):
		return ExitApplyFailed
	case errors.Is(err, ErrInvalidArgument):
		return ExitUsageError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConfigInvalid):
		return ExitConfigError
	}

	// Cobra reports flag and argument misuse as plain errors.
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
