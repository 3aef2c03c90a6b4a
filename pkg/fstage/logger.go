package fstage

import "context"

// Logger provides logging capabilities for fstage operations.
// Implementations must be safe for sequential reuse across operations.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only shown when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}

// Approver handles user approval for destructive operations. Applying a
// change queue modifies the real filesystem with no rollback, so the CLI
// requests approval before committing.
type Approver interface {
	// RequestApproval asks for permission to apply staged actions under
	// rootPath. Returns true if approved, false if denied.
	// The error is only used for system failures, not for denial.
	RequestApproval(ctx context.Context, rootPath string) (bool, error)
}
