package fstage

import "time"

// Exit codes returned by the fstage binary.
// Kept stable for scripting; see ExitCodeForError.
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitUsageError     = 2
	ExitPanic          = 3
	ExitConfigError    = 10
	ExitApprovalDenied = 12
	ExitApplyFailed    = 13
)

// DefaultReadBufferSize is the buffer size used when streaming file contents
// for digest computation and content comparison.
const DefaultReadBufferSize = 64 * 1024

// DefaultForceApprovalCountdown is how long the forced approver counts down
// before auto-approving a destructive apply.
const DefaultForceApprovalCountdown = 5 * time.Second
