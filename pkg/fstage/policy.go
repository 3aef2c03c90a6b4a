package fstage

import "fmt"

// ErrorPolicy decides how a per-file I/O failure encountered during a walk
// is handled. Policies only ever route I/O failures; argument errors are
// reported immediately regardless of policy.
type ErrorPolicy int

const (
	// Rethrow aborts the entire operation. The caller must assume the real
	// filesystem is left in a partially-modified, undefined state; no
	// automatic rollback exists anywhere in this system. This is the
	// default for all actions.
	Rethrow ErrorPolicy = iota

	// Skip continues with the next sibling/entry, excluding the offending
	// entry from the result.
	Skip

	// Terminate stops walking further entries in the current operation,
	// keeping what has been processed so far.
	Terminate
)

// String returns the policy's configuration identifier.
func (p ErrorPolicy) String() string {
	switch p {
	case Rethrow:
		return "rethrow"
	case Skip:
		return "skip"
	case Terminate:
		return "terminate"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParseErrorPolicy converts a configuration identifier into an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "rethrow":
		return Rethrow, nil
	case "skip":
		return Skip, nil
	case "terminate":
		return Terminate, nil
	default:
		return Rethrow, fmt.Errorf("%w: unknown error policy %q (want rethrow, skip or terminate)", ErrInvalidArgument, s)
	}
}
