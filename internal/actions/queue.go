package actions

import (
	"errors"
	"fmt"

	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// Queue is an ordered, undoable sequence of actions. Enqueued actions never
// touch the filesystem until Apply; the same queue can be replayed against
// multiple roots. Not safe for concurrent use.
type Queue struct {
	actions []Action
}

// NewQueue creates a queue holding the given actions in order.
func NewQueue(acts ...Action) *Queue {
	q := &Queue{}
	q.Enqueue(acts...)
	return q
}

// Enqueue appends actions in argument order.
func (q *Queue) Enqueue(acts ...Action) {
	q.actions = append(q.actions, acts...)
}

// Undo removes the last n queued actions, returning the count actually
// removed (capped at the queue length). n must be positive.
func (q *Queue) Undo(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: undo count must be positive, got %d", fstage.ErrInvalidArgument, n)
	}
	if n > len(q.actions) {
		n = len(q.actions)
	}
	q.actions = q.actions[:len(q.actions)-n]
	return n, nil
}

// Clear removes all queued actions, returning the count removed.
func (q *Queue) Clear() int {
	n := len(q.actions)
	q.actions = nil
	return n
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	return len(q.actions)
}

// Actions returns a copy of the queued action sequence.
func (q *Queue) Actions() []Action {
	out := make([]Action, len(q.actions))
	copy(out, q.actions)
	return out
}

// Equal reports whether two queues hold equal action sequences.
func (q *Queue) Equal(other *Queue) bool {
	if q == nil || other == nil {
		return q == other
	}
	if len(q.actions) != len(other.actions) {
		return false
	}
	for i := range q.actions {
		if !q.actions[i].Equal(other.actions[i]) {
			return false
		}
	}
	return true
}

// Preview deep-copies root into a scratch tree and projects every queued
// action onto it in enqueue order. The real filesystem is never touched and
// the queue is not consumed. Relative action paths resolve against root's
// path.
func (q *Queue) Preview(root *pathtree.Node) *pathtree.Node {
	scratch := root.Clone()
	for _, a := range q.actions {
		a.PreviewInto(scratch)
	}
	return scratch
}

// Apply commits every queued action in enqueue order against fsys, resolving
// relative paths against rootPath. The queue is left intact. If an action's
// policy rethrows a failure, Apply propagates it immediately, leaving later
// actions un-executed and the filesystem in an undefined partial state.
func (q *Queue) Apply(fsys fsio.FS, rootPath string, logger fstage.Logger) error {
	if logger == nil {
		logger = noopLogger{}
	}
	for i, a := range q.actions {
		logger.Verbose("applying action %d/%d [%s]: %s", i+1, len(q.actions), a.ID(), a)
		if err := a.Commit(fsys, rootPath); err != nil {
			logger.Error("action %d/%d failed: %v", i+1, len(q.actions), err)
			return errors.Join(fstage.ErrApplyFailed, err)
		}
	}
	return nil
}

type noopLogger struct{}

func (noopLogger) Verbose(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})    {}
func (noopLogger) Error(string, ...interface{})   {}
