// Package actions implements staged filesystem operations: immutable action
// values (move/copy/delete/create) that can project their effect onto a
// scratch tree or execute against a real filesystem, and an ordered,
// undoable queue of them.
package actions

import (
	"fmt"
	gopath "path"

	"github.com/google/uuid"

	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// Kind is the closed set of action variants.
type Kind int

const (
	Move Kind = iota
	Copy
	Delete
	Create
)

// String returns the configuration identifier for the kind.
func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Copy:
		return "copy"
	case Delete:
		return "delete"
	case Create:
		return "create"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a configuration identifier into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "move":
		return Move, nil
	case "copy":
		return Copy, nil
	case "delete":
		return Delete, nil
	case "create":
		return Create, nil
	default:
		return Move, fmt.Errorf("%w: unknown action %q (want move, copy, delete or create)", fstage.ErrInvalidArgument, s)
	}
}

// PathConverter translates a path for a different target filesystem. It is
// consulted only when an action's source and target filesystems differ.
type PathConverter func(path string, target fsio.FS) (string, error)

// RejectConverter is the default PathConverter: it rejects every
// cross-filesystem path with fstage.ErrInvalidPath.
func RejectConverter(path string, target fsio.FS) (string, error) {
	return "", fmt.Errorf("%w: %q", fstage.ErrInvalidPath, path)
}

// Options carries the per-action flags, error policy and collaborators.
type Options struct {
	// Overwrite deletes an existing target (recursively, since the
	// destination might be a non-empty directory) before moving or
	// copying a file over it.
	Overwrite bool

	// FollowLinks resolves walks through symbolic links instead of
	// operating on the links themselves.
	FollowLinks bool

	// Atomic restricts a move to a single atomic rename; failure due to
	// cross-device or unsupported atomic semantics surfaces as
	// fstage.ErrAtomicMoveUnsupported.
	Atomic bool

	// CopyAttributes copies mode bits along with content on copy actions.
	// Modification times are always copied when the create path supports it.
	CopyAttributes bool

	// Recursive creates a target node's descendants too (create actions).
	Recursive bool

	// Policy routes per-entry I/O failures during walks. Default Rethrow.
	Policy fstage.ErrorPolicy

	// TargetFS, when set, is the filesystem the action's target lives on.
	// When it differs from the filesystem an action is committed against,
	// the Converter (default RejectConverter) is applied to the target path.
	TargetFS fsio.FS

	// Converter translates target paths for cross-filesystem actions.
	Converter PathConverter
}

// Action is an immutable description of one pending filesystem change.
// Source and target trees are deep-copied at construction, not live aliases
// into a mutable tree.
type Action struct {
	id     uuid.UUID
	kind   Kind
	source *pathtree.Node // nil for delete/create
	target *pathtree.Node
	opts   Options
}

// NewMove stages relocating source to target.
func NewMove(source, target *pathtree.Node, opts Options) Action {
	return Action{id: uuid.New(), kind: Move, source: source.Snapshot(), target: target.Snapshot(), opts: opts}
}

// NewCopy stages copying source to target.
func NewCopy(source, target *pathtree.Node, opts Options) Action {
	return Action{id: uuid.New(), kind: Copy, source: source.Snapshot(), target: target.Snapshot(), opts: opts}
}

// NewDelete stages deleting target's subtree.
func NewDelete(target *pathtree.Node, opts Options) Action {
	return Action{id: uuid.New(), kind: Delete, target: target.Snapshot(), opts: opts}
}

// NewCreate stages creating target (and, with opts.Recursive, its
// descendants).
func NewCreate(target *pathtree.Node, opts Options) Action {
	return Action{id: uuid.New(), kind: Create, target: target.Snapshot(), opts: opts}
}

// ID returns the action's identity, assigned at construction.
// Used for logging; excluded from equality.
func (a Action) ID() uuid.UUID { return a.id }

// Kind returns the action variant.
func (a Action) Kind() Kind { return a.kind }

// Source returns the action's source tree (nil for delete/create).
// Callers must not mutate it.
func (a Action) Source() *pathtree.Node { return a.source }

// Target returns the action's target tree. Callers must not mutate it.
func (a Action) Target() *pathtree.Node { return a.target }

// Options returns the action's flags and policy.
func (a Action) Options() Options { return a.opts }

// Equal reports value equality: kind, flags, policy, and structurally equal
// source/target trees. IDs and collaborators (converter, target filesystem)
// are excluded.
func (a Action) Equal(other Action) bool {
	if a.kind != other.kind {
		return false
	}
	if a.opts.Overwrite != other.opts.Overwrite ||
		a.opts.FollowLinks != other.opts.FollowLinks ||
		a.opts.Atomic != other.opts.Atomic ||
		a.opts.CopyAttributes != other.opts.CopyAttributes ||
		a.opts.Recursive != other.opts.Recursive ||
		a.opts.Policy != other.opts.Policy {
		return false
	}
	if !a.source.Equal(other.source) {
		return false
	}
	return a.target.Equal(other.target)
}

// String renders the action for logs.
func (a Action) String() string {
	switch a.kind {
	case Move, Copy:
		return fmt.Sprintf("%s %s -> %s", a.kind, a.source.Path(), a.target.Path())
	default:
		return fmt.Sprintf("%s %s", a.kind, a.target.Path())
	}
}

// resolvePath joins a relative path onto root; absolute paths pass through.
func resolvePath(root, p string) string {
	if gopath.IsAbs(p) {
		return p
	}
	return gopath.Join(root, p)
}

// PreviewInto mutates a scratch tree to reflect the action's effect assuming
// success, without touching the real filesystem. Relative action paths are
// resolved against the scratch root. A node that does not fall under the
// scratch tree's path is a no-op.
func (a Action) PreviewInto(scratch *pathtree.Node) {
	rootPath := scratch.Path()
	switch a.kind {
	case Move:
		previewRemove(scratch, resolvePath(rootPath, a.source.Path()))
		previewInsert(scratch, a.target)
	case Copy, Create:
		previewInsert(scratch, a.target)
	case Delete:
		previewRemove(scratch, resolvePath(rootPath, a.target.Path()))
	}
}

func previewRemove(scratch *pathtree.Node, absPath string) {
	if !pathtree.IsBelow(scratch.Path(), absPath) {
		return
	}
	scratch.RemoveDescendant(absPath)
}

func previewInsert(scratch *pathtree.Node, node *pathtree.Node) {
	resolved := node.CloneWithAncestors()
	if !resolved.IsAbs() {
		resolved = scratch.Resolve(resolved)
	}
	if !pathtree.IsBelow(scratch.Path(), resolved.Path()) {
		return
	}
	// InsertDescendant cannot fail here: the prefix test above is the
	// only argument check it performs.
	_ = scratch.InsertDescendant(resolved)
}
