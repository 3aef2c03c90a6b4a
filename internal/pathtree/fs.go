package pathtree

import (
	"errors"
	"fmt"

	"github.com/vvka-141/fstage/internal/digest"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// Exists queries the real filesystem for the presence of this node's path.
// With checkType, the on-disk type must also match the node's kind (Unknown
// matches any type). With recursive, every descendant must exist as well.
func (n *Node) Exists(fsys fsio.FS, checkType, recursive bool) (bool, error) {
	ok, err := existsOne(fsys, n.Path(), n.Kind(), checkType)
	if err != nil || !ok {
		return ok, err
	}
	if !recursive {
		return true, nil
	}
	for path, node := range n.Descendants() {
		ok, err := existsOne(fsys, path, node.Kind(), checkType)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func existsOne(fsys fsio.FS, path string, kind FileType, checkType bool) (bool, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		if errors.Is(err, fstage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !checkType || kind == Unknown {
		return true, nil
	}
	return TypeOfMode(info.Mode()) == kind, nil
}

// SameContentsAs compares the filesystem contents behind two nodes. Nodes of
// different kinds are never the same. Directories compare their listed
// entries only (not recursive contents); regular files compare size then
// digest; symlinks compare link targets; Unknown never matches.
func (n *Node) SameContentsAs(fsys fsio.FS, calc digest.Calculator, other *Node) (bool, error) {
	if n.Kind() != other.Kind() {
		return false, nil
	}
	switch n.Kind() {
	case Directory:
		return sameDirEntries(fsys, n.Path(), other.Path())
	case RegularFile:
		return sameFileContents(fsys, calc, n.Path(), other.Path())
	case SymbolicLink:
		return sameLinkTargets(fsys, n.Path(), other.Path())
	default:
		return false, nil
	}
}

func sameDirEntries(fsys fsio.FS, left, right string) (bool, error) {
	le, err := fsys.ReadDir(left)
	if err != nil {
		return false, err
	}
	re, err := fsys.ReadDir(right)
	if err != nil {
		return false, err
	}
	if len(le) != len(re) {
		return false, nil
	}
	for i := range le {
		if le[i].Name() != re[i].Name() {
			return false, nil
		}
	}
	return true, nil
}

func sameFileContents(fsys fsio.FS, calc digest.Calculator, left, right string) (bool, error) {
	li, err := fsys.Stat(left)
	if err != nil {
		return false, err
	}
	ri, err := fsys.Stat(right)
	if err != nil {
		return false, err
	}
	if li.Size() != ri.Size() {
		return false, nil
	}
	ld, err := digestPath(fsys, calc, left)
	if err != nil {
		return false, err
	}
	rd, err := digestPath(fsys, calc, right)
	if err != nil {
		return false, err
	}
	return ld == rd, nil
}

func digestPath(fsys fsio.FS, calc digest.Calculator, path string) (string, error) {
	r, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return calc.Sum(r)
}

func sameLinkTargets(fsys fsio.FS, left, right string) (bool, error) {
	lt, err := fsys.Readlink(left)
	if err != nil {
		return false, err
	}
	rt, err := fsys.Readlink(right)
	if err != nil {
		return false, err
	}
	return lt == rt, nil
}

// Create creates this node in the real filesystem via its type's create
// primitive, and with recursive every descendant in top-down order. The
// error policy is applied per node: Skip continues with the next entry,
// Terminate stops the walk keeping what was created, Rethrow aborts.
func (n *Node) Create(fsys fsio.FS, recursive bool, policy fstage.ErrorPolicy) error {
	if err := createOne(fsys, n); err != nil {
		// The root is the whole operation; only Skip can excuse it.
		if policy != fstage.Skip {
			if policy == fstage.Terminate {
				return nil
			}
			return err
		}
	}
	if !recursive {
		return nil
	}
	for node := range n.WalkChildren(TopDown) {
		if err := createOne(fsys, node); err != nil {
			switch policy {
			case fstage.Skip:
				continue
			case fstage.Terminate:
				return nil
			default:
				return err
			}
		}
	}
	return nil
}

func createOne(fsys fsio.FS, node *Node) error {
	path := node.Path()
	switch node.Kind() {
	case Directory:
		return fsys.MkdirAll(path, 0o755)
	case RegularFile:
		if _, err := fsys.Lstat(path); err == nil {
			return fstage.NewIOError("create", path, fstage.ErrAlreadyExists, errors.New("file exists"))
		}
		return fsys.WriteFile(path, nil, 0o644)
	case SymbolicLink:
		if node.target == "" {
			return fmt.Errorf("%w: symlink %q has no target", fstage.ErrInvalidArgument, path)
		}
		return fsys.Symlink(node.target, path)
	default:
		return fmt.Errorf("%w: cannot create node %q of unknown type", fstage.ErrInvalidArgument, path)
	}
}
