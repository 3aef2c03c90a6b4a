package actions

import (
	"errors"
	"fmt"
	"io"
	gopath "path"

	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// errTerminated signals a Terminate policy decision up through a walk.
// It never escapes Commit.
var errTerminated = errors.New("walk terminated")

// route applies the error policy to a per-entry failure.
func route(policy fstage.ErrorPolicy, err error) error {
	switch policy {
	case fstage.Skip:
		return nil
	case fstage.Terminate:
		return errTerminated
	default:
		return err
	}
}

// routeChild handles the failure of a child entry inside a walk loop:
// a terminate decision made deeper in the walk propagates unchanged, any
// other failure is routed through the policy.
func routeChild(policy fstage.ErrorPolicy, err error) error {
	if errors.Is(err, errTerminated) {
		return err
	}
	return route(policy, err)
}

// Commit performs the real operation against fsys. Relative source/target
// paths are resolved against rootPath. These operations are not atomic with
// respect to multi-entry trees: if an error is rethrown, the state of the
// filesystem afterward is undefined.
func (a Action) Commit(fsys fsio.FS, rootPath string) error {
	tfs := fsys
	if a.opts.TargetFS != nil {
		tfs = a.opts.TargetFS
	}

	var err error
	switch a.kind {
	case Move:
		err = a.commitMove(fsys, tfs, rootPath)
	case Copy:
		err = a.commitCopy(fsys, tfs, rootPath)
	case Delete:
		err = a.commitDelete(tfs, rootPath)
	case Create:
		err = a.commitCreate(tfs, rootPath)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, errTerminated) {
		return nil
	}
	// Converter and atomic-move failures always signal, regardless of
	// policy; anything else surfacing at the top of a walk is routed like
	// a per-entry failure.
	if errors.Is(err, fstage.ErrInvalidPath) || errors.Is(err, fstage.ErrAtomicMoveUnsupported) {
		return err
	}
	if routed := route(a.opts.Policy, err); routed != nil && !errors.Is(routed, errTerminated) {
		return routed
	}
	return nil
}

// targetPath resolves the target path, applying the path converter when the
// target filesystem differs from the one the action is committed against.
// Converter failures are reported as fstage.ErrInvalidPath and are never
// routed through the error policy.
func (a Action) targetPath(src, tfs fsio.FS, rootPath string) (string, error) {
	p := resolvePath(rootPath, a.target.Path())
	if tfs == src {
		return p, nil
	}
	conv := a.opts.Converter
	if conv == nil {
		conv = RejectConverter
	}
	converted, err := conv(p, tfs)
	if err != nil {
		if errors.Is(err, fstage.ErrInvalidPath) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", fstage.ErrInvalidPath, err)
	}
	return converted, nil
}

// entryInfo stats an entry, following symlinks only when the action walks
// through links. A link cycle surfaces as fstage.ErrFilesystemLoop.
func (a Action) entryInfo(fsys fsio.FS, p string) (fsio.FileInfo, error) {
	if a.opts.FollowLinks {
		return fsys.Stat(p)
	}
	return fsys.Lstat(p)
}

// clearTarget removes an existing target before a file is moved or copied
// over it, recursively since the destination might be a non-empty directory.
// Without the overwrite flag the existing target is left for the underlying
// operation to collide with.
func (a Action) clearTarget(fsys fsio.FS, p string) error {
	if !a.opts.Overwrite {
		return nil
	}
	if _, err := fsys.Lstat(p); err != nil {
		return nil
	}
	return fsys.RemoveAll(p)
}

func applyAttributes(fsys fsio.FS, p string, info fsio.FileInfo) error {
	if err := fsys.Chmod(p, info.Mode().Perm()); err != nil {
		return err
	}
	return fsys.Chtimes(p, info.ModTime(), info.ModTime())
}

func copyFileContents(src, dst fsio.FS, sp, tp string, info fsio.FileInfo) error {
	r, err := src.Open(sp)
	if err != nil {
		return err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return fstage.NewIOError("read", sp, nil, err)
	}
	if err := dst.WriteFile(tp, data, info.Mode().Perm()); err != nil {
		return err
	}
	// Modification time is always carried over when the create path
	// supports it.
	return dst.Chtimes(tp, info.ModTime(), info.ModTime())
}

func (a Action) commitMove(src, tfs fsio.FS, rootPath string) error {
	sp := resolvePath(rootPath, a.source.Path())
	tp, err := a.targetPath(src, tfs, rootPath)
	if err != nil {
		return err
	}
	if src == tfs && src.SameFile(sp, tp) {
		// Same underlying file: the move is a no-op.
		return nil
	}
	if a.opts.Atomic {
		if src != tfs {
			return fstage.NewIOError("rename", sp, fstage.ErrAtomicMoveUnsupported,
				errors.New("source and target on different filesystems"))
		}
		return src.Rename(sp, tp)
	}
	return a.moveEntry(src, tfs, sp, tp)
}

func (a Action) moveEntry(src, tfs fsio.FS, sp, tp string) error {
	info, err := a.entryInfo(src, sp)
	if err != nil {
		return err
	}
	switch pathtree.TypeOfMode(info.Mode()) {
	case pathtree.Directory:
		// Renaming the whole subtree in place is the cheap path; fall
		// back to per-entry copy+delete only when it fails (e.g. the
		// target crosses a filesystem boundary).
		if src == tfs && !a.opts.Overwrite {
			if err := src.Rename(sp, tp); err == nil {
				return nil
			}
		}
		if err := tfs.MkdirAll(tp, 0o755); err != nil {
			return err
		}
		entries, err := src.ReadDir(sp)
		if err != nil {
			return err
		}
		for _, e := range entries {
			cerr := a.moveEntry(src, tfs, gopath.Join(sp, e.Name()), gopath.Join(tp, e.Name()))
			if cerr != nil {
				if routed := routeChild(a.opts.Policy, cerr); routed != nil {
					return routed
				}
			}
		}
		if err := applyAttributes(tfs, tp, info); err != nil {
			return err
		}
		return src.Remove(sp)
	case pathtree.SymbolicLink:
		// Links are moved as links, never through their targets.
		target, err := src.Readlink(sp)
		if err != nil {
			return err
		}
		if err := a.clearTarget(tfs, tp); err != nil {
			return err
		}
		if err := tfs.Symlink(target, tp); err != nil {
			return err
		}
		return src.Remove(sp)
	case pathtree.RegularFile:
		if err := a.clearTarget(tfs, tp); err != nil {
			return err
		}
		if err := copyFileContents(src, tfs, sp, tp, info); err != nil {
			return err
		}
		if err := applyAttributes(tfs, tp, info); err != nil {
			return err
		}
		return src.Remove(sp)
	default:
		return fstage.NewIOError("move", sp, nil, errors.New("unsupported file type"))
	}
}

func (a Action) commitCopy(src, tfs fsio.FS, rootPath string) error {
	sp := resolvePath(rootPath, a.source.Path())
	tp, err := a.targetPath(src, tfs, rootPath)
	if err != nil {
		return err
	}
	if src == tfs && src.SameFile(sp, tp) {
		return nil
	}
	return a.copyEntry(src, tfs, sp, tp)
}

func (a Action) copyEntry(src, tfs fsio.FS, sp, tp string) error {
	info, err := a.entryInfo(src, sp)
	if err != nil {
		return err
	}
	switch pathtree.TypeOfMode(info.Mode()) {
	case pathtree.Directory:
		if err := tfs.MkdirAll(tp, 0o755); err != nil {
			return err
		}
		entries, err := src.ReadDir(sp)
		if err != nil {
			return err
		}
		for _, e := range entries {
			cerr := a.copyEntry(src, tfs, gopath.Join(sp, e.Name()), gopath.Join(tp, e.Name()))
			if cerr != nil {
				if routed := routeChild(a.opts.Policy, cerr); routed != nil {
					return routed
				}
			}
		}
		if a.opts.CopyAttributes {
			return applyAttributes(tfs, tp, info)
		}
		return nil
	case pathtree.SymbolicLink:
		target, err := src.Readlink(sp)
		if err != nil {
			return err
		}
		if err := a.clearTarget(tfs, tp); err != nil {
			return err
		}
		return tfs.Symlink(target, tp)
	case pathtree.RegularFile:
		if err := a.clearTarget(tfs, tp); err != nil {
			return err
		}
		if err := copyFileContents(src, tfs, sp, tp, info); err != nil {
			return err
		}
		if a.opts.CopyAttributes {
			return applyAttributes(tfs, tp, info)
		}
		return nil
	default:
		return fstage.NewIOError("copy", sp, nil, errors.New("unsupported file type"))
	}
}

func (a Action) commitDelete(tfs fsio.FS, rootPath string) error {
	return a.deleteEntry(tfs, resolvePath(rootPath, a.target.Path()))
}

// deleteEntry removes a subtree bottom-up, so directories are empty when
// their turn comes. Symbolic links are deleted as links.
func (a Action) deleteEntry(fsys fsio.FS, p string) error {
	info, err := fsys.Lstat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		entries, err := fsys.ReadDir(p)
		if err != nil {
			return err
		}
		for _, e := range entries {
			cerr := a.deleteEntry(fsys, gopath.Join(p, e.Name()))
			if cerr != nil {
				if routed := routeChild(a.opts.Policy, cerr); routed != nil {
					return routed
				}
			}
		}
	}
	return fsys.Remove(p)
}

func (a Action) commitCreate(tfs fsio.FS, rootPath string) error {
	node := a.target
	if !node.IsAbs() {
		anchor, err := pathtree.New(rootPath, pathtree.Directory)
		if err != nil {
			return err
		}
		node = anchor.Resolve(node)
	}
	return node.Create(tfs, a.opts.Recursive, a.opts.Policy)
}
