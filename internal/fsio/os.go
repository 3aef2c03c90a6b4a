package fsio

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// OS implements FS on top of the real operating-system filesystem.
// OS is a zero-size type; using value semantics avoids heap allocations.
type OS struct{}

// NewOS creates a new OS filesystem.
func NewOS() OS {
	return OS{}
}

// classify maps an os error onto the fstage I/O taxonomy.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var kind error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = fstage.ErrNotFound
	case errors.Is(err, fs.ErrExist):
		kind = fstage.ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		kind = fstage.ErrAccessDenied
	case errors.Is(err, syscall.ELOOP):
		kind = fstage.ErrFilesystemLoop
	case errors.Is(err, syscall.EXDEV), errors.Is(err, syscall.ENOTSUP):
		kind = fstage.ErrAtomicMoveUnsupported
	}
	return fstage.NewIOError(op, path, kind, err)
}

func native(path string) string {
	return filepath.FromSlash(path)
}

func (OS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(native(path))
	if err != nil {
		return nil, classify("stat", path, err)
	}
	return info, nil
}

func (OS) Lstat(path string) (FileInfo, error) {
	info, err := os.Lstat(native(path))
	if err != nil {
		return nil, classify("lstat", path, err)
	}
	return info, nil
}

func (OS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(native(path))
	if err != nil {
		return nil, classify("readdir", path, err)
	}
	return entries, nil
}

func (OS) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(native(path))
	if err != nil {
		return nil, classify("open", path, err)
	}
	return f, nil
}

func (OS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return classify("write", path, os.WriteFile(native(path), data, perm))
}

func (OS) MkdirAll(path string, perm fs.FileMode) error {
	return classify("mkdir", path, os.MkdirAll(native(path), perm))
}

func (OS) Symlink(oldname, newname string) error {
	return classify("symlink", newname, os.Symlink(native(oldname), native(newname)))
}

func (OS) Readlink(path string) (string, error) {
	target, err := os.Readlink(native(path))
	if err != nil {
		return "", classify("readlink", path, err)
	}
	return filepath.ToSlash(target), nil
}

// Rename renames oldpath to newpath using the platform's atomic rename.
// Cross-device failures surface as fstage.ErrAtomicMoveUnsupported.
func (OS) Rename(oldpath, newpath string) error {
	return classify("rename", oldpath, os.Rename(native(oldpath), native(newpath)))
}

func (OS) Remove(path string) error {
	return classify("remove", path, os.Remove(native(path)))
}

func (OS) RemoveAll(path string) error {
	return classify("removeall", path, os.RemoveAll(native(path)))
}

func (OS) Chmod(path string, mode fs.FileMode) error {
	return classify("chmod", path, os.Chmod(native(path), mode))
}

func (OS) Chtimes(path string, atime, mtime time.Time) error {
	return classify("chtimes", path, os.Chtimes(native(path), atime, mtime))
}

func (OS) SameFile(a, b string) bool {
	ai, err := os.Stat(native(a))
	if err != nil {
		return false
	}
	bi, err := os.Stat(native(b))
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// Verify OS implements the FS interface at compile time.
var _ FS = OS{}
