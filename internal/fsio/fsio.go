// Package fsio provides the filesystem-primitives layer the rest of fstage
// is built on. Every failure is reported as a *fstage.IOError whose kind is
// one of the fstage I/O sentinels, so callers can classify failures with
// errors.Is without knowing which implementation produced them.
//
// Paths are slash-separated; the OS implementation converts at the syscall
// boundary. Implementations are not required to be safe for concurrent use.
package fsio

import (
	"io"
	"io/fs"
	"time"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// DirEntry is an alias for fs.DirEntry.
type DirEntry = fs.DirEntry

// FS is the contract fstage requires from a filesystem. It covers exactly
// the primitives the tree, diff and action layers need: presence and type
// checks, byte streams, atomic and non-atomic rename, recursive directory
// creation, symlink create/read, modification-time get/set, and directory
// listing.
type FS interface {
	// Stat returns file information, following symlinks.
	Stat(path string) (FileInfo, error)

	// Lstat returns file information without following symlinks.
	Lstat(path string) (FileInfo, error)

	// ReadDir lists the entries of a directory, sorted by name.
	ReadDir(path string) ([]DirEntry, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// Symlink creates newname as a symbolic link to oldname.
	Symlink(oldname, newname string) error

	// Readlink returns the target of a symbolic link.
	Readlink(path string) (string, error)

	// Rename atomically renames oldpath to newpath. A failure due to
	// cross-device or otherwise unsupported atomic semantics carries the
	// fstage.ErrAtomicMoveUnsupported kind.
	Rename(oldpath, newpath string) error

	// Remove removes a single file, symlink, or empty directory.
	Remove(path string) error

	// RemoveAll removes a path and any children it contains.
	RemoveAll(path string) error

	// Chmod changes the mode of a path.
	Chmod(path string, mode fs.FileMode) error

	// Chtimes changes the access and modification times of a path.
	Chtimes(path string, atime, mtime time.Time) error

	// SameFile reports whether two paths refer to the same underlying file.
	// Missing paths are never the same file.
	SameFile(a, b string) bool
}

// CopyAttributes copies mode and modification time from src to dst.
// Used after a directory's contents have fully migrated during move/copy.
func CopyAttributes(fsys FS, src, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		// Symlink attributes are not portable; the link target is the
		// only attribute that matters and it is copied at create time.
		return nil
	}
	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return fsys.Chtimes(dst, info.ModTime(), info.ModTime())
}
