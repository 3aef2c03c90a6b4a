package fsio

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	gopath "path"
	"sort"
	"strings"
	"time"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// maxLinkDepth bounds symlink resolution before a loop is reported.
const maxLinkDepth = 40

// memFileInfo implements fs.FileInfo for in-memory entries.
type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return f.size }
func (f *memFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memFileInfo) ModTime() time.Time { return f.modTime }
func (f *memFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memFileInfo) Sys() interface{}   { return nil }

// memDirEntry implements fs.DirEntry backed by a memFileInfo.
type memDirEntry struct {
	info *memFileInfo
}

func (e *memDirEntry) Name() string               { return e.info.name }
func (e *memDirEntry) IsDir() bool                { return e.info.IsDir() }
func (e *memDirEntry) Type() fs.FileMode          { return e.info.mode.Type() }
func (e *memDirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// memEntry is one node of the in-memory filesystem.
type memEntry struct {
	mode    fs.FileMode // type bits included (ModeDir, ModeSymlink)
	content []byte      // regular files only
	target  string      // symlinks only
	modTime time.Time
}

// Memory implements FS entirely in memory. It exists for tests: it gives
// deterministic modification times, portable symlinks, and a switch to make
// Rename fail the way a cross-device rename would.
type Memory struct {
	entries map[string]*memEntry

	// FailRenames makes every Rename report fstage.ErrAtomicMoveUnsupported,
	// simulating a cross-device move.
	FailRenames bool
}

// NewMemory creates an in-memory filesystem containing only the root
// directory "/".
func NewMemory() *Memory {
	m := &Memory{entries: make(map[string]*memEntry)}
	m.entries["/"] = &memEntry{mode: 0o755 | fs.ModeDir, modTime: time.Now()}
	return m
}

func memClean(p string) string {
	return gopath.Clean("/" + strings.TrimPrefix(p, "/"))
}

func (m *Memory) infoFor(p string, e *memEntry) *memFileInfo {
	return &memFileInfo{
		name:    gopath.Base(p),
		size:    int64(len(e.content)),
		mode:    e.mode,
		modTime: e.modTime,
	}
}

// resolve follows symlinks until a non-link entry (or a missing path) is
// reached, reporting a loop when the chain exceeds maxLinkDepth.
func (m *Memory) resolve(op, p string) (string, *memEntry, error) {
	cur := memClean(p)
	for depth := 0; depth < maxLinkDepth; depth++ {
		e, ok := m.entries[cur]
		if !ok {
			return "", nil, fstage.NewIOError(op, p, fstage.ErrNotFound, fs.ErrNotExist)
		}
		if e.mode&fs.ModeSymlink == 0 {
			return cur, e, nil
		}
		if gopath.IsAbs(e.target) {
			cur = memClean(e.target)
		} else {
			cur = memClean(gopath.Join(gopath.Dir(cur), e.target))
		}
	}
	return "", nil, fstage.NewIOError(op, p, fstage.ErrFilesystemLoop, errors.New("too many levels of symbolic links"))
}

func (m *Memory) requireParentDir(op, p string) error {
	parent := gopath.Dir(memClean(p))
	e, ok := m.entries[parent]
	if !ok {
		return fstage.NewIOError(op, p, fstage.ErrNotFound, fs.ErrNotExist)
	}
	if !e.mode.IsDir() {
		return fstage.NewIOError(op, p, nil, errors.New("parent is not a directory"))
	}
	return nil
}

func (m *Memory) Stat(path string) (FileInfo, error) {
	resolved, e, err := m.resolve("stat", path)
	if err != nil {
		return nil, err
	}
	return m.infoFor(resolved, e), nil
}

func (m *Memory) Lstat(path string) (FileInfo, error) {
	p := memClean(path)
	e, ok := m.entries[p]
	if !ok {
		return nil, fstage.NewIOError("lstat", path, fstage.ErrNotFound, fs.ErrNotExist)
	}
	return m.infoFor(p, e), nil
}

func (m *Memory) ReadDir(path string) ([]DirEntry, error) {
	resolved, e, err := m.resolve("readdir", path)
	if err != nil {
		return nil, err
	}
	if !e.mode.IsDir() {
		return nil, fstage.NewIOError("readdir", path, nil, errors.New("not a directory"))
	}
	var out []DirEntry
	for p, child := range m.entries {
		if p != resolved && gopath.Dir(p) == resolved {
			out = append(out, &memDirEntry{info: m.infoFor(p, child)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (m *Memory) Open(path string) (io.ReadCloser, error) {
	_, e, err := m.resolve("open", path)
	if err != nil {
		return nil, err
	}
	if e.mode.IsDir() {
		return nil, fstage.NewIOError("open", path, nil, errors.New("is a directory"))
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

func (m *Memory) WriteFile(path string, data []byte, perm fs.FileMode) error {
	p := memClean(path)
	if err := m.requireParentDir("write", path); err != nil {
		return err
	}
	if e, ok := m.entries[p]; ok && e.mode.IsDir() {
		return fstage.NewIOError("write", path, nil, errors.New("is a directory"))
	}
	m.entries[p] = &memEntry{mode: perm &^ fs.ModeType, content: append([]byte(nil), data...), modTime: time.Now()}
	return nil
}

func (m *Memory) MkdirAll(path string, perm fs.FileMode) error {
	p := memClean(path)
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	cur := "/"
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		cur = gopath.Join(cur, seg)
		if e, ok := m.entries[cur]; ok {
			if !e.mode.IsDir() {
				return fstage.NewIOError("mkdir", cur, fstage.ErrAlreadyExists, fs.ErrExist)
			}
			continue
		}
		m.entries[cur] = &memEntry{mode: perm | fs.ModeDir, modTime: time.Now()}
	}
	return nil
}

func (m *Memory) Symlink(oldname, newname string) error {
	p := memClean(newname)
	if _, ok := m.entries[p]; ok {
		return fstage.NewIOError("symlink", newname, fstage.ErrAlreadyExists, fs.ErrExist)
	}
	if err := m.requireParentDir("symlink", newname); err != nil {
		return err
	}
	m.entries[p] = &memEntry{mode: 0o777 | fs.ModeSymlink, target: oldname, modTime: time.Now()}
	return nil
}

func (m *Memory) Readlink(path string) (string, error) {
	p := memClean(path)
	e, ok := m.entries[p]
	if !ok {
		return "", fstage.NewIOError("readlink", path, fstage.ErrNotFound, fs.ErrNotExist)
	}
	if e.mode&fs.ModeSymlink == 0 {
		return "", fstage.NewIOError("readlink", path, nil, errors.New("not a symlink"))
	}
	return e.target, nil
}

func (m *Memory) Rename(oldpath, newpath string) error {
	if m.FailRenames {
		return fstage.NewIOError("rename", oldpath, fstage.ErrAtomicMoveUnsupported, errors.New("cross-device link"))
	}
	src := memClean(oldpath)
	dst := memClean(newpath)
	if _, ok := m.entries[src]; !ok {
		return fstage.NewIOError("rename", oldpath, fstage.ErrNotFound, fs.ErrNotExist)
	}
	if err := m.requireParentDir("rename", newpath); err != nil {
		return err
	}
	if e, ok := m.entries[dst]; ok {
		if e.mode.IsDir() {
			if children, _ := m.ReadDir(dst); len(children) > 0 {
				return fstage.NewIOError("rename", newpath, nil, errors.New("directory not empty"))
			}
		}
		delete(m.entries, dst)
	}
	// Relocate the entry and, for directories, everything beneath it.
	moved := make(map[string]*memEntry)
	for p, e := range m.entries {
		if p == src || strings.HasPrefix(p, src+"/") {
			moved[dst+strings.TrimPrefix(p, src)] = e
			delete(m.entries, p)
		}
	}
	for p, e := range moved {
		m.entries[p] = e
	}
	return nil
}

func (m *Memory) Remove(path string) error {
	p := memClean(path)
	e, ok := m.entries[p]
	if !ok {
		return fstage.NewIOError("remove", path, fstage.ErrNotFound, fs.ErrNotExist)
	}
	if e.mode.IsDir() {
		if children, _ := m.ReadDir(p); len(children) > 0 {
			return fstage.NewIOError("remove", path, nil, errors.New("directory not empty"))
		}
	}
	delete(m.entries, p)
	return nil
}

func (m *Memory) RemoveAll(path string) error {
	p := memClean(path)
	for candidate := range m.entries {
		if candidate == p || strings.HasPrefix(candidate, p+"/") {
			delete(m.entries, candidate)
		}
	}
	return nil
}

func (m *Memory) Chmod(path string, mode fs.FileMode) error {
	p := memClean(path)
	e, ok := m.entries[p]
	if !ok {
		return fstage.NewIOError("chmod", path, fstage.ErrNotFound, fs.ErrNotExist)
	}
	e.mode = e.mode.Type() | mode.Perm()
	return nil
}

func (m *Memory) Chtimes(path string, atime, mtime time.Time) error {
	p := memClean(path)
	e, ok := m.entries[p]
	if !ok {
		return fstage.NewIOError("chtimes", path, fstage.ErrNotFound, fs.ErrNotExist)
	}
	e.modTime = mtime
	return nil
}

func (m *Memory) SameFile(a, b string) bool {
	ra, _, errA := m.resolve("stat", a)
	rb, _, errB := m.resolve("stat", b)
	return errA == nil && errB == nil && ra == rb
}

// AddFile creates a file (and missing parents) with the given content.
// Test helper.
func (m *Memory) AddFile(path, content string) {
	p := memClean(path)
	_ = m.MkdirAll(gopath.Dir(p), 0o755)
	m.entries[p] = &memEntry{mode: 0o644, content: []byte(content), modTime: time.Now()}
}

// AddDir creates a directory and any missing parents. Test helper.
func (m *Memory) AddDir(path string) {
	_ = m.MkdirAll(path, 0o755)
}

// AddSymlink creates a symlink (and missing parents). Test helper.
func (m *Memory) AddSymlink(path, target string) {
	p := memClean(path)
	_ = m.MkdirAll(gopath.Dir(p), 0o755)
	m.entries[p] = &memEntry{mode: 0o777 | fs.ModeSymlink, target: target, modTime: time.Now()}
}

// SetModTime overrides an entry's modification time. Test helper.
func (m *Memory) SetModTime(path string, t time.Time) {
	if e, ok := m.entries[memClean(path)]; ok {
		e.modTime = t
	}
}

// Verify Memory implements the FS interface at compile time.
var _ FS = (*Memory)(nil)
