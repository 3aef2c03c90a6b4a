package actions

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

func readFile(t *testing.T, m fsio.FS, path string) string {
	t.Helper()
	r, err := m.Open(path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func exists(m fsio.FS, path string) bool {
	_, err := m.Lstat(path)
	return err == nil
}

func TestCommit_MoveFile(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/a.txt", "alpha")
	stamp := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	m.SetModTime("/root/a.txt", stamp)

	act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
		mustNode(t, "/root/b.txt", pathtree.RegularFile), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.False(t, exists(m, "/root/a.txt"))
	assert.Equal(t, "alpha", readFile(t, m, "/root/b.txt"))

	info, err := m.Lstat("/root/b.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(stamp), "modification time travels with the move")
}

func TestCommit_MoveDirectorySubtree(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/docs/a.txt", "a")
	m.AddFile("/root/docs/sub/b.txt", "b")

	act := NewMove(mustNode(t, "/root/docs", pathtree.Directory),
		mustNode(t, "/root/archive", pathtree.Directory), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.False(t, exists(m, "/root/docs"))
	assert.Equal(t, "a", readFile(t, m, "/root/archive/a.txt"))
	assert.Equal(t, "b", readFile(t, m, "/root/archive/sub/b.txt"))
}

func TestCommit_MoveDirectoryWithoutRename(t *testing.T) {
	m := fsio.NewMemory()
	m.FailRenames = true
	m.AddFile("/root/docs/a.txt", "a")
	m.AddFile("/root/docs/sub/b.txt", "b")

	act := NewMove(mustNode(t, "/root/docs", pathtree.Directory),
		mustNode(t, "/root/archive", pathtree.Directory), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.False(t, exists(m, "/root/docs"), "per-entry fallback still clears the source")
	assert.Equal(t, "b", readFile(t, m, "/root/archive/sub/b.txt"))
}

func TestCommit_MoveRelativePaths(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/a.txt", "alpha")

	act := NewMove(mustNode(t, "a.txt", pathtree.RegularFile),
		mustNode(t, "b.txt", pathtree.RegularFile), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.Equal(t, "alpha", readFile(t, m, "/root/b.txt"))
}

func TestCommit_MoveOverwrite(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/a.txt", "new content")
	m.AddFile("/root/b.txt", "old content")

	t.Run("without overwrite the target survives", func(t *testing.T) {
		act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/b.txt", pathtree.RegularFile), Options{})
		require.NoError(t, act.Commit(m, "/root"))
		// Memory WriteFile replaces; the point of Overwrite is clearing
		// non-file targets, exercised below.
		assert.Equal(t, "new content", readFile(t, m, "/root/b.txt"))
	})

	t.Run("overwrite clears a directory target", func(t *testing.T) {
		m := fsio.NewMemory()
		m.AddFile("/root/a.txt", "new content")
		m.AddFile("/root/dir/inner.txt", "x")

		act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/dir", pathtree.Unknown), Options{Overwrite: true})
		require.NoError(t, act.Commit(m, "/root"))

		assert.Equal(t, "new content", readFile(t, m, "/root/dir"))
		assert.False(t, exists(m, "/root/dir/inner.txt"))
	})
}

func TestCommit_MoveSameFileIsNoOp(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/a.txt", "alpha")
	m.AddSymlink("/root/alias", "a.txt")

	act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
		mustNode(t, "/root/alias", pathtree.RegularFile), Options{FollowLinks: true})
	require.NoError(t, act.Commit(m, "/root"))

	assert.Equal(t, "alpha", readFile(t, m, "/root/a.txt"))
	assert.True(t, exists(m, "/root/alias"))
}

func TestCommit_MoveSymlinkAsLink(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/real.txt", "x")
	m.AddSymlink("/root/link", "real.txt")

	act := NewMove(mustNode(t, "/root/link", pathtree.SymbolicLink),
		mustNode(t, "/root/moved-link", pathtree.SymbolicLink), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.False(t, exists(m, "/root/link"))
	target, err := m.Readlink("/root/moved-link")
	require.NoError(t, err)
	assert.Equal(t, "real.txt", target)
	assert.Equal(t, "x", readFile(t, m, "/root/real.txt"), "link target untouched")
}

func TestCommit_AtomicMove(t *testing.T) {
	t.Run("succeeds via rename", func(t *testing.T) {
		m := fsio.NewMemory()
		m.AddFile("/root/a.txt", "alpha")

		act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/b.txt", pathtree.RegularFile), Options{Atomic: true})
		require.NoError(t, act.Commit(m, "/root"))
		assert.Equal(t, "alpha", readFile(t, m, "/root/b.txt"))
	})

	t.Run("cross-device failure always surfaces", func(t *testing.T) {
		m := fsio.NewMemory()
		m.AddFile("/root/a.txt", "alpha")
		m.FailRenames = true

		act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/b.txt", pathtree.RegularFile),
			Options{Atomic: true, Policy: fstage.Skip})
		err := act.Commit(m, "/root")
		assert.ErrorIs(t, err, fstage.ErrAtomicMoveUnsupported,
			"atomic failures bypass the error policy")
		assert.Equal(t, "alpha", readFile(t, m, "/root/a.txt"))
	})
}

func TestCommit_CopyFile(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/a.txt", "alpha")

	act := NewCopy(mustNode(t, "/root/a.txt", pathtree.RegularFile),
		mustNode(t, "/root/b.txt", pathtree.RegularFile), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.Equal(t, "alpha", readFile(t, m, "/root/a.txt"))
	assert.Equal(t, "alpha", readFile(t, m, "/root/b.txt"))
}

func TestCommit_CopyDirectoryRecursive(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/docs/a.txt", "a")
	m.AddSymlink("/root/docs/link", "a.txt")
	m.AddFile("/root/docs/sub/b.txt", "b")

	act := NewCopy(mustNode(t, "/root/docs", pathtree.Directory),
		mustNode(t, "/root/mirror", pathtree.Directory), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.Equal(t, "a", readFile(t, m, "/root/mirror/a.txt"))
	assert.Equal(t, "b", readFile(t, m, "/root/mirror/sub/b.txt"))
	target, err := m.Readlink("/root/mirror/link")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", target)

	// Source is intact.
	assert.Equal(t, "a", readFile(t, m, "/root/docs/a.txt"))
}

func TestCommit_CopyFollowLinks(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/real.txt", "content")
	m.AddSymlink("/root/link", "real.txt")

	act := NewCopy(mustNode(t, "/root/link", pathtree.Unknown),
		mustNode(t, "/root/copied.txt", pathtree.RegularFile), Options{FollowLinks: true})
	require.NoError(t, act.Commit(m, "/root"))

	// Following the link copies the file contents, not the link.
	assert.Equal(t, "content", readFile(t, m, "/root/copied.txt"))
	_, err := m.Readlink("/root/copied.txt")
	assert.Error(t, err)
}

func TestCommit_CopySkipPolicyKeepsGoing(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/docs/a.txt", "a")
	m.AddFile("/root/docs/z.txt", "z")
	m.AddSymlink("/root/docs/broken", "/loop")
	m.AddSymlink("/loop", "/loop")

	act := NewCopy(mustNode(t, "/root/docs", pathtree.Directory),
		mustNode(t, "/root/mirror", pathtree.Directory),
		Options{FollowLinks: true, Policy: fstage.Skip})
	require.NoError(t, act.Commit(m, "/root"))

	assert.Equal(t, "a", readFile(t, m, "/root/mirror/a.txt"))
	assert.Equal(t, "z", readFile(t, m, "/root/mirror/z.txt"))
	assert.False(t, exists(m, "/root/mirror/broken"))
}

func TestCommit_CopyTerminatePolicyStops(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/docs/a.txt", "a")
	m.AddSymlink("/root/docs/broken", "/loop")
	m.AddSymlink("/loop", "/loop")
	m.AddFile("/root/docs/z.txt", "z")

	act := NewCopy(mustNode(t, "/root/docs", pathtree.Directory),
		mustNode(t, "/root/mirror", pathtree.Directory),
		Options{FollowLinks: true, Policy: fstage.Terminate})
	require.NoError(t, act.Commit(m, "/root"), "terminate is not an error")

	assert.Equal(t, "a", readFile(t, m, "/root/mirror/a.txt"), "entries before the failure are kept")
	assert.False(t, exists(m, "/root/mirror/z.txt"), "entries after the failure are not copied")
}

func TestCommit_Delete(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/docs/a.txt", "a")
	m.AddFile("/root/docs/sub/b.txt", "b")
	m.AddFile("/root/keep.txt", "k")

	act := NewDelete(mustNode(t, "/root/docs", pathtree.Unknown), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.False(t, exists(m, "/root/docs"))
	assert.True(t, exists(m, "/root/keep.txt"))
}

func TestCommit_DeleteSymlinkNotItsTarget(t *testing.T) {
	m := fsio.NewMemory()
	m.AddFile("/root/real.txt", "x")
	m.AddSymlink("/root/link", "real.txt")

	act := NewDelete(mustNode(t, "/root/link", pathtree.Unknown), Options{})
	require.NoError(t, act.Commit(m, "/root"))

	assert.False(t, exists(m, "/root/link"))
	assert.True(t, exists(m, "/root/real.txt"))
}

func TestCommit_DeleteMissingRethrow(t *testing.T) {
	m := fsio.NewMemory()
	m.AddDir("/root")

	act := NewDelete(mustNode(t, "/root/ghost", pathtree.Unknown), Options{})
	err := act.Commit(m, "/root")
	assert.ErrorIs(t, err, fstage.ErrNotFound)
}

func TestCommit_Create(t *testing.T) {
	m := fsio.NewMemory()
	m.AddDir("/root")

	tree := pathtree.Build("/root/out", func(b *pathtree.Builder) {
		b.File("readme")
		b.Dir("sub", nil)
	})

	act := NewCreate(tree, Options{Recursive: true})
	require.NoError(t, act.Commit(m, "/root"))

	assert.True(t, exists(m, "/root/out/readme"))
	assert.True(t, exists(m, "/root/out/sub"))
}

func TestCommit_CreateRelativeTree(t *testing.T) {
	m := fsio.NewMemory()
	m.AddDir("/root")

	tree := pathtree.Build("out", func(b *pathtree.Builder) {
		b.File("readme")
	})

	act := NewCreate(tree, Options{Recursive: true})
	require.NoError(t, act.Commit(m, "/root"))

	assert.True(t, exists(m, "/root/out/readme"))
}

func TestCommit_CrossFilesystem(t *testing.T) {
	t.Run("default converter rejects", func(t *testing.T) {
		src := fsio.NewMemory()
		src.AddFile("/root/a.txt", "alpha")
		dst := fsio.NewMemory()

		act := NewCopy(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/a.txt", pathtree.RegularFile),
			Options{TargetFS: dst, Policy: fstage.Skip})
		err := act.Commit(src, "/root")
		assert.ErrorIs(t, err, fstage.ErrInvalidPath,
			"converter failures bypass the error policy")
	})

	t.Run("converter maps the target path", func(t *testing.T) {
		src := fsio.NewMemory()
		src.AddFile("/root/a.txt", "alpha")
		dst := fsio.NewMemory()
		dst.AddDir("/backup")

		conv := func(p string, _ fsio.FS) (string, error) {
			return "/backup" + strings.TrimPrefix(p, "/root"), nil
		}
		act := NewCopy(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/a.txt", pathtree.RegularFile),
			Options{TargetFS: dst, Converter: conv})
		require.NoError(t, act.Commit(src, "/root"))

		assert.Equal(t, "alpha", readFile(t, dst, "/backup/a.txt"))
		assert.Equal(t, "alpha", readFile(t, src, "/root/a.txt"))
		assert.False(t, exists(dst, "/root/a.txt"))
	})

	t.Run("cross-filesystem move clears the source", func(t *testing.T) {
		src := fsio.NewMemory()
		src.AddFile("/root/docs/a.txt", "a")
		dst := fsio.NewMemory()
		dst.AddDir("/stash")

		conv := func(p string, _ fsio.FS) (string, error) {
			return "/stash" + strings.TrimPrefix(p, "/root"), nil
		}
		act := NewMove(mustNode(t, "/root/docs", pathtree.Directory),
			mustNode(t, "/root/docs", pathtree.Directory),
			Options{TargetFS: dst, Converter: conv})
		require.NoError(t, act.Commit(src, "/root"))

		assert.Equal(t, "a", readFile(t, dst, "/stash/docs/a.txt"))
		assert.False(t, exists(src, "/root/docs"))
	})

	t.Run("atomic move across filesystems is unsupported", func(t *testing.T) {
		src := fsio.NewMemory()
		src.AddFile("/root/a.txt", "alpha")
		dst := fsio.NewMemory()

		act := NewMove(mustNode(t, "/root/a.txt", pathtree.RegularFile),
			mustNode(t, "/root/a.txt", pathtree.RegularFile),
			Options{TargetFS: dst, Atomic: true, Converter: func(p string, _ fsio.FS) (string, error) { return p, nil }})
		err := act.Commit(src, "/root")
		assert.ErrorIs(t, err, fstage.ErrAtomicMoveUnsupported)
	})
}
