package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// stageTree is the working tree the preview tests project actions onto:
//
//	/root
//	├── keep.txt
//	└── docs/
//	    ├── a.txt
//	    └── b.txt
func stageTree() *pathtree.Node {
	return pathtree.Build("/root", func(b *pathtree.Builder) {
		b.File("keep.txt")
		b.Dir("docs", func(b *pathtree.Builder) {
			b.File("a.txt")
			b.File("b.txt")
		})
	})
}

func mustNode(t *testing.T, path string, kind pathtree.FileType) *pathtree.Node {
	t.Helper()
	n, err := pathtree.New(path, kind)
	require.NoError(t, err)
	return n
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Move, Copy, Delete, Create} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("teleport")
	assert.ErrorIs(t, err, fstage.ErrInvalidArgument)
}

func TestAction_SnapshotsItsTrees(t *testing.T) {
	source := stageTree().Descendants()["/root/docs"]
	target := mustNode(t, "/root/archive", pathtree.Directory)

	act := NewMove(source, target, Options{})
	assert.Equal(t, "/root/docs", act.Source().Path())

	// Mutating the original tree after staging must not change the action.
	a, ok := source.Child("a.txt")
	require.True(t, ok)
	a.SetParent(nil)

	_, ok = act.Source().Child("a.txt")
	assert.True(t, ok, "actions hold deep copies, not aliases")
}

func TestAction_Equal(t *testing.T) {
	src := mustNode(t, "/root/a", pathtree.RegularFile)
	dst := mustNode(t, "/root/b", pathtree.RegularFile)

	m1 := NewMove(src, dst, Options{Overwrite: true})
	m2 := NewMove(src, dst, Options{Overwrite: true})
	assert.True(t, m1.Equal(m2), "identity differs, value is equal")
	assert.NotEqual(t, m1.ID(), m2.ID())

	assert.False(t, m1.Equal(NewCopy(src, dst, Options{Overwrite: true})))
	assert.False(t, m1.Equal(NewMove(src, dst, Options{})))
	assert.False(t, m1.Equal(NewMove(src, dst, Options{Overwrite: true, Policy: fstage.Skip})))
}

func TestAction_String(t *testing.T) {
	src := mustNode(t, "/root/a", pathtree.RegularFile)
	dst := mustNode(t, "/root/b", pathtree.RegularFile)

	assert.Equal(t, "move /root/a -> /root/b", NewMove(src, dst, Options{}).String())
	assert.Equal(t, "copy /root/a -> /root/b", NewCopy(src, dst, Options{}).String())
	assert.Equal(t, "delete /root/b", NewDelete(dst, Options{}).String())
	assert.Equal(t, "create /root/b", NewCreate(dst, Options{}).String())
}

func TestPreviewInto_Move(t *testing.T) {
	scratch := stageTree()
	source := scratch.Descendants()["/root/docs/a.txt"]
	target := mustNode(t, "/root/docs/renamed.txt", pathtree.RegularFile)

	NewMove(source, target, Options{}).PreviewInto(scratch)

	assert.NotContains(t, scratch.Descendants(), "/root/docs/a.txt")
	assert.Contains(t, scratch.Descendants(), "/root/docs/renamed.txt")
}

func TestPreviewInto_MoveSubtree(t *testing.T) {
	scratch := stageTree()
	source := scratch.Descendants()["/root/docs"]

	target := pathtree.Build("/root/archive", func(b *pathtree.Builder) {
		b.File("a.txt")
		b.File("b.txt")
	})

	NewMove(source, target, Options{}).PreviewInto(scratch)

	assert.NotContains(t, scratch.Descendants(), "/root/docs")
	assert.Contains(t, scratch.Descendants(), "/root/archive/a.txt")
	assert.Contains(t, scratch.Descendants(), "/root/archive/b.txt")
}

func TestPreviewInto_CopyKeepsSource(t *testing.T) {
	scratch := stageTree()
	source := scratch.Descendants()["/root/docs/a.txt"]
	target := mustNode(t, "/root/copy.txt", pathtree.RegularFile)

	NewCopy(source, target, Options{}).PreviewInto(scratch)

	assert.Contains(t, scratch.Descendants(), "/root/docs/a.txt")
	assert.Contains(t, scratch.Descendants(), "/root/copy.txt")
}

func TestPreviewInto_Delete(t *testing.T) {
	scratch := stageTree()
	target := scratch.Descendants()["/root/docs"]

	NewDelete(target, Options{}).PreviewInto(scratch)

	assert.NotContains(t, scratch.Descendants(), "/root/docs")
	assert.NotContains(t, scratch.Descendants(), "/root/docs/a.txt")
	assert.Contains(t, scratch.Descendants(), "/root/keep.txt")
}

func TestPreviewInto_RelativePathsResolveAgainstScratchRoot(t *testing.T) {
	scratch := stageTree()
	target := mustNode(t, "fresh.txt", pathtree.RegularFile)

	NewCreate(target, Options{}).PreviewInto(scratch)

	assert.Contains(t, scratch.Descendants(), "/root/fresh.txt")
}

func TestPreviewInto_RelativeDeleteResolvesAgainstScratchRoot(t *testing.T) {
	scratch := stageTree()
	target := mustNode(t, "docs/a.txt", pathtree.Unknown)

	NewDelete(target, Options{}).PreviewInto(scratch)

	assert.NotContains(t, scratch.Descendants(), "/root/docs/a.txt")
	assert.Contains(t, scratch.Descendants(), "/root/docs/b.txt")
}

func TestPreviewInto_OutsidePathsAreNoOps(t *testing.T) {
	scratch := stageTree()
	before := len(scratch.Descendants())

	outside := mustNode(t, "/elsewhere/x.txt", pathtree.RegularFile)
	NewCreate(outside, Options{}).PreviewInto(scratch)
	NewDelete(outside, Options{}).PreviewInto(scratch)

	assert.Len(t, scratch.Descendants(), before)
}

func TestPreviewInto_MissingIntermediateAdoptsAtDeepestAncestor(t *testing.T) {
	scratch := stageTree()
	target := mustNode(t, "/root/no-such-dir/x.txt", pathtree.RegularFile)

	NewCreate(target, Options{}).PreviewInto(scratch)

	// "no-such-dir" does not exist in the scratch tree and is not
	// synthesized; the node lands directly under the root.
	assert.Contains(t, scratch.Descendants(), "/root/x.txt")
	assert.NotContains(t, scratch.Descendants(), "/root/no-such-dir/x.txt")
}
