package pathtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkPaths(n *Node, order Order) []string {
	var out []string
	for node := range n.WalkChildren(order) {
		out = append(out, node.Path())
	}
	return out
}

func TestWalkChildren_TopDown(t *testing.T) {
	root := sampleTree()
	assert.Equal(t,
		[]string{"/a/b", "/a/c", "/a/c/d", "/a/c/d/e", "/a/c/d/f"},
		walkPaths(root, TopDown),
		"pre-order with sorted siblings")
}

func TestWalkChildren_BottomUp(t *testing.T) {
	root := sampleTree()
	assert.Equal(t,
		[]string{"/a/b", "/a/c/d/e", "/a/c/d/f", "/a/c/d", "/a/c"},
		walkPaths(root, BottomUp),
		"post-order: children before their parent")
}

func TestWalkChildren_Restartable(t *testing.T) {
	root := sampleTree()
	seq := root.WalkChildren(TopDown)

	var first, second []string
	for n := range seq {
		first = append(first, n.Path())
	}
	for n := range seq {
		second = append(second, n.Path())
	}
	assert.Equal(t, first, second, "each range is a fresh traversal")
}

func TestWalkChildren_EarlyBreak(t *testing.T) {
	root := sampleTree()

	var seen []string
	for n := range root.WalkChildren(TopDown) {
		seen = append(seen, n.Name())
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"b", "c"}, seen)
}

func TestWalkChildren_ObservesConsumptionTimeState(t *testing.T) {
	root := sampleTree()

	var seen []string
	for n := range root.WalkChildren(TopDown) {
		seen = append(seen, n.Path())
		if n.Path() == "/a/c" {
			// Mutating an unvisited subtree is reflected by the walk.
			n.RemoveRelativeDescendant("d/e")
		}
	}
	assert.NotContains(t, seen, "/a/c/d/e")
	assert.Contains(t, seen, "/a/c/d/f")
}

func TestWalkAncestors(t *testing.T) {
	root := sampleTree()
	e := root.Descendants()["/a/c/d/e"]
	require.NotNil(t, e)

	var up []string
	for n := range e.WalkAncestors(BottomUp) {
		up = append(up, n.Name())
	}
	assert.Equal(t, []string{"d", "c", "/a"}, up)

	var down []string
	for n := range e.WalkAncestors(TopDown) {
		down = append(down, n.Name())
	}
	assert.Equal(t, []string{"/a", "c", "d"}, down)
}

func TestWalkAncestors_RootHasNone(t *testing.T) {
	root := sampleTree()
	count := 0
	for range root.WalkAncestors(BottomUp) {
		count++
	}
	assert.Zero(t, count)
}
