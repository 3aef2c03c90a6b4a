package pathtree

import (
	"fmt"
	gopath "path"
	"strings"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// Relativize returns a deep copy of other's subtree with its path expressed
// relative to this node: for a node at "/a" and other at "/a/c/d", the copy's
// path is "c/d" (intermediate ancestors are synthesized as directories).
// Both paths must share their origin (both absolute or both relative) and
// other's path must lie strictly below this node's path.
func (n *Node) Relativize(other *Node) (*Node, error) {
	tp := n.Path()
	op := other.Path()
	if gopath.IsAbs(tp) != gopath.IsAbs(op) {
		return nil, fmt.Errorf("%w: cannot relativize %q against %q: absolute/relative mismatch", fstage.ErrInvalidArgument, op, tp)
	}
	if !isPathPrefix(tp, op) {
		return nil, fmt.Errorf("%w: path %q is not a descendant of %q", fstage.ErrInvalidArgument, op, tp)
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(op, tp), "/")
	cp := other.Clone()
	// A root's name may spell several segments of rel; the copy keeps only
	// the last one so the synthetic ancestors spell the rest exactly once.
	cp.name = gopath.Base(rel)
	attachSyntheticAncestors(cp, gopath.Dir(rel))
	return cp, nil
}

// Resolve places other under this node. If other's path is already
// absolute, a plain deep copy is returned. Otherwise the copy's new path is
// this node's path joined with other's path.
func (n *Node) Resolve(other *Node) *Node {
	cp := other.CloneWithAncestors()
	if other.IsAbs() {
		return cp
	}
	anchor := &Node{name: n.Path(), kind: Directory}
	cp.Root().SetParent(anchor)
	return cp
}

// attachSyntheticAncestors gives node a parent chain spelling out dir
// (slash-separated, "." for none), deepest segment closest to the node.
func attachSyntheticAncestors(node *Node, dir string) {
	if dir == "." || dir == "" || dir == "/" {
		return
	}
	segments := strings.Split(strings.TrimPrefix(dir, "/"), "/")
	if gopath.IsAbs(dir) {
		segments[0] = "/" + segments[0]
	}
	var cur *Node
	for _, seg := range segments {
		next := &Node{name: seg, kind: Directory}
		if cur != nil {
			next.SetParent(cur)
		}
		cur = next
	}
	node.SetParent(cur)
}
