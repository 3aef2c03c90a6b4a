// Package pathtree implements the mutable in-memory model of a filesystem
// subtree: nodes with parent/child links, computed paths and types, lazy
// descendant views, deep copies, and projection against a real filesystem.
//
// Paths are slash-separated. A root node's name may be a full path (for
// example "/a" or "c"); the name of any attached node is a single segment.
// Trees assume exclusive ownership by one caller at a time; no operation is
// safe for concurrent use against the same tree.
package pathtree

import (
	"fmt"
	gopath "path"
	"sort"
	"strings"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// Node is one entry in the path tree, representing a single file, directory
// or link segment. The zero value is not usable; construct nodes with New,
// Build, or Scan.
type Node struct {
	name     string
	kind     FileType // declared kind; Kind() promotes to Directory
	target   string   // symlink target, empty otherwise
	parent   *Node
	children map[string]*Node
}

// New creates a detached node. The name must be a single path segment; as an
// exception, a detached node may carry a full root path (e.g. "/a") since a
// root's path is its name.
func New(name string, kind FileType) (*Node, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Node{name: name, kind: kind}, nil
}

// NewSymlink creates a detached symlink node pointing at target.
func NewSymlink(name, target string) (*Node, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: symlink %q needs a target", fstage.ErrInvalidArgument, name)
	}
	n, err := New(name, SymbolicLink)
	if err != nil {
		return nil, err
	}
	n.target = target
	return n, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty node name", fstage.ErrInvalidArgument)
	}
	if name != gopath.Clean(name) {
		return fmt.Errorf("%w: node name %q is not a clean path", fstage.ErrInvalidArgument, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: node name %q is a relative reference", fstage.ErrInvalidArgument, name)
	}
	return nil
}

// Name returns the node's own path segment (or root path for roots).
func (n *Node) Name() string {
	return n.name
}

// Target returns the symlink target, empty for non-links.
func (n *Node) Target() string {
	return n.target
}

// Parent returns the parent node, nil for roots.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the node's full path: the parent's path joined with the
// node's name. Root nodes return their name.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return gopath.Join(n.parent.Path(), n.name)
}

// IsAbs reports whether the node's path is absolute.
func (n *Node) IsAbs() bool {
	return gopath.IsAbs(n.Path())
}

// Root returns the topmost ancestor (the node itself if detached).
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Kind returns the node's effective type. A node with children is always a
// Directory, overriding any declared type.
func (n *Node) Kind() FileType {
	if len(n.children) > 0 {
		return Directory
	}
	return n.kind
}

// DeclaredKind returns the type the node was constructed with, without the
// directory promotion applied by Kind.
func (n *Node) DeclaredKind() FileType {
	return n.kind
}

// Child returns the immediate child with the given segment name.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// ChildNames returns the sorted segment names of the immediate children.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumChildren returns the number of immediate children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// SetParent re-parents the node: it is atomically removed from its old
// parent's children and inserted into the new parent's children under its
// own name. Passing nil detaches the node (with its whole subtree).
// An existing child of the new parent with the same name is detached first.
func (n *Node) SetParent(p *Node) {
	if n.parent != nil {
		// Identity check: only remove ourselves, in case the tree
		// self-overlaps with an equal-but-distinct node.
		if old, ok := n.parent.children[n.name]; ok && old == n {
			delete(n.parent.children, n.name)
		}
	}
	n.parent = p
	if p == nil {
		return
	}
	if existing, ok := p.children[n.name]; ok && existing != n {
		existing.parent = nil
	}
	if p.children == nil {
		p.children = make(map[string]*Node)
	}
	p.children[n.name] = n
}

// ClearChildren detaches all immediate children.
func (n *Node) ClearChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Clone returns a deep structural copy of the node and its subtree. The copy
// is detached (nil parent) and shares no child collections with the
// original, so mutating the copy never mutates the source tree.
func (n *Node) Clone() *Node {
	cp := &Node{name: n.name, kind: n.kind, target: n.target}
	if len(n.children) > 0 {
		cp.children = make(map[string]*Node, len(n.children))
		for name, c := range n.children {
			cc := c.Clone()
			cc.parent = cp
			cp.children[name] = cc
		}
	}
	return cp
}

// CloneWithAncestors deep-copies the node's whole tree (from its root) and
// returns the copy corresponding to this node, so the copy's full path is
// preserved.
func (n *Node) CloneWithAncestors() *Node {
	var chain []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		chain = append(chain, cur.name)
	}
	cp := n.Root().Clone()
	for i := len(chain) - 1; i >= 0; i-- {
		cp = cp.children[chain[i]]
	}
	return cp
}

// Snapshot returns a deep copy of the node's subtree with its full path
// preserved through a synthesized ancestor chain. Snapshots give actions
// value semantics: later mutation of the original tree cannot affect them.
func (n *Node) Snapshot() *Node {
	cp := n.Clone()
	// A root already carries its full path as its name.
	if n.parent != nil {
		attachSyntheticAncestors(cp, gopath.Dir(n.Path()))
	}
	return cp
}

// IsBelow reports whether descendant lies strictly below ancestor in path
// terms.
func IsBelow(ancestor, descendant string) bool {
	return isPathPrefix(ancestor, descendant)
}

// Equal reports structural equality: same name, effective type, link target,
// and recursively equal children. Equality is ancestor-insensitive — two
// nodes can be equal despite living under different absolute roots; this is
// distinct from the identity comparison used for removal.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.name != other.name || n.Kind() != other.Kind() || n.target != other.target {
		return false
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for name, c := range n.children {
		oc, ok := other.children[name]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

// Descendants returns all nodes reachable by child traversal, keyed by
// absolute path. The node itself is not included. The view is computed on
// each call, so it always reflects the live tree.
func (n *Node) Descendants() map[string]*Node {
	out := make(map[string]*Node)
	n.collectDescendants(n.Path(), out)
	return out
}

// RelativeDescendants returns all descendants keyed by path relative to the
// node itself. Computed on each call.
func (n *Node) RelativeDescendants() map[string]*Node {
	out := make(map[string]*Node)
	n.collectDescendants("", out)
	return out
}

func (n *Node) collectDescendants(prefix string, out map[string]*Node) {
	for name, c := range n.children {
		key := name
		if prefix != "" {
			key = gopath.Join(prefix, name)
		}
		out[key] = c
		c.collectDescendants(key, out)
	}
}

// isPathPrefix reports whether descendant lies strictly below ancestor.
func isPathPrefix(ancestor, descendant string) bool {
	if ancestor == descendant {
		return false
	}
	if ancestor == "/" {
		return strings.HasPrefix(descendant, "/")
	}
	return strings.HasPrefix(descendant, ancestor+"/")
}

// InsertDescendant splices node (with its own subtree) into the tree.
// The node's path must lie strictly below this node's path. Existing
// children are walked path-segment by path-segment; no intermediate segments
// are created — if an intermediate segment is missing, the node is adopted
// directly by its deepest existing ancestor, so its resulting path may be
// shorter than the path it arrived with.
func (n *Node) InsertDescendant(node *Node) error {
	np := node.Path()
	tp := n.Path()
	if np == tp {
		return fmt.Errorf("%w: cannot insert %q into itself", fstage.ErrInvalidArgument, np)
	}
	if !isPathPrefix(tp, np) {
		return fmt.Errorf("%w: path %q is not a descendant of %q", fstage.ErrInvalidArgument, np, tp)
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(np, tp), "/")
	segments := strings.Split(rel, "/")

	// A detached root may spell several segments in its name; it is adopted
	// under its final segment so child keys stay single segments.
	if i := strings.LastIndex(node.name, "/"); i >= 0 {
		node.name = node.name[i+1:]
	}

	cur := n
	for _, seg := range segments[:len(segments)-1] {
		child, ok := cur.children[seg]
		if !ok {
			break
		}
		cur = child
	}
	node.SetParent(cur)
	return nil
}

// RemoveDescendant detaches the node at the given absolute path, returning
// it with its subtree still attached. Returns false if no such descendant
// exists.
func (n *Node) RemoveDescendant(absPath string) (*Node, bool) {
	node, ok := n.Descendants()[gopath.Clean(absPath)]
	if !ok {
		return nil, false
	}
	node.SetParent(nil)
	return node, true
}

// RemoveRelativeDescendant detaches the node at the given tree-relative
// path. Returns false if no such descendant exists.
func (n *Node) RemoveRelativeDescendant(relPath string) (*Node, bool) {
	node, ok := n.RelativeDescendants()[gopath.Clean(relPath)]
	if !ok {
		return nil, false
	}
	node.SetParent(nil)
	return node, true
}
