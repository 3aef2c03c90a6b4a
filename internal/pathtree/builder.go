package pathtree

import (
	"fmt"
	gopath "path"
	"strings"
)

// Builder declares a tree fluently. It is passed by reference into nested
// construction closures:
//
//	root := pathtree.Build("/a", func(b *pathtree.Builder) {
//		b.File("b")
//		b.Dir("c/d", func(b *pathtree.Builder) {
//			b.File("e")
//			b.Dir("f", nil)
//		})
//	})
//
// Multi-segment names create intermediate directory nodes. Builder methods
// panic on invalid names; declarations are programmer input, not user input.
type Builder struct {
	node *Node
}

// Build constructs a tree rooted at rootPath (absolute or relative) and
// returns the node at that path. fn may be nil for a leaf root.
func Build(rootPath string, fn func(*Builder)) *Node {
	rootPath = gopath.Clean(rootPath)
	if err := validateName(rootPath); err != nil {
		panic(fmt.Sprintf("pathtree: invalid root path %q: %v", rootPath, err))
	}
	root := &Node{name: rootPath, kind: Directory}
	if fn != nil {
		fn(&Builder{node: root})
	}
	return root
}

// File declares a regular file and returns its node.
func (b *Builder) File(name string) *Node {
	return b.declare(name, RegularFile, "", nil)
}

// Dir declares a directory; fn (which may be nil) declares its children.
// Returns the directory's node.
func (b *Builder) Dir(name string, fn func(*Builder)) *Node {
	return b.declare(name, Directory, "", fn)
}

// Symlink declares a symbolic link pointing at target and returns its node.
func (b *Builder) Symlink(name, target string) *Node {
	if target == "" {
		panic(fmt.Sprintf("pathtree: symlink %q needs a target", name))
	}
	return b.declare(name, SymbolicLink, target, nil)
}

// Node declares a node of an explicit type (including Unknown) and returns it.
func (b *Builder) Node(name string, kind FileType) *Node {
	return b.declare(name, kind, "", nil)
}

func (b *Builder) declare(name string, kind FileType, target string, fn func(*Builder)) *Node {
	name = strings.Trim(name, "/")
	if name == "" {
		panic("pathtree: empty declaration name")
	}
	segments := strings.Split(name, "/")
	cur := b.node
	for _, seg := range segments[:len(segments)-1] {
		if err := validateName(seg); err != nil {
			panic(fmt.Sprintf("pathtree: invalid segment %q in %q: %v", seg, name, err))
		}
		child, ok := cur.children[seg]
		if !ok {
			child = &Node{name: seg, kind: Directory}
			child.SetParent(cur)
		}
		cur = child
	}

	last := segments[len(segments)-1]
	if err := validateName(last); err != nil {
		panic(fmt.Sprintf("pathtree: invalid segment %q in %q: %v", last, name, err))
	}
	node := &Node{name: last, kind: kind, target: target}
	node.SetParent(cur)
	if fn != nil {
		fn(&Builder{node: node})
	}
	return node
}
