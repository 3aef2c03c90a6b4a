package pathtree

import "iter"

// Order selects the traversal direction of a walk.
type Order int

const (
	// TopDown yields a node before its descendants (pre-order).
	TopDown Order = iota

	// BottomUp yields a node's descendants before the node (post-order).
	BottomUp
)

// WalkChildren returns a lazy sequence over all descendants in the given
// order. Each range over the sequence is a fresh traversal, and the tree is
// observed at consumption time: children are re-resolved as the walk
// reaches them, so structural mutations made before a subtree is visited
// are reflected.
func (n *Node) WalkChildren(order Order) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walkChildren(order, yield)
	}
}

func (n *Node) walkChildren(order Order, yield func(*Node) bool) bool {
	for _, name := range n.ChildNames() {
		c, ok := n.children[name]
		if !ok {
			continue
		}
		if order == TopDown {
			if !yield(c) {
				return false
			}
			if !c.walkChildren(order, yield) {
				return false
			}
		} else {
			if !c.walkChildren(order, yield) {
				return false
			}
			if !yield(c) {
				return false
			}
		}
	}
	return true
}

// WalkAncestors returns the chain of ancestors: parent-to-root for BottomUp
// (the default ordering of ancestor walks), root-to-parent for TopDown.
// The node itself is not included.
func (n *Node) WalkAncestors(order Order) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if order == BottomUp {
			for cur := n.parent; cur != nil; cur = cur.parent {
				if !yield(cur) {
					return
				}
			}
			return
		}
		var chain []*Node
		for cur := n.parent; cur != nil; cur = cur.parent {
			chain = append(chain, cur)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			if !yield(chain[i]) {
				return
			}
		}
	}
}
