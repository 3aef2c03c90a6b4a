package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/internal/ui"
)

// renderTree writes an indented listing of a path tree, one entry per line.
// Directories get a trailing slash, symlinks show their target.
func renderTree(w io.Writer, root *pathtree.Node) {
	fmt.Fprintln(w, ui.PathStyle.Render(decorate(root)))
	renderChildren(w, root, "  ")
}

func renderChildren(w io.Writer, n *pathtree.Node, indent string) {
	for _, name := range n.ChildNames() {
		child, ok := n.Child(name)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s%s\n", indent, decorate(child))
		renderChildren(w, child, indent+"  ")
	}
}

func decorate(n *pathtree.Node) string {
	switch n.Kind() {
	case pathtree.Directory:
		return n.Name() + "/"
	case pathtree.SymbolicLink:
		return fmt.Sprintf("%s %s %s", n.Name(), ui.SymbolArrowRight, n.Target())
	default:
		return n.Name()
	}
}

// renderPathSet writes a labeled, sorted list of relative paths. Empty sets
// print nothing.
func renderPathSet(w io.Writer, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	fmt.Fprintf(w, "%s (%d):\n", label, len(sorted))
	for _, p := range sorted {
		fmt.Fprintf(w, "  %s %s\n", ui.SymbolBullet, p)
	}
}
