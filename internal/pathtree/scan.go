package pathtree

import (
	gopath "path"
	"path/filepath"

	"github.com/vvka-141/fstage/internal/fsio"
)

// Scan builds a tree from a real directory: a depth-first walk producing one
// node per scanned path. The returned root carries the full scan path as its
// name; symlinks are recorded as link nodes with their targets and are not
// followed.
func Scan(fsys fsio.FS, root string) (*Node, error) {
	root = gopath.Clean(filepath.ToSlash(root))
	info, err := fsys.Lstat(root)
	if err != nil {
		return nil, err
	}

	node := &Node{name: root, kind: TypeOfMode(info.Mode())}
	if node.kind == SymbolicLink {
		if node.target, err = fsys.Readlink(root); err != nil {
			return nil, err
		}
	}
	if node.kind == Directory {
		if err := scanChildren(fsys, root, node); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func scanChildren(fsys fsio.FS, dir string, parent *Node) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		childPath := gopath.Join(dir, entry.Name())
		child := &Node{name: entry.Name(), kind: TypeOfMode(entry.Type())}
		switch child.kind {
		case SymbolicLink:
			target, err := fsys.Readlink(childPath)
			if err != nil {
				return err
			}
			child.target = target
		case Directory:
			if err := scanChildren(fsys, childPath, child); err != nil {
				return err
			}
		}
		child.SetParent(parent)
	}
	return nil
}
