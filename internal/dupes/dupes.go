// Package dupes groups the regular files under a directory by content
// digest. Two files with the same digest are reported as duplicates without
// a secondary byte-for-byte verification; with a content-addressing-strength
// algorithm this is a deliberate accuracy/performance trade-off.
package dupes

import (
	"errors"
	gopath "path"
	"path/filepath"
	"sort"

	"github.com/vvka-141/fstage/internal/digest"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// Finder locates duplicate files under a root path.
type Finder struct {
	calc   digest.Calculator
	fsys   fsio.FS
	policy fstage.ErrorPolicy
}

// NewFinder creates a duplicate finder with the Skip policy, so one
// unreadable file does not abort a whole scan.
// Panics if calc or fsys is nil.
func NewFinder(calc digest.Calculator, fsys fsio.FS) *Finder {
	if calc == nil {
		panic("calc cannot be nil")
	}
	if fsys == nil {
		panic("fsys cannot be nil")
	}
	return &Finder{calc: calc, fsys: fsys, policy: fstage.Skip}
}

// NewFinderWithPolicy creates a duplicate finder with an explicit error
// policy.
func NewFinderWithPolicy(calc digest.Calculator, fsys fsio.FS, policy fstage.ErrorPolicy) *Finder {
	f := NewFinder(calc, fsys)
	f.policy = policy
	return f
}

// Find walks the subtree under root, digests every regular file, and maps
// each scanned path to the sorted set of all paths (including itself)
// sharing its digest. A unique file maps to a singleton set.
func (f *Finder) Find(root string) (map[string][]string, error) {
	root = gopath.Clean(filepath.ToSlash(root))
	groups := make(map[string][]string)
	if err := f.walk(root, groups); err != nil && !errors.Is(err, errStopped) {
		return nil, err
	}

	out := make(map[string][]string)
	for _, paths := range groups {
		sort.Strings(paths)
		for _, p := range paths {
			out[p] = paths
		}
	}
	return out, nil
}

// errStopped signals a Terminate decision; partial groups are kept.
var errStopped = errors.New("scan stopped")

func (f *Finder) walk(dir string, groups map[string][]string) error {
	entries, err := f.fsys.ReadDir(dir)
	if err != nil {
		return f.route(err)
	}
	for _, e := range entries {
		p := gopath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if err := f.walk(p, groups); err != nil {
				return err
			}
		case e.Type().IsRegular():
			sum, err := f.digestFile(p)
			if err != nil {
				if routed := f.route(err); routed != nil {
					return routed
				}
				continue
			}
			groups[sum] = append(groups[sum], p)
		}
		// Symlinks and special files carry no content to group.
	}
	return nil
}

func (f *Finder) digestFile(p string) (string, error) {
	r, err := f.fsys.Open(p)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return f.calc.Sum(r)
}

func (f *Finder) route(err error) error {
	switch f.policy {
	case fstage.Skip:
		return nil
	case fstage.Terminate:
		return errStopped
	default:
		return err
	}
}
