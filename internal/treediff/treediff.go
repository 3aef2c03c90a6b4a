// Package treediff classifies the relative paths of two path trees and
// compares file contents and timestamps behind the common ones.
package treediff

import (
	gopath "path"
	"sort"

	"github.com/vvka-141/fstage/internal/digest"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// Set is a set of relative paths.
type Set map[string]struct{}

// Sorted returns the set's paths in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Has reports membership.
func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

func (s Set) add(p string) {
	s[p] = struct{}{}
}

// Result classifies the relative paths of two trees. Common splits into
// Same/Different by content and into LeftNewer/RightNewer by modification
// time (ties count as RightNewer). The result owns no nodes, only paths.
type Result struct {
	Common     Set
	LeftOnly   Set
	RightOnly  Set
	Same       Set
	Different  Set
	LeftNewer  Set
	RightNewer Set
}

func newResult() *Result {
	return &Result{
		Common:     make(Set),
		LeftOnly:   make(Set),
		RightOnly:  make(Set),
		Same:       make(Set),
		Different:  make(Set),
		LeftNewer:  make(Set),
		RightNewer: make(Set),
	}
}

// Options configures a diff run. The zero value routes per-path I/O
// failures with Skip, so one missing file does not abort a whole
// comparison; WithPolicy selects a different policy.
type Options struct {
	policy    fstage.ErrorPolicy
	policySet bool
}

// WithPolicy returns Options with an explicit error policy.
func WithPolicy(p fstage.ErrorPolicy) Options {
	return Options{policy: p, policySet: true}
}

// Diff compares two tree roots. Each tree is first self-relativized so the
// two relative-path sets are comparable; common paths are then compared by
// content and modification time against the real filesystem. Pure with
// respect to its inputs aside from those reads.
func Diff(fsys fsio.FS, calc digest.Calculator, left, right *pathtree.Node, opts Options) (*Result, error) {
	policy := fstage.Skip
	if opts.policySet {
		policy = opts.policy
	}

	l := left.RelativeDescendants()
	r := right.RelativeDescendants()

	res := newResult()
	for p := range l {
		if _, ok := r[p]; ok {
			res.Common.add(p)
		} else {
			res.LeftOnly.add(p)
		}
	}
	for p := range r {
		if _, ok := l[p]; !ok {
			res.RightOnly.add(p)
		}
	}

	for _, p := range res.Common.Sorted() {
		ln, lok := l[p]
		rn, rok := r[p]
		if !lok || !rok {
			// A view lookup miss should not normally happen; skip the path.
			continue
		}

		err := comparePath(fsys, calc, left.Path(), right.Path(), p, ln, rn, res)
		if err != nil {
			switch policy {
			case fstage.Skip:
				continue
			case fstage.Terminate:
				return res, nil
			default:
				return res, err
			}
		}
	}
	return res, nil
}

func comparePath(fsys fsio.FS, calc digest.Calculator, leftRoot, rightRoot, p string, ln, rn *pathtree.Node, res *Result) error {
	same, err := ln.SameContentsAs(fsys, calc, rn)
	if err != nil {
		return err
	}
	if same {
		res.Same.add(p)
	} else {
		res.Different.add(p)
	}

	li, err := fsys.Lstat(gopath.Join(leftRoot, p))
	if err != nil {
		return err
	}
	ri, err := fsys.Lstat(gopath.Join(rightRoot, p))
	if err != nil {
		return err
	}
	if li.ModTime().After(ri.ModTime()) {
		res.LeftNewer.add(p)
	} else {
		res.RightNewer.add(p)
	}
	return nil
}
