// Package treefile parses a declarative YAML description of a path tree and
// an optional list of staged actions. It is a thin construction surface:
// the result is an ordinary pathtree.Node and actions.Queue.
package treefile

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/fstage/internal/actions"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// NodeSpec declares one tree entry. Multi-segment names create intermediate
// directories.
type NodeSpec struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	Target   string     `yaml:"target,omitempty"`
	Children []NodeSpec `yaml:"children,omitempty"`
}

// ActionSpec declares one staged action. Overwrite, follow_links, and
// on_error are pointers so an action can leave them unset and inherit the
// project default, while an explicit false still overrides a true default.
type ActionSpec struct {
	Op             string `yaml:"op"`
	Source         string `yaml:"source,omitempty"`
	Target         string `yaml:"target"`
	Type           string `yaml:"type,omitempty"`
	LinkTarget     string `yaml:"link_target,omitempty"`
	Overwrite      *bool  `yaml:"overwrite,omitempty"`
	FollowLinks    *bool  `yaml:"follow_links,omitempty"`
	Atomic         bool   `yaml:"atomic,omitempty"`
	CopyAttributes bool   `yaml:"copy_attributes,omitempty"`
	Recursive      bool   `yaml:"recursive,omitempty"`
	OnError        string `yaml:"on_error,omitempty"`
}

// Document is a parsed treefile.
type Document struct {
	Root     string       `yaml:"root"`
	Children []NodeSpec   `yaml:"children,omitempty"`
	Actions  []ActionSpec `yaml:"actions,omitempty"`
}

// Parse decodes a treefile document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", fstage.ErrConfigInvalid, err)
	}
	if doc.Root == "" {
		return nil, fmt.Errorf("%w: treefile needs a root path", fstage.ErrConfigInvalid)
	}
	return &doc, nil
}

// Load reads and parses a treefile from a filesystem.
func Load(fsys fsio.FS, path string) (*Document, error) {
	r, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fstage.NewIOError("read", path, nil, err)
	}
	return Parse(data)
}

// Tree materializes the declared tree.
func (d *Document) Tree() (*pathtree.Node, error) {
	root, err := pathtree.New(d.Root, pathtree.Directory)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", fstage.ErrConfigInvalid, err)
	}
	for _, spec := range d.Children {
		if err := addSpec(root, spec); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func addSpec(parent *pathtree.Node, spec NodeSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: tree entry under %q has no name", fstage.ErrConfigInvalid, parent.Path())
	}
	kind := pathtree.RegularFile
	if spec.Type != "" {
		var err error
		if kind, err = pathtree.ParseFileType(spec.Type); err != nil {
			return fmt.Errorf("%w: entry %q: %v", fstage.ErrConfigInvalid, spec.Name, err)
		}
	}

	segments := strings.Split(strings.Trim(spec.Name, "/"), "/")
	cur := parent
	for _, seg := range segments[:len(segments)-1] {
		if child, ok := cur.Child(seg); ok {
			cur = child
			continue
		}
		dir, err := pathtree.New(seg, pathtree.Directory)
		if err != nil {
			return fmt.Errorf("%w: entry %q: %v", fstage.ErrConfigInvalid, spec.Name, err)
		}
		dir.SetParent(cur)
		cur = dir
	}

	last := segments[len(segments)-1]
	var node *pathtree.Node
	var err error
	if kind == pathtree.SymbolicLink {
		node, err = pathtree.NewSymlink(last, spec.Target)
	} else {
		node, err = pathtree.New(last, kind)
	}
	if err != nil {
		return fmt.Errorf("%w: entry %q: %v", fstage.ErrConfigInvalid, spec.Name, err)
	}
	node.SetParent(cur)

	for _, child := range spec.Children {
		if err := addSpec(node, child); err != nil {
			return err
		}
	}
	return nil
}

// Defaults carries the project-level option defaults applied to actions
// that leave the corresponding field unset.
type Defaults struct {
	Policy      fstage.ErrorPolicy
	FollowLinks bool
	Overwrite   bool
}

// Queue materializes the declared actions. Fields an action does not set
// explicitly fall back to defaults.
func (d *Document) Queue(defaults Defaults) (*actions.Queue, error) {
	q := actions.NewQueue()
	for i, spec := range d.Actions {
		act, err := buildAction(spec, defaults)
		if err != nil {
			return nil, fmt.Errorf("%w: action %d: %v", fstage.ErrConfigInvalid, i+1, err)
		}
		q.Enqueue(act)
	}
	return q, nil
}

func orDefault(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func buildAction(spec ActionSpec, defaults Defaults) (actions.Action, error) {
	var zero actions.Action

	kind, err := actions.ParseKind(spec.Op)
	if err != nil {
		return zero, err
	}
	policy := defaults.Policy
	if spec.OnError != "" {
		if policy, err = fstage.ParseErrorPolicy(spec.OnError); err != nil {
			return zero, err
		}
	}
	opts := actions.Options{
		Overwrite:      orDefault(spec.Overwrite, defaults.Overwrite),
		FollowLinks:    orDefault(spec.FollowLinks, defaults.FollowLinks),
		Atomic:         spec.Atomic,
		CopyAttributes: spec.CopyAttributes,
		Recursive:      spec.Recursive,
		Policy:         policy,
	}

	if spec.Target == "" {
		return zero, fmt.Errorf("action %q needs a target", spec.Op)
	}
	target, err := actionNode(spec.Target, spec.Type, spec.LinkTarget, kind)
	if err != nil {
		return zero, err
	}

	switch kind {
	case actions.Move, actions.Copy:
		if spec.Source == "" {
			return zero, fmt.Errorf("action %q needs a source", spec.Op)
		}
		source, err := actionNode(spec.Source, "", "", kind)
		if err != nil {
			return zero, err
		}
		if kind == actions.Move {
			return actions.NewMove(source, target, opts), nil
		}
		return actions.NewCopy(source, target, opts), nil
	case actions.Delete:
		return actions.NewDelete(target, opts), nil
	default:
		return actions.NewCreate(target, opts), nil
	}
}

func actionNode(path, typ, linkTarget string, kind actions.Kind) (*pathtree.Node, error) {
	fileType := pathtree.Unknown
	if typ != "" {
		var err error
		if fileType, err = pathtree.ParseFileType(typ); err != nil {
			return nil, err
		}
	} else if kind == actions.Create {
		fileType = pathtree.RegularFile
	}
	if fileType == pathtree.SymbolicLink {
		return pathtree.NewSymlink(path, linkTarget)
	}
	return pathtree.New(path, fileType)
}
