// Package scan walks a project tree and yields entries whose base name matches
// a predicate. Scans are lazy, depth-first and never cached: every call reflects
// the filesystem as it is at that moment.
package scan

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentstation/converge/pkg/errors"
)

// Tree is the directory being reconciled plus the names pruned from every scan.
// A Tree is read-only once created.
type Tree struct {
	// Root is the absolute, cleaned project root.
	Root string

	// Ignore holds base names or doublestar patterns never descended into or matched.
	Ignore []string
}

// NewTree resolves root to an absolute directory.
func NewTree(root string, ignore ...string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapIO("resolve", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("project root", abs)
		}
		return nil, errors.WrapIO("stat", abs, err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("root", abs, "is not a directory")
	}
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.NewValidationError("ignore", pattern, "invalid glob pattern")
		}
	}
	return &Tree{Root: abs, Ignore: slices.Clone(ignore)}, nil
}

// Abs returns the absolute path of a root-relative slash path.
func (t *Tree) Abs(rel string) string {
	return filepath.Join(t.Root, filepath.FromSlash(rel))
}

// Rel returns path relative to the root in slash form. Paths outside the root
// are returned unchanged.
func (t *Tree) Rel(path string) string {
	rel, err := filepath.Rel(t.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Ignored reports whether a base name is in the ignore set.
func (t *Tree) Ignored(name string) bool {
	for _, pattern := range t.Ignore {
		if pattern == name {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
