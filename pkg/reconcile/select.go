package reconcile

import (
	"path/filepath"
	"time"
)

// Instance is one on-disk copy of an artifact found by a scan.
type Instance struct {
	Path      string    `json:"path" yaml:"path"` // absolute
	Canonical bool      `json:"canonical" yaml:"canonical"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
	IsDir     bool      `json:"is_dir" yaml:"is_dir"`
}

// Selection splits instances into the canonical copy and the rest.
type Selection struct {
	// Canonical is nil when no instance sits at the canonical path.
	Canonical *Instance
	Redundant []Instance
}

// Select marks the instance at canonicalPath as canonical. Order and
// modification times never influence the choice.
func Select(instances []Instance, canonicalPath string) Selection {
	canonicalPath = filepath.Clean(canonicalPath)
	var sel Selection
	for _, inst := range instances {
		if sel.Canonical == nil && filepath.Clean(inst.Path) == canonicalPath {
			inst.Canonical = true
			sel.Canonical = &inst
			continue
		}
		inst.Canonical = false
		sel.Redundant = append(sel.Redundant, inst)
	}
	return sel
}

// find returns the redundant instance at path.
func (s Selection) find(path string) (Instance, bool) {
	path = filepath.Clean(path)
	for _, inst := range s.Redundant {
		if filepath.Clean(inst.Path) == path {
			return inst, true
		}
	}
	return Instance{}, false
}
