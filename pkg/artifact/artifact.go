// Package artifact defines logical configuration artifacts: named configuration
// concepts with exactly one canonical on-disk location, a policy deciding whether
// the canonical copy may hold user content, and a deterministic default.
//
// Artifacts are plain data. Vendor file names (vercel.json, netlify.toml, ...)
// only ever appear in target definitions, never in this package.
package artifact

import (
	"path"
	"path/filepath"
	"slices"

	"github.com/agentstation/converge/pkg/errors"
)

// Policy decides what happens to a canonical copy that already exists.
type Policy string

const (
	// PolicyPreserve marks user-authored content: an existing canonical copy is
	// never overwritten, and a missing one may be promoted from an alternate.
	PolicyPreserve Policy = "preserve"

	// PolicyExact marks policy content: the canonical copy must be byte-identical
	// to the expected (mirrored or generated) content and is overwritten otherwise.
	PolicyExact Policy = "exact"

	// PolicyAbsent marks stale state: every declared path must not exist and
	// is deleted when found. Absent artifacts are never discovered by name.
	PolicyAbsent Policy = "absent"
)

// Kind is the filesystem type of an artifact.
type Kind string

const (
	// KindFile is a regular file artifact.
	KindFile Kind = "file"
	// KindDir is a directory artifact; it has no content.
	KindDir Kind = "dir"
)

// Artifact is a logical configuration artifact.
type Artifact struct {
	// Key uniquely identifies the artifact within a registry.
	Key string `yaml:"key" json:"key"`

	// Description is shown in reports and target listings.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Canonical is the root-relative location the artifact must occupy.
	Canonical string `yaml:"canonical" json:"canonical"`

	// Alternates are root-relative locations considered equivalent. For preserve
	// artifacts they are promotion sources, in declaration order.
	Alternates []string `yaml:"alternates,omitempty" json:"alternates,omitempty"`

	// Names are base-name globs identifying copies anywhere in the tree.
	// Defaults to the base names of Canonical and Alternates.
	Names []string `yaml:"names,omitempty" json:"names,omitempty"`

	// MirrorFrom is an author-edited root-relative source copied verbatim into
	// the canonical location. It is never deleted.
	MirrorFrom string `yaml:"mirror_from,omitempty" json:"mirror_from,omitempty"`

	// PathsOnly limits discovery to Canonical and Alternates. Copies with the
	// same base name elsewhere in the tree are left alone.
	PathsOnly bool `yaml:"paths_only,omitempty" json:"paths_only,omitempty"`

	Policy   Policy `yaml:"policy,omitempty" json:"policy,omitempty"`
	Kind     Kind   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`

	// Default generates the content written when nothing else provides it.
	Default Content `yaml:"default,omitempty" json:"default,omitempty"`
}

// IsDir reports whether the artifact is a directory.
func (a Artifact) IsDir() bool {
	return a.Kind == KindDir
}

// MatchNames returns the base-name patterns used to discover copies of the artifact.
func (a Artifact) MatchNames() []string {
	if len(a.Names) > 0 {
		return slices.Clone(a.Names)
	}
	names := []string{path.Base(a.Canonical)}
	for _, alt := range a.Alternates {
		if name := path.Base(alt); !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// Discovered reports whether copies are found by scanning the tree for MatchNames.
func (a Artifact) Discovered() bool {
	return !a.PathsOnly && a.Policy != PolicyAbsent
}

// Paths returns the canonical path followed by the alternates.
func (a Artifact) Paths() []string {
	return append([]string{a.Canonical}, a.Alternates...)
}

// Claims returns every root-relative path the artifact owns: its canonical
// path, alternates and mirror source.
func (a Artifact) Claims() []string {
	claims := a.Paths()
	if a.MirrorFrom != "" {
		claims = append(claims, a.MirrorFrom)
	}
	return claims
}

// normalize fills defaults and cleans paths to forward-slash relative form.
func (a Artifact) normalize() Artifact {
	if a.Policy == "" {
		a.Policy = PolicyPreserve
	}
	if a.Kind == "" {
		a.Kind = KindFile
	}
	a.Canonical = cleanRel(a.Canonical)
	a.MirrorFrom = cleanRel(a.MirrorFrom)
	alternates := make([]string, 0, len(a.Alternates))
	for _, alt := range a.Alternates {
		alternates = append(alternates, cleanRel(alt))
	}
	a.Alternates = alternates
	return a
}

// Validate checks the artifact definition.
func (a Artifact) Validate() error {
	if a.Key == "" {
		return errors.NewValidationError("key", a.Key, "cannot be empty")
	}
	if err := validateRel("canonical", a.Canonical); err != nil {
		return err
	}
	for _, alt := range a.Alternates {
		if err := validateRel("alternates", alt); err != nil {
			return err
		}
		if alt == a.Canonical {
			return errors.NewValidationError("alternates", alt, "cannot repeat the canonical path")
		}
	}
	if a.MirrorFrom != "" {
		if err := validateRel("mirror_from", a.MirrorFrom); err != nil {
			return err
		}
		if a.MirrorFrom == a.Canonical {
			return errors.NewValidationError("mirror_from", a.MirrorFrom, "cannot be the canonical path")
		}
	}

	switch a.Policy {
	case PolicyPreserve, PolicyExact:
	case PolicyAbsent:
		if !a.Default.IsZero() || a.MirrorFrom != "" {
			return errors.NewValidationError("policy", a.Policy, "absent artifacts cannot have content")
		}
	default:
		return errors.NewValidationError("policy", a.Policy, "must be preserve, exact or absent")
	}

	switch a.Kind {
	case KindFile:
	case KindDir:
		if !a.Default.IsZero() || a.MirrorFrom != "" {
			return errors.NewValidationError("kind", a.Kind, "directory artifacts cannot have content")
		}
	default:
		return errors.NewValidationError("kind", a.Kind, "must be file or dir")
	}

	if err := a.Default.Validate(); err != nil {
		return errors.NewValidationError("default", nil, err.Error())
	}
	return nil
}

func cleanRel(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}

func validateRel(field, p string) error {
	if p == "" {
		return errors.NewValidationError(field, p, "cannot be empty")
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return errors.NewValidationError(field, p, "must be a relative path inside the project root")
	}
	return nil
}
