// Package target loads deployment target definitions. A target bundles the
// data that makes a host different from another: which artifacts must exist
// and where, which directories to scaffold, which commands build the project,
// and how a static bundle is laid out.
//
// Targets are YAML, JSON or JSONC files. The presets "vercel", "netlify" and
// "static" are embedded in the binary.
package target

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/agentstation/converge/pkg/artifact"
	"github.com/agentstation/converge/pkg/build"
	"github.com/agentstation/converge/pkg/bundle"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/scan"
)

// Bundle locates the static bundle inside the project.
type Bundle struct {
	// Source is the root-relative static asset directory merged into Publish.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
	// Publish is the root-relative directory the host serves.
	Publish string `yaml:"publish,omitempty" json:"publish,omitempty"`

	bundle.Config `yaml:",inline"`
}

// Target is a deployment target definition.
type Target struct {
	Name         string              `yaml:"name" json:"name"`
	Description  string              `yaml:"description,omitempty" json:"description,omitempty"`
	Ignore       []string            `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	Directories  []string            `yaml:"directories,omitempty" json:"directories,omitempty"`
	Install      string              `yaml:"install,omitempty" json:"install,omitempty"`
	Build        string              `yaml:"build,omitempty" json:"build,omitempty"`
	Env          map[string]string   `yaml:"env,omitempty" json:"env,omitempty"`
	StaticExport bool                `yaml:"static_export,omitempty" json:"static_export,omitempty"`
	Bundle       Bundle              `yaml:"bundle,omitempty" json:"bundle,omitempty"`
	Artifacts    []artifact.Artifact `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`

	// Origin is "preset" or the file the target was loaded from.
	Origin string `yaml:"-" json:"-"`
}

// Validate checks the target and every artifact it declares.
func (t *Target) Validate() error {
	if t.Name == "" {
		return errors.NewValidationError("name", t.Name, "cannot be empty")
	}
	for _, dir := range t.Directories {
		if !filepath.IsLocal(filepath.FromSlash(dir)) {
			return errors.NewValidationError("directories", dir, "must be a relative path inside the project root")
		}
	}
	if t.StaticExport {
		if t.Bundle.Publish == "" {
			return errors.NewValidationError("bundle.publish", "", "required for static export targets")
		}
		for field, p := range map[string]string{"bundle.publish": t.Bundle.Publish, "bundle.source": t.Bundle.Source} {
			if p != "" && !filepath.IsLocal(filepath.FromSlash(p)) {
				return errors.NewValidationError(field, p, "must be a relative path inside the project root")
			}
		}
		if t.Bundle.FallbackFile != "" && (t.Bundle.Fallback.From == "" || t.Bundle.Fallback.To == "") {
			return errors.NewValidationError("bundle.fallback", nil, "from and to are required when fallback_file is set")
		}
	}
	_, err := t.Registry()
	return err
}

// Registry builds the artifact registry in declaration order.
func (t *Target) Registry() (*artifact.Registry, error) {
	return artifact.NewRegistry(t.Artifacts...)
}

// IgnoreSet returns the default ignore set extended by the target's own
// entries and then by extra. With replace set the target's entries are
// dropped. The defaults always apply.
func (t *Target) IgnoreSet(extra []string, replace bool) []string {
	set := slices.Clone(constants.DefaultIgnore)
	add := func(names []string) {
		for _, name := range names {
			if name != "" && !slices.Contains(set, name) {
				set = append(set, name)
			}
		}
	}
	if !replace {
		add(t.Ignore)
	}
	add(extra)
	return set
}

// Environ renders Env as sorted KEY=value pairs.
func (t *Target) Environ() []string {
	env := make([]string, 0, len(t.Env))
	for _, k := range slices.Sorted(maps.Keys(t.Env)) {
		env = append(env, k+"="+t.Env[k])
	}
	return env
}

// Plan turns the target into a build plan for tree.
func (t *Target) Plan(tree *scan.Tree) (build.Plan, error) {
	registry, err := t.Registry()
	if err != nil {
		return build.Plan{}, err
	}
	return build.Plan{
		Tree:         tree,
		Registry:     registry,
		Directories:  slices.Clone(t.Directories),
		Install:      t.Install,
		Build:        t.Build,
		StaticExport: t.StaticExport,
		SourceDir:    t.Bundle.Source,
		PublishDir:   t.Bundle.Publish,
		Bundle:       t.Bundle.Config,
	}, nil
}
