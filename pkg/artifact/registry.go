package artifact

import (
	"fmt"

	"github.com/agentstation/converge/pkg/errors"
)

// Registry is an ordered set of artifacts with unique keys.
// Reconciliation visits artifacts in registration order.
type Registry struct {
	artifacts []Artifact
	index     map[string]int
	claims    map[string]string // root-relative path -> artifact key
}

// NewRegistry creates a registry holding the given artifacts.
func NewRegistry(artifacts ...Artifact) (*Registry, error) {
	r := &Registry{
		index:  make(map[string]int, len(artifacts)),
		claims: make(map[string]string),
	}
	for _, a := range artifacts {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates and appends an artifact. A path may be claimed by one
// artifact only, as canonical path, alternate or mirror source.
func (r *Registry) Register(a Artifact) error {
	if r.index == nil {
		r.index = make(map[string]int)
		r.claims = make(map[string]string)
	}
	a = a.normalize()
	if err := a.Validate(); err != nil {
		return fmt.Errorf("artifact %q: %w", a.Key, err)
	}
	if _, exists := r.index[a.Key]; exists {
		return errors.NewValidationError("key", a.Key, fmt.Sprintf("duplicate artifact key %q", a.Key))
	}
	for _, p := range a.Claims() {
		if owner, taken := r.claims[p]; taken {
			return errors.NewValidationError("canonical", p, fmt.Sprintf("%s already claimed by artifact %q", p, owner))
		}
	}

	for _, p := range a.Claims() {
		r.claims[p] = a.Key
	}
	r.index[a.Key] = len(r.artifacts)
	r.artifacts = append(r.artifacts, a)
	return nil
}

// Claimant returns the key of the artifact claiming the root-relative path.
func (r *Registry) Claimant(rel string) (string, bool) {
	key, ok := r.claims[rel]
	return key, ok
}

// Get returns the artifact registered under key.
func (r *Registry) Get(key string) (Artifact, bool) {
	i, ok := r.index[key]
	if !ok {
		return Artifact{}, false
	}
	return r.artifacts[i], true
}

// All returns the artifacts in registration order.
func (r *Registry) All() []Artifact {
	out := make([]Artifact, len(r.artifacts))
	copy(out, r.artifacts)
	return out
}

// Len returns the number of registered artifacts.
func (r *Registry) Len() int {
	return len(r.artifacts)
}
