package reconcile

import (
	"os"

	"github.com/agentstation/converge/internal/fsutil"
	"github.com/agentstation/converge/pkg/artifact"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/scan"
)

// Sources recorded on results.
const (
	SourceDefault  = "default"
	SourceMirror   = "mirror"
	SourcePromoted = "promoted"
)

// Materializer produces canonical copies of artifacts. With DryRun set it
// resolves content but never touches the filesystem.
type Materializer struct {
	DryRun bool
}

// Materialized describes a canonical copy produced by Materialize.
type Materialized struct {
	Source string
	Digest string // empty for directories
}

// Expected returns the content the canonical copy should hold and where it came
// from: the mirror source verbatim when configured and present, else the
// generated default.
func (Materializer) Expected(tree *scan.Tree, a artifact.Artifact) ([]byte, string, error) {
	if a.MirrorFrom != "" {
		data, err := os.ReadFile(tree.Abs(a.MirrorFrom))
		switch {
		case err == nil:
			return data, SourceMirror + ":" + a.MirrorFrom, nil
		case !os.IsNotExist(err):
			return nil, "", errors.WrapIO("read", tree.Abs(a.MirrorFrom), err)
		}
	}
	data, err := a.Default.Generate()
	if err != nil {
		return nil, "", err
	}
	return data, SourceDefault, nil
}

// Materialize creates the canonical copy from the expected content, creating
// parent directories first.
func (m Materializer) Materialize(tree *scan.Tree, a artifact.Artifact) (Materialized, error) {
	path := tree.Abs(a.Canonical)
	if a.IsDir() {
		if !m.DryRun {
			if err := fsutil.EnsureDir(path); err != nil {
				return Materialized{}, m.fail(a, path, err)
			}
		}
		return Materialized{Source: SourceDefault}, nil
	}
	data, source, err := m.Expected(tree, a)
	if err != nil {
		return Materialized{}, m.fail(a, path, err)
	}
	out := Materialized{Source: source, Digest: artifact.Digest(data)}
	return out, m.Write(tree, a, data)
}

// Write replaces the canonical copy with data.
func (m Materializer) Write(tree *scan.Tree, a artifact.Artifact, data []byte) error {
	if m.DryRun {
		return nil
	}
	path := tree.Abs(a.Canonical)
	if err := fsutil.WriteFileAtomic(path, data, constants.FilePermissions); err != nil {
		return m.fail(a, path, err)
	}
	return nil
}

// Promote copies an existing alternate into the canonical location.
func (m Materializer) Promote(tree *scan.Tree, a artifact.Artifact, from string) error {
	if m.DryRun {
		return nil
	}
	path := tree.Abs(a.Canonical)
	if err := fsutil.CopyFile(from, path); err != nil {
		return m.fail(a, path, err)
	}
	return nil
}

func (Materializer) fail(a artifact.Artifact, path string, err error) error {
	return &errors.MaterializeError{Key: a.Key, Path: path, Required: a.Required, Err: err}
}
