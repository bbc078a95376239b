// Package reconcile converges a project tree so that every registered artifact
// exists exactly once, at its canonical path, with the content its policy demands.
//
// For each artifact, in registration order, the reconciler scans the tree for
// copies, keeps the one at the canonical path, creates or overwrites the
// canonical copy when needed and then deletes the rest. The canonical copy is
// always in place before any redundant copy is deleted, so an interrupted run
// never loses the only copy of a promoted file. Running it twice in a row
// leaves the tree untouched the second time.
//
// A path claimed by one artifact is never an instance of another, even when
// the base names match. Absent artifacts have no canonical copy: every
// declared path that exists is deleted.
package reconcile

import (
	"bytes"
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/converge/internal/fsutil"
	"github.com/agentstation/converge/pkg/artifact"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
	"github.com/agentstation/converge/pkg/scan"
)

// Reconciler converges a tree against a registry.
type Reconciler interface {
	// Reconcile processes every artifact. Errors never escape: they are
	// recorded on the per-artifact results.
	Reconcile(ctx context.Context, tree *scan.Tree, registry *artifact.Registry) *Report
}

type reconciler struct {
	scanner      *scan.Scanner
	materializer Materializer
	dryRun       bool
}

// New creates a Reconciler.
func New(opts ...Option) (Reconciler, error) {
	options, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		scanner:      options.scanner,
		materializer: Materializer{DryRun: options.dryRun},
		dryRun:       options.dryRun,
	}, nil
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context, tree *scan.Tree, registry *artifact.Registry) *Report {
	logger := logging.FromContext(ctx)
	scanner := r.scanner
	if scanner == nil {
		scanner = scan.New(scan.WithLogger(logger))
	}

	report := NewReport(tree.Root, r.dryRun)
	for _, a := range registry.All() {
		alog := logger.With().Str("artifact", a.Key).Logger()
		res := r.reconcileArtifact(&alog, scanner, tree, registry, a)
		logResult(&alog, res)
		report.Results = append(report.Results, res)
	}
	report.Finalize()

	logger.Info().
		Int("artifacts", len(report.Results)).
		Int("removed", report.Removed()).
		Bool("dry_run", r.dryRun).
		Dur("duration", report.Duration).
		Msg(report.Summary())
	return report
}

func (r *reconciler) reconcileArtifact(logger *zerolog.Logger, scanner *scan.Scanner, tree *scan.Tree, registry *artifact.Registry, a artifact.Artifact) Result {
	res := Result{Key: a.Key, Canonical: a.Canonical, Required: a.Required}
	canonicalPath := tree.Abs(a.Canonical)
	instances := Discover(scanner, tree, registry, a)

	if a.Policy == artifact.PolicyAbsent {
		r.remove(logger, tree, a, instances, "", &res)
		res.Outcome = OutcomeUnchanged
		if len(res.Removed) > 0 {
			res.Outcome = OutcomeRemoved
		}
		return res
	}

	// Step 1: select
	sel := Select(instances, canonicalPath)
	if sel.Canonical == nil {
		// The canonical path may sit under an ignored directory or fall
		// outside the match names; it still counts if it exists.
		if info, err := os.Lstat(canonicalPath); err == nil && info.IsDir() == a.IsDir() {
			sel.Canonical = &Instance{Path: canonicalPath, Canonical: true, ModTime: info.ModTime(), IsDir: info.IsDir()}
		}
	}

	// Step 2: make the canonical copy right before anything is deleted
	promoteFrom := ""
	if sel.Canonical == nil {
		promoteFrom = r.promotionSource(tree, a, sel)
		if err := r.create(tree, a, promoteFrom, &res); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
		} else {
			res.Outcome = OutcomeCreated
		}
	} else if a.Policy == artifact.PolicyExact && !a.IsDir() {
		overwritten, err := r.enforce(tree, a, &res)
		switch {
		case err != nil:
			res.Outcome = OutcomeFailed
			res.Err = err
		case overwritten:
			res.Outcome = OutcomeOverwritten
		}
	}

	// Step 3: delete redundant copies; keep a promotion source whose copy failed
	keep := ""
	if res.Err != nil {
		keep = promoteFrom
	}
	r.remove(logger, tree, a, sel.Redundant, keep, &res)

	if res.Outcome == "" {
		if len(res.Removed) > 0 {
			res.Outcome = OutcomeDeduplicated
		} else {
			res.Outcome = OutcomeUnchanged
		}
	}
	return res
}

// remove deletes instances other than keep, recording each on res. Delete
// failures are warnings.
func (r *reconciler) remove(logger *zerolog.Logger, tree *scan.Tree, a artifact.Artifact, instances []Instance, keep string, res *Result) {
	for _, inst := range instances {
		if keep != "" && inst.Path == keep {
			continue
		}
		rel := tree.Rel(inst.Path)
		if !r.dryRun {
			if err := fsutil.Remove(inst.Path); err != nil {
				derr := &errors.DeleteError{Key: a.Key, Path: inst.Path, Err: err}
				logger.Warn().Err(derr).Str("path", rel).Msg("Failed to delete redundant copy")
				res.Warnings = append(res.Warnings, derr)
				continue
			}
		}
		logger.Debug().Str("path", rel).Bool("dry_run", r.dryRun).Msg("Removed redundant copy")
		res.Removed = append(res.Removed, rel)
	}
}

// Discover collects the instances of a registered artifact. The mirror source,
// entries of the wrong kind and paths claimed by another artifact are never
// instances. Artifacts that are not discovered by name only look at their
// declared paths.
func Discover(scanner *scan.Scanner, tree *scan.Tree, registry *artifact.Registry, a artifact.Artifact) []Instance {
	if !a.Discovered() {
		return declared(tree, a)
	}

	mirror := ""
	if a.MirrorFrom != "" {
		mirror = tree.Abs(a.MirrorFrom)
	}
	var instances []Instance
	for e := range scanner.Scan(tree, scan.Glob(a.MatchNames()...)) {
		if e.Path == mirror || e.IsDir != a.IsDir() {
			continue
		}
		if owner, ok := registry.Claimant(tree.Rel(e.Path)); ok && owner != a.Key {
			continue
		}
		instances = append(instances, Instance{Path: e.Path, ModTime: e.ModTime, IsDir: e.IsDir})
	}
	return instances
}

// declared returns the instances present at the canonical and alternate paths.
func declared(tree *scan.Tree, a artifact.Artifact) []Instance {
	var instances []Instance
	for _, rel := range a.Paths() {
		path := tree.Abs(rel)
		info, err := os.Lstat(path)
		if err != nil || info.IsDir() != a.IsDir() {
			continue
		}
		instances = append(instances, Instance{Path: path, ModTime: info.ModTime(), IsDir: info.IsDir()})
	}
	return instances
}

// promotionSource returns the first declared alternate present among the
// redundant copies of a preserve artifact.
func (r *reconciler) promotionSource(tree *scan.Tree, a artifact.Artifact, sel Selection) string {
	if a.Policy != artifact.PolicyPreserve || a.IsDir() {
		return ""
	}
	for _, alt := range a.Alternates {
		if inst, ok := sel.find(tree.Abs(alt)); ok {
			return inst.Path
		}
	}
	return ""
}

// create writes the missing canonical copy, promoting from an alternate when given.
func (r *reconciler) create(tree *scan.Tree, a artifact.Artifact, promoteFrom string, res *Result) error {
	if promoteFrom != "" {
		res.Source = SourcePromoted + ":" + tree.Rel(promoteFrom)
		if data, err := os.ReadFile(promoteFrom); err == nil {
			res.ExpectedDigest = artifact.Digest(data)
		}
		return r.materializer.Promote(tree, a, promoteFrom)
	}

	m, err := r.materializer.Materialize(tree, a)
	res.Source = m.Source
	res.ExpectedDigest = m.Digest
	return err
}

// enforce overwrites an exact artifact whose canonical bytes differ from the
// expected content.
func (r *reconciler) enforce(tree *scan.Tree, a artifact.Artifact, res *Result) (bool, error) {
	path := tree.Abs(a.Canonical)
	expected, source, err := r.materializer.Expected(tree, a)
	if err != nil {
		return false, &errors.MaterializeError{Key: a.Key, Path: path, Required: a.Required, Err: err}
	}
	actual, err := os.ReadFile(path)
	if err != nil {
		return false, &errors.MaterializeError{Key: a.Key, Path: path, Required: a.Required, Err: err}
	}
	res.ExpectedDigest = artifact.Digest(expected)
	res.ActualDigest = artifact.Digest(actual)
	if bytes.Equal(expected, actual) {
		return false, nil
	}
	res.Source = source
	return true, r.materializer.Write(tree, a, expected)
}

func logResult(logger *zerolog.Logger, res Result) {
	switch res.Outcome {
	case OutcomeFailed:
		event := logger.Warn()
		if res.Required {
			event = logger.Error()
		}
		event.Err(res.Err).Bool("required", res.Required).Msg("Artifact failed")
	case OutcomeUnchanged:
		logger.Debug().Msg("Artifact unchanged")
	default:
		logger.Info().
			Str("outcome", res.Label()).
			Str("canonical", res.Canonical).
			Str("source", res.Source).
			Msg("Artifact converged")
	}
}
