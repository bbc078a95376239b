// Package scan implements the scan command.
package scan

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/internal/cmd/cmdutil"
	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/artifact"
	pkgreconcile "github.com/agentstation/converge/pkg/reconcile"
	pkgscan "github.com/agentstation/converge/pkg/scan"
	"github.com/agentstation/converge/pkg/target"
)

// Match is one discovered entry.
type Match struct {
	// Artifact is the key of the artifact the entry is a copy of, empty
	// when scanning for explicit patterns.
	Artifact  string    `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Rel       string    `json:"path" yaml:"path"`
	IsDir     bool      `json:"is_dir" yaml:"is_dir"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
	Canonical bool      `json:"canonical" yaml:"canonical"`
}

func newMatch(tree *pkgscan.Tree, e pkgscan.Entry) Match {
	return Match{Rel: tree.Rel(e.Path), IsDir: e.IsDir, ModTime: e.ModTime}
}

// NewCommand creates the scan command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scan [pattern...]",
		GroupID: "management",
		Short:   "List artifact copies found in the project tree",
		Long: `Scan walks the project tree, skipping the ignore set, and lists every
copy of each artifact the target declares, marking the canonical one.

With patterns, it lists every entry whose base name matches one of them
instead. Patterns are exact names or globs such as "*.prisma".`,
		Example: `  converge scan                 # Copies of every target artifact
  converge scan vercel.json     # Every vercel.json in the tree
  converge scan '*.prisma' -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, tree, err := cmdutil.Project(app)
			if err != nil {
				return err
			}
			scanner := pkgscan.New(pkgscan.WithLogger(app.Logger()))

			var matches []Match
			if len(args) > 0 {
				matches = scanPatterns(scanner, tree, args)
			} else if matches, err = scanArtifacts(scanner, tree, t); err != nil {
				return err
			}

			return cmdutil.Render(cmd.OutOrStdout(), app, matches, func() output.Data { return matchTable(matches) })
		},
	}

	return cmd
}

func scanPatterns(scanner *pkgscan.Scanner, tree *pkgscan.Tree, patterns []string) []Match {
	matches := []Match{}
	for e := range scanner.Scan(tree, pkgscan.Glob(patterns...)) {
		matches = append(matches, newMatch(tree, e))
	}
	return matches
}

// scanArtifacts lists the copies reconcile would see, so stale paths of absent
// artifacts show up and are never marked canonical.
func scanArtifacts(scanner *pkgscan.Scanner, tree *pkgscan.Tree, t *target.Target) ([]Match, error) {
	registry, err := t.Registry()
	if err != nil {
		return nil, err
	}
	matches := []Match{}
	for _, a := range registry.All() {
		for _, inst := range pkgreconcile.Discover(scanner, tree, registry, a) {
			m := Match{Artifact: a.Key, Rel: tree.Rel(inst.Path), IsDir: inst.IsDir, ModTime: inst.ModTime}
			m.Canonical = m.Rel == a.Canonical && a.Policy != artifact.PolicyAbsent
			matches = append(matches, m)
		}
	}
	return matches, nil
}
