// Package reconcile implements the reconcile command.
package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/internal/cmd/cmdutil"
	"github.com/agentstation/converge/internal/cmd/output"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
	pkgreconcile "github.com/agentstation/converge/pkg/reconcile"
	pkgscan "github.com/agentstation/converge/pkg/scan"
)

// NewCommand creates the reconcile command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Converge configuration artifacts to their canonical paths",
		Args:    cobra.NoArgs,
		Long: `Reconcile finds every copy of each artifact the target declares,
deletes the redundant ones and makes sure exactly one copy sits at the
canonical path with the expected content.

A missing canonical copy is promoted from a declared alternate location,
mirrored from its source or generated from the target's default content.
Artifacts with the exact policy are overwritten when they drift.

Exits with status 2 when a required artifact cannot be materialized.`,
		Example: `  converge reconcile                   # Reconcile the current directory for vercel
  converge reconcile -t netlify        # Use the netlify preset
  converge reconcile --dry-run -o json # Report what would change
  converge reconcile --ignore dist     # Also skip dist/`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("dry-run") {
				dryRun = app.DryRun()
			}
			return run(cmd, app, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would change without touching the tree")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, dryRun bool) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	t, tree, err := cmdutil.Project(app)
	if err != nil {
		return err
	}
	registry, err := t.Registry()
	if err != nil {
		return err
	}

	r, err := pkgreconcile.New(
		pkgreconcile.WithDryRun(dryRun),
		pkgreconcile.WithScanner(pkgscan.New(pkgscan.WithLogger(logger))),
	)
	if err != nil {
		return err
	}

	report := r.Reconcile(logging.WithTarget(ctx, t.Name), tree, registry)

	if err := cmdutil.Render(cmd.OutOrStdout(), app, report, func() output.Data { return reportTable(report) }); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), report)

	if failures := report.RequiredFailures(); len(failures) > 0 {
		errs := make([]error, 0, len(failures))
		for _, f := range failures {
			errs = append(errs, f.Err)
		}
		return errors.NewExitError(constants.ExitRequiredArtifact, errors.Join(errs...))
	}
	return nil
}
