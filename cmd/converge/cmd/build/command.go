// Package build implements the build command.
package build

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/internal/cmd/cmdutil"
	"github.com/agentstation/converge/internal/cmd/output"
	pkgbuild "github.com/agentstation/converge/pkg/build"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
	pkgreconcile "github.com/agentstation/converge/pkg/reconcile"
	pkgscan "github.com/agentstation/converge/pkg/scan"
)

// Flags holds build-specific flags.
type Flags struct {
	SkipInstall bool
	SkipBuild   bool
}

// NewCommand creates the build command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Scaffold, reconcile, build and assemble the project",
		Args:    cobra.NoArgs,
		Long: `Build runs the full deployment pipeline for the target:

1. Scaffolding - create the target's directories
2. Reconciling - converge configuration artifacts
3. Building    - run the install command, then the build command
4. Assembling  - for static targets, merge the static sources into the
                 publish directory and write routing, headers and manifest

A failing install command is only a warning. A failing build command stops
the run and its exit status is returned. A required artifact that cannot be
materialized stops the run with exit status 2.`,
		Example: `  converge build                  # Build the current directory for vercel
  converge build -t netlify       # Build and assemble a static bundle
  converge build --skip-install   # Reuse installed dependencies
  converge build -C ./site -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.SkipInstall, "skip-install", false, "do not run the target's install command")
	cmd.Flags().BoolVar(&flags.SkipBuild, "skip-build", false, "do not run the target's build command")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	logger := app.Logger()

	t, tree, err := cmdutil.Project(app)
	if err != nil {
		return err
	}
	plan, err := t.Plan(tree)
	if err != nil {
		return err
	}
	if flags.SkipInstall {
		plan.Install = ""
	}
	if flags.SkipBuild {
		plan.Build = ""
	}

	reconciler, err := pkgreconcile.New(pkgreconcile.WithScanner(pkgscan.New(pkgscan.WithLogger(logger))))
	if err != nil {
		return err
	}
	orchestrator, err := pkgbuild.New(plan,
		pkgbuild.WithReconciler(reconciler),
		pkgbuild.WithRunner(app.Runner(t.Environ())),
	)
	if err != nil {
		return err
	}

	ctx := logging.WithTarget(logging.WithLogger(cmd.Context(), logger), t.Name)
	report := orchestrator.Run(ctx)

	if err := cmdutil.Render(cmd.OutOrStdout(), app, report, func() output.Data { return reportTable(report) }); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), report)

	if report.Err != nil {
		return errors.NewExitError(report.ExitCode, report.Err)
	}
	return nil
}
