// Package build runs the deployment pipeline for a project tree: scaffold the
// target's directories, reconcile configuration artifacts, run the delegated
// install and build commands and, for static targets, assemble the bundle.
//
// Each run walks a validated state machine:
//
//	init -> scaffolding -> reconciling -> building -> [assembling ->] done
//
// A required artifact that cannot be reconciled, or a failing build command,
// ends the run in the failed state.
package build

import (
	"context"
	"time"

	"github.com/agentstation/converge/internal/fsutil"
	"github.com/agentstation/converge/pkg/artifact"
	"github.com/agentstation/converge/pkg/bundle"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/logging"
	"github.com/agentstation/converge/pkg/reconcile"
	"github.com/agentstation/converge/pkg/scan"
)

// Assembler assembles a static bundle.
type Assembler interface {
	Assemble(ctx context.Context, sourceDir, publishDir string) (*bundle.Result, error)
}

// Plan is everything a run needs to know about the project and its target.
// All paths are relative to the tree root.
type Plan struct {
	Tree     *scan.Tree
	Registry *artifact.Registry

	// Directories are created during scaffolding.
	Directories []string

	// Install runs before Build; its failure is only a warning.
	Install string
	// Build failing fails the run. Empty skips the building step's work.
	Build string

	// StaticExport enables the assembling step.
	StaticExport bool
	SourceDir    string
	PublishDir   string
	Bundle       bundle.Config
}

// RunReport is the outcome of a run.
type RunReport struct {
	States    []State           `json:"states" yaml:"states"`
	State     State             `json:"state" yaml:"state"`
	ExitCode  int               `json:"exit_code" yaml:"exit_code"`
	Reconcile *reconcile.Report `json:"reconcile,omitempty" yaml:"reconcile,omitempty"`
	Bundle    *bundle.Result    `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	Warnings  []string          `json:"warnings" yaml:"warnings"`
	StartTime time.Time         `json:"start_time" yaml:"start_time"`
	Duration  time.Duration     `json:"duration" yaml:"duration"`

	// Err is the fatal error of a failed run.
	Err error `json:"-" yaml:"-"`
}

// Orchestrator drives a run.
type Orchestrator struct {
	plan       Plan
	reconciler reconcile.Reconciler
	runner     Runner
	assembler  Assembler
}

// New creates an Orchestrator for plan.
func New(plan Plan, opts ...Option) (*Orchestrator, error) {
	if plan.Tree == nil {
		return nil, errors.NewValidationError("tree", nil, "cannot be nil")
	}
	if plan.Registry == nil {
		plan.Registry = &artifact.Registry{}
	}

	options, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		plan:       plan,
		reconciler: options.reconciler,
		runner:     options.runner,
		assembler:  options.assembler,
	}
	if o.reconciler == nil {
		if o.reconciler, err = reconcile.New(); err != nil {
			return nil, err
		}
	}
	if o.runner == nil {
		o.runner = &ExecRunner{}
	}
	if o.assembler == nil {
		o.assembler = bundle.New(plan.Bundle)
	}
	return o, nil
}

// Run executes the pipeline. It never returns an error: the outcome, exit code
// and fatal error are on the report.
func (o *Orchestrator) Run(ctx context.Context) *RunReport {
	logger := logging.FromContext(ctx)
	m := newMachine()
	report := &RunReport{Warnings: []string{}, StartTime: time.Now()}

	finish := func(err error, code int) *RunReport {
		if err != nil {
			report.Err = err
			report.ExitCode = code
			if terr := m.transition(StateFailed); terr != nil {
				report.Err = errors.Join(err, terr)
			}
			logger.Error().Err(err).Str("state", string(m.current)).Int("exit_code", code).Msg("Build failed")
		} else if terr := m.transition(StateDone); terr != nil {
			report.Err = terr
			report.ExitCode = constants.ExitError
		}
		report.State = m.current
		report.States = m.history
		report.Duration = time.Since(report.StartTime)
		return report
	}

	// Step 1: scaffold directories
	if err := m.transition(StateScaffolding); err != nil {
		return finish(err, constants.ExitError)
	}
	o.scaffold(logging.WithStep(ctx, string(StateScaffolding)), report)

	// Step 2: reconcile artifacts
	if err := m.transition(StateReconciling); err != nil {
		return finish(err, constants.ExitError)
	}
	rep := o.reconciler.Reconcile(logging.WithStep(ctx, string(StateReconciling)), o.plan.Tree, o.plan.Registry)
	report.Reconcile = rep
	for _, w := range rep.Warnings() {
		report.Warnings = append(report.Warnings, w.Error())
	}
	var fatal []error
	for _, res := range rep.Failures() {
		if errors.IsRecoverable(res.Err) {
			report.Warnings = append(report.Warnings, res.Err.Error())
			continue
		}
		fatal = append(fatal, res.Err)
	}
	if len(fatal) > 0 {
		return finish(errors.Join(fatal...), constants.ExitRequiredArtifact)
	}

	// Step 3: install and build
	if err := m.transition(StateBuilding); err != nil {
		return finish(err, constants.ExitError)
	}
	if err := o.build(ctx, report); err != nil {
		code := constants.ExitError
		var cmdErr *errors.ExternalCommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			code = cmdErr.ExitCode
		}
		return finish(err, code)
	}

	// Step 4: assemble static bundle
	if o.plan.StaticExport {
		if err := m.transition(StateAssembling); err != nil {
			return finish(err, constants.ExitError)
		}
		o.assemble(logging.WithStep(ctx, string(StateAssembling)), report)
	}

	logger.Info().Int("warnings", len(report.Warnings)).Msg("Build completed")
	return finish(nil, constants.ExitOK)
}

func (o *Orchestrator) scaffold(ctx context.Context, report *RunReport) {
	logger := logging.FromContext(ctx)
	for _, dir := range o.plan.Directories {
		if err := fsutil.EnsureDir(o.plan.Tree.Abs(dir)); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Failed to create directory")
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}
		logger.Debug().Str("dir", dir).Msg("Ensured directory")
	}
}

func (o *Orchestrator) build(ctx context.Context, report *RunReport) error {
	if o.plan.Install != "" {
		if err := o.runStep(logging.WithStep(ctx, "install"), "install", o.plan.Install); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Install failed, continuing with build")
			report.Warnings = append(report.Warnings, err.Error())
		}
	}
	if o.plan.Build == "" {
		return nil
	}
	return o.runStep(logging.WithStep(ctx, "build"), "build", o.plan.Build)
}

func (o *Orchestrator) runStep(ctx context.Context, step, command string) error {
	logger := logging.FromContext(ctx)
	logger.Info().Str("command", command).Msgf("Running %s command", step)

	code, err := o.runner.Run(ctx, o.plan.Tree.Root, command)
	if err != nil {
		return &errors.ExternalCommandError{Step: step, Command: command, ExitCode: code, Err: err}
	}
	if code != 0 {
		return &errors.ExternalCommandError{Step: step, Command: command, ExitCode: code}
	}
	return nil
}

func (o *Orchestrator) assemble(ctx context.Context, report *RunReport) {
	logger := logging.FromContext(ctx)
	source := ""
	if o.plan.SourceDir != "" {
		source = o.plan.Tree.Abs(o.plan.SourceDir)
	}
	res, err := o.assembler.Assemble(ctx, source, o.plan.Tree.Abs(o.plan.PublishDir))
	report.Bundle = res
	if err != nil {
		logger.Warn().Err(err).Msg("Static bundle assembly failed")
		report.Warnings = append(report.Warnings, err.Error())
	}
	if res != nil {
		for _, e := range res.Errors {
			report.Warnings = append(report.Warnings, e.Error())
		}
	}
}
