package build

import (
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/reconcile"
)

type options struct {
	reconciler reconcile.Reconciler
	runner     Runner
	assembler  Assembler
}

func defaultOptions() *options {
	return &options{}
}

// Option configures an Orchestrator.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithReconciler replaces the default reconciler.
func WithReconciler(r reconcile.Reconciler) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{Field: "reconciler", Message: "cannot be nil"}
		}
		o.reconciler = r
		return nil
	}
}

// WithRunner replaces the default shell runner.
func WithRunner(r Runner) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{Field: "runner", Message: "cannot be nil"}
		}
		o.runner = r
		return nil
	}
}

// WithAssembler replaces the bundle assembler built from the plan.
func WithAssembler(a Assembler) Option {
	return func(o *options) error {
		if a == nil {
			return &errors.ValidationError{Field: "assembler", Message: "cannot be nil"}
		}
		o.assembler = a
		return nil
	}
}
