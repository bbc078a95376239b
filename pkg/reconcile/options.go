package reconcile

import (
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/scan"
)

type options struct {
	scanner *scan.Scanner
	dryRun  bool
}

func defaultOptions() *options {
	return &options{}
}

// Option configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithScanner sets the scanner used to discover instances. By default a
// scanner logging skipped entries to the context logger is used.
func WithScanner(s *scan.Scanner) Option {
	return func(o *options) error {
		if s == nil {
			return &errors.ValidationError{
				Field:   "scanner",
				Message: "cannot be nil",
			}
		}
		o.scanner = s
		return nil
	}
}

// WithDryRun reports decisions without writing or deleting anything.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}
