// Package application provides the application interface for converge commands.
//
// Commands accept an Application rather than the concrete App type so they
// can be tested with Mock:
//
//	mock := &application.Mock{
//	    RootFunc: func() string { return t.TempDir() },
//	}
//	cmd := reconcile.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/converge/pkg/build"
	"github.com/agentstation/converge/pkg/target"
)

// Application provides the application interface that commands need.
// The App struct from cmd/converge/app implements it.
type Application interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, markdown).
	// Empty means auto-detect.
	OutputFormat() string

	// Root returns the project root to operate on.
	Root() string

	// Target resolves the configured deployment target: a target file when
	// one is set, otherwise a preset or file reference.
	Target() (*target.Target, error)

	// Ignore returns ignore entries added to the defaults and the target's.
	Ignore() []string

	// ReplaceIgnore reports whether the target's ignore entries are dropped.
	ReplaceIgnore() bool

	// DryRun reports whether reconciliation should only report.
	DryRun() bool

	// Runner returns the external command runner; env is appended to the
	// process environment of every command.
	Runner(env []string) build.Runner

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
