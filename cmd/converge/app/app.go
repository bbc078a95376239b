// Package app provides the application context and dependency management
// for the converge CLI. It centralizes configuration, logging and the
// lifecycle of a command invocation.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/converge/internal/cmd/application"
	"github.com/agentstation/converge/pkg/build"
	"github.com/agentstation/converge/pkg/errors"
	"github.com/agentstation/converge/pkg/target"
)

// App represents the converge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment, .env files and the config
// file; options can replace it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("", "")
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Root returns the project root.
func (a *App) Root() string {
	return a.config.Root
}

// Target resolves the configured target. A target file takes precedence
// over the target reference.
func (a *App) Target() (*target.Target, error) {
	if a.config.TargetFile != "" {
		return target.Load(a.config.TargetFile)
	}
	return target.Resolve(a.config.Target)
}

// Ignore returns the extra ignore entries, nil when none are configured.
func (a *App) Ignore() []string {
	return a.config.Ignore
}

// ReplaceIgnore reports whether the target's ignore entries are dropped.
func (a *App) ReplaceIgnore() bool {
	return a.config.ReplaceIgnore
}

// DryRun reports the configured dry-run default.
func (a *App) DryRun() bool {
	return a.config.DryRun
}

// Runner returns a shell runner that appends env to the process environment.
func (a *App) Runner(env []string) build.Runner {
	return &build.ExecRunner{Env: env}
}

// Shutdown performs cleanup after a failed command. converge holds no
// background resources, so it only flushes a final log line.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutdown complete")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		a.logger = logger
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
