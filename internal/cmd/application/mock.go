package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/converge/pkg/build"
	"github.com/agentstation/converge/pkg/constants"
	"github.com/agentstation/converge/pkg/target"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	LoggerFunc        func() *zerolog.Logger
	OutputFormatFunc  func() string
	RootFunc          func() string
	TargetFunc        func() (*target.Target, error)
	IgnoreFunc        func() []string
	ReplaceIgnoreFunc func() bool
	DryRunFunc        func() bool
	RunnerFunc        func(env []string) build.Runner
	VersionFunc       func() string
	CommitFunc        func() string
	DateFunc          func() string
	BuiltByFunc       func() string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Root returns the project root using the mock function or ".".
func (m *Mock) Root() string {
	if m.RootFunc != nil {
		return m.RootFunc()
	}
	return "."
}

// Target returns a target using the mock function or the default preset.
func (m *Mock) Target() (*target.Target, error) {
	if m.TargetFunc != nil {
		return m.TargetFunc()
	}
	return target.Preset(constants.DefaultTarget)
}

// Ignore returns the ignore override using the mock function or nil.
func (m *Mock) Ignore() []string {
	if m.IgnoreFunc != nil {
		return m.IgnoreFunc()
	}
	return nil
}

// ReplaceIgnore returns the replace setting using the mock function or false.
func (m *Mock) ReplaceIgnore() bool {
	if m.ReplaceIgnoreFunc != nil {
		return m.ReplaceIgnoreFunc()
	}
	return false
}

// DryRun returns the dry-run setting using the mock function or false.
func (m *Mock) DryRun() bool {
	if m.DryRunFunc != nil {
		return m.DryRunFunc()
	}
	return false
}

// Runner returns a runner using the mock function or a shell runner.
func (m *Mock) Runner(env []string) build.Runner {
	if m.RunnerFunc != nil {
		return m.RunnerFunc(env)
	}
	return &build.ExecRunner{Env: env}
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
