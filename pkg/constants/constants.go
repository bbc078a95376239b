// Package constants provides shared constants used throughout the converge codebase.
// This includes file permissions, default ignore names, exit codes, and other values
// that should be consistent across the application.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default directory names never descended into during a scan.
var DefaultIgnore = []string{
	"node_modules", // dependency cache
	".git",         // version-control metadata
}

// Exit codes returned by the CLI.
const (
	// ExitOK is returned on full success or success with non-required warnings.
	ExitOK = 0

	// ExitError is returned for CLI and configuration errors, and for a failed
	// external command that did not report its own exit code.
	ExitError = 1

	// ExitRequiredArtifact is returned when a required artifact could not be materialized.
	ExitRequiredArtifact = 2
)

// Naming and lookup constants
const (
	// AppName is the binary and config name.
	AppName = "converge"

	// EnvPrefix is the prefix for environment variables bound through Viper.
	EnvPrefix = "CONVERGE"

	// ConfigFileName is the config file base name searched in cwd and home.
	ConfigFileName = ".converge"

	// DefaultTarget is the preset used when no target is configured.
	DefaultTarget = "vercel"
)

// Timing constants
const (
	// ShutdownTimeout bounds cleanup after a failed command.
	ShutdownTimeout = 5 * time.Second

	// DigestLength is the number of hex characters of a content digest shown in reports.
	DigestLength = 12
)
