// Package errors provides custom error types for the converge system.
// These errors enable better error handling, programmatic error checking,
// and enough context (path, artifact key, underlying OS error) to diagnose
// a failed run without re-running it in a debug mode.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join are re-exported so callers only need one errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the converge system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrScanIO indicates a directory entry vanished or was unreadable mid-scan.
	// Always recoverable: the entry is skipped and the scan continues.
	ErrScanIO = errors.New("scan io error")

	// ErrDelete indicates a redundant artifact instance could not be removed.
	// Recoverable: the duplicate is retried on the next run.
	ErrDelete = errors.New("delete failed")

	// ErrMaterialize indicates a canonical artifact could not be written.
	// Fatal only when the artifact is required.
	ErrMaterialize = errors.New("materialize failed")

	// ErrExternalCommand indicates the delegated build command failed.
	// Always fatal.
	ErrExternalCommand = errors.New("external command failed")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "jsonc", "yaml", "toml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "copy", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ScanIOError is reported when an entry vanished or could not be read during a tree scan.
type ScanIOError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ScanIOError) Error() string {
	return fmt.Sprintf("scan skipped %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ScanIOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ScanIOError) Is(target error) bool {
	return target == ErrScanIO
}

// DeleteError is recorded when a redundant artifact instance could not be removed.
type DeleteError struct {
	Key  string
	Path string
	Err  error
}

// Error implements the error interface
func (e *DeleteError) Error() string {
	return fmt.Sprintf("artifact %s: failed to delete redundant %s: %v", e.Key, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DeleteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DeleteError) Is(target error) bool {
	return target == ErrDelete
}

// MaterializeError is recorded when a canonical artifact could not be written.
type MaterializeError struct {
	Key      string
	Path     string
	Required bool
	Err      error
}

// Error implements the error interface
func (e *MaterializeError) Error() string {
	kind := "artifact"
	if e.Required {
		kind = "required artifact"
	}
	return fmt.Sprintf("%s %s: failed to materialize %s: %v", kind, e.Key, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MaterializeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MaterializeError) Is(target error) bool {
	return target == ErrMaterialize
}

// ExternalCommandError is returned when a delegated command exits non-zero or cannot start.
type ExternalCommandError struct {
	Step     string // "install", "build"
	Command  string
	ExitCode int
	Err      error
}

// Error implements the error interface
func (e *ExternalCommandError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s command %q exited with status %d", e.Step, e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s command %q failed: %v", e.Step, e.Command, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ExternalCommandError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ExternalCommandError) Is(target error) bool {
	return target == ErrExternalCommand
}

// ExitError carries a process exit code up to main.
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap implements errors.Unwrap
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRecoverable reports whether err only degrades a run to a warning: scan
// and delete failures always do, materialization failures only for optional
// artifacts.
func IsRecoverable(err error) bool {
	if errors.Is(err, ErrScanIO) || errors.Is(err, ErrDelete) {
		return true
	}
	var materr *MaterializeError
	return errors.As(err, &materr) && !materr.Required
}

// ExitCode extracts the exit code carried by err, or 1 for any other non-nil error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
