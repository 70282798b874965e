// Package errors provides custom error types for the matchaudit system.
// These errors enable programmatic error checking with errors.Is and
// errors.As while keeping per-row problems out of the error path: malformed
// rows and label conflicts are counted, not returned.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the matchaudit system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingArtifact indicates that a required run artifact is absent
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrMalformedRow indicates a record or row without a usable key, label or group
	ErrMalformedRow = errors.New("malformed row")

	// ErrAuditFailed indicates that at least one audited run has a failing check
	ErrAuditFailed = errors.New("audit failed")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
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

// MissingArtifactError reports an input source that is absent for a run.
// Metrics that depend on it become undefined and their checks SKIP.
type MissingArtifactError struct {
	RunID    string
	Artifact string
	Path     string
}

// Error implements the error interface
func (e *MissingArtifactError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("run %s: missing artifact %s (%s)", e.RunID, e.Artifact, e.Path)
	}
	return fmt.Sprintf("missing artifact %s (%s)", e.Artifact, e.Path)
}

// Is implements errors.Is support
func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrMissingArtifact || target == ErrNotFound
}

// NewMissingArtifactError creates a new MissingArtifactError
func NewMissingArtifactError(runID, artifact, path string) *MissingArtifactError {
	return &MissingArtifactError{RunID: runID, Artifact: artifact, Path: path}
}

// MalformedRowError describes a row that could not yield a usable key,
// label or group. Readers record these as warnings and keep going.
type MalformedRowError struct {
	Source string
	Line   int
	Reason string
}

// Error implements the error interface
func (e *MalformedRowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed row in %s at line %d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed row in %s: %s", e.Source, e.Reason)
}

// Is implements errors.Is support
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// NewMalformedRowError creates a new MalformedRowError
func NewMalformedRowError(source string, line int, reason string) *MalformedRowError {
	return &MalformedRowError{Source: source, Line: line, Reason: reason}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
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
func NewValidationError(field string, value any, message string) *ValidationError {
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

// AuditFailedError is returned by a batch audit when one or more runs FAIL.
// The batch itself completed; the CLI maps this to a non-zero exit status.
type AuditFailedError struct {
	RunsFailed int
	RunsTotal  int
	RunIDs     []string
}

// Error implements the error interface
func (e *AuditFailedError) Error() string {
	if len(e.RunIDs) > 0 {
		return fmt.Sprintf("audit failed: %d of %d runs have failing checks: %v", e.RunsFailed, e.RunsTotal, e.RunIDs)
	}
	return fmt.Sprintf("audit failed: %d of %d runs have failing checks", e.RunsFailed, e.RunsTotal)
}

// Is implements errors.Is support
func (e *AuditFailedError) Is(target error) bool {
	return target == ErrAuditFailed
}

// NewAuditFailedError creates a new AuditFailedError
func NewAuditFailedError(failed, total int, runIDs []string) *AuditFailedError {
	return &AuditFailedError{RunsFailed: failed, RunsTotal: total, RunIDs: runIDs}
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

// IsMissingArtifact checks if an error reports an absent run artifact
func IsMissingArtifact(err error) bool {
	return errors.Is(err, ErrMissingArtifact)
}

// IsMalformedRow checks if an error reports an unusable row
func IsMalformedRow(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}

// IsAuditFailed checks if an error reports failing audit checks
func IsAuditFailed(err error) bool {
	return errors.Is(err, ErrAuditFailed)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "jsonl", "csv", "yaml", "js"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
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
	Operation string // "read", "write", "create", "open", "stat"
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

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "build", "evaluate", "audit"
	Resource  string // "config", "run", "summary", "report"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
