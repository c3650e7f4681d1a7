package errors

import (
	"errors"
	"fmt"
)

// Common errors that can be used across packages
var (
	ErrNotFound          = errors.New("resource not found")
	ErrNotInstalled      = errors.New("tool not installed")
	ErrNoVersionSelected = errors.New("no version selected")
	ErrNotImplemented    = errors.New("operation not implemented")
	ErrInvalidOperation  = errors.New("invalid operation")
)

// FileError represents an error that occurs during file operations
type FileError struct {
	Path    string
	Op      string
	Wrapped error
}

func (e *FileError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s operation failed on %s: %v", e.Op, e.Path, e.Wrapped)
	}
	return fmt.Sprintf("%s operation failed on %s", e.Op, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Wrapped
}

// NewFileError creates a new FileError
func NewFileError(path, op string, wrapped error) error {
	return &FileError{Path: path, Op: op, Wrapped: wrapped}
}

// NotFoundError reports a missing upstream or filesystem resource,
// e.g. a release asset absent from a release's asset list.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

// NotInstalledError is returned when a managed binary is missing or
// has no known version. Callers must not attempt execution.
type NotInstalledError struct {
	Tool string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("tool %s is not installed", e.Tool)
}

func (e *NotInstalledError) Unwrap() error {
	return ErrNotInstalled
}

// NewNotInstalledError creates a new NotInstalledError
func NewNotInstalledError(tool string) error {
	return &NotInstalledError{Tool: tool}
}

// StateError reports an operation attempted from an illegal state,
// e.g. install before a version was selected.
type StateError struct {
	Op      string
	Reason  string
	Wrapped error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *StateError) Unwrap() error {
	return e.Wrapped
}

// NewStateError creates a new StateError
func NewStateError(op, reason string, wrapped error) error {
	return &StateError{Op: op, Reason: reason, Wrapped: wrapped}
}

// UnsupportedFormatError reports an archive whose extension is not
// one of the formats the extractor understands.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format: %s", e.Path)
}

// NewUnsupportedFormatError creates a new UnsupportedFormatError
func NewUnsupportedFormatError(path string) error {
	return &UnsupportedFormatError{Path: path}
}

// UnsupportedConnectionError reports a remote engine connection that
// is not SSH based.
type UnsupportedConnectionError struct {
	Name string
	URI  string
}

func (e *UnsupportedConnectionError) Error() string {
	return fmt.Sprintf("connection %s (%s) is not supported: only ssh remotes can be scanned", e.Name, e.URI)
}

// NewUnsupportedConnectionError creates a new UnsupportedConnectionError
func NewUnsupportedConnectionError(name, uri string) error {
	return &UnsupportedConnectionError{Name: name, URI: uri}
}

// SchemaError reports tool output that does not match the expected
// result shape.
type SchemaError struct {
	Path    string
	Reason  string
	Wrapped error
}

func (e *SchemaError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("malformed scan result %s: %s: %v", e.Path, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("malformed scan result %s: %s", e.Path, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Wrapped
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(path, reason string, wrapped error) error {
	return &SchemaError{Path: path, Reason: reason, Wrapped: wrapped}
}

// MissingInputError reports a scan stage whose required input file
// does not exist, e.g. a vulnerability scan without its SBOM.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required input %s does not exist", e.Path)
}

// NewMissingInputError creates a new MissingInputError
func NewMissingInputError(path string) error {
	return &MissingInputError{Path: path}
}

// Is reports whether target matches err.
// It enables errors.Is() to work with our custom error types.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// It enables errors.As() to work with our custom error types.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
