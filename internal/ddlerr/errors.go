// Package ddlerr defines the error kinds surfaced by the schema toolkit.
//
// Every typed error unwraps to its kind sentinel as well as to its cause, so
// callers can branch with errors.Is on either.
package ddlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, one per error kind.
var (
	// ErrModelInvariant indicates that model validation failed before emission.
	ErrModelInvariant = errors.New("model invariant violation")
	// ErrUnsupportedFeature indicates a construct the target dialect cannot express.
	ErrUnsupportedFeature = errors.New("unsupported dialect feature")
	// ErrIntrospection indicates a failed or inconsistent metadata call.
	ErrIntrospection = errors.New("introspection failure")
	// ErrExecution indicates that the backend rejected an emitted statement.
	ErrExecution = errors.New("execution failure")
	// ErrResource indicates a connection acquisition or release failure.
	ErrResource = errors.New("resource failure")
)

// Violation is a single broken model invariant.
type Violation struct {
	Path    string // e.g. "person.id" or "person/fk_person_dept"
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ValidationError collects every violation found by a validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("invalid model: %s", e.Violations[0])
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid model (%d violations): %s", len(e.Violations), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrModelInvariant
}

// UnsupportedError reports a construct the dialect cannot express.
type UnsupportedError struct {
	Dialect string
	Feature string
}

func (e *UnsupportedError) Error() string {
	if e.Dialect == "" {
		return fmt.Sprintf("unsupported: %s", e.Feature)
	}
	return fmt.Sprintf("%s does not support %s", e.Dialect, e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupportedFeature
}

// Unsupported is a shorthand for building an UnsupportedError.
func Unsupported(dialect, format string, args ...any) error {
	return &UnsupportedError{Dialect: dialect, Feature: fmt.Sprintf(format, args...)}
}

// IntrospectionError wraps a failed metadata call.
type IntrospectionError struct {
	Op    string // metadata operation, e.g. "columns"
	Table string // table being read, if any
	Err   error
}

func (e *IntrospectionError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("failed to read %s of table %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("failed to read %s: %v", e.Op, e.Err)
}

func (e *IntrospectionError) Unwrap() []error {
	return []error{ErrIntrospection, e.Err}
}

// ExecutionError reports a statement the backend rejected.
type ExecutionError struct {
	Index     int // zero-based position of the statement in its script
	Statement string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("statement %d failed: %v", e.Index, e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}

// ResourceError reports a connection acquisition or close failure.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{ErrResource, e.Err}
}
