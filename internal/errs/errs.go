// Package errs defines the error taxonomy shared by the embedding core and its boundaries.
//
// Every failure surfaced by the core wraps exactly one of the sentinel errors below, so
// callers can tell "capability unavailable" from "bad input" from "capability failed during
// use" with errors.Is or Classify.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrDependencyMissing means the embedding capability is not present in this process:
	// built without cgo, ONNX Runtime library not loadable, or model files absent.
	ErrDependencyMissing = errors.New("embedding dependency missing")

	// ErrDimensionMismatch means a query and a corpus vector have different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEncodingFailure means the model failed while processing text.
	ErrEncodingFailure = errors.New("encoding failed")

	// ErrInvalidInput covers other caller errors (bad parameters, empty request fields).
	ErrInvalidInput = errors.New("invalid input")
)

// Class groups errors by how a boundary layer should react to them.
type Class int

const (
	// ClassInternal is any failure that is neither the caller's fault nor a missing dependency.
	ClassInternal Class = iota
	// ClassInvalid is a caller error.
	ClassInvalid
	// ClassUnavailable means the capability is not installed or configured.
	ClassUnavailable
)

// String returns the string representation of Class.
func (c Class) String() string {
	switch c {
	case ClassInternal:
		return "internal"
	case ClassInvalid:
		return "invalid"
	case ClassUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ClassifiedError attaches a class and the failing operation to an error.
type ClassifiedError struct {
	Class Class
	Op    string
	Err   error
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Op == "" {
		return ce.Err.Error()
	}
	return ce.Op + ": " + ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Classify returns the class of err. Explicit ClassifiedError wrappers win over sentinels.
func Classify(err error) Class {
	if err == nil {
		return ClassInternal
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	switch {
	case errors.Is(err, ErrDependencyMissing):
		return ClassUnavailable
	case errors.Is(err, ErrDimensionMismatch), errors.Is(err, ErrInvalidInput):
		return ClassInvalid
	default:
		return ClassInternal
	}
}

// DependencyMissing returns an ErrDependencyMissing naming what is missing and how to fix it.
func DependencyMissing(what, remedy string) error {
	if remedy == "" {
		return fmt.Errorf("%w: %s", ErrDependencyMissing, what)
	}
	return fmt.Errorf("%w: %s (%s)", ErrDependencyMissing, what, remedy)
}

// DimensionMismatch returns an ErrDimensionMismatch describing the offending lengths.
func DimensionMismatch(want, got, index int) error {
	return fmt.Errorf("%w: corpus vector %d has %d dimensions, query has %d", ErrDimensionMismatch, index, got, want)
}

// Invalid returns an ErrInvalidInput with the given message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// EncodingFailed wraps a model failure as ErrEncodingFailure, keeping the cause reachable.
func EncodingFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrEncodingFailure, err)
}

// Wrap attaches an operation name and an explicit class to err.
func Wrap(class Class, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Class: class, Op: op, Err: err}
}
