// Package errors provides structured error types for offlineplot.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-facing messages that carry remediation instructions
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into four groups:
//   - Precondition errors: NOTEBOOK_UNAVAILABLE, NOT_INITIALIZED
//   - Validation errors: INVALID_FIGURE
//   - Usage errors: INVALID_OUTPUT_TYPE, INVALID_IMAGE_FORMAT, INVALID_*
//   - Resource errors: BUNDLE_UNAVAILABLE, NETWORK_ERROR, NOT_FOUND
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidOutputType, "unknown output type %q", t)
//	if errors.Is(err, errors.ErrCodeInvalidOutputType) {
//	    // Handle usage error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Precondition errors
	ErrCodeNotebookUnavailable Code = "NOTEBOOK_UNAVAILABLE"
	ErrCodeNotInitialized      Code = "NOT_INITIALIZED"

	// Validation errors
	ErrCodeInvalidFigure Code = "INVALID_FIGURE"

	// Usage errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidOutputType  Code = "INVALID_OUTPUT_TYPE"
	ErrCodeInvalidImageFormat Code = "INVALID_IMAGE_FORMAT"
	ErrCodeInvalidDimension   Code = "INVALID_DIMENSION"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeBundleUnavailable Code = "BUNDLE_UNAVAILABLE"
	ErrCodeNetwork           Code = "NETWORK_ERROR"

	// Capability errors
	ErrCodeConverterUnavailable Code = "CONVERTER_UNAVAILABLE"
	ErrCodeUnsupported          Code = "UNSUPPORTED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsPrecondition reports whether err signals a missing runtime capability or
// a skipped initialization step. These are never retried.
func IsPrecondition(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotebookUnavailable, ErrCodeNotInitialized:
		return true
	}
	return false
}
