// Package errors provides structured error types for dbnplot.
//
// Every failure in dbnplot is a precondition violation surfaced immediately to
// the caller. This package gives those failures:
//   - Machine-readable error codes (shared by the CLI and the HTTP API)
//   - User-friendly messages without the code prefix
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure classes of the diagram pipeline:
//   - DUPLICATE_NAME: a template name was attached twice
//   - INVALID_PARAMETER: slice counts, spacing or render options out of range
//   - INVALID_TEMPLATE: a template violates a node invariant
//   - UNSUPPORTED_FORMAT: an export or model format outside the allow-list
//   - INVALID_PATH: an unsafe export path
//   - RENDER_FAILED: an external rendering collaborator failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateName, "template %q already attached", name)
//	if errors.Is(err, errors.ErrCodeDuplicateName) {
//	    // Handle duplicate registration
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderFailed, origErr, "rsvg-convert %s", format)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Registry and template errors
	ErrCodeDuplicateName    Code = "DUPLICATE_NAME"
	ErrCodeInvalidTemplate  Code = "INVALID_TEMPLATE"
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"

	// Input errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"

	// Collaborator errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

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
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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

// IsInputError reports whether err was caused by caller input rather than by
// a rendering collaborator or an internal fault.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateName, ErrCodeInvalidTemplate, ErrCodeInvalidParameter,
		ErrCodeInvalidInput, ErrCodeUnsupportedFormat, ErrCodeInvalidPath, ErrCodeFileNotFound:
		return true
	default:
		return false
	}
}
