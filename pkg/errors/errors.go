// Package errors provides coded error types for meshskel's boundaries.
//
// Library packages such as skeleton and forest return plain sentinel errors.
// The coded errors here are used where a failure crosses into something a
// user or another program sees: the JSON loader, pipeline option checks, the
// HTTP API and the repair helpers.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MISSING_FIELD: A required field is absent from an input record
//   - NOT_FOUND / FILE_NOT_FOUND: Resource not found
//   - NO_BRIDGE: Two components cannot be connected
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingField, "input has no %q field", "edges")
//	if errors.Is(err, errors.ErrCodeMissingField) {
//	    // Handle the bad record
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeMissingField   Code = "MISSING_FIELD"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidScaling Code = "INVALID_SCALING"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidRoot    Code = "INVALID_ROOT"

	// Resource not found errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"
	ErrCodeComponentNotFound Code = "COMPONENT_NOT_FOUND"

	// Repair errors
	ErrCodeNoBridge Code = "NO_BRIDGE"

	// Internal errors
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsInput reports whether err was caused by bad caller input rather than an
// internal failure.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeInvalidFormat,
		ErrCodeInvalidScaling, ErrCodeInvalidPath, ErrCodeInvalidRoot:
		return true
	}
	return false
}
