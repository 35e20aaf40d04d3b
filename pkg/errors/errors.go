// Package errors provides structured error types for the strata engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - SCHEMA_*: Preset document version problems
//   - MISSING_* / OUT_OF_RANGE_* / UNKNOWN_*: Field-level validation failures
//   - CAPACITY_* / FOREIGN_* / CHECKSUM_* ...: Embedding codec failures
//   - NOT_FOUND / INVALID_*: Resource and input problems
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownMode, "pass %d layer %d: mode %d", p, l, mode)
//	if errors.Is(err, errors.ErrCodeUnknownMode) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeJSONMalformed, origErr, "payload at (%d,%d)", x, y)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Preset schema errors
	ErrCodeSchemaTooNew     Code = "SCHEMA_TOO_NEW"
	ErrCodeSchemaNewerMinor Code = "SCHEMA_NEWER_MINOR"
	ErrCodeMissingField     Code = "MISSING_REQUIRED_FIELD"
	ErrCodeMissingOptional  Code = "MISSING_OPTIONAL_FIELD"
	ErrCodeOutOfRange       Code = "OUT_OF_RANGE_VALUE"
	ErrCodeDisallowed       Code = "DISALLOWED_MATERIAL"
	ErrCodeUnknownMode      Code = "UNKNOWN_MODE"

	// Embedding codec errors
	ErrCodeCapacity      Code = "CAPACITY_EXCEEDED"
	ErrCodeForeignCell   Code = "FOREIGN_CELL"
	ErrCodePrematureEnd  Code = "PREMATURE_END"
	ErrCodeNoHeader      Code = "HEADER_NOT_FOUND"
	ErrCodeChecksum      Code = "CHECKSUM_MISMATCH"
	ErrCodeJSONMalformed Code = "JSON_MALFORMED"

	// Resource and input errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodePresetNotFound Code = "PRESET_NOT_FOUND"
	ErrCodeInvalidName    Code = "INVALID_NAME"
	ErrCodeInvalidInput   Code = "INVALID_INPUT"

	// Internal errors
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
