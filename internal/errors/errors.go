// Package errors defines the registry's stable error codes. Codes are part of
// the CLI's observable behavior: callers branch on them to decide whether a
// failure is recoverable (bad input, missing record) or fatal (broken scoring
// configuration, evidence I/O).
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a stable identifier for a failure mode.
type Code string

const (
	// ValidationFailed indicates a record constructor rejected its input.
	ValidationFailed Code = "VALIDATION_FAILED"
	// NotFound indicates an operation referenced an unknown system or risk id.
	NotFound Code = "NOT_FOUND"
	// ConfigIntegrity indicates the scoring configuration is structurally
	// incomplete (missing threshold, dimension map, or tier control list).
	ConfigIntegrity Code = "CONFIG_INTEGRITY"
	// EvidenceIO indicates an evidence run failed while writing artifacts or
	// the archive. The run is aborted and no canonical archive is left behind.
	EvidenceIO Code = "EVIDENCE_IO"
	// StorageFailure indicates the backing store failed outside of NotFound.
	StorageFailure Code = "STORAGE_FAILURE"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the code from err, or empty string for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err carries the NotFound code.
func IsNotFound(err error) bool {
	return CodeOf(err) == NotFound
}

// IsValidation reports whether err carries the ValidationFailed code.
func IsValidation(err error) bool {
	return CodeOf(err) == ValidationFailed
}
