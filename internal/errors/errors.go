// Package errors defines stable error codes and the ArcError type shared by
// all ARC subsystems. Expected absences (missing file, unknown session) are
// signalled by nil returns, not by errors; ArcError is reserved for failures
// the caller must handle explicitly.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SessionNotFound indicates the session id is unknown
	SessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// CheckpointMissing indicates rollback targeted a round with no checkpoint
	CheckpointMissing ErrorCode = "CHECKPOINT_MISSING"
	// RoleViolation indicates a round violated role-separation rules under strict mode
	RoleViolation ErrorCode = "ROLE_VIOLATION"
	// LocationInvalid indicates an issue location could not be parsed at all
	LocationInvalid ErrorCode = "LOCATION_INVALID"
	// FileNotFound indicates a referenced file does not exist
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// SpecInvalid indicates a review spec failed validation
	SpecInvalid ErrorCode = "SPEC_INVALID"
	// StorageFailure indicates the persistence layer failed
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ArcError represents an ARC error with a stable code and optional cause
type ArcError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new ArcError
func New(code ErrorCode, message string) *ArcError {
	return &ArcError{Code: code, Message: message}
}

// Wrap creates a new ArcError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *ArcError {
	return &ArcError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *ArcError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *ArcError) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details to the error
func (e *ArcError) WithDetails(details interface{}) *ArcError {
	e.Details = details
	return e
}

// CodeOf returns the ErrorCode of err if it is an ArcError, or InternalError.
func CodeOf(err error) ErrorCode {
	if ae, ok := err.(*ArcError); ok {
		return ae.Code
	}
	return InternalError
}
