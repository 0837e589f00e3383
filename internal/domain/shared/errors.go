package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes for the ledger core. Handlers compare against these codes
// rather than against error identity so wrapped errors stay classifiable.
const (
	CodeUnbalancedBatch        = "UNBALANCED_BATCH"
	CodeUnknownAccount         = "UNKNOWN_ACCOUNT"
	CodeInactiveAccount        = "INACTIVE_ACCOUNT"
	CodeMissingFXRate          = "MISSING_FX_RATE"
	CodeIllegalCheckTransition = "ILLEGAL_CHECK_TRANSITION"
)

// IsDomainErrorWithCode reports whether err is, or wraps, a DomainError
// carrying the given code
func IsDomainErrorWithCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
