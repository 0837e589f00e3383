package dto

import "net/http"

// API error codes, format ERR_<DESCRIPTION>.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	// Ledger rule violations. All map to 422: the request was well-formed
	// but the books refuse it.
	ErrCodeInvalidState           = "ERR_INVALID_STATE"
	ErrCodeUnbalancedBatch        = "ERR_UNBALANCED_BATCH"
	ErrCodeUnknownAccount         = "ERR_UNKNOWN_ACCOUNT"
	ErrCodeInactiveAccount        = "ERR_INACTIVE_ACCOUNT"
	ErrCodeMissingFXRate          = "ERR_MISSING_FX_RATE"
	ErrCodeIllegalCheckTransition = "ERR_ILLEGAL_CHECK_TRANSITION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeUnbalancedBatch:        http.StatusUnprocessableEntity,
	ErrCodeUnknownAccount:         http.StatusUnprocessableEntity,
	ErrCodeInactiveAccount:        http.StatusUnprocessableEntity,
	ErrCodeMissingFXRate:          http.StatusUnprocessableEntity,
	ErrCodeIllegalCheckTransition: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for codes it does not know.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps raw domain error codes to the API's ERR_*
// codes. Domain packages stay free of transport concerns and emit their
// own codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_FAILED":   ErrCodeConcurrencyConflict,
	"UNBALANCED_BATCH":         ErrCodeUnbalancedBatch,
	"UNKNOWN_ACCOUNT":          ErrCodeUnknownAccount,
	"INACTIVE_ACCOUNT":         ErrCodeInactiveAccount,
	"MISSING_FX_RATE":          ErrCodeMissingFXRate,
	"ILLEGAL_CHECK_TRANSITION": ErrCodeIllegalCheckTransition,
	"VALIDATION_ERROR":         ErrCodeValidation,
	"BAD_REQUEST":              ErrCodeBadRequest,
	"INTERNAL_ERROR":           ErrCodeInternal,
}

// NormalizeErrorCode converts a raw domain error code to the API format.
// Codes already in the API format, or unknown ones, pass through as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
