package dto

import (
	"errors"
	"net/http"

	"github.com/erp/ledger/internal/domain/shared"
)

// Error codes returned by the API. Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeInvalidID  = "ERR_INVALID_ID"
	ErrCodeTooLarge   = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidInput         = "ERR_INVALID_INPUT"
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock    = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInsufficientBudget   = "ERR_INSUFFICIENT_BUDGET"
	ErrCodeAmountExceedsBalance = "ERR_AMOUNT_EXCEEDS_BALANCE"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP statuses
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeInvalidID:  http.StatusBadRequest,
	ErrCodeTooLarge:   http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule violations -> 422
	ErrCodeInvalidInput:         http.StatusUnprocessableEntity,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeInsufficientBudget:   http.StatusUnprocessableEntity,
	ErrCodeAmountExceedsBalance: http.StatusUnprocessableEntity,
}

// domainCodes maps domain error codes to API error codes
var domainCodes = map[string]string{
	shared.CodeNotFound:             ErrCodeNotFound,
	shared.CodeAlreadyExists:        ErrCodeAlreadyExists,
	shared.CodeInvalidInput:         ErrCodeInvalidInput,
	shared.CodeConcurrencyConflict:  ErrCodeConcurrencyConflict,
	shared.CodeInvalidState:         ErrCodeInvalidState,
	shared.CodeInsufficientStock:    ErrCodeInsufficientStock,
	shared.CodeInsufficientBudget:   ErrCodeInsufficientBudget,
	shared.CodeAmountExceedsBalance: ErrCodeAmountExceedsBalance,
	shared.CodeUnauthorized:         ErrCodeUnauthorized,
}

// GetHTTPStatus returns the status for an API error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError classifies err. Errors that carry no DomainError become
// ERR_INTERNAL with a generic message so internals are not leaked.
func FromError(err error) (status int, code, message string) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		apiCode, ok := domainCodes[de.Code]
		if !ok {
			apiCode = ErrCodeInternal
		}
		return GetHTTPStatus(apiCode), apiCode, de.Message
	}
	return http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred"
}
