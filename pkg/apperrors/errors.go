// Package apperrors defines the application-level error envelope returned by
// the HTTP API, mapping named wallet faults onto stable codes and statuses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an application-level error with an HTTP status code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes surfaced by the wallet API.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeWalletNotFound   = "wallet_not_found"
	ErrCodeForbidden        = "forbidden"
	ErrCodeOnlyEntryPoint   = "only_entry_point"
	ErrCodeOnlyOwner        = "only_owner"
	ErrCodeOnlySelf         = "only_self"
	ErrCodeOnlyGuardian     = "only_guardian"
	ErrCodeInvalidThreshold = "invalid_threshold"
	ErrCodeDuplicateSigner  = "duplicate_signer"
	ErrCodeSignerExists     = "signer_already_exists"
	ErrCodeSignerNotExists  = "signer_not_exists"
	ErrCodePaused           = "contract_paused"
	ErrCodeNotPaused        = "not_paused"
	ErrCodeDailyLimit       = "daily_limit_exceeded"
	ErrCodeRecoveryState    = "recovery_state"
	ErrCodeCallFailed       = "call_failed"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternalError    = "internal_error"
)

// Predefined errors for the common cases.
var (
	ErrBadRequest = &AppError{
		Code:       ErrCodeBadRequest,
		Message:    "Invalid request parameters",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = &AppError{
		Code:       ErrCodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrRateLimited = &AppError{
		Code:       ErrCodeRateLimited,
		Message:    "Too many requests",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrInternalError = &AppError{
		Code:       ErrCodeInternalError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New creates a new AppError.
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// NewWithDetail creates a new AppError with additional detail.
func NewWithDetail(code, message, detail string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, Detail: detail, StatusCode: statusCode}
}

// WalletNotFound creates a wallet not found error.
func WalletNotFound(address string) *AppError {
	return &AppError{
		Code:       ErrCodeWalletNotFound,
		Message:    "Wallet not found",
		Detail:     fmt.Sprintf("address: %s", address),
		StatusCode: http.StatusNotFound,
	}
}

// IsAppError checks if an error is (or wraps) an AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
