package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "error without detail",
			err: &AppError{
				Code:    ErrCodeOnlyGuardian,
				Message: "Caller is not the guardian",
			},
			expected: "only_guardian: Caller is not the guardian",
		},
		{
			name: "error with detail",
			err: &AppError{
				Code:    ErrCodeDailyLimit,
				Message: "Daily limit exceeded",
				Detail:  "remaining: 40",
			},
			expected: "daily_limit_exceeded: Daily limit exceeded (remaining: 40)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNew(t *testing.T) {
	err := New("test_code", "Test message", http.StatusTeapot)

	assert.Equal(t, "test_code", err.Code)
	assert.Equal(t, "Test message", err.Message)
	assert.Equal(t, http.StatusTeapot, err.StatusCode)
	assert.Empty(t, err.Detail)
}

func TestNewWithDetail(t *testing.T) {
	err := NewWithDetail("test_code", "Test message", "extra", http.StatusBadRequest)

	assert.Equal(t, "test_code", err.Code)
	assert.Equal(t, "extra", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestWalletNotFound(t *testing.T) {
	err := WalletNotFound("0xabc")

	assert.Equal(t, ErrCodeWalletNotFound, err.Code)
	assert.Equal(t, "Wallet not found", err.Message)
	assert.Contains(t, err.Detail, "0xabc")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestIsAppError(t *testing.T) {
	t.Run("returns AppError when error is AppError", func(t *testing.T) {
		originalErr := New("test", "test", http.StatusBadRequest)
		appErr, ok := IsAppError(originalErr)

		require.True(t, ok)
		assert.Equal(t, originalErr, appErr)
	})

	t.Run("returns false when error is not AppError", func(t *testing.T) {
		appErr, ok := IsAppError(errors.New("standard error"))

		assert.False(t, ok)
		assert.Nil(t, appErr)
	})

	t.Run("works with wrapped errors", func(t *testing.T) {
		originalErr := New("test", "test", http.StatusBadRequest)
		wrappedErr := fmt.Errorf("wrapped: %w", originalErr)

		appErr, ok := IsAppError(wrappedErr)

		require.True(t, ok)
		assert.Equal(t, originalErr, appErr)
	})
}

func TestErrorCodeConstants(t *testing.T) {
	// Verify all error codes are unique and non-empty
	codes := []string{
		ErrCodeBadRequest,
		ErrCodeNotFound,
		ErrCodeWalletNotFound,
		ErrCodeForbidden,
		ErrCodeOnlyEntryPoint,
		ErrCodeOnlyOwner,
		ErrCodeOnlySelf,
		ErrCodeOnlyGuardian,
		ErrCodeInvalidThreshold,
		ErrCodeDuplicateSigner,
		ErrCodeSignerExists,
		ErrCodeSignerNotExists,
		ErrCodePaused,
		ErrCodeNotPaused,
		ErrCodeDailyLimit,
		ErrCodeRecoveryState,
		ErrCodeCallFailed,
		ErrCodeRateLimited,
		ErrCodeInternalError,
	}

	uniqueCodes := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, uniqueCodes[code], "error code %s is duplicate", code)
		uniqueCodes[code] = true
	}
}
