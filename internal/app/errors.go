package app

import (
	"errors"
	"net/http"

	"github.com/quorum-wallet/quorum-wallet/internal/engine"
	"github.com/quorum-wallet/quorum-wallet/internal/storage"
	"github.com/quorum-wallet/quorum-wallet/pkg/apperrors"
)

// faultMapping pairs an engine sentinel with its API error envelope.
type faultMapping struct {
	sentinel error
	code     string
	status   int
}

var faultMappings = []faultMapping{
	{engine.ErrOnlyEntryPoint, apperrors.ErrCodeOnlyEntryPoint, http.StatusForbidden},
	{engine.ErrOnlyOwner, apperrors.ErrCodeOnlyOwner, http.StatusForbidden},
	{engine.ErrOnlySelf, apperrors.ErrCodeOnlySelf, http.StatusForbidden},
	{engine.ErrOnlyGuardian, apperrors.ErrCodeOnlyGuardian, http.StatusForbidden},
	{engine.ErrInvalidThreshold, apperrors.ErrCodeInvalidThreshold, http.StatusBadRequest},
	{engine.ErrSignerAlreadyExists, apperrors.ErrCodeSignerExists, http.StatusConflict},
	{engine.ErrSignerNotExists, apperrors.ErrCodeSignerNotExists, http.StatusNotFound},
	{engine.ErrContractPaused, apperrors.ErrCodePaused, http.StatusConflict},
	{engine.ErrNotPaused, apperrors.ErrCodeNotPaused, http.StatusConflict},
	{engine.ErrDailyLimitExceeded, apperrors.ErrCodeDailyLimit, http.StatusForbidden},
	{engine.ErrInvalidOwner, apperrors.ErrCodeBadRequest, http.StatusBadRequest},
	{engine.ErrInvalidImplementation, apperrors.ErrCodeBadRequest, http.StatusBadRequest},
	{engine.ErrInvalidGuardian, apperrors.ErrCodeBadRequest, http.StatusBadRequest},
	{engine.ErrNoRecoveryPending, apperrors.ErrCodeRecoveryState, http.StatusConflict},
	{engine.ErrRecoveryAlreadyExecuted, apperrors.ErrCodeRecoveryState, http.StatusConflict},
	{engine.ErrRecoveryNotReady, apperrors.ErrCodeRecoveryState, http.StatusConflict},
	{engine.ErrInvalidVersion, apperrors.ErrCodeBadRequest, http.StatusBadRequest},
	{engine.ErrUnknownAdminCall, apperrors.ErrCodeBadRequest, http.StatusBadRequest},
	{engine.ErrLengthMismatch, apperrors.ErrCodeBadRequest, http.StatusBadRequest},
	{engine.ErrAlreadyInitialized, apperrors.ErrCodeBadRequest, http.StatusConflict},
	{engine.ErrNotInitialized, apperrors.ErrCodeBadRequest, http.StatusConflict},
}

// MapError translates engine faults and storage errors into the AppError
// envelope the HTTP layer serializes. Errors that already carry an
// AppError pass through unchanged; anything unrecognized becomes an
// internal error.
func MapError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.IsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, storage.ErrWalletNotFound) {
		return apperrors.New(apperrors.ErrCodeWalletNotFound, "Wallet not found", http.StatusNotFound)
	}

	var dup *engine.DuplicateSignerError
	if errors.As(err, &dup) {
		return apperrors.NewWithDetail(apperrors.ErrCodeDuplicateSigner,
			"Signature bundle references a signer slot twice", dup.Error(), http.StatusBadRequest)
	}
	var callFailed *engine.CallFailedError
	if errors.As(err, &callFailed) {
		// Prefer the gate that rejected the call over the generic wrapper.
		for _, m := range faultMappings {
			if errors.Is(callFailed.Err, m.sentinel) {
				return apperrors.NewWithDetail(m.code, m.sentinel.Error(), callFailed.Error(), m.status)
			}
		}
		return apperrors.NewWithDetail(apperrors.ErrCodeCallFailed,
			"Call reverted", callFailed.Error(), http.StatusBadGateway)
	}

	for _, m := range faultMappings {
		if errors.Is(err, m.sentinel) {
			return apperrors.New(m.code, m.sentinel.Error(), m.status)
		}
	}
	return apperrors.NewWithDetail(apperrors.ErrCodeInternalError,
		"Internal server error", err.Error(), http.StatusInternalServerError)
}
