package engine

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Faults abort the whole operation and surface a named condition. Ordinary
// signature-validation failures are reported through ValidationResult
// instead; see ValidateOp.
var (
	ErrAlreadyInitialized = errors.New("wallet already initialized")
	ErrNotInitialized     = errors.New("wallet not initialized")

	ErrInvalidThreshold    = errors.New("invalid threshold")
	ErrSignerAlreadyExists = errors.New("signer slot already occupied")
	ErrSignerNotExists     = errors.New("signer slot is empty")

	ErrOnlyEntryPoint = errors.New("caller is not the entry point")
	ErrOnlyOwner      = errors.New("caller is not the owner")
	ErrOnlySelf       = errors.New("operation is reachable only via self-call")
	ErrOnlyGuardian   = errors.New("caller is not the guardian")

	ErrContractPaused = errors.New("wallet is paused")
	ErrNotPaused      = errors.New("wallet is not paused")

	ErrDailyLimitExceeded = errors.New("daily spending limit exceeded")

	ErrInvalidOwner            = errors.New("new owner must not be the zero address")
	ErrInvalidImplementation   = errors.New("implementation must not be the zero address")
	ErrInvalidGuardian         = errors.New("invalid recovery target")
	ErrNoRecoveryPending       = errors.New("no recovery request pending")
	ErrRecoveryAlreadyExecuted = errors.New("recovery request already executed")
	ErrRecoveryNotReady        = errors.New("recovery timelock has not elapsed")

	ErrInvalidVersion   = errors.New("invalid migration version")
	ErrUnknownAdminCall = errors.New("unknown admin method in self-call data")
	ErrLengthMismatch   = errors.New("batch argument lengths do not match")
)

var errNoExecutor = errors.New("no call executor configured")

// DuplicateSignerError reports a bundle referencing the same signer slot
// twice. It is a fault, not an ordinary validation failure: a well-behaved
// dispatcher never produces it.
type DuplicateSignerError struct {
	Index uint8
}

func (e *DuplicateSignerError) Error() string {
	return fmt.Sprintf("duplicate signer index %d in signature bundle", e.Index)
}

// CallFailedError reports a failed sub-call during Execute or ExecuteBatch.
// The whole operation reverts; Index is the position within the batch
// (0 for a single execute).
type CallFailedError struct {
	Index  int
	Target common.Address
	Err    error
}

func (e *CallFailedError) Error() string {
	return fmt.Sprintf("call %d to %s failed: %v", e.Index, e.Target.Hex(), e.Err)
}

func (e *CallFailedError) Unwrap() error { return e.Err }
