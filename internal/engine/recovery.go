package engine

import "github.com/ethereum/go-ethereum/common"

// Guardian recovery: a timelocked ownership transfer driven by the guardian,
// cancellable by the owner (or a quorum via self-call) at any point before
// execution, including while paused.

// GetRecoveryRequest returns a copy of the current request, or nil when none
// exists.
func (w *Wallet) GetRecoveryRequest() *RecoveryRequest {
	if w.recovery == nil {
		return nil
	}
	r := *w.recovery
	return &r
}

// InitiateRecovery starts (or restarts) a recovery to newOwner. Guardian
// only. Any prior unexecuted request is overwritten; the timelock restarts.
func (w *Wallet) InitiateRecovery(caller, newOwner common.Address) error {
	if !w.initialized {
		return ErrNotInitialized
	}
	if err := w.requireGuardian(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidGuardian
	}
	w.recovery = &RecoveryRequest{
		NewOwner:     newOwner,
		ExecuteAfter: w.cfg.Clock.Now().Add(RecoveryPeriod),
	}
	return nil
}

// ExecuteRecovery completes a matured recovery, transferring ownership.
// Guardian only. The executed request stays terminal: another recovery needs
// a fresh InitiateRecovery.
func (w *Wallet) ExecuteRecovery(caller common.Address) error {
	if !w.initialized {
		return ErrNotInitialized
	}
	if err := w.requireGuardian(caller); err != nil {
		return err
	}
	if w.recovery == nil {
		return ErrNoRecoveryPending
	}
	if w.recovery.Executed {
		return ErrRecoveryAlreadyExecuted
	}
	if w.cfg.Clock.Now().Before(w.recovery.ExecuteAfter) {
		return ErrRecoveryNotReady
	}
	w.owner = w.recovery.NewOwner
	w.recovery.Executed = true
	return nil
}

// CancelRecovery clears the current request. Owner or self-call; works while
// paused, since pausing may itself be the response to a compromised guardian.
func (w *Wallet) CancelRecovery(caller common.Address) error {
	if !w.initialized {
		return ErrNotInitialized
	}
	if err := w.requireOwnerOrSelf(caller); err != nil {
		return err
	}
	w.recovery = nil
	return nil
}

// setGuardian replaces the guardian. Self-call only.
func (w *Wallet) setGuardian(guardian common.Address) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	w.guardian = guardian
	return nil
}

// transferOwnership replaces the owner directly. Self-call only; this is the
// quorum path, distinct from guardian recovery.
func (w *Wallet) transferOwnership(newOwner common.Address) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidOwner
	}
	w.owner = newOwner
	return nil
}
