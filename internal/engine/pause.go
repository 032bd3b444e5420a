package engine

import "github.com/ethereum/go-ethereum/common"

// Pause control. Pausing gates Execute and ExecuteBatch only: governance
// self-calls and the recovery workflow stay available so a paused wallet can
// still be repaired.

// Paused reports whether value-moving execution is suspended.
func (w *Wallet) Paused() bool { return w.paused }

// Pause suspends execution. Owner or guardian only.
func (w *Wallet) Pause(caller common.Address) error {
	if !w.initialized {
		return ErrNotInitialized
	}
	if err := w.requireOwnerOrGuardian(caller); err != nil {
		return err
	}
	if w.paused {
		return ErrContractPaused
	}
	w.paused = true
	return nil
}

// unpause resumes execution. Reachable only via self-call, so resuming
// requires a fresh quorum.
func (w *Wallet) unpause() error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if !w.paused {
		return ErrNotPaused
	}
	w.paused = false
	return nil
}
