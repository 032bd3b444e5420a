package engine

import "github.com/ethereum/go-ethereum/common"

// Caller role checks. Each operation's allowed-caller set is fixed:
//
//	validate                 entry point
//	execute / executeBatch   entry point or self-call
//	admin mutations          self-call only
//	pause                    owner or guardian
//	initiate/executeRecovery guardian
//	cancelRecovery           owner or self-call
//
// Self-call is never a caller address: it is the authorized-context flag set
// only while the wallet executes a call targeting its own address, which in
// turn required passing threshold validation.

func (w *Wallet) requireEntryPoint(caller common.Address) error {
	if caller != w.cfg.EntryPoint {
		return ErrOnlyEntryPoint
	}
	return nil
}

func (w *Wallet) requireEntryPointOrSelf(caller common.Address) error {
	if w.selfCall {
		return nil
	}
	if caller != w.cfg.EntryPoint {
		return ErrOnlyEntryPoint
	}
	return nil
}

func (w *Wallet) requireSelf() error {
	if !w.selfCall {
		return ErrOnlySelf
	}
	return nil
}

func (w *Wallet) requireOwnerOrGuardian(caller common.Address) error {
	if caller == w.owner {
		return nil
	}
	if w.guardian != (common.Address{}) && caller == w.guardian {
		return nil
	}
	return ErrOnlyOwner
}

func (w *Wallet) requireGuardian(caller common.Address) error {
	if w.guardian == (common.Address{}) || caller != w.guardian {
		return ErrOnlyGuardian
	}
	return nil
}

func (w *Wallet) requireOwnerOrSelf(caller common.Address) error {
	if w.selfCall || caller == w.owner {
		return nil
	}
	return ErrOnlyOwner
}
