package engine

import "github.com/ethereum/go-ethereum/common"

// Upgrade gating and versioned migration. Authorizing a code replacement
// requires quorum (self-call), not just the owner. Migrations are explicit
// and monotonic: each version transition runs at most once.

// PendingImplementation returns the implementation address authorized for
// the next upgrade, or the zero address when none is pending.
func (w *Wallet) PendingImplementation() common.Address { return w.pendingImpl }

// authorizeUpgrade records newImplementation as the approved upgrade target.
// Self-call only.
func (w *Wallet) authorizeUpgrade(newImplementation common.Address) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if newImplementation == (common.Address{}) {
		return ErrInvalidImplementation
	}
	w.pendingImpl = newImplementation
	return nil
}

// Migrate moves the wallet from one version to the next after an upgrade.
// It only runs on initialized wallets, only forward, and only from the
// wallet's exact current version.
func (w *Wallet) Migrate(fromVersion, toVersion uint64) error {
	if !w.initialized {
		return ErrNotInitialized
	}
	if err := w.requireSelf(); err != nil {
		return err
	}
	if fromVersion != w.version || toVersion <= fromVersion {
		return ErrInvalidVersion
	}
	w.version = toVersion
	w.pendingImpl = common.Address{}
	return nil
}
