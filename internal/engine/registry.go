package engine

import "github.com/ethereum/go-ethereum/common"

// Signer registry. Slots are identified by a uint8 index; an empty slot holds
// the zero address. Invariant after every successful mutation:
// 1 <= threshold <= signerCount.

// GetSigner returns the signer stored at index, or the zero address if the
// slot is empty.
func (w *Wallet) GetSigner(index uint8) common.Address {
	return w.signers[index]
}

// SignerCount returns the number of occupied slots.
func (w *Wallet) SignerCount() int { return w.signerCount }

// Threshold returns the current signature threshold.
func (w *Wallet) Threshold() int { return w.threshold }

// addSigner stores signer at index. Self-call only; the dispatch layer
// enforces that before routing here.
func (w *Wallet) addSigner(signer common.Address, index uint8) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if w.signers[index] != (common.Address{}) {
		return ErrSignerAlreadyExists
	}
	w.signers[index] = signer
	w.signerCount++
	return nil
}

// removeSigner empties the slot at index. Removal never silently lowers the
// threshold: it fails instead when signerCount would drop below it.
func (w *Wallet) removeSigner(index uint8) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if w.signers[index] == (common.Address{}) {
		return ErrSignerNotExists
	}
	if w.signerCount-1 < w.threshold {
		return ErrInvalidThreshold
	}
	w.signers[index] = common.Address{}
	w.signerCount--
	return nil
}

// updateThreshold changes the signature threshold within [1, signerCount].
func (w *Wallet) updateThreshold(newThreshold int) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if newThreshold == 0 || newThreshold > w.signerCount {
		return ErrInvalidThreshold
	}
	w.threshold = newThreshold
	return nil
}
