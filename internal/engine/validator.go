package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/quorum-wallet/quorum-wallet/pkg/bundle"
)

// ValidationResult is the structured outcome of signature validation.
// Wrong signatures, unknown slots and wrong bundle lengths are routine and
// report ValidationFailed; they are not faults.
type ValidationResult uint8

const (
	ValidationSuccess ValidationResult = 0
	ValidationFailed  ValidationResult = 1
)

func (r ValidationResult) String() string {
	if r == ValidationSuccess {
		return "success"
	}
	return "failed"
}

// ValidateOp checks a signature bundle against the registered signer set.
// Only the entry point may call it. Regardless of the outcome, when
// missingFunds is positive the wallet attempts a best-effort transfer of
// that amount back to the entry point; a failed transfer never masks the
// validation result.
func (w *Wallet) ValidateOp(ctx context.Context, caller common.Address, opHash common.Hash, missingFunds *big.Int, bundleBytes []byte) (ValidationResult, error) {
	if !w.initialized {
		return ValidationFailed, ErrNotInitialized
	}
	if err := w.requireEntryPoint(caller); err != nil {
		return ValidationFailed, err
	}

	result, err := w.validateBundle(opHash, bundleBytes)
	if err != nil {
		return ValidationFailed, err
	}

	w.reimburseEntryPoint(ctx, missingFunds)
	return result, nil
}

// validateBundle runs the threshold check. It mutates no wallet state.
func (w *Wallet) validateBundle(opHash common.Hash, bundleBytes []byte) (ValidationResult, error) {
	entries, err := bundle.Decode(bundleBytes)
	if err != nil {
		return ValidationFailed, err
	}

	// Exact-length rule: both under- and over-collection fail. Combined
	// with duplicate rejection, any ordering of the same distinct indices
	// validates identically.
	if len(entries) != w.threshold {
		return ValidationFailed, nil
	}

	var seen [4]uint64
	digest := accounts.TextHash(opHash.Bytes())

	for _, e := range entries {
		word, bit := e.SignerIndex/64, uint64(1)<<(e.SignerIndex%64)
		if seen[word]&bit != 0 {
			return ValidationFailed, &DuplicateSignerError{Index: e.SignerIndex}
		}
		seen[word] |= bit

		registered := w.signers[e.SignerIndex]
		if registered == (common.Address{}) {
			return ValidationFailed, nil
		}

		recovered, ok := recoverSigner(digest, e.Signature)
		if !ok || recovered != registered {
			return ValidationFailed, nil
		}
	}

	return ValidationSuccess, nil
}

// recoverSigner recovers the signing address from a 65-byte secp256k1
// signature over digest. Both v in {0,1} and the legacy {27,28} form are
// accepted.
func recoverSigner(digest []byte, sig []byte) (common.Address, bool) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, false
	}
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(*pub), true
}

// reimburseEntryPoint transfers missingFunds back to the entry point.
// Transfer failure is deliberately ignored: the entry point accounts for
// shortfall on its side.
func (w *Wallet) reimburseEntryPoint(ctx context.Context, missingFunds *big.Int) {
	if missingFunds == nil || missingFunds.Sign() <= 0 || w.cfg.Executor == nil {
		return
	}
	_, _ = w.cfg.Executor.Call(ctx, w.cfg.Address, w.cfg.EntryPoint, missingFunds, nil)
}
