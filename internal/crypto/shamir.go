package crypto

import (
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

// The relayer key is sharded 2-of-2: both shares are required to
// reconstruct it, so a single leaked database row or vault blob is useless
// on its own.

// ShareSet holds the two Shamir shares of one relayer key.
type ShareSet struct {
	// ShareA and ShareB are stored in separate columns, each encrypted
	// independently by the keyvault provider.
	ShareA []byte
	ShareB []byte
}

// SplitKey splits a key into a 2-of-2 ShareSet.
func SplitKey(key []byte) (*ShareSet, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("key cannot be empty")
	}

	shares, err := shamir.Split(key, 2, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}

	return &ShareSet{
		ShareA: shares[0],
		ShareB: shares[1],
	}, nil
}

// CombineShares reconstructs the original key from both shares.
func CombineShares(shareA, shareB []byte) ([]byte, error) {
	if len(shareA) == 0 || len(shareB) == 0 {
		return nil, fmt.Errorf("both shares are required")
	}

	key, err := shamir.Combine([][]byte{shareA, shareB})
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}

	return key, nil
}

// ValidateShare checks if a share appears to be well-formed.
// Note: this only checks format, not cryptographic validity.
func ValidateShare(share []byte) error {
	if len(share) == 0 {
		return fmt.Errorf("share cannot be empty")
	}
	// Shamir shares carry a 1-byte index after the share data; a share of
	// a 32-byte key is at least 33 bytes.
	if len(share) < 33 {
		return fmt.Errorf("share too short: expected at least 33 bytes, got %d", len(share))
	}
	return nil
}
