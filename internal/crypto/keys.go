// Package crypto holds the key-material helpers for the relayer signing
// key: secp256k1 generation and the 2-of-2 Shamir sharding applied before
// the key touches storage.
package crypto

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// GenerateKey generates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return privateKey, nil
}

// AddressOf derives the Ethereum address from a private key.
func AddressOf(privateKey *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(privateKey.PublicKey)
}

// KeyToBytes converts a private key to its 32-byte scalar form.
func KeyToBytes(privateKey *ecdsa.PrivateKey) []byte {
	return crypto.FromECDSA(privateKey)
}

// BytesToKey converts a 32-byte scalar back to a private key.
func BytesToKey(b []byte) (*ecdsa.PrivateKey, error) {
	return crypto.ToECDSA(b)
}
