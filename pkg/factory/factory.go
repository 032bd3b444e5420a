// Package factory derives deterministic counterfactual wallet addresses.
// Deployment itself is an external concern; this package only implements the
// address arithmetic the service needs before a wallet instance exists
// on-chain.
package factory

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress computes the CREATE2-style address a deployer produces for
// the given salt and wallet init code.
func DeriveAddress(deployer common.Address, salt [32]byte, initCode []byte) common.Address {
	return crypto.CreateAddress2(deployer, salt, crypto.Keccak256(initCode))
}

// SaltFor maps an arbitrary identifier (for example an account ID) onto a
// deployment salt.
func SaltFor(id []byte) [32]byte {
	var salt [32]byte
	copy(salt[:], crypto.Keccak256(id))
	return salt
}
