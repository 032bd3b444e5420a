package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	walletcrypto "github.com/quorum-wallet/quorum-wallet/internal/crypto"
	"github.com/quorum-wallet/quorum-wallet/internal/keyvault"
	"github.com/quorum-wallet/quorum-wallet/internal/logger"
	"github.com/quorum-wallet/quorum-wallet/internal/storage"
)

// RelayerKeyStore persists split relayer key material.
type RelayerKeyStore interface {
	Create(ctx context.Context, key *storage.RelayerKey) error
	GetLatest(ctx context.Context) (*storage.RelayerKey, error)
}

// KeyService manages the relayer signing key. The key is Shamir-split into
// two shares and each share is encrypted by the key vault provider before
// hitting the database, so neither the database nor the vault alone can
// reconstruct it.
type KeyService struct {
	keys  RelayerKeyStore
	vault keyvault.Provider
}

// NewKeyService creates a new key service
func NewKeyService(keys RelayerKeyStore, vault keyvault.Provider) *KeyService {
	return &KeyService{keys: keys, vault: vault}
}

// LoadOrCreate returns the relayer signing key, generating and persisting a
// fresh one on first boot.
func (s *KeyService) LoadOrCreate(ctx context.Context) (*ecdsa.PrivateKey, error) {
	stored, err := s.keys.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return s.reconstruct(ctx, stored)
	}
	return s.bootstrap(ctx)
}

func (s *KeyService) bootstrap(ctx context.Context) (*ecdsa.PrivateKey, error) {
	key, err := walletcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate relayer key: %w", err)
	}

	shares, err := walletcrypto.SplitKey(walletcrypto.KeyToBytes(key))
	if err != nil {
		return nil, fmt.Errorf("failed to split relayer key: %w", err)
	}

	shareAEnc, err := s.vault.Encrypt(ctx, shares.ShareA)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt share A: %w", err)
	}
	shareBEnc, err := s.vault.Encrypt(ctx, shares.ShareB)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt share B: %w", err)
	}

	address := walletcrypto.AddressOf(key)
	record := &storage.RelayerKey{
		Address:   address.Hex(),
		Provider:  s.vault.Name(),
		ShareAEnc: shareAEnc,
		ShareBEnc: shareBEnc,
	}
	if err := s.keys.Create(ctx, record); err != nil {
		return nil, err
	}

	logger.Info(ctx, "bootstrapped relayer key",
		"address", address.Hex(),
		"provider", s.vault.Name(),
	)
	return key, nil
}

func (s *KeyService) reconstruct(ctx context.Context, stored *storage.RelayerKey) (*ecdsa.PrivateKey, error) {
	shareA, err := s.vault.Decrypt(ctx, stored.ShareAEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt share A: %w", err)
	}
	shareB, err := s.vault.Decrypt(ctx, stored.ShareBEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt share B: %w", err)
	}

	keyBytes, err := walletcrypto.CombineShares(shareA, shareB)
	if err != nil {
		return nil, err
	}
	key, err := walletcrypto.BytesToKey(keyBytes)
	if err != nil {
		return nil, err
	}

	if got := walletcrypto.AddressOf(key).Hex(); got != stored.Address {
		return nil, fmt.Errorf("reconstructed key address %s does not match stored %s", got, stored.Address)
	}
	return key, nil
}
