package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletcrypto "github.com/quorum-wallet/quorum-wallet/internal/crypto"
	"github.com/quorum-wallet/quorum-wallet/internal/keyvault"
	"github.com/quorum-wallet/quorum-wallet/internal/storage"
)

type memKeyStore struct {
	keys []*storage.RelayerKey
}

func (m *memKeyStore) Create(_ context.Context, key *storage.RelayerKey) error {
	m.keys = append(m.keys, key)
	return nil
}

func (m *memKeyStore) GetLatest(_ context.Context) (*storage.RelayerKey, error) {
	if len(m.keys) == 0 {
		return nil, nil
	}
	return m.keys[len(m.keys)-1], nil
}

func newTestVault(t *testing.T) keyvault.Provider {
	t.Helper()
	vault, err := keyvault.NewLocalProvider(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return vault
}

func TestKeyServiceLoadOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("bootstraps on first boot", func(t *testing.T) {
		store := &memKeyStore{}
		svc := NewKeyService(store, newTestVault(t))

		key, err := svc.LoadOrCreate(ctx)
		require.NoError(t, err)
		require.NotNil(t, key)

		require.Len(t, store.keys, 1)
		stored := store.keys[0]
		assert.Equal(t, walletcrypto.AddressOf(key).Hex(), stored.Address)
		assert.Equal(t, "local", stored.Provider)
		assert.NotEmpty(t, stored.ShareAEnc)
		assert.NotEmpty(t, stored.ShareBEnc)

		// Neither encrypted share contains the raw key material.
		raw := walletcrypto.KeyToBytes(key)
		assert.NotContains(t, string(stored.ShareAEnc), string(raw))
		assert.NotContains(t, string(stored.ShareBEnc), string(raw))
	})

	t.Run("reconstructs the same key on restart", func(t *testing.T) {
		store := &memKeyStore{}
		vault := newTestVault(t)

		first, err := NewKeyService(store, vault).LoadOrCreate(ctx)
		require.NoError(t, err)

		second, err := NewKeyService(store, vault).LoadOrCreate(ctx)
		require.NoError(t, err)

		assert.Equal(t, walletcrypto.KeyToBytes(first), walletcrypto.KeyToBytes(second))
		assert.Len(t, store.keys, 1)
	})

	t.Run("rejects shares decrypted with a different vault key", func(t *testing.T) {
		store := &memKeyStore{}
		_, err := NewKeyService(store, newTestVault(t)).LoadOrCreate(ctx)
		require.NoError(t, err)

		otherVault, err := keyvault.NewLocalProvider(strings.Repeat("cd", 32))
		require.NoError(t, err)

		_, err = NewKeyService(store, otherVault).LoadOrCreate(ctx)
		assert.Error(t, err)
	})
}
