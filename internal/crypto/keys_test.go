package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	t.Run("generates valid key", func(t *testing.T) {
		key, err := GenerateKey()
		require.NoError(t, err)
		require.NotNil(t, key)

		// Verify it's a valid secp256k1 key
		assert.NotNil(t, key.D)
		assert.NotNil(t, key.X)
		assert.NotNil(t, key.Y)
	})

	t.Run("generates unique keys", func(t *testing.T) {
		key1, err := GenerateKey()
		require.NoError(t, err)

		key2, err := GenerateKey()
		require.NoError(t, err)

		assert.NotEqual(t, key1.D.Bytes(), key2.D.Bytes())
	})
}

func TestAddressOf(t *testing.T) {
	t.Run("derives valid address", func(t *testing.T) {
		key, err := GenerateKey()
		require.NoError(t, err)

		address := AddressOf(key)

		assert.Len(t, address.Bytes(), 20)
		assert.NotEqual(t, common.Address{}, address)
	})

	t.Run("same key produces same address", func(t *testing.T) {
		key, err := GenerateKey()
		require.NoError(t, err)

		assert.Equal(t, AddressOf(key), AddressOf(key))
	})

	t.Run("different keys produce different addresses", func(t *testing.T) {
		key1, err := GenerateKey()
		require.NoError(t, err)

		key2, err := GenerateKey()
		require.NoError(t, err)

		assert.NotEqual(t, AddressOf(key1), AddressOf(key2))
	})
}

func TestKeyBytesRoundtrip(t *testing.T) {
	t.Run("roundtrip preserves the key and address", func(t *testing.T) {
		originalKey, err := GenerateKey()
		require.NoError(t, err)

		keyBytes := KeyToBytes(originalKey)
		assert.Len(t, keyBytes, 32)

		restoredKey, err := BytesToKey(keyBytes)
		require.NoError(t, err)

		assert.Equal(t, originalKey.D.Bytes(), restoredKey.D.Bytes())
		assert.Equal(t, AddressOf(originalKey), AddressOf(restoredKey))
	})

	t.Run("invalid bytes return error", func(t *testing.T) {
		// Too short
		_, err := BytesToKey([]byte{1, 2, 3})
		assert.Error(t, err)

		// Zero key (invalid scalar)
		_, err = BytesToKey(make([]byte, 32))
		assert.Error(t, err)
	})
}
