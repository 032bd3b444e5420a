package engine

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards the call to the executor", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.exec.ret = []byte("ok")

		ret, err := tw.w.Execute(ctx, testEntryPoint, testTarget, big.NewInt(5), []byte{0xab})
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), ret)

		calls := tw.exec.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, testWalletAddr, calls[0].From)
		assert.Equal(t, testTarget, calls[0].To)
		assert.Equal(t, int64(5), calls[0].Value.Int64())
		assert.Equal(t, []byte{0xab}, calls[0].Data)
	})

	t.Run("only the entry point may execute", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		_, err := tw.w.Execute(ctx, testOwner, testTarget, nil, nil)
		assert.ErrorIs(t, err, ErrOnlyEntryPoint)
		assert.Empty(t, tw.exec.Calls())
	})

	t.Run("executor failure surfaces as a call fault", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.exec.failAt = 0
		tw.exec.err = assert.AnError

		_, err := tw.w.Execute(ctx, testEntryPoint, testTarget, nil, nil)
		var cf *CallFailedError
		require.ErrorAs(t, err, &cf)
		assert.Equal(t, testTarget, cf.Target)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("failed call reverts consumed quota", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "setDailyLimit", big.NewInt(100))
		tw.exec.failAt = 0
		tw.exec.err = assert.AnError

		_, err := tw.w.Execute(ctx, testEntryPoint, testTarget, big.NewInt(30), nil)
		require.Error(t, err)
		assert.Equal(t, int64(100), tw.w.RemainingDailyLimit().Int64())
	})
}

func TestExecuteBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("runs every call in order", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		other := common.HexToAddress("0x8000000000000000000000000000000000000008")

		results, err := tw.w.ExecuteBatch(ctx, testEntryPoint,
			[]common.Address{testTarget, other},
			[]*big.Int{big.NewInt(1), big.NewInt(2)},
			[][]byte{{0x01}, {0x02}},
		)
		require.NoError(t, err)
		assert.Len(t, results, 2)

		calls := tw.exec.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, testTarget, calls[0].To)
		assert.Equal(t, other, calls[1].To)
	})

	t.Run("mismatched argument lengths fault", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		_, err := tw.w.ExecuteBatch(ctx, testEntryPoint,
			[]common.Address{testTarget, testTarget},
			[]*big.Int{big.NewInt(1)},
			[][]byte{nil, nil},
		)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("a failing sub-call reverts the whole batch", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.exec.failAt = 1
		tw.exec.err = assert.AnError

		// Second call fails, so the signer added by the first (admin)
		// call must not survive.
		addData, err := PackAdminCall("addSigner", testNewOwner, uint8(10))
		require.NoError(t, err)

		_, err = tw.w.ExecuteBatch(ctx, testEntryPoint,
			[]common.Address{testWalletAddr, testTarget},
			[]*big.Int{nil, nil},
			[][]byte{addData, nil},
		)
		var cf *CallFailedError
		require.ErrorAs(t, err, &cf)
		assert.Equal(t, 1, cf.Index)

		assert.Equal(t, common.Address{}, tw.w.GetSigner(10),
			"mutation from the first sub-call must be rolled back")
	})
}

func TestPauseGating(t *testing.T) {
	ctx := context.Background()

	t.Run("pause blocks execute until a quorum unpauses", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		require.NoError(t, tw.w.Pause(testGuardian))

		_, err := tw.w.Execute(ctx, testEntryPoint, testTarget, nil, nil)
		assert.ErrorIs(t, err, ErrContractPaused)

		tw.selfCall(t, "unpause")
		_, err = tw.w.Execute(ctx, testEntryPoint, testTarget, nil, nil)
		require.NoError(t, err)
	})

	t.Run("paused batch with any external target is blocked", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		require.NoError(t, tw.w.Pause(testOwner))

		unpauseData, err := PackAdminCall("unpause")
		require.NoError(t, err)
		_, err = tw.w.ExecuteBatch(ctx, testEntryPoint,
			[]common.Address{testWalletAddr, testTarget},
			[]*big.Int{nil, nil},
			[][]byte{unpauseData, nil},
		)
		assert.ErrorIs(t, err, ErrContractPaused)
		assert.True(t, tw.w.Paused())
	})

	t.Run("double pause fails", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		require.NoError(t, tw.w.Pause(testOwner))
		assert.ErrorIs(t, tw.w.Pause(testOwner), ErrContractPaused)
	})

	t.Run("unpause of a running wallet fails", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		assert.ErrorIs(t, tw.trySelfCall("unpause"), ErrNotPaused)
	})

	t.Run("only owner or guardian may pause", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		assert.ErrorIs(t, tw.w.Pause(tw.signers[0]), ErrOnlyOwner)
	})
}

func TestAdminSelfCalls(t *testing.T) {
	ctx := context.Background()

	t.Run("transferOwnership via quorum", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "transferOwnership", testNewOwner)
		assert.Equal(t, testNewOwner, tw.w.Owner())
	})

	t.Run("transferOwnership to the zero address is rejected", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		assert.ErrorIs(t, tw.trySelfCall("transferOwnership", common.Address{}), ErrInvalidOwner)
		assert.Equal(t, testOwner, tw.w.Owner())
	})

	t.Run("setGuardian via quorum", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "setGuardian", testNewOwner)
		assert.Equal(t, testNewOwner, tw.w.Guardian())
	})

	t.Run("calldata with an unknown selector faults", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		_, err := tw.w.Execute(ctx, testEntryPoint, testWalletAddr, nil, []byte{0xde, 0xad, 0xbe, 0xef})
		assert.ErrorIs(t, err, ErrUnknownAdminCall)
	})

	t.Run("truncated calldata faults", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		_, err := tw.w.Execute(ctx, testEntryPoint, testWalletAddr, nil, []byte{0x01})
		assert.ErrorIs(t, err, ErrUnknownAdminCall)
	})

	t.Run("self-call flag is cleared after dispatch", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "setGuardian", testNewOwner)
		assert.ErrorIs(t, tw.w.unpause(), ErrOnlySelf)
	})
}

func TestUpgradeAndMigrate(t *testing.T) {
	impl := common.HexToAddress("0x9000000000000000000000000000000000000009")

	t.Run("authorizeUpgrade records the pending implementation", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "authorizeUpgrade", impl)
		assert.Equal(t, impl, tw.w.PendingImplementation())
	})

	t.Run("authorizeUpgrade rejects the zero address", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		assert.ErrorIs(t, tw.trySelfCall("authorizeUpgrade", common.Address{}), ErrInvalidImplementation)
	})

	t.Run("authorizeUpgrade requires quorum", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		assert.ErrorIs(t, tw.w.authorizeUpgrade(impl), ErrOnlySelf)
	})

	t.Run("migrate advances the version and clears the pending implementation", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "authorizeUpgrade", impl)

		tw.selfCall(t, "migrate", uint64(1), uint64(2))
		assert.Equal(t, uint64(2), tw.w.Version())
		assert.Equal(t, common.Address{}, tw.w.PendingImplementation())
	})

	t.Run("each version transition runs at most once", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		tw.selfCall(t, "migrate", uint64(1), uint64(2))
		assert.ErrorIs(t, tw.trySelfCall("migrate", uint64(1), uint64(2)), ErrInvalidVersion)
	})

	t.Run("migrate rejects stale or backwards transitions", func(t *testing.T) {
		tw := newTestWallet(t, 3, 2)
		assert.ErrorIs(t, tw.trySelfCall("migrate", uint64(2), uint64(3)), ErrInvalidVersion)
		assert.ErrorIs(t, tw.trySelfCall("migrate", uint64(1), uint64(1)), ErrInvalidVersion)
		assert.ErrorIs(t, tw.trySelfCall("migrate", uint64(1), uint64(0)), ErrInvalidVersion)
		assert.Equal(t, uint64(1), tw.w.Version())
	})
}
