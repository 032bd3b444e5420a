package engine

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/quorum-wallet/quorum-wallet/pkg/bundle"
)

var (
	testWalletAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testEntryPoint = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testOwner      = common.HexToAddress("0x3000000000000000000000000000000000000003")
	testGuardian   = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

// fakeClock is a settable Clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Set(t time.Time)         { c.now = t }

// recordedCall is one call that reached the fake executor.
type recordedCall struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// fakeExecutor records outbound calls and can be told to fail.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []recordedCall
	// failAt fails the call at this position (0-based); -1 never fails.
	failAt int
	err    error
	ret    []byte
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{failAt: -1}
}

func (e *fakeExecutor) Call(_ context.Context, from, to common.Address, value *big.Int, data []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := len(e.calls)
	v := new(big.Int)
	if value != nil {
		v.Set(value)
	}
	e.calls = append(e.calls, recordedCall{From: from, To: to, Value: v, Data: data})
	if e.failAt >= 0 && idx == e.failAt {
		return nil, e.err
	}
	return e.ret, nil
}

func (e *fakeExecutor) Calls() []recordedCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]recordedCall(nil), e.calls...)
}

// testWallet bundles a wallet with its collaborators and signer keys.
type testWallet struct {
	w       *Wallet
	clock   *fakeClock
	exec    *fakeExecutor
	keys    []*ecdsa.PrivateKey
	signers []common.Address
}

// newTestWallet initializes a wallet with n fresh signers and the given
// threshold, owned by testOwner with testGuardian as guardian.
func newTestWallet(t *testing.T, n, threshold int) *testWallet {
	t.Helper()

	keys := make([]*ecdsa.PrivateKey, n)
	signers := make([]common.Address, n)
	for i := 0; i < n; i++ {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = key
		signers[i] = crypto.PubkeyToAddress(key.PublicKey)
	}

	clock := newFakeClock()
	exec := newFakeExecutor()
	w := New(Config{
		Address:    testWalletAddr,
		EntryPoint: testEntryPoint,
		Clock:      clock,
		Executor:   exec,
	})
	require.NoError(t, w.Initialize(testOwner, signers, threshold))

	tw := &testWallet{w: w, clock: clock, exec: exec, keys: keys, signers: signers}
	tw.selfCall(t, "setGuardian", testGuardian)
	return tw
}

// selfCall routes an admin mutation through the governance path: an Execute
// targeting the wallet's own address.
func (tw *testWallet) selfCall(t *testing.T, method string, args ...interface{}) {
	t.Helper()
	require.NoError(t, tw.trySelfCall(method, args...))
}

func (tw *testWallet) trySelfCall(method string, args ...interface{}) error {
	data, err := PackAdminCall(method, args...)
	if err != nil {
		return err
	}
	_, err = tw.w.Execute(context.Background(), testEntryPoint, testWalletAddr, nil, data)
	return err
}

// signEntry produces a bundle entry: key signs the EIP-191 digest of opHash.
func signEntry(t *testing.T, key *ecdsa.PrivateKey, index uint8, opHash common.Hash) bundle.Entry {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash(opHash.Bytes()), key)
	require.NoError(t, err)
	return bundle.Entry{SignerIndex: index, Signature: sig}
}

// signedBundle encodes entries where keyAt[i] signs for slot idxAt[i].
func (tw *testWallet) signedBundle(t *testing.T, opHash common.Hash, slots ...uint8) []byte {
	t.Helper()
	var b bundle.Bundle
	for _, slot := range slots {
		b = append(b, signEntry(t, tw.keys[slot], slot, opHash))
	}
	raw, err := bundle.Encode(b)
	require.NoError(t, err)
	return raw
}

func opHash(seed byte) common.Hash {
	var h common.Hash
	for i := range h {
		h[i] = seed
	}
	return h
}
