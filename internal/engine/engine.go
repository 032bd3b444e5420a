// Package engine implements the wallet's authorization state machine:
// threshold-signature validation, role-gated execution, pause control,
// guardian recovery, and daily spending limits. The engine is strictly
// single-threaded; callers serialize operations per wallet instance.
package engine

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RecoveryPeriod is the timelock between initiating and executing a
// guardian recovery.
const RecoveryPeriod = 48 * time.Hour

// maxSigners is the number of addressable signer slots (index fits a uint8).
const maxSigners = 256

// Clock supplies the current time. The engine never sleeps or schedules;
// it only compares against Now.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RecoveryRequest is a pending or executed guardian ownership transfer.
type RecoveryRequest struct {
	NewOwner     common.Address
	ExecuteAfter time.Time
	Executed     bool
}

// Config wires a wallet instance to its environment.
type Config struct {
	// Address is the wallet's own identity; calls targeting it are
	// dispatched internally as governance self-calls.
	Address common.Address

	// EntryPoint is the only external dispatcher allowed to submit
	// validation and execution requests.
	EntryPoint common.Address

	Clock    Clock
	Executor CallExecutor
}

// State is the persistable portion of a wallet. The storage layer round-trips
// it; the engine never retains references into a State it was loaded from.
type State struct {
	Initialized bool
	Owner       common.Address
	Guardian    common.Address

	Signers   map[uint8]common.Address
	Threshold int

	Paused bool

	DailyLimit    *big.Int
	SpentToday    *big.Int
	LastDayBucket int64

	Recovery              *RecoveryRequest
	PendingImplementation common.Address
	Version               uint64
}

// Wallet is a single wallet instance. It is not safe for concurrent use;
// the hosting service holds a per-wallet lock around every operation.
type Wallet struct {
	cfg Config

	initialized bool
	owner       common.Address
	guardian    common.Address

	signers     [maxSigners]common.Address
	signerCount int
	threshold   int

	paused bool

	dailyLimit    *big.Int
	spentToday    *big.Int
	lastDayBucket int64

	recovery    *RecoveryRequest
	pendingImpl common.Address
	version     uint64

	// selfCall marks that the current operation was reached through the
	// wallet calling itself, i.e. it already passed threshold validation.
	selfCall bool
}

// New returns an uninitialized wallet. Initialize must be called before any
// other operation.
func New(cfg Config) *Wallet {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &Wallet{
		cfg:        cfg,
		dailyLimit: new(big.Int),
		spentToday: new(big.Int),
	}
}

// Initialize sets the initial owner, signer set and threshold. It can run at
// most once per wallet lifetime.
func (w *Wallet) Initialize(owner common.Address, signers []common.Address, threshold int) error {
	if w.initialized {
		return ErrAlreadyInitialized
	}
	if threshold == 0 || threshold > len(signers) {
		return ErrInvalidThreshold
	}
	if len(signers) > maxSigners {
		return ErrInvalidThreshold
	}

	// Stage into locals so a rejected call leaves the wallet untouched.
	var table [maxSigners]common.Address
	count := 0
	for i, signer := range signers {
		table[i] = signer
		if signer != (common.Address{}) {
			count++
		}
	}
	if threshold > count {
		return ErrInvalidThreshold
	}

	w.signers = table
	w.signerCount = count
	w.owner = owner
	w.threshold = threshold
	w.initialized = true
	w.version = 1
	return nil
}

// FromState restores a wallet from persisted state.
func FromState(cfg Config, st State) *Wallet {
	w := New(cfg)
	w.initialized = st.Initialized
	w.owner = st.Owner
	w.guardian = st.Guardian
	for idx, signer := range st.Signers {
		if signer == (common.Address{}) {
			continue
		}
		w.signers[idx] = signer
		w.signerCount++
	}
	w.threshold = st.Threshold
	w.paused = st.Paused
	if st.DailyLimit != nil {
		w.dailyLimit = new(big.Int).Set(st.DailyLimit)
	}
	if st.SpentToday != nil {
		w.spentToday = new(big.Int).Set(st.SpentToday)
	}
	w.lastDayBucket = st.LastDayBucket
	if st.Recovery != nil {
		r := *st.Recovery
		w.recovery = &r
	}
	w.pendingImpl = st.PendingImplementation
	w.version = st.Version
	return w
}

// State snapshots the wallet for persistence.
func (w *Wallet) State() State {
	st := State{
		Initialized:           w.initialized,
		Owner:                 w.owner,
		Guardian:              w.guardian,
		Signers:               make(map[uint8]common.Address, w.signerCount),
		Threshold:             w.threshold,
		Paused:                w.paused,
		DailyLimit:            new(big.Int).Set(w.dailyLimit),
		SpentToday:            new(big.Int).Set(w.spentToday),
		LastDayBucket:         w.lastDayBucket,
		PendingImplementation: w.pendingImpl,
		Version:               w.version,
	}
	for i := range w.signers {
		if w.signers[i] != (common.Address{}) {
			st.Signers[uint8(i)] = w.signers[i]
		}
	}
	if w.recovery != nil {
		r := *w.recovery
		st.Recovery = &r
	}
	return st
}

// Address returns the wallet's own address.
func (w *Wallet) Address() common.Address { return w.cfg.Address }

// Owner returns the current owner.
func (w *Wallet) Owner() common.Address { return w.owner }

// Guardian returns the current guardian, which may be the zero address.
func (w *Wallet) Guardian() common.Address { return w.guardian }

// Version returns the wallet's migration version.
func (w *Wallet) Version() uint64 { return w.version }

// snapshot captures all mutable state so a failed operation can revert
// atomically. The signer array copies by value.
type snapshot struct {
	initialized   bool
	owner         common.Address
	guardian      common.Address
	signers       [maxSigners]common.Address
	signerCount   int
	threshold     int
	paused        bool
	dailyLimit    *big.Int
	spentToday    *big.Int
	lastDayBucket int64
	recovery      *RecoveryRequest
	pendingImpl   common.Address
	version       uint64
}

func (w *Wallet) snapshot() snapshot {
	s := snapshot{
		initialized:   w.initialized,
		owner:         w.owner,
		guardian:      w.guardian,
		signers:       w.signers,
		signerCount:   w.signerCount,
		threshold:     w.threshold,
		paused:        w.paused,
		dailyLimit:    new(big.Int).Set(w.dailyLimit),
		spentToday:    new(big.Int).Set(w.spentToday),
		lastDayBucket: w.lastDayBucket,
		pendingImpl:   w.pendingImpl,
		version:       w.version,
	}
	if w.recovery != nil {
		r := *w.recovery
		s.recovery = &r
	}
	return s
}

func (w *Wallet) restore(s snapshot) {
	w.initialized = s.initialized
	w.owner = s.owner
	w.guardian = s.guardian
	w.signers = s.signers
	w.signerCount = s.signerCount
	w.threshold = s.threshold
	w.paused = s.paused
	w.dailyLimit = s.dailyLimit
	w.spentToday = s.spentToday
	w.lastDayBucket = s.lastDayBucket
	w.recovery = s.recovery
	w.pendingImpl = s.pendingImpl
	w.version = s.version
}
