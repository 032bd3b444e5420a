package storage

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"github.com/quorum-wallet/quorum-wallet/internal/engine"
	"github.com/quorum-wallet/quorum-wallet/internal/logger"
)

// StateStore bundles the wallet and audit repositories behind transactional
// load-mutate-save semantics. Every mutation holds the wallet row lock from
// load to commit, so concurrent operations on one wallet serialize at the
// database and the engine itself never sees interleaving.
type StateStore struct {
	store   *Store
	wallets *WalletRepository
	audits  *AuditRepository
}

// NewStateStore creates a new StateStore
func NewStateStore(store *Store) *StateStore {
	return &StateStore{
		store:   store,
		wallets: NewWalletRepository(store),
		audits:  NewAuditRepository(store),
	}
}

// CreateWallet persists a freshly initialized wallet and its creation audit
// row atomically.
func (s *StateStore) CreateWallet(ctx context.Context, address common.Address, st engine.State, audit *AuditLog) error {
	return s.store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.wallets.Create(ctx, tx, address, st); err != nil {
			return err
		}
		if audit != nil {
			return s.audits.Create(ctx, tx, audit)
		}
		return nil
	})
}

// GetWallet loads wallet state without locking.
func (s *StateStore) GetWallet(ctx context.Context, address common.Address) (*engine.State, error) {
	return s.wallets.Get(ctx, address)
}

// ListWallets returns all known wallet addresses.
func (s *StateStore) ListWallets(ctx context.Context) ([]common.Address, error) {
	return s.wallets.List(ctx)
}

// Mutate loads the wallet state under its row lock, applies fn, and saves
// the result together with the audit row. When fn fails the transaction
// rolls back and the audit row is written on its own, so failed operations
// still leave a trace.
func (s *StateStore) Mutate(ctx context.Context, address common.Address, audit *AuditLog, fn func(st *engine.State) error) error {
	err := s.store.WithTx(ctx, func(tx pgx.Tx) error {
		st, err := s.wallets.GetForUpdate(ctx, tx, address)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		if err := s.wallets.Save(ctx, tx, address, *st); err != nil {
			return err
		}
		if audit != nil {
			return s.audits.Create(ctx, tx, audit)
		}
		return nil
	})

	if err != nil && audit != nil {
		msg := err.Error()
		audit.Result = AuditResultFault
		audit.ErrorMessage = &msg
		if auditErr := s.audits.Create(ctx, s.store.pool, audit); auditErr != nil {
			logger.Error(ctx, "failed to record audit row for failed operation",
				"wallet", address.Hex(), "error", auditErr)
		}
	}
	return err
}

// RecordAudit writes a standalone audit row outside any transaction.
func (s *StateStore) RecordAudit(ctx context.Context, audit *AuditLog) error {
	return s.audits.Create(ctx, s.store.pool, audit)
}

// QueryAudits returns audit rows matching opts, newest first.
func (s *StateStore) QueryAudits(ctx context.Context, opts QueryOptions) ([]*AuditLog, error) {
	return s.audits.Query(ctx, opts)
}
