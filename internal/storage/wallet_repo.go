package storage

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"github.com/quorum-wallet/quorum-wallet/internal/engine"
)

// WalletRepository persists engine wallet state. One row per wallet plus one
// row per occupied signer slot; mutations load the wallet row FOR UPDATE so
// the engine sees a serialized view per wallet.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository creates a new WalletRepository
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// ErrWalletNotFound is returned when no wallet row exists for an address.
var ErrWalletNotFound = fmt.Errorf("wallet not found")

// Create inserts a freshly initialized wallet.
func (r *WalletRepository) Create(ctx context.Context, db DBTX, address common.Address, st engine.State) error {
	query := `
		INSERT INTO wallets (
			address, initialized, owner, guardian, threshold, paused,
			daily_limit, spent_today, last_day_bucket,
			recovery_new_owner, recovery_execute_after, recovery_executed,
			pending_implementation, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	recNewOwner, recExecuteAfter, recExecuted := recoveryColumns(st.Recovery)
	_, err := db.Exec(ctx, query,
		address.Hex(),
		st.Initialized,
		st.Owner.Hex(),
		st.Guardian.Hex(),
		st.Threshold,
		st.Paused,
		bigString(st.DailyLimit),
		bigString(st.SpentToday),
		st.LastDayBucket,
		recNewOwner,
		recExecuteAfter,
		recExecuted,
		st.PendingImplementation.Hex(),
		st.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return r.saveSigners(ctx, db, address, st.Signers)
}

// Get retrieves wallet state without locking, for read-only queries.
func (r *WalletRepository) Get(ctx context.Context, address common.Address) (*engine.State, error) {
	return r.get(ctx, r.store.pool, address, false)
}

// GetForUpdate retrieves wallet state inside tx holding the row lock until
// the transaction ends.
func (r *WalletRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, address common.Address) (*engine.State, error) {
	return r.get(ctx, tx, address, true)
}

func (r *WalletRepository) get(ctx context.Context, db DBTX, address common.Address, forUpdate bool) (*engine.State, error) {
	query := `
		SELECT initialized, owner, guardian, threshold, paused,
		       daily_limit, spent_today, last_day_bucket,
		       recovery_new_owner, recovery_execute_after, recovery_executed,
		       pending_implementation, version
		FROM wallets
		WHERE address = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		st              engine.State
		owner           string
		guardian        string
		dailyLimit      string
		spentToday      string
		recNewOwner     *string
		recExecuteAfter *time.Time
		recExecuted     bool
		pendingImpl     string
	)
	err := db.QueryRow(ctx, query, address.Hex()).Scan(
		&st.Initialized,
		&owner,
		&guardian,
		&st.Threshold,
		&st.Paused,
		&dailyLimit,
		&spentToday,
		&st.LastDayBucket,
		&recNewOwner,
		&recExecuteAfter,
		&recExecuted,
		&pendingImpl,
		&st.Version,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	st.Owner = common.HexToAddress(owner)
	st.Guardian = common.HexToAddress(guardian)
	st.PendingImplementation = common.HexToAddress(pendingImpl)

	if st.DailyLimit, err = parseBig(dailyLimit); err != nil {
		return nil, fmt.Errorf("corrupt daily_limit for %s: %w", address.Hex(), err)
	}
	if st.SpentToday, err = parseBig(spentToday); err != nil {
		return nil, fmt.Errorf("corrupt spent_today for %s: %w", address.Hex(), err)
	}

	if recNewOwner != nil && recExecuteAfter != nil {
		st.Recovery = &engine.RecoveryRequest{
			NewOwner:     common.HexToAddress(*recNewOwner),
			ExecuteAfter: *recExecuteAfter,
			Executed:     recExecuted,
		}
	}

	st.Signers, err = r.getSigners(ctx, db, address)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Save overwrites the wallet row and its signer slots with st. The caller
// holds the row lock from GetForUpdate.
func (r *WalletRepository) Save(ctx context.Context, db DBTX, address common.Address, st engine.State) error {
	query := `
		UPDATE wallets SET
			initialized = $2, owner = $3, guardian = $4, threshold = $5,
			paused = $6, daily_limit = $7, spent_today = $8, last_day_bucket = $9,
			recovery_new_owner = $10, recovery_execute_after = $11, recovery_executed = $12,
			pending_implementation = $13, version = $14, updated_at = now()
		WHERE address = $1
	`

	recNewOwner, recExecuteAfter, recExecuted := recoveryColumns(st.Recovery)
	tag, err := db.Exec(ctx, query,
		address.Hex(),
		st.Initialized,
		st.Owner.Hex(),
		st.Guardian.Hex(),
		st.Threshold,
		st.Paused,
		bigString(st.DailyLimit),
		bigString(st.SpentToday),
		st.LastDayBucket,
		recNewOwner,
		recExecuteAfter,
		recExecuted,
		st.PendingImplementation.Hex(),
		st.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWalletNotFound
	}

	if _, err := db.Exec(ctx, `DELETE FROM wallet_signers WHERE wallet_address = $1`, address.Hex()); err != nil {
		return fmt.Errorf("failed to clear signer slots: %w", err)
	}
	return r.saveSigners(ctx, db, address, st.Signers)
}

// List returns the addresses of all known wallets, newest first.
func (r *WalletRepository) List(ctx context.Context) ([]common.Address, error) {
	rows, err := r.store.pool.Query(ctx, `SELECT address FROM wallets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var addrs []common.Address
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan wallet address: %w", err)
		}
		addrs = append(addrs, common.HexToAddress(addr))
	}
	return addrs, rows.Err()
}

func (r *WalletRepository) getSigners(ctx context.Context, db DBTX, address common.Address) (map[uint8]common.Address, error) {
	rows, err := db.Query(ctx,
		`SELECT slot, signer FROM wallet_signers WHERE wallet_address = $1`, address.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to get signer slots: %w", err)
	}
	defer rows.Close()

	signers := make(map[uint8]common.Address)
	for rows.Next() {
		var (
			slot   int16
			signer string
		)
		if err := rows.Scan(&slot, &signer); err != nil {
			return nil, fmt.Errorf("failed to scan signer slot: %w", err)
		}
		signers[uint8(slot)] = common.HexToAddress(signer)
	}
	return signers, rows.Err()
}

func (r *WalletRepository) saveSigners(ctx context.Context, db DBTX, address common.Address, signers map[uint8]common.Address) error {
	for slot, signer := range signers {
		_, err := db.Exec(ctx,
			`INSERT INTO wallet_signers (wallet_address, slot, signer) VALUES ($1, $2, $3)`,
			address.Hex(), int16(slot), signer.Hex())
		if err != nil {
			return fmt.Errorf("failed to save signer slot %d: %w", slot, err)
		}
	}
	return nil
}

func recoveryColumns(rec *engine.RecoveryRequest) (*string, *time.Time, bool) {
	if rec == nil {
		return nil, nil, false
	}
	newOwner := rec.NewOwner.Hex()
	executeAfter := rec.ExecuteAfter
	return &newOwner, &executeAfter, rec.Executed
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", s)
	}
	return v, nil
}
