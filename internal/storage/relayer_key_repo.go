package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RelayerKey is the stored form of the key the relayer signs with: the
// secp256k1 secret split into two Shamir shares, each encrypted by the
// configured key vault provider before it reaches the database.
type RelayerKey struct {
	ID        uuid.UUID
	Address   string
	Provider  string
	ShareAEnc []byte
	ShareBEnc []byte
	CreatedAt time.Time
}

// RelayerKeyRepository handles relayer key data operations
type RelayerKeyRepository struct {
	store *Store
}

// NewRelayerKeyRepository creates a new RelayerKeyRepository
func NewRelayerKeyRepository(store *Store) *RelayerKeyRepository {
	return &RelayerKeyRepository{store: store}
}

// Create stores a new relayer key record.
func (r *RelayerKeyRepository) Create(ctx context.Context, key *RelayerKey) error {
	query := `
		INSERT INTO relayer_keys (id, address, provider, share_a_encrypted, share_b_encrypted)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}

	err := r.store.pool.QueryRow(ctx, query,
		key.ID,
		key.Address,
		key.Provider,
		key.ShareAEnc,
		key.ShareBEnc,
	).Scan(&key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create relayer key: %w", err)
	}

	return nil
}

// GetLatest returns the most recently created relayer key, or nil when none
// has been bootstrapped yet.
func (r *RelayerKeyRepository) GetLatest(ctx context.Context) (*RelayerKey, error) {
	query := `
		SELECT id, address, provider, share_a_encrypted, share_b_encrypted, created_at
		FROM relayer_keys
		ORDER BY created_at DESC
		LIMIT 1
	`

	var key RelayerKey
	err := r.store.pool.QueryRow(ctx, query).Scan(
		&key.ID,
		&key.Address,
		&key.Provider,
		&key.ShareAEnc,
		&key.ShareBEnc,
		&key.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relayer key: %w", err)
	}

	return &key, nil
}
