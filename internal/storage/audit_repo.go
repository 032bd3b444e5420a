package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditRepository handles audit log operations
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// AuditLog is one persisted operation record.
type AuditLog struct {
	ID            int64
	WalletAddress string
	Actor         string
	Action        string
	Result        string
	ErrorMessage  *string
	RequestID     string
	CreatedAt     time.Time
}

// Audit action constants
const (
	AuditActionWalletCreated    = "wallet.created"
	AuditActionValidate         = "wallet.validate"
	AuditActionExecute          = "wallet.execute"
	AuditActionExecuteBatch     = "wallet.execute_batch"
	AuditActionPause            = "wallet.pause"
	AuditActionInitiateRecovery = "wallet.initiate_recovery"
	AuditActionExecuteRecovery  = "wallet.execute_recovery"
	AuditActionCancelRecovery   = "wallet.cancel_recovery"
)

// Audit result constants
const (
	AuditResultSuccess = "success"
	AuditResultFailed  = "failed"
	AuditResultFault   = "fault"
)

// Create inserts a new audit log entry using the provided transaction or
// connection, so the entry commits atomically with the state change it
// records.
func (r *AuditRepository) Create(ctx context.Context, db DBTX, log *AuditLog) error {
	query := `
		INSERT INTO audit_logs (wallet_address, actor, action, result, error_message, request_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := db.QueryRow(ctx, query,
		log.WalletAddress,
		log.Actor,
		log.Action,
		log.Result,
		log.ErrorMessage,
		log.RequestID,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// QueryOptions represents options for querying audit logs
type QueryOptions struct {
	WalletAddress *string
	Action        *string
	Result        *string
	Limit         int
	Offset        int
}

// Query retrieves audit logs with filtering and pagination
func (r *AuditRepository) Query(ctx context.Context, opts QueryOptions) ([]*AuditLog, error) {
	query := `
		SELECT id, wallet_address, actor, action, result, error_message, request_id, created_at
		FROM audit_logs
		WHERE 1=1
	`

	args := make([]interface{}, 0)
	argCount := 1

	if opts.WalletAddress != nil {
		query += fmt.Sprintf(" AND wallet_address = $%d", argCount)
		args = append(args, *opts.WalletAddress)
		argCount++
	}

	if opts.Action != nil {
		query += fmt.Sprintf(" AND action = $%d", argCount)
		args = append(args, *opts.Action)
		argCount++
	}

	if opts.Result != nil {
		query += fmt.Sprintf(" AND result = $%d", argCount)
		args = append(args, *opts.Result)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, opts.Limit)
		argCount++
	}

	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, opts.Offset)
	}

	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*AuditLog
	for rows.Next() {
		var log AuditLog
		err := rows.Scan(
			&log.ID,
			&log.WalletAddress,
			&log.Actor,
			&log.Action,
			&log.Result,
			&log.ErrorMessage,
			&log.RequestID,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
