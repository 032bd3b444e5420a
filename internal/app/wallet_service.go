// Package app orchestrates wallet operations: it loads persisted wallet
// state, hydrates the authorization engine, runs exactly one operation and
// persists the outcome together with an audit record.
package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/quorum-wallet/quorum-wallet/internal/engine"
	"github.com/quorum-wallet/quorum-wallet/internal/logger"
	"github.com/quorum-wallet/quorum-wallet/internal/metrics"
	"github.com/quorum-wallet/quorum-wallet/internal/storage"
	"github.com/quorum-wallet/quorum-wallet/pkg/factory"
)

// StateStore is the persistence boundary the service drives. The Postgres
// implementation serializes mutations per wallet with a row lock.
type StateStore interface {
	CreateWallet(ctx context.Context, address common.Address, st engine.State, audit *storage.AuditLog) error
	GetWallet(ctx context.Context, address common.Address) (*engine.State, error)
	ListWallets(ctx context.Context) ([]common.Address, error)
	Mutate(ctx context.Context, address common.Address, audit *storage.AuditLog, fn func(st *engine.State) error) error
	RecordAudit(ctx context.Context, audit *storage.AuditLog) error
	QueryAudits(ctx context.Context, opts storage.QueryOptions) ([]*storage.AuditLog, error)
}

// WalletService hosts the authorization engine for all wallets.
type WalletService struct {
	states     StateStore
	entryPoint common.Address
	executor   engine.CallExecutor
	clock      engine.Clock
	metrics    *metrics.Metrics

	// deployer and initCode feed counterfactual address derivation for
	// new wallets; when deployer is zero, requests must carry an
	// explicit address.
	deployer common.Address
	initCode []byte
}

// Config wires a WalletService.
type Config struct {
	States     StateStore
	EntryPoint common.Address
	Executor   engine.CallExecutor
	Clock      engine.Clock
	Metrics    *metrics.Metrics
	Deployer   common.Address
	InitCode   []byte
}

// NewWalletService creates a new wallet service
func NewWalletService(cfg Config) *WalletService {
	clock := cfg.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &WalletService{
		states:     cfg.States,
		entryPoint: cfg.EntryPoint,
		executor:   cfg.Executor,
		clock:      clock,
		metrics:    cfg.Metrics,
		deployer:   cfg.Deployer,
		initCode:   cfg.InitCode,
	}
}

// CreateWalletRequest represents a request to create a wallet
type CreateWalletRequest struct {
	// Address is optional; when zero the service derives a
	// counterfactual address from the configured deployer.
	Address   common.Address
	Owner     common.Address
	Guardian  common.Address
	Signers   []common.Address
	Threshold int
}

// CreateWalletResponse includes the created wallet's address and state.
type CreateWalletResponse struct {
	Address common.Address
	State   engine.State
}

// CreateWallet initializes and persists a new wallet.
func (s *WalletService) CreateWallet(ctx context.Context, req *CreateWalletRequest) (*CreateWalletResponse, error) {
	address := req.Address
	if address == (common.Address{}) {
		if s.deployer == (common.Address{}) {
			return nil, fmt.Errorf("no wallet address given and no deployer configured")
		}
		address = factory.DeriveAddress(s.deployer, factory.SaltFor([]byte(uuid.NewString())), s.initCode)
	}

	w := engine.New(engine.Config{
		Address:    address,
		EntryPoint: s.entryPoint,
		Clock:      s.clock,
	})
	if err := w.Initialize(req.Owner, req.Signers, req.Threshold); err != nil {
		return nil, err
	}

	st := w.State()
	// The guardian is provisioned at creation, like a deployment
	// initializer argument; later changes need a quorum self-call.
	st.Guardian = req.Guardian

	audit := s.newAudit(ctx, address, req.Owner.Hex(), storage.AuditActionWalletCreated)
	if err := s.states.CreateWallet(ctx, address, st, audit); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.WalletsCreated.Inc()
	}
	logger.ForWallet(ctx, address).Info("wallet created",
		"owner", req.Owner.Hex(),
		"signers", len(req.Signers),
		"threshold", req.Threshold,
	)
	return &CreateWalletResponse{Address: address, State: st}, nil
}

// GetWallet returns the persisted state of one wallet.
func (s *WalletService) GetWallet(ctx context.Context, address common.Address) (*engine.State, error) {
	return s.states.GetWallet(ctx, address)
}

// ListWallets returns all known wallet addresses.
func (s *WalletService) ListWallets(ctx context.Context) ([]common.Address, error) {
	return s.states.ListWallets(ctx)
}

// Validate runs threshold-signature validation for an operation hash. It
// never mutates wallet state; the reimbursement transfer, if any, goes
// straight to the executor.
func (s *WalletService) Validate(ctx context.Context, address, caller common.Address, opHash common.Hash, missingFunds *big.Int, bundle []byte) (engine.ValidationResult, error) {
	start := time.Now()
	st, err := s.states.GetWallet(ctx, address)
	if err != nil {
		return engine.ValidationFailed, err
	}

	w := s.hydrate(address, *st)
	result, err := w.ValidateOp(ctx, caller, opHash, missingFunds, bundle)

	audit := s.newAudit(ctx, address, caller.Hex(), storage.AuditActionValidate)
	if err != nil {
		msg := err.Error()
		audit.Result = storage.AuditResultFault
		audit.ErrorMessage = &msg
	} else {
		audit.Result = result.String()
	}
	if auditErr := s.states.RecordAudit(ctx, audit); auditErr != nil {
		logger.Error(ctx, "failed to record validation audit", "error", auditErr)
	}

	if s.metrics != nil {
		if err == nil {
			s.metrics.ObserveValidation(result.String())
		} else {
			s.metrics.ObserveFault(MapError(err).Code)
		}
		s.metrics.ObserveDuration(storage.AuditActionValidate, time.Since(start))
	}
	return result, err
}

// Execute performs one call from the wallet.
func (s *WalletService) Execute(ctx context.Context, address, caller, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	var ret []byte
	err := s.mutate(ctx, address, caller, storage.AuditActionExecute, func(w *engine.Wallet) error {
		var err error
		ret, err = w.Execute(ctx, caller, target, value, data)
		return err
	})
	if s.metrics != nil {
		s.metrics.ObserveExecution("execute", outcome(err))
	}
	return ret, err
}

// ExecuteBatch performs a sequence of calls atomically.
func (s *WalletService) ExecuteBatch(ctx context.Context, address, caller common.Address, targets []common.Address, values []*big.Int, datas [][]byte) ([][]byte, error) {
	var rets [][]byte
	err := s.mutate(ctx, address, caller, storage.AuditActionExecuteBatch, func(w *engine.Wallet) error {
		var err error
		rets, err = w.ExecuteBatch(ctx, caller, targets, values, datas)
		return err
	})
	if s.metrics != nil {
		s.metrics.ObserveExecution("execute_batch", outcome(err))
	}
	return rets, err
}

// Pause suspends value-moving execution on the wallet.
func (s *WalletService) Pause(ctx context.Context, address, caller common.Address) error {
	return s.mutate(ctx, address, caller, storage.AuditActionPause, func(w *engine.Wallet) error {
		return w.Pause(caller)
	})
}

// InitiateRecovery starts the guardian's timelocked ownership transfer.
func (s *WalletService) InitiateRecovery(ctx context.Context, address, caller, newOwner common.Address) error {
	err := s.mutate(ctx, address, caller, storage.AuditActionInitiateRecovery, func(w *engine.Wallet) error {
		return w.InitiateRecovery(caller, newOwner)
	})
	if err == nil && s.metrics != nil {
		s.metrics.ObserveRecovery("initiated")
	}
	return err
}

// ExecuteRecovery completes a matured recovery.
func (s *WalletService) ExecuteRecovery(ctx context.Context, address, caller common.Address) error {
	err := s.mutate(ctx, address, caller, storage.AuditActionExecuteRecovery, func(w *engine.Wallet) error {
		return w.ExecuteRecovery(caller)
	})
	if err == nil && s.metrics != nil {
		s.metrics.ObserveRecovery("executed")
	}
	return err
}

// CancelRecovery clears a pending recovery request.
func (s *WalletService) CancelRecovery(ctx context.Context, address, caller common.Address) error {
	err := s.mutate(ctx, address, caller, storage.AuditActionCancelRecovery, func(w *engine.Wallet) error {
		return w.CancelRecovery(caller)
	})
	if err == nil && s.metrics != nil {
		s.metrics.ObserveRecovery("cancelled")
	}
	return err
}

// GetSigner returns the signer at one slot.
func (s *WalletService) GetSigner(ctx context.Context, address common.Address, index uint8) (common.Address, error) {
	st, err := s.states.GetWallet(ctx, address)
	if err != nil {
		return common.Address{}, err
	}
	return s.hydrate(address, *st).GetSigner(index), nil
}

// GetRemainingLimit returns how much value may still move today, or nil for
// an unlimited wallet.
func (s *WalletService) GetRemainingLimit(ctx context.Context, address common.Address) (*big.Int, error) {
	st, err := s.states.GetWallet(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.hydrate(address, *st).RemainingDailyLimit(), nil
}

// GetRecoveryRequest returns the pending or executed recovery request, or
// nil when none exists.
func (s *WalletService) GetRecoveryRequest(ctx context.Context, address common.Address) (*engine.RecoveryRequest, error) {
	st, err := s.states.GetWallet(ctx, address)
	if err != nil {
		return nil, err
	}
	return s.hydrate(address, *st).GetRecoveryRequest(), nil
}

// GetAuditLog returns the wallet's most recent audit entries.
func (s *WalletService) GetAuditLog(ctx context.Context, address common.Address, limit, offset int) ([]*storage.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	addr := address.Hex()
	return s.states.QueryAudits(ctx, storage.QueryOptions{
		WalletAddress: &addr,
		Limit:         limit,
		Offset:        offset,
	})
}

// mutate runs one engine operation under the wallet's persistence lock.
func (s *WalletService) mutate(ctx context.Context, address, caller common.Address, action string, fn func(w *engine.Wallet) error) error {
	start := time.Now()
	audit := s.newAudit(ctx, address, caller.Hex(), action)
	audit.Result = storage.AuditResultSuccess

	err := s.states.Mutate(ctx, address, audit, func(st *engine.State) error {
		w := s.hydrate(address, *st)
		if err := fn(w); err != nil {
			return err
		}
		*st = w.State()
		return nil
	})
	if err != nil {
		logger.ForWallet(ctx, address).Warn("wallet operation failed",
			"action", action, "error", err)
		if s.metrics != nil {
			s.metrics.ObserveFault(MapError(err).Code)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveDuration(action, time.Since(start))
	}
	return err
}

func (s *WalletService) hydrate(address common.Address, st engine.State) *engine.Wallet {
	return engine.FromState(engine.Config{
		Address:    address,
		EntryPoint: s.entryPoint,
		Clock:      s.clock,
		Executor:   s.executor,
	}, st)
}

func (s *WalletService) newAudit(ctx context.Context, address common.Address, actor, action string) *storage.AuditLog {
	return &storage.AuditLog{
		WalletAddress: address.Hex(),
		Actor:         actor,
		Action:        action,
		Result:        storage.AuditResultSuccess,
		RequestID:     logger.GetRequestID(ctx),
	}
}

func outcome(err error) string {
	if err != nil {
		return "fault"
	}
	return "success"
}
