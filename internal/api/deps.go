package api

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorum-wallet/quorum-wallet/internal/app"
	"github.com/quorum-wallet/quorum-wallet/internal/engine"
	"github.com/quorum-wallet/quorum-wallet/internal/storage"
)

// WalletService is the subset of app.WalletService used by the API layer.
// It is an interface to allow handler-level unit tests without a database.
type WalletService interface {
	CreateWallet(ctx context.Context, req *app.CreateWalletRequest) (*app.CreateWalletResponse, error)
	GetWallet(ctx context.Context, address common.Address) (*engine.State, error)
	ListWallets(ctx context.Context) ([]common.Address, error)

	Validate(ctx context.Context, address, caller common.Address, opHash common.Hash, missingFunds *big.Int, bundle []byte) (engine.ValidationResult, error)
	Execute(ctx context.Context, address, caller, target common.Address, value *big.Int, data []byte) ([]byte, error)
	ExecuteBatch(ctx context.Context, address, caller common.Address, targets []common.Address, values []*big.Int, datas [][]byte) ([][]byte, error)

	Pause(ctx context.Context, address, caller common.Address) error
	InitiateRecovery(ctx context.Context, address, caller, newOwner common.Address) error
	ExecuteRecovery(ctx context.Context, address, caller common.Address) error
	CancelRecovery(ctx context.Context, address, caller common.Address) error

	GetSigner(ctx context.Context, address common.Address, index uint8) (common.Address, error)
	GetRemainingLimit(ctx context.Context, address common.Address) (*big.Int, error)
	GetRecoveryRequest(ctx context.Context, address common.Address) (*engine.RecoveryRequest, error)
	GetAuditLog(ctx context.Context, address common.Address, limit, offset int) ([]*storage.AuditLog, error)
}

var _ WalletService = (*app.WalletService)(nil)
