package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallExecutor performs the wallet's outbound calls. The engine decides
// whether a call is allowed; the executor decides how it reaches the chain.
// Implementations must treat a returned error as "the call did not happen".
type CallExecutor interface {
	Call(ctx context.Context, from, to common.Address, value *big.Int, data []byte) ([]byte, error)
}
