// Package relayer submits wallet calls on-chain. It implements
// engine.CallExecutor by signing EIP-1559 transactions with the relayer key
// and broadcasting them through an Ethereum RPC endpoint.
package relayer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/quorum-wallet/quorum-wallet/internal/engine"
	"github.com/quorum-wallet/quorum-wallet/internal/logger"
)

// Relayer signs and broadcasts wallet calls.
type Relayer struct {
	client  *ethclient.Client
	chainID *big.Int
	key     *ecdsa.PrivateKey
	address common.Address
}

// New connects to rpcURL, auto-detects the chain ID and binds the signing
// key.
func New(rpcURL string, key *ecdsa.PrivateKey) (*Relayer, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL is required")
	}
	if key == nil {
		return nil, fmt.Errorf("relayer key is required")
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &Relayer{
		client:  client,
		chainID: chainID,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the relayer's signing address.
func (r *Relayer) Address() common.Address {
	return r.address
}

// ChainID returns the connected chain's ID.
func (r *Relayer) ChainID() *big.Int {
	return new(big.Int).Set(r.chainID)
}

// Call implements engine.CallExecutor: it wraps the requested call in a
// signed EIP-1559 transaction, broadcasts it and returns the transaction
// hash bytes. The from address is carried for auditability only; on-chain
// the wallet contract performs the call itself.
func (r *Relayer) Call(ctx context.Context, from, to common.Address, value *big.Int, data []byte) ([]byte, error) {
	nonce, err := r.client.PendingNonceAt(ctx, r.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	tipCap, err := r.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}
	feeCap, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gas, err := r.estimateGas(ctx, to, value, data)
	if err != nil {
		return nil, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   r.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(r.chainID), r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := r.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := signedTx.Hash()
	logger.ForWallet(ctx, from).Info("relayed call",
		"to", to.Hex(),
		"tx_hash", hash.Hex(),
	)
	return hash.Bytes(), nil
}

// GetBalance returns the balance of an address in wei
func (r *Relayer) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := r.client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *Relayer) estimateGas(ctx context.Context, to common.Address, value *big.Int, data []byte) (uint64, error) {
	gas, err := r.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  r.address,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}

	// 20% buffer
	return gas * 120 / 100, nil
}

// Close closes the RPC connection.
func (r *Relayer) Close() {
	r.client.Close()
}

var _ engine.CallExecutor = (*Relayer)(nil)
