package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Execution entry points. Both are all-or-nothing: the wallet state either
// commits in full or reverts to what it was before the call.

// Execute performs one call from the wallet. Entry point or self-call only;
// blocked while paused; charged against the daily limit. A call targeting
// the wallet itself is dispatched as a governance self-call instead of going
// to the executor.
func (w *Wallet) Execute(ctx context.Context, caller, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if !w.initialized {
		return nil, ErrNotInitialized
	}
	if err := w.requireEntryPointOrSelf(caller); err != nil {
		return nil, err
	}
	// Pausing blocks value-moving calls only; governance self-calls must
	// stay reachable or a paused wallet could never be unpaused.
	if w.paused && target != w.cfg.Address {
		return nil, ErrContractPaused
	}

	snap := w.snapshot()
	ret, err := w.executeCall(ctx, 0, caller, target, value, data)
	if err != nil {
		w.restore(snap)
		return nil, err
	}
	return ret, nil
}

// ExecuteBatch performs a sequence of calls. The spending limit is checked
// once against the summed value, so a batch cannot be split to sneak past
// the per-call check, and any sub-call failure reverts the whole batch.
func (w *Wallet) ExecuteBatch(ctx context.Context, caller common.Address, targets []common.Address, values []*big.Int, datas [][]byte) ([][]byte, error) {
	if !w.initialized {
		return nil, ErrNotInitialized
	}
	if err := w.requireEntryPointOrSelf(caller); err != nil {
		return nil, err
	}
	if len(targets) != len(values) || len(targets) != len(datas) {
		return nil, ErrLengthMismatch
	}
	if w.paused {
		for _, target := range targets {
			if target != w.cfg.Address {
				return nil, ErrContractPaused
			}
		}
	}

	snap := w.snapshot()

	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	if err := w.checkAndConsume(total); err != nil {
		w.restore(snap)
		return nil, err
	}

	results := make([][]byte, len(targets))
	for i := range targets {
		ret, err := w.performCall(ctx, i, caller, targets[i], values[i], datas[i])
		if err != nil {
			w.restore(snap)
			return nil, err
		}
		results[i] = ret
	}
	return results, nil
}

// executeCall charges the limiter for a single call, then performs it.
func (w *Wallet) executeCall(ctx context.Context, index int, caller, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if err := w.checkAndConsume(value); err != nil {
		return nil, err
	}
	return w.performCall(ctx, index, caller, target, value, data)
}

// performCall routes a single call: self-targets go through the admin
// dispatcher under the authorized-context flag, everything else goes to the
// executor.
func (w *Wallet) performCall(ctx context.Context, index int, caller, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if target == w.cfg.Address {
		prev := w.selfCall
		w.selfCall = true
		err := w.dispatchSelfCall(caller, data)
		w.selfCall = prev
		if err != nil {
			return nil, &CallFailedError{Index: index, Target: target, Err: err}
		}
		return nil, nil
	}

	if w.cfg.Executor == nil {
		return nil, &CallFailedError{Index: index, Target: target, Err: errNoExecutor}
	}
	ret, err := w.cfg.Executor.Call(ctx, w.cfg.Address, target, value, data)
	if err != nil {
		return nil, &CallFailedError{Index: index, Target: target, Err: err}
	}
	return ret, nil
}
