package engine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Administrative mutations are only reachable by the wallet calling itself:
// Execute with target == the wallet's own address dispatches here with the
// authorized-context flag set. The calldata is a standard 4-byte-selector
// ABI call against adminABI.

const adminABIJSON = `[
  {"type":"function","name":"addSigner","stateMutability":"nonpayable","inputs":[{"name":"signer","type":"address"},{"name":"index","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"removeSigner","stateMutability":"nonpayable","inputs":[{"name":"index","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"updateThreshold","stateMutability":"nonpayable","inputs":[{"name":"newThreshold","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
  {"type":"function","name":"setGuardian","stateMutability":"nonpayable","inputs":[{"name":"guardian","type":"address"}],"outputs":[]},
  {"type":"function","name":"setDailyLimit","stateMutability":"nonpayable","inputs":[{"name":"limit","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"unpause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"cancelRecovery","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"authorizeUpgrade","stateMutability":"nonpayable","inputs":[{"name":"newImplementation","type":"address"}],"outputs":[]},
  {"type":"function","name":"migrate","stateMutability":"nonpayable","inputs":[{"name":"fromVersion","type":"uint64"},{"name":"toVersion","type":"uint64"}],"outputs":[]}
]`

var adminABI = mustParseABI(adminABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("engine: bad admin ABI: %v", err))
	}
	return parsed
}

// AdminABI exposes the admin method set so callers can pack governance
// calldata without duplicating the definition.
func AdminABI() abi.ABI { return adminABI }

// PackAdminCall ABI-encodes a governance self-call.
func PackAdminCall(method string, args ...interface{}) ([]byte, error) {
	return adminABI.Pack(method, args...)
}

// dispatchSelfCall decodes and routes an admin call. The caller has already
// set the self-call context.
func (w *Wallet) dispatchSelfCall(caller common.Address, data []byte) error {
	if len(data) < 4 {
		return ErrUnknownAdminCall
	}
	method, err := adminABI.MethodById(data[:4])
	if err != nil {
		return ErrUnknownAdminCall
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownAdminCall, err)
	}

	switch method.Name {
	case "addSigner":
		return w.addSigner(args[0].(common.Address), args[1].(uint8))
	case "removeSigner":
		return w.removeSigner(args[0].(uint8))
	case "updateThreshold":
		return w.updateThreshold(int(args[0].(uint8)))
	case "transferOwnership":
		return w.transferOwnership(args[0].(common.Address))
	case "setGuardian":
		return w.setGuardian(args[0].(common.Address))
	case "setDailyLimit":
		return w.setDailyLimit(args[0].(*big.Int))
	case "unpause":
		return w.unpause()
	case "cancelRecovery":
		return w.CancelRecovery(caller)
	case "authorizeUpgrade":
		return w.authorizeUpgrade(args[0].(common.Address))
	case "migrate":
		return w.Migrate(args[0].(uint64), args[1].(uint64))
	default:
		return ErrUnknownAdminCall
	}
}
