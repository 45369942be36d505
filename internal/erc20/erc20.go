// Package erc20 holds the parsed EIP-20 ABI and helpers for the calls the
// transfer form makes against token contracts.
package erc20

import (
	"fmt"
	"math/big"
	"strings"

	"erc20/sender/internal/models"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	MethodTransfer  = "transfer"
	MethodBalanceOf = "balanceOf"
	MethodDecimals  = "decimals"

	EventTransfer = "Transfer"
)

const abiJSON = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"","type":"uint8"}]},
	{"type":"event","name":"Transfer","anonymous":false,
	 "inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

var ABI = mustParse(abiJSON)

func mustParse(s string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("erc20: parse abi: %v", err))
	}
	return &parsed
}

// Describes token.transfer(to, units)
func TransferCall(token common.Address, to common.Address, units *big.Int) models.ContractCall {
	return models.ContractCall{
		ABI:          ABI,
		Address:      token,
		FunctionName: MethodTransfer,
		Args:         []any{to, units},
	}
}

func PackBalanceOf(owner common.Address) ([]byte, error) {
	return ABI.Pack(MethodBalanceOf, owner)
}

func UnpackBalanceOf(data []byte) (*big.Int, error) {
	out, err := ABI.Unpack(MethodBalanceOf, data)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unpack balanceOf: got %d values", len(out))
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unpack balanceOf: unexpected type %T", out[0])
	}
	return balance, nil
}

func PackDecimals() ([]byte, error) {
	return ABI.Pack(MethodDecimals)
}

func UnpackDecimals(data []byte) (uint8, error) {
	out, err := ABI.Unpack(MethodDecimals, data)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("unpack decimals: got %d values", len(out))
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unpack decimals: unexpected type %T", out[0])
	}
	return d, nil
}

// Sums the Transfer events emitted by token towards to. Reports false when
// the logs hold none.
func TransferredTo(logs []*types.Log, token, to common.Address) (*big.Int, bool) {
	ev := ABI.Events[EventTransfer]
	total := new(big.Int)
	found := false
	for _, l := range logs {
		if l == nil || l.Address != token || len(l.Topics) != 3 || l.Topics[0] != ev.ID {
			continue
		}
		if common.BytesToAddress(l.Topics[2].Bytes()) != to {
			continue
		}
		out, err := ABI.Unpack(EventTransfer, l.Data)
		if err != nil || len(out) != 1 {
			continue
		}
		value, ok := out[0].(*big.Int)
		if !ok {
			continue
		}
		total.Add(total, value)
		found = true
	}
	return total, found
}
