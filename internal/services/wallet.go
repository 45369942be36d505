package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"erc20/sender/internal/erc20"
	"erc20/sender/internal/models"
	"erc20/sender/internal/stores"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Subset of *ethclient.Client the wallet needs
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type ContractWriter interface {
	// Packs, signs and broadcasts the call. Returns once the node accepted the tx.
	WriteContract(ctx context.Context, call models.ContractCall) (common.Hash, error)
}

type BalanceReader interface {
	BalanceOf(ctx context.Context, token common.Address) (*big.Int, error)
}

type Wallet interface {
	ContractWriter
	BalanceReader
}

// Sends contract calls from a single keystore account
type EvmWallet struct {
	ks     stores.KeyStore
	client ChainClient
	from   common.Address
}

func NewEvmWallet(ks stores.KeyStore, client ChainClient, from common.Address) *EvmWallet {
	return &EvmWallet{
		ks:     ks,
		client: client,
		from:   from,
	}
}

func (w *EvmWallet) Address() common.Address { return w.from }

func (w *EvmWallet) WriteContract(ctx context.Context, call models.ContractCall) (common.Hash, error) {
	if call.ABI == nil {
		return common.Hash{}, errors.New("contract call without abi")
	}
	data, err := call.ABI.Pack(call.FunctionName, call.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", call.FunctionName, err)
	}

	tx, err := w.buildTx(ctx, call.Address, data)
	if err != nil {
		return common.Hash{}, err
	}

	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("ChainID: %w", err)
	}

	signed, err := w.ks.SignTx(ctx, w.from, tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("SignTx: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("SendTransaction: %w", err)
	}

	return signed.Hash(), nil
}

// Builds an unsigned zero-value transaction carrying `data` to contract `to`
func (w *EvmWallet) buildTx(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error) {
	if ok := w.ks.HasKey(ctx, w.from); !ok {
		return nil, fmt.Errorf("private key not found for %s", w.from.Hex())
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.from)
	if err != nil {
		return nil, fmt.Errorf("PendingNonceAt: %w", err)
	}

	gasPrice, gasLimit, err := w.estimateGas(ctx, to, data)
	if err != nil {
		return nil, err
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	}), nil
}

func (w *EvmWallet) estimateGas(ctx context.Context, to common.Address, data []byte) (gasPrice *big.Int, gasLimit uint64, err error) {
	gasPrice, err = w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("SuggestGasPrice: %w", err)
	}
	gasLimit, err = w.client.EstimateGas(ctx, ethereum.CallMsg{
		From: w.from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("EstimateGas: %w", err)
	}
	return gasPrice, gasLimit, nil
}

// Sender's balance of `token` in smallest units at the latest block
func (w *EvmWallet) BalanceOf(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := erc20.PackBalanceOf(w.from)
	if err != nil {
		return nil, err
	}
	out, err := w.client.CallContract(ctx, ethereum.CallMsg{From: w.from, To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("CallContract: %w", err)
	}
	return erc20.UnpackBalanceOf(out)
}

// Decimals as reported by the token contract
func (w *EvmWallet) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := erc20.PackDecimals()
	if err != nil {
		return 0, err
	}
	out, err := w.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("CallContract: %w", err)
	}
	return erc20.UnpackDecimals(out)
}
