package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type TransferState string

const (
	TransferSubmitted TransferState = "SUBMITTED"
	TransferConfirmed TransferState = "CONFIRMED"
	TransferReverted  TransferState = "REVERTED"
	TransferFailed    TransferState = "FAILED"
)

// Derived from the form at submit time, never stored on its own
type TransferRequest struct {
	Token    Token
	Receiver common.Address
	Amount   string
	Units    *big.Int
}

// Description of a contract write handed to the wallet
type ContractCall struct {
	ABI          *abi.ABI
	Address      common.Address
	FunctionName string
	Args         []any
}

type TransferRecord struct {
	ID          string         `json:"id"` // tx hash
	Token       common.Address `json:"token"`
	Symbol      string         `json:"symbol"`
	Receiver    common.Address `json:"receiver"`
	Amount      string         `json:"amount"`
	Units       *big.Int       `json:"units"`
	State       TransferState  `json:"state"`
	BlockNumber uint64         `json:"block_number,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewTransferRecord(hash common.Hash, req *TransferRequest, now time.Time) *TransferRecord {
	return &TransferRecord{
		ID:        hash.Hex(),
		Token:     req.Token.ID,
		Symbol:    req.Token.Symbol,
		Receiver:  req.Receiver,
		Amount:    req.Amount,
		Units:     new(big.Int).Set(req.Units),
		State:     TransferSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
