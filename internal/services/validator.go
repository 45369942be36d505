package services

import (
	"erc20/sender/internal/models"
	"erc20/sender/internal/utils/address"
	"erc20/sender/internal/utils/amount"

	"github.com/ethereum/go-ethereum/common"
)

// A form field rejected before anything is sent. Message is shown to the user verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrReceiverNotSet    = &ValidationError{Field: "receiver", Message: "The receiver address is not set!"}
	ErrTokenNotSelected  = &ValidationError{Field: "token", Message: "Token not selected."}
	ErrAmountNotPositive = &ValidationError{Field: "amount", Message: "The amount to send must be greater than 0."}
	ErrAmountTooLarge    = &ValidationError{Field: "amount", Message: "The amount to send is too large."}
)

// Checks receiver, token and amount in that order and returns the first failure
func Validate(form models.Form) error {
	_, err := NewTransferRequest(form)
	return err
}

func NewTransferRequest(form models.Form) (*models.TransferRequest, error) {
	if form.Receiver == "" || !address.IsValid(form.Receiver) {
		return nil, ErrReceiverNotSet
	}

	if form.Token == nil || form.Token.ID == (common.Address{}) {
		return nil, ErrTokenNotSelected
	}

	d, err := amount.Parse(form.Amount)
	if err != nil || !d.IsPositive() {
		return nil, ErrAmountNotPositive
	}
	// positive but below one smallest unit
	units := amount.ToUnits(d, form.Token.Decimals)
	if units.Sign() <= 0 {
		return nil, ErrAmountNotPositive
	}
	// transfer takes a uint256
	if units.BitLen() > 256 {
		return nil, ErrAmountTooLarge
	}

	return &models.TransferRequest{
		Token:    *form.Token,
		Receiver: common.HexToAddress(form.Receiver),
		Amount:   d.String(),
		Units:    units,
	}, nil
}
