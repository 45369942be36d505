package services

import (
	"context"
	"errors"
	"fmt"

	"erc20/sender/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

var ErrDecimalsMismatch = errors.New("token decimals mismatch")

type DecimalsReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// Compares the configured decimals of every token with what its contract
// reports. Amount scaling is wrong for any token listed in the error.
func VerifyTokenDecimals(ctx context.Context, r DecimalsReader, tokens []models.Token) error {
	var errs []error
	for _, t := range tokens {
		d, err := r.Decimals(ctx, t.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s decimals: %w", t.Symbol, err))
			continue
		}
		if d != t.Decimals {
			errs = append(errs, fmt.Errorf("%w: %s has %d on chain, %d configured", ErrDecimalsMismatch, t.Symbol, d, t.Decimals))
		}
	}
	return errors.Join(errs...)
}
