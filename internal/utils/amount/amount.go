package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Bound on the decimal exponent. Scaling a value costs time in the size of
// its exponent and anything past this cannot fit in a uint256 anyway.
const maxExponent = 96

var ErrOutOfRange = errors.New("amount out of range")

// Parses a user supplied decimal string such as "12.5" or "1e3"
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return d, nil
}

// Scales d to the token's smallest unit, rounding half away from zero
func ToUnits(d decimal.Decimal, decimals uint8) *big.Int {
	return d.Shift(int32(decimals)).Round(0).BigInt()
}

// Formats smallest units back into a decimal string
func FromUnits(units *big.Int, decimals uint8) string {
	if units == nil {
		return "0"
	}
	return decimal.NewFromBigInt(units, -int32(decimals)).String()
}
