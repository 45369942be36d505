package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Token struct {
	ID       common.Address `json:"id"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	Logo     string         `json:"logo"`
}

// Sepolia test deployments
var (
	USDC = Token{
		ID:       common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"),
		Symbol:   "USDC",
		Decimals: 6,
	}
	EURC = Token{
		ID:       common.HexToAddress("0x08210F9170F89Ab7658F0B5E3fF39b0E03C594D4"),
		Symbol:   "EURC",
		Decimals: 6,
	}
)

// Returns a copy of the tokens the form offers, in display order
func SupportedTokens() []Token {
	return []Token{USDC, EURC}
}

// Looks a token up by contract address (any case) or by symbol
func FindToken(tokens []Token, key string) (*Token, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	for i := range tokens {
		if strings.EqualFold(tokens[i].ID.Hex(), key) || strings.EqualFold(tokens[i].Symbol, key) {
			t := tokens[i]
			return &t, true
		}
	}
	return nil, false
}
