package models

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestSupportedTokens(t *testing.T) {
	tokens := SupportedTokens()
	if len(tokens) != 2 {
		t.Fatalf("len = %d, want 2", len(tokens))
	}
	if tokens[0].Symbol != "USDC" || tokens[1].Symbol != "EURC" {
		t.Fatalf("symbols = %s,%s, want USDC,EURC", tokens[0].Symbol, tokens[1].Symbol)
	}
	for _, tok := range tokens {
		if tok.Decimals != 6 {
			t.Fatalf("%s decimals = %d, want 6", tok.Symbol, tok.Decimals)
		}
	}

	// callers get a copy
	tokens[0].Symbol = "XXX"
	if SupportedTokens()[0].Symbol != "USDC" {
		t.Fatal("SupportedTokens returned shared state")
	}
}

func TestFindToken(t *testing.T) {
	tokens := SupportedTokens()

	cases := []struct {
		key  string
		want string
		ok   bool
	}{
		{"0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238", "USDC", true},
		{"0x1c7d4b196cb0c7b01d743fbc6116a902379c7238", "USDC", true},
		{"eurc", "EURC", true},
		{" EURC ", "EURC", true},
		{"", "", false},
		{"DAI", "", false},
		{"0x0000000000000000000000000000000000000001", "", false},
	}
	for _, tc := range cases {
		tok, ok := FindToken(tokens, tc.key)
		if ok != tc.ok {
			t.Fatalf("FindToken(%q) ok = %v, want %v", tc.key, ok, tc.ok)
		}
		if ok && tok.Symbol != tc.want {
			t.Fatalf("FindToken(%q) = %s, want %s", tc.key, tok.Symbol, tc.want)
		}
	}
}

func TestForm_Reset_KeepsToken(t *testing.T) {
	f := NewForm()
	if f.Amount != "0" || f.Receiver != "" || f.Token != nil {
		t.Fatalf("NewForm = %+v, want defaults", f)
	}

	tok := USDC
	f.Amount = "12.5"
	f.Receiver = "0x960b650301e941c095aef35f57ae1b2d73fc4df1"
	f.Token = &tok
	f.Reset()

	if f.Amount != DefaultAmount || f.Receiver != "" {
		t.Fatalf("after Reset = %+v", f)
	}
	if f.Token == nil || f.Token.Symbol != "USDC" {
		t.Fatal("Reset dropped token selection")
	}
}

func TestNewTransferRecord(t *testing.T) {
	hash := common.HexToHash("0xa444b1e4f2e0cc3d93d50c489aca46b04b263f55879688c061cb70daf5b8a0fa")
	units := big.NewInt(1_500_000)
	req := &TransferRequest{
		Token:    EURC,
		Receiver: common.HexToAddress("0x960b650301e941c095aef35f57ae1b2d73fc4df1"),
		Amount:   "1.5",
		Units:    units,
	}
	now := time.Unix(1700000000, 0)

	rec := NewTransferRecord(hash, req, now)
	if rec.ID != hash.Hex() {
		t.Fatalf("ID = %s, want %s", rec.ID, hash.Hex())
	}
	if rec.State != TransferSubmitted {
		t.Fatalf("State = %s, want %s", rec.State, TransferSubmitted)
	}
	if rec.Symbol != "EURC" || rec.Token != EURC.ID {
		t.Fatalf("token = %s/%s", rec.Symbol, rec.Token.Hex())
	}

	units.SetInt64(1)
	if rec.Units.Int64() != 1_500_000 {
		t.Fatal("record shares Units with request")
	}
}
