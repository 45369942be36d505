package amount

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	valid := map[string]string{
		"1":        "1",
		" 2.5 ":    "2.5",
		"0":        "0",
		"-1":       "-1",
		"1e3":      "1000",
		"0.000001": "0.000001",
	}
	for in, want := range valid {
		d, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if d.String() != want {
			t.Fatalf("Parse(%q) = %s, want %s", in, d.String(), want)
		}
	}

	for _, in := range []string{"", "   ", "abc", "1,5", "0x10"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestParse_RejectsHugeExponents(t *testing.T) {
	start := time.Now()
	for _, in := range []string{"1e-300000000", "1e300000000", "1e97", "1e-97"} {
		if _, err := Parse(in); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Parse(%q) error = %v, want ErrOutOfRange", in, err)
		}
	}
	if time.Since(start) > time.Second {
		t.Fatalf("rejecting huge exponents took %s", time.Since(start))
	}

	if _, err := Parse("1e96"); err != nil {
		t.Fatalf("Parse(1e96) error: %v", err)
	}
}

func TestToUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"1", 6, "1000000"},
		{"12.345678", 6, "12345678"},
		{"0.0000005", 6, "1"},
		{"0.0000004", 6, "0"},
		{"1", 18, "1000000000000000000"},
		{"3", 0, "3"},
	}
	for _, tc := range cases {
		d, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.in, err)
		}
		got := ToUnits(d, tc.decimals)
		if got.String() != tc.want {
			t.Fatalf("ToUnits(%s, %d) = %s, want %s", tc.in, tc.decimals, got.String(), tc.want)
		}
	}
}

func TestFromUnits(t *testing.T) {
	if got := FromUnits(big.NewInt(1_500_000), 6); got != "1.5" {
		t.Fatalf("FromUnits = %s, want 1.5", got)
	}
	if got := FromUnits(nil, 6); got != "0" {
		t.Fatalf("FromUnits(nil) = %s, want 0", got)
	}
}
