package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Reports whether s is a 20 byte hex address behind a "0x" prefix. All-lower
// and all-upper forms are accepted as is, mixed case must match EIP-55.
func IsValid(s string) bool {
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	if !common.IsHexAddress(s) {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(s).Hex()[2:] == body
}
