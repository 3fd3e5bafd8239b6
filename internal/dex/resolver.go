package dex

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"swapScope/internal/model"
)

// TokenResolver looks up token metadata by contract address.
// Implementations must key their tables with NormalizeAddress.
type TokenResolver interface {
	Lookup(address common.Address) (model.TokenMeta, bool)
}

// NormalizeAddress returns the lowercase 0x-prefixed hex form used as resolver key.
func NormalizeAddress(address common.Address) string {
	return strings.ToLower(address.Hex())
}

// NormalizeHex validates a hex address string in any case and returns its
// normalized form.
func NormalizeHex(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return "", false
	}
	return NormalizeAddress(common.HexToAddress(input)), true
}
