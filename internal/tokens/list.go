package tokens

import (
	"encoding/json"
	"fmt"

	"swapScope/internal/dex"
	"swapScope/internal/model"
)

// DefaultListURL is the public Uniswap-format token list used when none is configured.
const DefaultListURL = "https://tokens.coingecko.com/uniswap/all.json"

// List is a token list in the Uniswap token-list JSON schema.
type List struct {
	Name      string      `json:"name"`
	Timestamp string      `json:"timestamp"`
	Tokens    []ListToken `json:"tokens"`
}

// ListToken is one entry of a token list.
type ListToken struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// ParseList decodes a token list document.
func ParseList(data []byte) (*List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode token list: %w", err)
	}
	if list.Tokens == nil {
		return nil, fmt.Errorf("token list has no tokens field")
	}
	return &list, nil
}

// Meta converts the entry to token metadata keyed by its normalized address.
func (t ListToken) Meta() (model.TokenMeta, bool) {
	address, ok := dex.NormalizeHex(t.Address)
	if !ok {
		return model.TokenMeta{}, false
	}
	return model.TokenMeta{
		Address:  address,
		Decimals: t.Decimals,
		Symbol:   t.Symbol,
		Name:     t.Name,
	}, true
}
