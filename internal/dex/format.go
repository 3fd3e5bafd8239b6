package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	// NativeDecimals is the scale of the chain's native currency.
	NativeDecimals = 18

	DefaultNativeSymbol = "ETH"
)

// Formatter renders SwapInput values as display lines.
type Formatter struct {
	resolver     TokenResolver
	nativeSymbol string
}

// NewFormatter builds a formatter. A nil resolver resolves nothing.
func NewFormatter(resolver TokenResolver, nativeSymbol string) *Formatter {
	if nativeSymbol == "" {
		nativeSymbol = DefaultNativeSymbol
	}
	return &Formatter{resolver: resolver, nativeSymbol: nativeSymbol}
}

// Format returns "Swap <qty> <label> for <qty> <label>".
func (f *Formatter) Format(in SwapInput) string {
	line, _ := f.Describe(in)
	return line
}

// Describe formats the swap and returns the token addresses the resolver
// could not find. Those legs fall back to the raw address and unscaled amount.
func (f *Formatter) Describe(in SwapInput) (string, []common.Address) {
	var missing []common.Address

	originQty, originLabel, ok := f.leg(in.OriginAddress, in.OriginAmount)
	if !ok {
		missing = append(missing, *in.OriginAddress)
	}
	destinationQty, destinationLabel, ok := f.leg(in.DestinationAddress, in.DestinationAmount)
	if !ok {
		missing = append(missing, *in.DestinationAddress)
	}

	line := fmt.Sprintf("Swap %s %s for %s %s", originQty, originLabel, destinationQty, destinationLabel)
	return line, missing
}

func (f *Formatter) leg(address *common.Address, amount *big.Int) (string, string, bool) {
	if address == nil {
		return FormatAmount(amount, NativeDecimals), f.nativeSymbol, true
	}
	if f.resolver != nil {
		if meta, ok := f.resolver.Lookup(*address); ok {
			label := meta.Symbol
			if label == "" {
				label = NormalizeAddress(*address)
			}
			return FormatAmount(amount, meta.Decimals), label, true
		}
	}
	return FormatAmount(amount, 0), NormalizeAddress(*address), false
}

// FormatAmount scales a raw integer amount by 10^decimals and renders it in
// plain fixed-point notation without trailing zeros.
func FormatAmount(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
