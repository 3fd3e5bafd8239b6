package dex

import "github.com/ethereum/go-ethereum/common/hexutil"

// Selector is the first four bytes of ABI-encoded calldata.
type Selector [4]byte

// Hex returns the 0x-prefixed selector.
func (s Selector) Hex() string {
	return hexutil.Encode(s[:])
}

// SelectorOf extracts the selector from calldata.
func SelectorOf(input []byte) (Selector, bool) {
	var sel Selector
	if len(input) < len(sel) {
		return sel, false
	}
	copy(sel[:], input[:len(sel)])
	return sel, true
}

// SwapMethod enumerates the router swap methods the decoder understands.
type SwapMethod uint8

const (
	ExactNativeForTokens SwapMethod = iota + 1
	NativeForExactTokens
	ExactTokensForNative
	TokensForExactNative
	ExactTokensForTokens
	TokensForExactTokens
)

// Family groups swap methods by the kind of their origin and destination legs.
type Family uint8

const (
	NativeToToken Family = iota + 1
	TokenToNative
	TokenToToken
)

type methodSpec struct {
	name     string
	selector Selector
	family   Family
	exactIn  bool
}

// Indexed by SwapMethod; slot 0 is the zero value.
var methodSpecs = [...]methodSpec{
	ExactNativeForTokens: {name: "swapExactETHForTokens", selector: Selector{0x7f, 0xf3, 0x6a, 0xb5}, family: NativeToToken, exactIn: true},
	NativeForExactTokens: {name: "swapETHForExactTokens", selector: Selector{0xfb, 0x3b, 0xdb, 0x41}, family: NativeToToken},
	ExactTokensForNative: {name: "swapExactTokensForETH", selector: Selector{0x18, 0xcb, 0xaf, 0xe5}, family: TokenToNative, exactIn: true},
	TokensForExactNative: {name: "swapTokensForExactETH", selector: Selector{0x4a, 0x25, 0xd9, 0x4a}, family: TokenToNative},
	ExactTokensForTokens: {name: "swapExactTokensForTokens", selector: Selector{0x38, 0xed, 0x17, 0x39}, family: TokenToToken, exactIn: true},
	TokensForExactTokens: {name: "swapTokensForExactTokens", selector: Selector{0x88, 0x03, 0xdb, 0xee}, family: TokenToToken},
}

// Methods returns every supported swap method.
func Methods() []SwapMethod {
	return []SwapMethod{
		ExactNativeForTokens,
		NativeForExactTokens,
		ExactTokensForNative,
		TokensForExactNative,
		ExactTokensForTokens,
		TokensForExactTokens,
	}
}

// Classify maps a selector to its swap method. Unknown selectors return false.
func Classify(sel Selector) (SwapMethod, bool) {
	switch sel {
	case Selector{0x7f, 0xf3, 0x6a, 0xb5}:
		return ExactNativeForTokens, true
	case Selector{0xfb, 0x3b, 0xdb, 0x41}:
		return NativeForExactTokens, true
	case Selector{0x18, 0xcb, 0xaf, 0xe5}:
		return ExactTokensForNative, true
	case Selector{0x4a, 0x25, 0xd9, 0x4a}:
		return TokensForExactNative, true
	case Selector{0x38, 0xed, 0x17, 0x39}:
		return ExactTokensForTokens, true
	case Selector{0x88, 0x03, 0xdb, 0xee}:
		return TokensForExactTokens, true
	default:
		return 0, false
	}
}

// Valid reports whether m is one of the supported methods.
func (m SwapMethod) Valid() bool {
	return m >= ExactNativeForTokens && m <= TokensForExactTokens
}

// Name returns the router ABI function name.
func (m SwapMethod) Name() string {
	if !m.Valid() {
		return ""
	}
	return methodSpecs[m].name
}

// Selector returns the 4-byte selector of the method.
func (m SwapMethod) Selector() Selector {
	if !m.Valid() {
		return Selector{}
	}
	return methodSpecs[m].selector
}

// Family returns the leg family of the method, or 0 for an invalid method.
func (m SwapMethod) Family() Family {
	if !m.Valid() {
		return 0
	}
	return methodSpecs[m].family
}

// ExactIn reports whether the origin amount is exact and the destination a minimum.
// For exact-out methods the destination is exact and the origin a maximum.
func (m SwapMethod) ExactIn() bool {
	return m.Valid() && methodSpecs[m].exactIn
}

func (m SwapMethod) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return methodSpecs[m].name
}
