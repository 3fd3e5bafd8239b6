package dex

import "github.com/pkg/errors"

var (
	// ErrUnrecognizedSelector is returned when calldata does not start with
	// one of the router swap selectors.
	ErrUnrecognizedSelector = errors.New("unrecognized selector")

	// ErrMalformedCalldata is returned when calldata carries a known selector
	// but its arguments do not match the method schema.
	ErrMalformedCalldata = errors.New("malformed calldata")

	// ErrMissingTokenMetadata marks a swap leg whose token is unknown to the
	// resolver. It never prevents a swap from being formatted.
	ErrMissingTokenMetadata = errors.New("missing token metadata")

	// ErrAmountOverflow is returned when a decoded amount does not fit in
	// MaxAmountBits bits.
	ErrAmountOverflow = errors.New("amount overflow")
)
