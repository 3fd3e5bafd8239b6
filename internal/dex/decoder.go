package dex

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"swapScope/internal/model"
)

// MaxAmountBits bounds every decoded amount.
const MaxAmountBits = 128

// SwapInput is the normalized description of a router swap call.
// A nil address denotes the native currency leg.
type SwapInput struct {
	OriginAddress      *common.Address
	OriginAmount       *big.Int
	DestinationAddress *common.Address
	DestinationAmount  *big.Int
}

// Decoder turns router calldata into SwapInput values.
type Decoder struct {
	schemas *SchemaTable
}

// NewDecoder builds a decoder over the given schema table.
func NewDecoder(schemas *SchemaTable) (*Decoder, error) {
	if schemas == nil {
		return nil, fmt.Errorf("schema table is nil")
	}
	return &Decoder{schemas: schemas}, nil
}

// DecodeTransaction classifies the transaction selector and decodes it.
func (d *Decoder) DecodeTransaction(tx model.Transaction) (SwapMethod, SwapInput, error) {
	sel, ok := SelectorOf(tx.Input)
	if !ok {
		return 0, SwapInput{}, errors.Wrapf(ErrUnrecognizedSelector, "input length %d", len(tx.Input))
	}
	method, ok := Classify(sel)
	if !ok {
		return 0, SwapInput{}, errors.Wrapf(ErrUnrecognizedSelector, "selector %s", sel.Hex())
	}
	input, err := d.Decode(tx, method)
	return method, input, err
}

// Decode decodes tx calldata according to the schema of method.
func (d *Decoder) Decode(tx model.Transaction, method SwapMethod) (SwapInput, error) {
	schema, ok := d.schemas.Schema(method)
	if !ok {
		return SwapInput{}, errors.Wrapf(ErrUnrecognizedSelector, "no schema for method %d", method)
	}
	if len(tx.Input) < len(schema.ID) || !bytes.Equal(tx.Input[:len(schema.ID)], schema.ID) {
		return SwapInput{}, errors.Wrapf(ErrMalformedCalldata, "selector does not match %s", schema.Name)
	}

	values, err := schema.Inputs.Unpack(tx.Input[len(schema.ID):])
	if err != nil {
		return SwapInput{}, errors.Wrapf(ErrMalformedCalldata, "unpack %s: %v", schema.Name, err)
	}

	switch method.Family() {
	case NativeToToken:
		// (amount, path, to, deadline)
		args, err := parseSwapArgs(values, 1)
		if err != nil {
			return SwapInput{}, errors.Wrap(err, schema.Name)
		}
		value := tx.Value
		if value == nil {
			value = new(big.Int)
		}
		if err := checkAmount("value", value); err != nil {
			return SwapInput{}, err
		}
		return SwapInput{
			OriginAmount:       new(big.Int).Set(value),
			DestinationAddress: args.last(),
			DestinationAmount:  args.bounds[0],
		}, nil

	case TokenToNative, TokenToToken:
		// (amount, amount, path, to, deadline)
		args, err := parseSwapArgs(values, 2)
		if err != nil {
			return SwapInput{}, errors.Wrap(err, schema.Name)
		}
		origin, destination := args.bounds[1], args.bounds[0]
		if method.ExactIn() {
			origin, destination = args.bounds[0], args.bounds[1]
		}
		input := SwapInput{
			OriginAddress:     args.first(),
			OriginAmount:      origin,
			DestinationAmount: destination,
		}
		if method.Family() == TokenToToken {
			input.DestinationAddress = args.last()
		}
		return input, nil

	default:
		return SwapInput{}, errors.Wrapf(ErrUnrecognizedSelector, "unsupported method %d", method)
	}
}

type swapArgs struct {
	bounds []*big.Int
	path   []common.Address
}

func (a swapArgs) first() *common.Address {
	addr := a.path[0]
	return &addr
}

func (a swapArgs) last() *common.Address {
	addr := a.path[len(a.path)-1]
	return &addr
}

// parseSwapArgs reads numBounds uint256 bounds followed by path, recipient and deadline.
func parseSwapArgs(values []interface{}, numBounds int) (swapArgs, error) {
	if len(values) != numBounds+3 {
		return swapArgs{}, errors.Wrapf(ErrMalformedCalldata, "expected %d arguments, got %d", numBounds+3, len(values))
	}

	args := swapArgs{bounds: make([]*big.Int, 0, numBounds)}
	for i := 0; i < numBounds; i++ {
		amount, err := asBigInt(values[i])
		if err != nil {
			return swapArgs{}, errors.Wrapf(ErrMalformedCalldata, "argument %d: %v", i, err)
		}
		if err := checkAmount(fmt.Sprintf("argument %d", i), amount); err != nil {
			return swapArgs{}, err
		}
		args.bounds = append(args.bounds, amount)
	}

	path, ok := values[numBounds].([]common.Address)
	if !ok {
		return swapArgs{}, errors.Wrapf(ErrMalformedCalldata, "path has type %T", values[numBounds])
	}
	if len(path) == 0 {
		return swapArgs{}, errors.Wrap(ErrMalformedCalldata, "empty path")
	}
	args.path = path

	if _, err := asAddress(values[numBounds+1]); err != nil {
		return swapArgs{}, errors.Wrapf(ErrMalformedCalldata, "recipient: %v", err)
	}
	if _, err := asBigInt(values[numBounds+2]); err != nil {
		return swapArgs{}, errors.Wrapf(ErrMalformedCalldata, "deadline: %v", err)
	}

	return args, nil
}

func checkAmount(name string, amount *big.Int) error {
	if amount.Sign() < 0 || amount.BitLen() > MaxAmountBits {
		return errors.Wrapf(ErrAmountOverflow, "%s %s exceeds %d bits", name, amount.String(), MaxAmountBits)
	}
	return nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
