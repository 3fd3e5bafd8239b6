package tokens

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeToken struct {
	decimals      uint8
	symbol        string
	name          string
	bytes32Symbol bool
}

type fakeCaller struct {
	mu     sync.Mutex
	tokens map[common.Address]fakeToken
	calls  int
}

func (c *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	token, ok := c.tokens[*msg.To]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	stringABI, bytes32ABI, err := erc20ABIs()
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.Equal(msg.Data, stringABI.Methods["decimals"].ID):
		return stringABI.Methods["decimals"].Outputs.Pack(token.decimals)
	case bytes.Equal(msg.Data, stringABI.Methods["symbol"].ID):
		if token.bytes32Symbol {
			return packBytes32(bytes32ABI.Methods["symbol"], token.symbol)
		}
		return stringABI.Methods["symbol"].Outputs.Pack(token.symbol)
	case bytes.Equal(msg.Data, stringABI.Methods["name"].ID):
		if token.bytes32Symbol {
			return packBytes32(bytes32ABI.Methods["name"], token.name)
		}
		return stringABI.Methods["name"].Outputs.Pack(token.name)
	default:
		return nil, errors.New("execution reverted")
	}
}

func packBytes32(method abi.Method, s string) ([]byte, error) {
	var word [32]byte
	copy(word[:], s)
	return method.Outputs.Pack(word)
}

var (
	usdcAddr = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	mkrAddr  = common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")
	deadAddr = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

func newFakeCaller() *fakeCaller {
	return &fakeCaller{tokens: map[common.Address]fakeToken{
		usdcAddr: {decimals: 6, symbol: "USDC", name: "USD Coin"},
		mkrAddr:  {decimals: 18, symbol: "MKR", name: "Maker", bytes32Symbol: true},
	}}
}

func TestFetchTokenMeta(t *testing.T) {
	t.Parallel()

	caller := newFakeCaller()

	meta, err := FetchTokenMeta(context.Background(), caller, usdcAddr, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "USDC", meta.Symbol)
	require.Equal(t, "USD Coin", meta.Name)
	require.Equal(t, uint8(6), meta.Decimals)
	require.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", meta.Address)

	meta, err = FetchTokenMeta(context.Background(), caller, mkrAddr, nil)
	require.NoError(t, err)
	require.Equal(t, "MKR", meta.Symbol)
	require.Equal(t, "Maker", meta.Name)

	_, err = FetchTokenMeta(context.Background(), caller, deadAddr, nil)
	require.Error(t, err)

	_, err = FetchTokenMeta(context.Background(), nil, usdcAddr, nil)
	require.Error(t, err)
}

func TestChainResolverEnsure(t *testing.T) {
	t.Parallel()

	base := NewRegistry()
	base.Add(mustMeta(t, ListToken{Address: mkrAddr.Hex(), Symbol: "MKR-LIST", Decimals: 18}))

	caller := newFakeCaller()
	resolver := NewChainResolver(base, caller, zap.NewNop())

	_, ok := resolver.Lookup(usdcAddr)
	require.False(t, ok)

	resolved := resolver.Ensure(context.Background(), []common.Address{usdcAddr, mkrAddr, deadAddr})
	require.Equal(t, 1, resolved)

	meta, ok := resolver.Lookup(usdcAddr)
	require.True(t, ok)
	require.Equal(t, "USDC", meta.Symbol)

	meta, ok = resolver.Lookup(mkrAddr)
	require.True(t, ok)
	require.Equal(t, "MKR-LIST", meta.Symbol)

	_, ok = resolver.Lookup(deadAddr)
	require.False(t, ok)

	calls := caller.calls
	require.Zero(t, resolver.Ensure(context.Background(), []common.Address{usdcAddr, deadAddr}))
	require.Equal(t, calls, caller.calls)
}
