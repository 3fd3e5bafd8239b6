package dex

import (
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"swapScope/internal/model"
)

func TestFilterKeep(t *testing.T) {
	t.Parallel()

	filter := NewFilter(testRouter)
	other := common.HexToAddress("0x1111111111111111111111111111111111111111")
	swapInput := []byte{0x38, 0xed, 0x17, 0x39, 0xff}

	tests := []struct {
		name string
		to   *common.Address
		in   []byte
		want bool
	}{
		{name: "router swap", to: &testRouter, in: swapInput, want: true},
		{name: "bare selector", to: &testRouter, in: swapInput[:4], want: true},
		{name: "other contract", to: &other, in: swapInput, want: false},
		{name: "contract creation", to: nil, in: swapInput, want: false},
		{name: "short input", to: &testRouter, in: swapInput[:3], want: false},
		{name: "empty input", to: &testRouter, in: nil, want: false},
		{name: "addLiquidityETH", to: &testRouter, in: []byte{0xf3, 0x05, 0xd7, 0x19}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, filter.Keep(model.Transaction{To: tt.to, Input: tt.in}))
		})
	}
}

func TestFilterRandomized(t *testing.T) {
	t.Parallel()

	supported := make(map[Selector]bool)
	for _, m := range Methods() {
		supported[m.Selector()] = true
	}

	rng := rand.New(rand.NewSource(42))
	filter := NewFilter(testRouter)
	other := common.HexToAddress("0x2222222222222222222222222222222222222222")
	targets := []*common.Address{nil, &testRouter, &other}

	for i := 0; i < 2000; i++ {
		to := targets[rng.Intn(len(targets))]

		var input []byte
		switch rng.Intn(3) {
		case 0:
			input = make([]byte, rng.Intn(4))
			rng.Read(input)
		case 1:
			sel := Methods()[rng.Intn(len(Methods()))].Selector()
			input = append(sel[:], make([]byte, rng.Intn(64))...)
		default:
			input = make([]byte, 4+rng.Intn(64))
			rng.Read(input)
		}

		want := false
		if to != nil && *to == testRouter && len(input) >= 4 {
			var sel Selector
			copy(sel[:], input)
			want = supported[sel]
		}

		require.Equal(t, want, filter.Keep(model.Transaction{To: to, Input: input}), "case %d input %x", i, input)
	}
}

func TestFilterMatchPreservesOrder(t *testing.T) {
	t.Parallel()

	filter := NewFilter(testRouter)
	other := common.HexToAddress("0x4444444444444444444444444444444444444444")
	txs := []model.Transaction{
		{Hash: common.HexToHash("0x01"), To: &testRouter, Input: []byte{0x7f, 0xf3, 0x6a, 0xb5}},
		{Hash: common.HexToHash("0x02"), To: &other, Input: []byte{0x7f, 0xf3, 0x6a, 0xb5}},
		{Hash: common.HexToHash("0x03"), To: &testRouter, Input: []byte{0x88, 0x03, 0xdb, 0xee}},
		{Hash: common.HexToHash("0x04"), To: nil, Input: []byte{0x88, 0x03, 0xdb, 0xee}},
		{Hash: common.HexToHash("0x05"), To: &testRouter, Input: []byte{0x18, 0xcb, 0xaf, 0xe5}},
	}

	matched := filter.Match(txs)
	require.Len(t, matched, 3)
	require.Equal(t, common.HexToHash("0x01"), matched[0].Hash)
	require.Equal(t, common.HexToHash("0x03"), matched[1].Hash)
	require.Equal(t, common.HexToHash("0x05"), matched[2].Hash)

	require.Empty(t, filter.Match(nil))
}
