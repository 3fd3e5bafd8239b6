package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw       string
		defaultID string
		ws        bool
		want      string
		wantErr   bool
	}{
		{raw: "infura:abc", want: "https://mainnet.infura.io/v3/abc"},
		{raw: "infura:abc", ws: true, want: "wss://mainnet.infura.io/ws/v3/abc"},
		{raw: "Infura", defaultID: "env-id", want: "https://mainnet.infura.io/v3/env-id"},
		{raw: "infura", wantErr: true},
		{raw: "alchemy:key", want: "https://eth-mainnet.alchemyapi.io/v2/key"},
		{raw: "alchemy:key", ws: true, want: "wss://eth-mainnet.alchemyapi.io/v2/key"},
		{raw: "geth", want: "http://localhost:8545"},
		{raw: "geth", ws: true, want: "ws://localhost:8546"},
		{raw: "ipc:/tmp/geth.ipc", want: "/tmp/geth.ipc"},
		{raw: "ipc", defaultID: "x", wantErr: true},
		{raw: "https://rpc.example.org/v1", want: "https://rpc.example.org/v1"},
		{raw: "ws://127.0.0.1:8546", want: "ws://127.0.0.1:8546"},
		{raw: "  ", want: ""},
	}

	for _, tt := range tests {
		got, err := ResolveEndpoint(tt.raw, tt.defaultID, tt.ws)
		if tt.wantErr {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.want, got, tt.raw)
	}
}
