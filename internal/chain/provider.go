package chain

import (
	"fmt"
	"strings"
)

const (
	infuraHTTPEndpoint  = "https://mainnet.infura.io/v3"
	infuraWSEndpoint    = "wss://mainnet.infura.io/ws/v3"
	alchemyHTTPEndpoint = "https://eth-mainnet.alchemyapi.io/v2"
	alchemyWSEndpoint   = "wss://eth-mainnet.alchemyapi.io/v2"
	gethHTTPEndpoint    = "http://localhost:8545"
	gethWSEndpoint      = "ws://localhost:8546"
)

// ResolveEndpoint expands provider shorthands into RPC URLs.
//
//	infura:<project-id>   hosted mainnet endpoint
//	alchemy:<api-key>     hosted mainnet endpoint
//	geth                  local node
//	ipc:<path>            local IPC socket
//
// A bare "infura" or "alchemy" uses defaultID. Anything else is returned as is.
// ws selects the websocket variant of hosted endpoints.
func ResolveEndpoint(raw, defaultID string, ws bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	name, id, hasID := strings.Cut(raw, ":")
	if !hasID {
		id = defaultID
	}
	id = strings.TrimSpace(id)

	switch strings.ToLower(name) {
	case "infura":
		if id == "" {
			return "", fmt.Errorf("infura endpoint requires a project id")
		}
		if ws {
			return infuraWSEndpoint + "/" + id, nil
		}
		return infuraHTTPEndpoint + "/" + id, nil
	case "alchemy":
		if id == "" {
			return "", fmt.Errorf("alchemy endpoint requires an api key")
		}
		if ws {
			return alchemyWSEndpoint + "/" + id, nil
		}
		return alchemyHTTPEndpoint + "/" + id, nil
	case "geth":
		if hasID {
			break
		}
		if ws {
			return gethWSEndpoint, nil
		}
		return gethHTTPEndpoint, nil
	case "ipc":
		if !hasID || id == "" {
			return "", fmt.Errorf("ipc endpoint requires a socket path")
		}
		return id, nil
	}
	return raw, nil
}
