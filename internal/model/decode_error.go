package model

// DecodeError records a router transaction that was skipped during decoding.
type DecodeError struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	Selector    string `json:"selector"`
	Method      string `json:"method"`
	Error       string `json:"error"`
}
