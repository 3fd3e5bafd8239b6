package model

// SwapRecord is a formatted router swap together with its chain context.
// Amounts are the raw decoded bounds in the asset's smallest unit; an empty
// token address denotes the native currency.
type SwapRecord struct {
	ChainID           uint64 `json:"chain_id"`
	BlockNumber       uint64 `json:"block_number"`
	BlockHash         string `json:"block_hash"`
	TxHash            string `json:"tx_hash"`
	Method            string `json:"method"`
	OriginToken       string `json:"origin_token"`
	OriginAmount      string `json:"origin_amount"`
	DestinationToken  string `json:"destination_token"`
	DestinationAmount string `json:"destination_amount"`
	Line              string `json:"line"`
	Timestamp         uint64 `json:"timestamp"`
	IngestedAt        string `json:"ingested_at"`
}
