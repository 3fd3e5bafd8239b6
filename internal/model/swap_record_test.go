package model

import (
	"encoding/json"
	"testing"
)

func TestSwapRecordJSONStringAmounts(t *testing.T) {
	record := SwapRecord{
		ChainID:           1,
		BlockNumber:       19000000,
		TxHash:            "0xdef456",
		Method:            "swapExactETHForTokens",
		OriginAmount:      "5000000000000000000",
		DestinationToken:  "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		DestinationAmount: "340282366920938463463374607431768211455",
		Line:              "Swap 5 ETH for 340282366920938463463374607431.768211455 USDC",
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["origin_amount"].(string); !ok {
		t.Fatalf("origin_amount should be string")
	}
	if _, ok := decoded["destination_amount"].(string); !ok {
		t.Fatalf("destination_amount should be string")
	}
	if decoded["origin_token"] != "" {
		t.Fatalf("native origin should encode as empty token, got %v", decoded["origin_token"])
	}
}
