package indexer

import (
	"reflect"
	"testing"
)

func TestSplitRange(t *testing.T) {
	got, err := SplitRange(100, 105, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{
		{From: 100, To: 101},
		{From: 102, To: 103},
		{From: 104, To: 105},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeSingle(t *testing.T) {
	got, err := SplitRange(5, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{{From: 5, To: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected error for invalid range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name           string
		from, to, prev uint64
		head           uint64
		want           BlockRange
		wantErr        bool
	}{
		{name: "explicit", from: 10, to: 20, head: 100, want: BlockRange{From: 10, To: 20}},
		{name: "to defaults to head", from: 10, head: 100, want: BlockRange{From: 10, To: 100}},
		{name: "to clamped to head", from: 10, to: 500, head: 100, want: BlockRange{From: 10, To: 100}},
		{name: "prev blocks", prev: 5, head: 100, want: BlockRange{From: 96, To: 100}},
		{name: "prev blocks overrides from", from: 3, prev: 1, head: 100, want: BlockRange{From: 100, To: 100}},
		{name: "prev blocks ending at to", to: 50, prev: 10, head: 100, want: BlockRange{From: 41, To: 50}},
		{name: "prev blocks beyond genesis", prev: 500, head: 100, want: BlockRange{From: 0, To: 100}},
		{name: "from after head", from: 200, head: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(tt.from, tt.to, tt.prev, tt.head)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("range mismatch: %+v != %+v", got, tt.want)
			}
		})
	}
}
