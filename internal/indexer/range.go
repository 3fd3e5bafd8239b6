package indexer

import "fmt"

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange splits a block range into batches of size batchSize.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0)
	start := from
	for start <= to {
		remaining := to - start + 1
		var end uint64
		if remaining <= batchSize {
			end = to
		} else {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// ResolveRange computes the scan range against the current head. A zero to
// means the head. prevBlocks, when set, selects the last prevBlocks blocks
// ending at to and overrides from.
func ResolveRange(from, to, prevBlocks, head uint64) (BlockRange, error) {
	if to == 0 || to > head {
		to = head
	}
	if prevBlocks > 0 {
		if prevBlocks > to {
			from = 0
		} else {
			from = to - prevBlocks + 1
		}
	}
	if from > to {
		return BlockRange{}, fmt.Errorf("from block %d is after to block %d", from, to)
	}
	return BlockRange{From: from, To: to}, nil
}
