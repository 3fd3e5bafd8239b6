package indexer

import (
	"context"

	"golang.org/x/time/rate"

	"swapScope/internal/model"
)

// RateLimitedSource throttles calls to a BlockSource.
type RateLimitedSource struct {
	source  BlockSource
	limiter *rate.Limiter
}

// NewRateLimitedSource allows rps calls per second. A non-positive rps
// returns source unchanged.
func NewRateLimitedSource(source BlockSource, rps float64) BlockSource {
	if rps <= 0 {
		return source
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{source: source, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (s *RateLimitedSource) LatestBlockNumber(ctx context.Context) (uint64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return s.source.LatestBlockNumber(ctx)
}

func (s *RateLimitedSource) BlockByNumber(ctx context.Context, number uint64) (model.Block, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return model.Block{}, err
	}
	return s.source.BlockByNumber(ctx, number)
}
