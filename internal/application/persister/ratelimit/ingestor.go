package ratelimit

import (
	"context"

	"github.com/kvoloboi/sensorpipe/internal/application/persister"
)

type RateLimitedIngestor struct {
	next    persister.Ingestor
	limiter IngestRatePolicy
}

func NewRateLimitedIngestor(next persister.Ingestor, limiter IngestRatePolicy) *RateLimitedIngestor {
	return &RateLimitedIngestor{
		next:    next,
		limiter: limiter,
	}
}

func (r *RateLimitedIngestor) Ingest(ctx context.Context, item persister.MessageItem) error {
	if err := r.limiter.Wait(ctx, item); err != nil {
		return err
	}

	return r.next.Ingest(ctx, item)
}

func (r *RateLimitedIngestor) Close() error {
	return r.next.Close()
}
