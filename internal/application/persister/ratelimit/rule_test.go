package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kvoloboi/sensorpipe/internal/application/persister"
)

type countingIngestor struct {
	mu    sync.Mutex
	items []persister.MessageItem
}

func (c *countingIngestor) Ingest(ctx context.Context, item persister.MessageItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return nil
}

func (c *countingIngestor) Close() error { return nil }

func TestMsgRateRuleThrottles(t *testing.T) {
	next := &countingIngestor{}
	policy := NewIngestRatePolicy(NewMsgRateRule(100, 1))
	ing := NewRateLimitedIngestor(next, *policy)

	ctx := context.Background()
	item := persister.MessageItem{Topic: "t", Payload: []byte("x")}

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, ing.Ingest(ctx, item))
	}
	elapsed := time.Since(start)

	// Burst of 1 at 100 msg/s: 4 of the 5 ingests had to wait ~10ms each.
	require.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	require.Len(t, next.items, 5)
}

// A limiter with zero burst can never hand out a token; every ingest fails
// and nothing reaches the queue. Config validation rejects this combination
// so a running persister can't be configured into it.
func TestMsgRateRuleZeroBurstRejectsEverything(t *testing.T) {
	next := &countingIngestor{}
	policy := NewIngestRatePolicy(NewMsgRateRule(10, 0))
	ing := NewRateLimitedIngestor(next, *policy)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.Error(t, ing.Ingest(ctx, persister.MessageItem{Topic: "t"}))
	}
	require.Empty(t, next.items)
}

func TestRateLimitHonoursCancellation(t *testing.T) {
	next := &countingIngestor{}
	policy := NewIngestRatePolicy(NewMsgRateRule(1, 1))
	ing := NewRateLimitedIngestor(next, *policy)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	item := persister.MessageItem{Topic: "t"}

	require.NoError(t, ing.Ingest(ctx, item), "burst token")
	require.Error(t, ing.Ingest(ctx, item), "second ingest outlives the context")
	require.Len(t, next.items, 1)
}

func TestByteRateRuleCountsPayloadSize(t *testing.T) {
	next := &countingIngestor{}
	policy := NewIngestRatePolicy(NewByteRateRule(1024, 1024))
	ing := NewRateLimitedIngestor(next, *policy)

	ctx := context.Background()

	// One burst-sized payload passes immediately.
	require.NoError(t, ing.Ingest(ctx, persister.MessageItem{Payload: make([]byte, 1024)}))

	start := time.Now()
	require.NoError(t, ing.Ingest(ctx, persister.MessageItem{Payload: make([]byte, 512)}))
	require.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	require.Len(t, next.items, 2)
}
