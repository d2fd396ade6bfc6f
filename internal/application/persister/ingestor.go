package persister

import (
	"context"
	"log/slog"
	"time"
)

// MessageItem is one delivered transport message awaiting processing.
type MessageItem struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// Ingestor accepts delivered messages from the transport callback. The
// channel implementation gives the subscriber explicit backpressure instead
// of unbounded callback fan-out.
type Ingestor interface {
	Ingest(ctx context.Context, item MessageItem) error
	Close() error
}

type ChannelIngestor struct {
	out    chan<- MessageItem
	logger *slog.Logger
}

func NewChannelIngestor(out chan<- MessageItem, logger *slog.Logger) *ChannelIngestor {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChannelIngestor{
		out:    out,
		logger: logger,
	}
}

func (i *ChannelIngestor) Ingest(ctx context.Context, item MessageItem) error {
	select {
	case i.out <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		i.logger.Warn("dropping message: queue full", "topic", item.Topic)
		return nil
	}
}

func (i *ChannelIngestor) Close() error {
	close(i.out)
	return nil
}
