package edge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/application/common"
	"github.com/kvoloboi/sensorpipe/internal/domain"
	"github.com/kvoloboi/sensorpipe/internal/infrastructure/encoding"
)

// Dispatcher is the single consumer of the sampling queue. It encodes each
// reading and publishes it with bounded retry; readings leave in the order
// they were sampled.
type Dispatcher struct {
	queue      <-chan domain.Reading
	publisher  MessagePublisher
	maxRetries int
	backoff    common.Backoff
	logger     *slog.Logger
	counters   *Counters
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

type DispatcherConfig struct {
	MaxRetries int
	Backoff    common.Backoff
}

func NewDispatcher(
	queue <-chan domain.Reading,
	publisher MessagePublisher,
	cfg DispatcherConfig,
	logger *slog.Logger,
	counters *Counters,
	cancel context.CancelFunc,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if counters == nil {
		counters = NewCounters()
	}

	return &Dispatcher{
		queue:      queue,
		publisher:  publisher,
		logger:     logger,
		counters:   counters,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		cancel:     cancel,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	defer d.close()

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case r, ok := <-d.queue:
			if !ok {
				d.logger.Info("input channel closed")
				return
			}
			d.dispatch(ctx, r)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, r domain.Reading) {
	payload, err := encoding.Marshal(r)
	if err != nil {
		d.counters.IncFailed()
		d.logger.Error("failed to encode reading", "sensor", r.Sensor, "error", err)
		return
	}

	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		err := d.publisher.Publish(ctx, payload)

		if err == nil {
			d.counters.IncPublished()
			return
		}

		if errors.Is(err, io.ErrClosedPipe) {
			d.stopOnce.Do(func() {
				d.cancel() // propagates to the sampler
			})
			return
		}

		if attempt == d.maxRetries {
			// Favor the next sample over guaranteed delivery of this one.
			d.counters.IncFailed()
			d.logger.Error(
				"failed to publish reading, dropping sample",
				"sensor", r.Sensor,
				"attempt", attempt,
				"error", err,
			)
			return
		}

		delay := d.backoff.Next(attempt)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for {
		select {
		case r, ok := <-d.queue:
			if !ok {
				d.logger.Info("all readings drained")
				return
			}
			d.dispatch(ctx, r)
		default:
			d.logger.Info("queue empty, drain complete")
			return
		}
	}
}

// close releases publisher resources and logs final metrics.
func (d *Dispatcher) close() {
	d.logger.Info("dispatcher stopping")

	if err := d.publisher.Close(); err != nil {
		d.logger.Warn("publisher close failed", "err", err)
	}

	d.logger.Info("final dispatcher metrics",
		"total_published", d.counters.GetPublished(),
		"total_failed", d.counters.GetFailed(),
	)
}
