package persister

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/application/common"
	"github.com/kvoloboi/sensorpipe/internal/application/persister/quarantine"
	"github.com/kvoloboi/sensorpipe/internal/domain"
	"github.com/kvoloboi/sensorpipe/internal/infrastructure/encoding"
)

// RecordStore persists one Record per Insert call.
type RecordStore interface {
	Insert(ctx context.Context, rec domain.Record) error
	io.Closer
}

// DiscardLog receives payloads the worker refused to persist.
type DiscardLog interface {
	Append(reason quarantine.Reason, payload []byte) error
}

type WorkerConfig struct {
	MaxRetries int
	Backoff    common.Backoff
	// RetryBudget caps the total time spent retrying a single insert so a
	// dead store cannot stall the queue behind one record.
	RetryBudget time.Duration
}

// Worker is the single consumer of the message queue. Each message is
// decoded, validated, and inserted as a Record; every failure mode is
// contained to the message that caused it.
//
// Handling is at-most-once locally. If the transport redelivers a message
// (at-least-once QoS), a duplicate record is inserted; this system monitors
// rather than ledgers, so duplicates are tolerated, not deduplicated.
type Worker struct {
	in       <-chan MessageItem
	store    RecordStore
	discards DiscardLog
	cfg      WorkerConfig
	logger   *slog.Logger
	counters *Counters

	started atomic.Bool
	done    chan struct{}
}

// NewWorker constructs a worker. Start() must be called explicitly.
// discards may be nil to disable quarantining.
func NewWorker(
	in <-chan MessageItem,
	store RecordStore,
	discards DiscardLog,
	cfg WorkerConfig,
	logger *slog.Logger,
	counters *Counters,
) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if counters == nil {
		counters = NewCounters()
	}

	return &Worker{
		in:       in,
		store:    store,
		discards: discards,
		cfg:      cfg,
		logger:   logger,
		counters: counters,
		done:     make(chan struct{}),
	}
}

// Start launches the worker loop. Only the first call takes effect.
func (w *Worker) Start(ctx context.Context) {
	if w.started.Swap(true) {
		return
	}

	go w.run(ctx)
}

// Done is closed once the worker loop has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case item, ok := <-w.in:
			if !ok {
				w.logger.Info("input channel closed")
				return
			}
			w.process(ctx, item)
		}
	}
}

// drain finishes messages already queued before shutdown.
func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for {
		select {
		case item, ok := <-w.in:
			if !ok {
				w.logger.Info("all messages drained")
				return
			}
			w.process(ctx, item)
		default:
			w.logger.Info("queue empty, drain complete")
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, item MessageItem) {
	w.counters.IncReceived()

	reading, err := encoding.Unmarshal(item.Payload)
	if err != nil {
		w.discard(item, err)
		return
	}

	rec := domain.NewRecord(reading, item.ReceivedAt)

	if err := w.insert(ctx, rec); err != nil {
		w.counters.IncDropped()
		w.quarantine(quarantine.ReasonStoreFailed, item.Payload)
		w.logger.Error(
			"store insert retries exhausted, dropping record",
			"sensor", rec.Reading.Sensor,
			"topic", item.Topic,
			"error", err,
		)
	}
}

// discard handles a payload that never became a Record. Parse failures and
// validation failures are split only for diagnostics; both continue with
// the next message.
func (w *Worker) discard(item MessageItem, err error) {
	if errors.Is(err, encoding.ErrMalformedPayload) {
		w.counters.IncMalformed()
		w.quarantine(quarantine.ReasonMalformed, item.Payload)
		w.logger.Warn("discarding malformed payload", "topic", item.Topic, "error", err)
		return
	}

	w.counters.IncInvalid()
	w.quarantine(quarantine.ReasonInvalid, item.Payload)
	w.logger.Warn("discarding invalid payload", "topic", item.Topic, "error", err)
}

func (w *Worker) insert(ctx context.Context, rec domain.Record) error {
	insertCtx := ctx
	if w.cfg.RetryBudget > 0 {
		var cancel context.CancelFunc
		insertCtx, cancel = context.WithTimeout(ctx, w.cfg.RetryBudget)
		defer cancel()
	}

	var lastErr error

	for attempt := 1; attempt <= w.cfg.MaxRetries; attempt++ {
		lastErr = w.store.Insert(insertCtx, rec)
		if lastErr == nil {
			w.counters.IncPersisted()
			return nil
		}

		if attempt == w.cfg.MaxRetries {
			break
		}

		delay := w.cfg.Backoff.Next(attempt)

		timer := time.NewTimer(delay)
		select {
		case <-insertCtx.Done():
			timer.Stop()
			return insertCtx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func (w *Worker) quarantine(reason quarantine.Reason, payload []byte) {
	if w.discards == nil {
		return
	}
	if err := w.discards.Append(reason, payload); err != nil {
		w.logger.Warn("quarantine append failed", "reason", reason, "err", err)
	}
}
