package edge

import (
	"context"
	"log/slog"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

// Sampler reads the sensor source on a fixed interval and pushes readings
// onto a queue consumed by the Dispatcher.
type Sampler struct {
	source   SensorSource
	interval time.Duration
	out      chan<- domain.Reading
	logger   *slog.Logger
	counters *Counters
}

func NewSampler(
	source SensorSource,
	interval time.Duration,
	out chan<- domain.Reading,
	logger *slog.Logger,
	counters *Counters,
) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	if counters == nil {
		counters = NewCounters()
	}

	return &Sampler{
		source:   source,
		interval: interval,
		out:      out,
		logger:   logger,
		counters: counters,
	}
}

func (s *Sampler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Error("invalid sampling interval", "value", s.interval)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sampler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(
				"sampler stopped",
				"total_sampled", s.counters.GetSampled(),
				"total_skipped", s.counters.GetSkipped(),
				"total_dropped", s.counters.GetDropped(),
			)
			return
		case <-ticker.C:
			reading, err := s.source.Sample(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				// A missing sample is acceptable; a fabricated one is not.
				s.counters.IncSkipped()
				s.logger.Warn("sensor read failed, skipping tick", "err", err)
				continue
			}

			select {
			case s.out <- reading:
				s.counters.IncSampled()
			default:
				s.counters.IncDropped()
			}
		}
	}
}
