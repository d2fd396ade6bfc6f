// Package httpstore posts records as JSON to an HTTP ingest endpoint, for
// deployments that front their document store with a REST API instead of
// exposing the database directly.
package httpstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

var ErrInsert = errors.New("insert failed")

const recordsPath = "/records"

type Store struct {
	client *Client
	logger *slog.Logger
}

func NewStore(baseURL string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		logger: logger,
	}, nil
}

type recordJSON struct {
	SensorID   string  `json:"sensor_id"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Timestamp  string  `json:"timestamp"`
	ReceivedAt string  `json:"received_at"`
}

func (s *Store) Insert(ctx context.Context, rec domain.Record) error {
	payload := recordJSON{
		SensorID:   rec.Reading.Sensor.String(),
		Value:      rec.Reading.Value.Float64(),
		Unit:       rec.Reading.Unit.String(),
		Timestamp:  rec.Reading.Timestamp.Time().Format(time.RFC3339Nano),
		ReceivedAt: rec.ReceivedAt.Format(time.RFC3339Nano),
	}

	if err := s.client.Post(ctx, recordsPath, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInsert, err)
	}

	return nil
}

// Close implements io.Closer
func (s *Store) Close() error {
	// Nothing to close for the http client
	// kept for interface stability with other stores
	return nil
}
