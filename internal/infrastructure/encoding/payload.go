// Package encoding implements the wire payload format shared by the edge
// publisher and the persister.
//
// A payload is a flat JSON object carrying exactly four fields:
//
//	{"sensor_id":"temp-01","value":23.5,"unit":"C","timestamp":"2026-01-02T15:04:05.999999999Z"}
//
// The timestamp is RFC 3339 with nanoseconds. Decoders ignore unknown extra
// fields so that newer publishers can add fields without breaking older
// persisters; missing or mistyped required fields fail validation.
package encoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingField     = errors.New("missing required field")
	ErrBadField         = errors.New("invalid field value")
)

type payloadJSON struct {
	SensorID  *string  `json:"sensor_id"`
	Value     *float64 `json:"value"`
	Unit      *string  `json:"unit"`
	Timestamp *string  `json:"timestamp"`
}

// Marshal encodes a Reading into its wire payload.
func Marshal(r domain.Reading) ([]byte, error) {
	sensor := r.Sensor.String()
	value := r.Value.Float64()
	unit := r.Unit.String()
	ts := r.Timestamp.Time().Format(time.RFC3339Nano)

	payload := payloadJSON{
		SensorID:  &sensor,
		Value:     &value,
		Unit:      &unit,
		Timestamp: &ts,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	return b, nil
}

// Unmarshal decodes a wire payload back into a Reading. Pointer fields
// distinguish an absent key from a zero value.
func Unmarshal(data []byte) (domain.Reading, error) {
	var payload payloadJSON

	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.SensorID == nil {
		return domain.Reading{}, fmt.Errorf("%w: sensor_id", ErrMissingField)
	}
	if payload.Value == nil {
		return domain.Reading{}, fmt.Errorf("%w: value", ErrMissingField)
	}
	if payload.Unit == nil {
		return domain.Reading{}, fmt.Errorf("%w: unit", ErrMissingField)
	}
	if payload.Timestamp == nil {
		return domain.Reading{}, fmt.Errorf("%w: timestamp", ErrMissingField)
	}

	ts, err := time.Parse(time.RFC3339Nano, *payload.Timestamp)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: timestamp: %v", ErrBadField, err)
	}

	reading, err := domain.NewReading(*payload.SensorID, *payload.Value, *payload.Unit, ts)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrBadField, err)
	}

	return reading, nil
}
