package domain

import (
	"errors"
	"time"
)

var ErrTimestampZero = errors.New("timestamp must be set")

// Timestamp is the capture time of a reading, normalized to UTC so that
// records compare consistently regardless of the publisher's locale.
type Timestamp struct {
	time time.Time
}

func NewTimestamp(t time.Time) (Timestamp, error) {
	if t.IsZero() {
		return Timestamp{}, ErrTimestampZero
	}
	return Timestamp{time: t.UTC()}, nil
}

func (t Timestamp) Time() time.Time {
	return t.time
}
