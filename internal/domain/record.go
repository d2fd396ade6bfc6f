package domain

import "time"

// Record is the persisted form of a Reading. ReceivedAt is assigned by the
// persister when the message arrives and is distinct from the capture
// timestamp carried inside the Reading.
type Record struct {
	Reading    Reading
	ReceivedAt time.Time
}

func NewRecord(r Reading, receivedAt time.Time) Record {
	return Record{
		Reading:    r,
		ReceivedAt: receivedAt,
	}
}
