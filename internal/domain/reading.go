package domain

import "time"

// Reading is a single timestamped sensor measurement. Readings are immutable
// once constructed; downstream stages only transcode and persist them.
type Reading struct {
	Sensor    SensorID
	Value     Value
	Unit      Unit
	Timestamp Timestamp
}

func NewReading(sensor string, value float64, unit string, ts time.Time) (Reading, error) {
	id, err := NewSensorID(sensor)
	if err != nil {
		return Reading{}, err
	}

	u, err := NewUnit(unit)
	if err != nil {
		return Reading{}, err
	}

	v, err := NewValue(value)
	if err != nil {
		return Reading{}, err
	}

	t, err := NewTimestamp(ts)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Sensor:    id,
		Value:     v,
		Unit:      u,
		Timestamp: t,
	}, nil
}
