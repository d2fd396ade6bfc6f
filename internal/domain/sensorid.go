package domain

import "errors"

type SensorID struct {
	id string
}

const MaxSensorIDLen = 255

var (
	ErrSensorIDTooLong = errors.New("sensor id too long")
	ErrSensorIDEmpty   = errors.New("sensor id cannot be empty")
)

func NewSensorID(id string) (SensorID, error) {
	if len(id) == 0 {
		return SensorID{}, ErrSensorIDEmpty
	}
	if len(id) > MaxSensorIDLen {
		return SensorID{}, ErrSensorIDTooLong
	}
	return SensorID{id: id}, nil
}

func (s SensorID) String() string {
	return s.id
}
