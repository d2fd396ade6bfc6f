package domain

import "errors"

type Unit struct {
	unit string
}

const MaxUnitLen = 16

var (
	ErrUnitTooLong = errors.New("unit too long")
	ErrUnitEmpty   = errors.New("unit cannot be empty")
)

func NewUnit(unit string) (Unit, error) {
	if len(unit) == 0 {
		return Unit{}, ErrUnitEmpty
	}
	if len(unit) > MaxUnitLen {
		return Unit{}, ErrUnitTooLong
	}
	return Unit{unit: unit}, nil
}

func (u Unit) String() string {
	return u.unit
}
