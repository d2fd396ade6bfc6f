package domain

import (
	"errors"
	"math"
)

var ErrValueNotFinite = errors.New("value must be a finite number")

// Value is a measured quantity. NaN and infinities are rejected at
// construction; the wire format cannot carry them and the store should
// never see them.
type Value struct {
	val float64
}

func NewValue(v float64) (Value, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}, ErrValueNotFinite
	}
	return Value{val: v}, nil
}

func (v Value) Float64() float64 {
	return v.val
}
