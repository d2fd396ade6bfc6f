package edge

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

// ErrSensorRead marks a transient sampling failure. The sampler skips the
// tick; no placeholder reading is ever emitted in its place.
var ErrSensorRead = errors.New("sensor read failed")

// SensorSource produces one Reading per call. Hardware-backed sources wrap
// device faults in ErrSensorRead instead of returning a sentinel value.
type SensorSource interface {
	Sample(ctx context.Context) (domain.Reading, error)
}

// SimConfig shapes the simulated temperature walk. Each sample relaxes the
// current temperature toward a target drawn uniformly from the normal band.
type SimConfig struct {
	AmbientC   float64
	NormalMinC float64
	NormalMaxC float64
	// Seed fixes the random walk for reproducible runs; 0 seeds from the
	// clock.
	Seed uint64
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		AmbientC:   21.0,
		NormalMinC: 20.0,
		NormalMaxC: 26.0,
	}
}

// SimulatedSensor satisfies SensorSource without hardware attached.
type SimulatedSensor struct {
	sensor string
	unit   string
	temp   float64
	cfg    SimConfig
	rand   *rand.Rand
	now    func() time.Time
}

func NewSimulatedSensor(sensor, unit string, cfg SimConfig) (*SimulatedSensor, error) {
	if _, err := domain.NewSensorID(sensor); err != nil {
		return nil, fmt.Errorf("simulated sensor: %w", err)
	}
	if _, err := domain.NewUnit(unit); err != nil {
		return nil, fmt.Errorf("simulated sensor: %w", err)
	}
	if cfg.NormalMinC > cfg.NormalMaxC {
		return nil, errors.New("simulated sensor: normal band is inverted")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &SimulatedSensor{
		sensor: sensor,
		unit:   unit,
		temp:   cfg.AmbientC,
		cfg:    cfg,
		rand:   rand.New(rand.NewPCG(seed, seed>>1)),
		now:    time.Now,
	}, nil
}

func (s *SimulatedSensor) Sample(ctx context.Context) (domain.Reading, error) {
	if err := ctx.Err(); err != nil {
		return domain.Reading{}, fmt.Errorf("%w: %v", ErrSensorRead, err)
	}

	target := s.cfg.NormalMinC + s.rand.Float64()*(s.cfg.NormalMaxC-s.cfg.NormalMinC)
	s.temp += (target - s.temp) * 0.05

	return domain.NewReading(s.sensor, s.temp, s.unit, s.now())
}
