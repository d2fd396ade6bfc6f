package edge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulatedSensorIsDeterministicForFixedSeed(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Seed = 42

	a, err := NewSimulatedSensor("temp-01", "C", cfg)
	require.NoError(t, err)
	b, err := NewSimulatedSensor("temp-01", "C", cfg)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		ra, err := a.Sample(ctx)
		require.NoError(t, err)
		rb, err := b.Sample(ctx)
		require.NoError(t, err)

		require.Equal(t, ra.Value.Float64(), rb.Value.Float64(), "sample %d", i)
	}
}

func TestSimulatedSensorStaysNearNormalBand(t *testing.T) {
	cfg := SimConfig{AmbientC: 21, NormalMinC: 20, NormalMaxC: 26, Seed: 7}

	s, err := NewSimulatedSensor("temp-01", "C", cfg)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 500; i++ {
		r, err := s.Sample(ctx)
		require.NoError(t, err)

		v := r.Value.Float64()
		require.GreaterOrEqual(t, v, cfg.NormalMinC-1)
		require.LessOrEqual(t, v, cfg.NormalMaxC+1)
	}
}

func TestSimulatedSensorRejectsBadConfig(t *testing.T) {
	_, err := NewSimulatedSensor("", "C", DefaultSimConfig())
	require.Error(t, err)

	_, err = NewSimulatedSensor("temp-01", "", DefaultSimConfig())
	require.Error(t, err)

	_, err = NewSimulatedSensor("temp-01", "C", SimConfig{NormalMinC: 30, NormalMaxC: 20})
	require.Error(t, err)
}

func TestSimulatedSensorFailsOnCancelledContext(t *testing.T) {
	s, err := NewSimulatedSensor("temp-01", "C", DefaultSimConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Sample(ctx)
	require.ErrorIs(t, err, ErrSensorRead)
}
