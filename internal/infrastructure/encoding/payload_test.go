package encoding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kvoloboi/sensorpipe/internal/domain"
)

func mustReading(t *testing.T, sensor string, value float64, unit string, ts time.Time) domain.Reading {
	t.Helper()
	r, err := domain.NewReading(sensor, value, unit, ts)
	require.NoError(t, err)
	return r
}

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	in := mustReading(t, "temp-01", 23.5, "C", ts)

	payload, err := Marshal(in)
	require.NoError(t, err)

	out, err := Unmarshal(payload)
	require.NoError(t, err)

	require.Equal(t, in.Sensor.String(), out.Sensor.String())
	require.Equal(t, in.Value.Float64(), out.Value.Float64())
	require.Equal(t, in.Unit.String(), out.Unit.String())
	require.True(t, out.Timestamp.Time().Equal(ts))
}

func TestRoundTripPreservesPrecision(t *testing.T) {
	// Values that tend to lose digits in careless float formatting.
	for _, v := range []float64{0.1, 1.0 / 3.0, 1e-12, 123456789.123456789, -273.15} {
		in := mustReading(t, "temp-01", v, "C", time.Now().UTC())

		payload, err := Marshal(in)
		require.NoError(t, err)

		out, err := Unmarshal(payload)
		require.NoError(t, err)
		require.Equal(t, v, out.Value.Float64())
	}
}

func TestUnmarshalRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"no sensor_id": `{"value":1.5,"unit":"C","timestamp":"2026-01-02T15:04:05Z"}`,
		"no value":     `{"sensor_id":"temp-01","unit":"C","timestamp":"2026-01-02T15:04:05Z"}`,
		"no unit":      `{"sensor_id":"temp-01","value":1.5,"timestamp":"2026-01-02T15:04:05Z"}`,
		"no timestamp": `{"sensor_id":"temp-01","value":1.5,"unit":"C"}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal([]byte(payload))
			require.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestUnmarshalRejectsNonNumericValue(t *testing.T) {
	_, err := Unmarshal([]byte(`{"sensor_id":"temp-01","value":"hot","unit":"C","timestamp":"2026-01-02T15:04:05Z"}`))
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestUnmarshalRejectsBadTimestamp(t *testing.T) {
	_, err := Unmarshal([]byte(`{"sensor_id":"temp-01","value":1.5,"unit":"C","timestamp":"yesterday"}`))
	require.ErrorIs(t, err, ErrBadField)
}

func TestUnmarshalRejectsMalformedJSON(t *testing.T) {
	for _, payload := range []string{"", "{", "not json at all", `[1,2,3]`} {
		_, err := Unmarshal([]byte(payload))
		require.ErrorIs(t, err, ErrMalformedPayload)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	payload := `{"sensor_id":"temp-01","value":23.5,"unit":"C","timestamp":"2026-01-02T15:04:05Z","firmware":"v2","rssi":-67}`

	out, err := Unmarshal([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, "temp-01", out.Sensor.String())
	require.Equal(t, 23.5, out.Value.Float64())
}
