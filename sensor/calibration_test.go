package sensor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carletonu/hysim-go/sensor"
)

func TestCalibratePressureBelowThresholdIsZero(t *testing.T) {
	require.Equal(t, int32(0), sensor.CalibratePressure(0.5, 0))
}

func TestCalibratePressureFullScale(t *testing.T) {
	require.Equal(t, int32(1000000), sensor.CalibratePressure(5.0, 0))
	require.Equal(t, int32(2500000), sensor.CalibratePressure(5.0, 4))
}

func TestCalibrateThrustRange(t *testing.T) {
	require.Equal(t, uint32(0), sensor.CalibrateThrust(0))
	got := sensor.CalibrateThrust(5.053)
	require.InDelta(t, 11120, got, 1)
}

func TestCalibrateContinuityThreshold(t *testing.T) {
	require.False(t, sensor.CalibrateContinuity(0.9))
	require.True(t, sensor.CalibrateContinuity(1.1))
}

func TestCalibrateTemperatureRoomTemperature(t *testing.T) {
	// A thermistor reading near its reference divider midpoint should land
	// somewhere in a plausible room-temperature band; this pins the
	// Steinhart-Hart wiring rather than an exact value.
	v := sensor.CalibrateTemperature(2.4, sensor.Thermistor1)
	require.Greater(t, v, int32(-50000))
	require.Less(t, v, int32(150000))
}

func TestCalibrateTemperatureZeroVoltsIsZero(t *testing.T) {
	require.Equal(t, int32(0), sensor.CalibrateTemperature(0, sensor.Thermistor1))
}

func TestADCVolts(t *testing.T) {
	require.InDelta(t, 6.144, sensor.ADCVolts(32768), 0.001)
	require.InDelta(t, 0, sensor.ADCVolts(0), 0.001)
}
