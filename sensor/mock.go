package sensor

import (
	"context"
	"log/slog"
)

// Mock is the desktop-bringup Source: it performs no ADC I/O and returns a
// fixed idle-range voltage for its channel, grounded on actuator.Mock's
// log-only stand-in for hardware not present off target.
type Mock struct {
	id      uint8
	channel Channel
	volts   float64
	logger  *slog.Logger
}

// NewMock builds a Mock Source reporting a steady idle-range voltage for
// channel: 1.0V for pressure (reads as 0 mPSI, the bottom of the 1-5V
// transducer range), 0.0V for
// thrust, a mid-range divider voltage for temperature, and 0.0V (not
// continuous) for continuity.
func NewMock(id uint8, channel Channel, logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	volts := 0.0
	switch channel {
	case ChannelPressure:
		volts = pressureVMin
	case ChannelTemperature:
		volts = thermistorSupplyV / 2
	}
	return &Mock{id: id, channel: channel, volts: volts, logger: logger}
}

func (m *Mock) SensorID() uint8  { return m.id }
func (m *Mock) Channel() Channel { return m.channel }

func (m *Mock) Trigger(_ context.Context) error {
	return nil
}

func (m *Mock) Read(_ context.Context) (float64, error) {
	m.logger.Debug("mock sensor read", slog.Int("sensor_id", int(m.id)), slog.Float64("volts", m.volts))
	return m.volts, nil
}
