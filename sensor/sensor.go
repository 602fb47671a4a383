// Package sensor provides the external-collaborator interfaces the
// telemetry task samples from (spec §4.5, §6) and the calibration math that
// converts raw ADC/voltage readings into typed measurements, recovered from
// original_source/pad_server/src/sensors.c.
package sensor

import "context"

// Channel identifies what an analog reading represents.
type Channel int

const (
	ChannelPressure Channel = iota
	ChannelThrust
	ChannelTemperature
	ChannelContinuity
)

// Measurement is one typed, timestamped reading ready to serialize onto the
// wire. Exactly one of the typed fields is meaningful, selected by Channel.
type Measurement struct {
	SensorID    uint8
	Channel     Channel
	PressureMP  int32 // milli-PSI
	ThrustN     uint32
	TempMilliC  int32
	Continuous  bool
}

// Source triggers an ADC conversion and reads the raw sample for one analog
// channel. Implementations bind this to ADS1115-class hardware on target, or
// a recorded/mock source off target.
type Source interface {
	// SensorID identifies which physical sensor this Source reads.
	SensorID() uint8
	// Channel reports what physical quantity this Source measures.
	Channel() Channel
	// Trigger starts a conversion; Mock/digital sources may no-op.
	Trigger(ctx context.Context) error
	// Read returns the raw sample voltage, in volts.
	Read(ctx context.Context) (volts float64, err error)
}

// DigitalSource is the non-ADC sensor path (mass load cell, uORB-style
// thermocouple topics): data arrives asynchronously and is fetched only
// when fresh, independent of the fixed-cadence analog loop (spec §4.5).
type DigitalSource interface {
	SensorID() uint8
	// ReadIfFresh returns the latest measurement and true if a new sample
	// has arrived since the last call, or the zero value and false
	// otherwise.
	ReadIfFresh(ctx context.Context) (Measurement, bool, error)
}
