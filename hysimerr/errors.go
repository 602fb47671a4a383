// Package hysimerr defines the sentinel error kinds shared across the pad
// server, control client and telemetry client. Callers wrap these with
// fmt.Errorf("...: %w", ...) to add context; errors.Is against the sentinels
// recovers the taxonomy.
package hysimerr

import "errors"

var (
	// ErrMalformedPacket is returned by the codec when a header names an
	// unknown type/subtype, or a telemetry client receives a non-TELEM
	// packet.
	ErrMalformedPacket = errors.New("hysim: malformed packet")

	// ErrUnknownActuator is returned when a request names an actuator ID
	// outside the configured set.
	ErrUnknownActuator = errors.New("hysim: unknown actuator id")

	// ErrProtocolViolation covers an ACK subtype arriving at the
	// controller, or a telemetry subtype arriving on the control channel.
	// It is always fatal to the connection that produced it.
	ErrProtocolViolation = errors.New("hysim: protocol violation")

	// ErrHardware is returned by an Actuator when the underlying device
	// command fails; recorded pad state is left unchanged.
	ErrHardware = errors.New("hysim: actuator hardware failure")

	// ErrAborted is returned by the controller task when its bounded
	// re-accept wait elapses without a reconnect.
	ErrAborted = errors.New("hysim: controller abort timeout elapsed")
)
