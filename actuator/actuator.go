// Package actuator provides the uniform on/off capability pad state drives,
// with concrete variants over GPIO, PWM and a desktop-friendly mock, behind
// one Actuator contract. This replaces the source's function-pointer
// "actuator" struct (two function pointers plus an untyped priv blob) with
// tagged, typed variants per spec §9's design note.
package actuator

import "context"

// Actuator is the capability pad state drives. Each variant owns its own
// typed configuration; there is no shared "priv" blob.
type Actuator interface {
	// TurnOn commands the device on. A non-nil error is always an
	// hysimerr.ErrHardware-class failure; the caller must not update
	// recorded state when this returns an error.
	TurnOn(ctx context.Context) error
	// TurnOff commands the device off, with the same error contract.
	TurnOff(ctx context.Context) error
}
