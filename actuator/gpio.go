package actuator

import (
	"context"
	"fmt"

	"github.com/carletonu/hysim-go/hysimerr"
)

// GpioLine is the narrow surface a platform GPIO character-device binding
// must implement: write a high or low level. Opening and closing the line
// are left to the binding; Gpio never opens or closes it.
type GpioLine interface {
	SetHigh() error
	SetLow() error
}

// Gpio is the signal-level actuator variant: it writes high/low to an
// already-open line. It owns the line handle; PadState only ever sees the
// Actuator interface.
type Gpio struct {
	Line       GpioLine
	ActiveHigh bool // when false, "on" writes low and "off" writes high
}

func NewGpio(line GpioLine, activeHigh bool) *Gpio {
	return &Gpio{Line: line, ActiveHigh: activeHigh}
}

func (g *Gpio) TurnOn(_ context.Context) error {
	var err error
	if g.ActiveHigh {
		err = g.Line.SetHigh()
	} else {
		err = g.Line.SetLow()
	}
	if err != nil {
		return fmt.Errorf("actuator: gpio turn on: %w: %w", err, hysimerr.ErrHardware)
	}
	return nil
}

func (g *Gpio) TurnOff(_ context.Context) error {
	var err error
	if g.ActiveHigh {
		err = g.Line.SetLow()
	} else {
		err = g.Line.SetHigh()
	}
	if err != nil {
		return fmt.Errorf("actuator: gpio turn off: %w: %w", err, hysimerr.ErrHardware)
	}
	return nil
}
