package actuator

import (
	"context"
	"fmt"

	"github.com/carletonu/hysim-go/hysimerr"
)

// DefaultPwmFrequencyHz is the channel frequency used when a PWM actuator
// is not otherwise configured (spec §4.3).
const DefaultPwmFrequencyHz = 250

// PwmChannel is the narrow surface a platform PWM binding must implement.
type PwmChannel interface {
	Configure(frequencyHz uint32) error
	SetDutyCycle(duty uint32) error
	Start() error
}

// Pwm is the duty-cycle actuator variant: program the channel, set a duty
// cycle (CloseDuty or OpenDuty) at FrequencyHz, start the signal.
type Pwm struct {
	Channel     PwmChannel
	FrequencyHz uint32
	OpenDuty    uint32
	CloseDuty   uint32

	configured bool
}

func NewPwm(ch PwmChannel, frequencyHz, openDuty, closeDuty uint32) *Pwm {
	if frequencyHz == 0 {
		frequencyHz = DefaultPwmFrequencyHz
	}
	return &Pwm{Channel: ch, FrequencyHz: frequencyHz, OpenDuty: openDuty, CloseDuty: closeDuty}
}

func (p *Pwm) ensureConfigured() error {
	if p.configured {
		return nil
	}
	if err := p.Channel.Configure(p.FrequencyHz); err != nil {
		return err
	}
	p.configured = true
	return nil
}

func (p *Pwm) drive(duty uint32) error {
	if err := p.ensureConfigured(); err != nil {
		return fmt.Errorf("actuator: pwm configure: %w: %w", err, hysimerr.ErrHardware)
	}
	if err := p.Channel.SetDutyCycle(duty); err != nil {
		return fmt.Errorf("actuator: pwm set duty: %w: %w", err, hysimerr.ErrHardware)
	}
	if err := p.Channel.Start(); err != nil {
		return fmt.Errorf("actuator: pwm start: %w: %w", err, hysimerr.ErrHardware)
	}
	return nil
}

func (p *Pwm) TurnOn(_ context.Context) error  { return p.drive(p.OpenDuty) }
func (p *Pwm) TurnOff(_ context.Context) error { return p.drive(p.CloseDuty) }
