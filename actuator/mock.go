package actuator

import (
	"context"
	"log/slog"
)

// Mock is the desktop-bringup actuator variant: it performs no hardware
// I/O and simply logs the command, grounded on original_source's
// gpio_dummy_actuator.c / pwm_dummy_actuator.c (log-only stand-ins used
// when running off-target).
type Mock struct {
	Name   string
	Logger *slog.Logger
}

func NewMock(name string, logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{Name: name, Logger: logger}
}

func (m *Mock) TurnOn(_ context.Context) error {
	m.Logger.Info("mock actuator on", slog.String("actuator", m.Name))
	return nil
}

func (m *Mock) TurnOff(_ context.Context) error {
	m.Logger.Info("mock actuator off", slog.String("actuator", m.Name))
	return nil
}
