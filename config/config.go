// Package config carries the pad server's optional on-disk tuning
// parameters (keep-alive intervals, heartbeat timeout, abort timeout).
// These tune the server, they are not pad state: nothing here is persisted
// across restarts and nothing here survives a restart by design (spec's
// Non-goal on state recovery is untouched by this file).
//
// Grounded on 99souls-ariadne's JSON config loader
// (cli/cmd/ariadne/main.go's simpleJSONConfig): same "optional override
// file, flags win" shape, using YAML (gopkg.in/yaml.v3, also used by
// ariadne) since the pack's only config-file precedent is that loader.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds every pad-server timing knob that spec.md pins to a default
// but allows an operator to override.
type Tuning struct {
	// AbortTimeout bounds the controller's re-accept wait after a
	// connection loss (spec §4.4, default 20s).
	AbortTimeout time.Duration `yaml:"abort_timeout"`
	// HeartbeatTimeout bounds the telemetry heartbeat's wait on the
	// update signal (spec §4.5, default 5s).
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	// SensorSampleHz is the sensor sampling loop cadence (spec §4.5,
	// default 10Hz).
	SensorSampleHz float64 `yaml:"sensor_sample_hz"`
	// TCPKeepIdle/Interval/Count tune SO_KEEPALIVE on the control socket
	// (spec §4.4).
	TCPKeepIdle     time.Duration `yaml:"tcp_keepalive_idle"`
	TCPKeepInterval time.Duration `yaml:"tcp_keepalive_interval"`
	TCPKeepCount    int           `yaml:"tcp_keepalive_count"`
	// ReconnectBackoff is the control client's retry backoff (spec §4.6,
	// default 1s).
	ReconnectBackoff time.Duration `yaml:"reconnect_backoff"`
}

// Default returns the tuning spec.md pins as literal defaults.
func Default() Tuning {
	return Tuning{
		AbortTimeout:     20 * time.Second,
		HeartbeatTimeout: 5 * time.Second,
		SensorSampleHz:   10,
		TCPKeepIdle:      10 * time.Second,
		TCPKeepInterval:  3 * time.Second,
		TCPKeepCount:     3,
		ReconnectBackoff: time.Second,
	}
}

// Load reads a YAML tuning file and overlays it on top of Default(), so an
// operator's file may specify only the knobs they want to change.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return t, nil
}
