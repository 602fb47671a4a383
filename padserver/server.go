// Package padserver wires pad state to the network: the controller task
// (spec §4.4, a single-client TCP control channel) and the telemetry task
// (spec §4.5, a UDP multicast broadcast of sensor and state data), plus the
// optional mock-data replay and Prometheus exporter that back them.
//
// Grounded on giesekow-go-netdicom's provider accept loop (its
// net.Listener.Accept loop reading one PDU at a time off a single
// connection) and 99souls-ariadne's engine lifecycle (context-cancellation
// driven shutdown of concurrent subsystems).
package padserver

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/carletonu/hysim-go/config"
	"github.com/carletonu/hysim-go/metrics"
	"github.com/carletonu/hysim-go/mockfile"
	"github.com/carletonu/hysim-go/padstate"
	"github.com/carletonu/hysim-go/sensor"
)

// Server owns the pad server process's two long-running tasks and the
// PadState they share.
type Server struct {
	state   *padstate.PadState
	tuning  config.Tuning
	log     *slog.Logger
	metrics *metrics.Registry

	controllerAddr string
	telemetryAddr  string

	analog   []sensor.Source
	digital  []sensor.DigitalSource
	mockData []mockfile.Record
}

// Option configures a Server at construction.
type Option func(*Server)

// WithMetrics attaches a Prometheus registry; every arm/conn/actuator change
// is mirrored into it in addition to pad state.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithSensors registers the analog (ADC-triggered) and digital (push/fresh)
// sources the telemetry task samples (spec §4.5).
func WithSensors(analog []sensor.Source, digital []sensor.DigitalSource) Option {
	return func(s *Server) { s.analog = analog; s.digital = digital }
}

// WithMockData replaces live sensor sampling with a scripted replay (spec §6
// -f flag), useful for bring-up without hardware attached.
func WithMockData(records []mockfile.Record) Option {
	return func(s *Server) { s.mockData = records }
}

// New builds a Server bound to state, listening for control connections on
// controllerAddr (host:port) and publishing telemetry to telemetryAddr
// (multicast-group:port).
func New(state *padstate.PadState, tuning config.Tuning, logger *slog.Logger, controllerAddr, telemetryAddr string, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		state:          state,
		tuning:         tuning,
		log:            logger,
		controllerAddr: controllerAddr,
		telemetryAddr:  telemetryAddr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the controller and telemetry tasks and blocks until both stop,
// returning the first non-context-cancellation error either reports.
// Cancelling ctx shuts both tasks down (spec §5's cancellation semantics).
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := s.RunController(ctx)
		if err != nil {
			cancel()
		}
		errs <- err
	}()

	go func() {
		defer wg.Done()
		err := s.RunTelemetry(ctx)
		if err != nil {
			cancel()
		}
		errs <- err
	}()

	wg.Wait()
	close(errs)

	var first error
	for err := range errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		if first == nil {
			first = err
		}
	}
	return first
}
