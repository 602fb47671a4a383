// Command pad-server runs the ground-support launch-pad control process:
// the TCP controller task and the UDP multicast telemetry task over one
// shared pad state (spec §4.4, §4.5, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/carletonu/hysim-go/actuator"
	"github.com/carletonu/hysim-go/config"
	"github.com/carletonu/hysim-go/metrics"
	"github.com/carletonu/hysim-go/mockfile"
	"github.com/carletonu/hysim-go/packet"
	"github.com/carletonu/hysim-go/padserver"
	"github.com/carletonu/hysim-go/padstate"
	"github.com/carletonu/hysim-go/sensor"
)

func main() {
	var (
		telemetryPort  int
		controllerPort int
		multicastAddr  string
		mockDataPath   string
		metricsAddr    string
		tuningPath     string
	)
	flag.IntVar(&telemetryPort, "t", 50002, "telemetry UDP port")
	flag.IntVar(&controllerPort, "c", 50001, "controller TCP port")
	flag.StringVar(&multicastAddr, "a", "239.100.110.210", "telemetry multicast group address")
	flag.StringVar(&mockDataPath, "f", "", "optional mock-data replay file (disables live sensor sampling)")
	flag.StringVar(&metricsAddr, "m", "", "optional Prometheus metrics listen address (e.g. :9090)")
	flag.StringVar(&tuningPath, "config", "", "optional YAML tuning override file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tuning, err := config.Load(tuningPath)
	if err != nil {
		logger.Error("load tuning config", slog.Any("err", err))
		os.Exit(1)
	}

	hw := desktopActuators(logger)
	state := padstate.New(hw, logger)

	opts := []padserver.Option{}

	if mockDataPath == "" {
		analog, digital := desktopSensors(logger)
		opts = append(opts, padserver.WithSensors(analog, digital))
	}

	if metricsAddr != "" {
		reg := metrics.NewRegistry()
		opts = append(opts, padserver.WithMetrics(reg))
		go func() {
			if err := metrics.Serve(metricsAddr, reg); err != nil {
				logger.Error("metrics server stopped", slog.Any("err", err))
			}
		}()
	}

	if mockDataPath != "" {
		f, err := os.Open(mockDataPath)
		if err != nil {
			logger.Error("open mock data file", slog.Any("err", err))
			os.Exit(1)
		}
		records, err := mockfile.Parse(f)
		f.Close()
		if err != nil {
			logger.Error("parse mock data file", slog.Any("err", err))
			os.Exit(1)
		}
		opts = append(opts, padserver.WithMockData(records))
	}

	controllerAddr := fmt.Sprintf(":%d", controllerPort)
	telemetryAddr := fmt.Sprintf("%s:%d", multicastAddr, telemetryPort)
	srv := padserver.New(state, tuning, logger, controllerAddr, telemetryAddr, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Info("signal received, shutting down")
		cancel()
		<-sigCh
		logger.Warn("second signal received, forcing exit")
		os.Exit(1)
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("pad server aborted", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("pad server shut down cleanly")
}

// desktopActuators binds every actuator slot to a Mock (spec §4.3, §6):
// this build has no GPIO/PWM target binding, matching the "printf-mocks on
// desktop" half of the hardware interface contract.
func desktopActuators(logger *slog.Logger) map[packet.ActuatorID]actuator.Actuator {
	hw := make(map[packet.ActuatorID]actuator.Actuator, packet.NumActuators)
	for id := packet.ActuatorXV1; id <= packet.ActuatorDump; id++ {
		hw[id] = actuator.NewMock(id.Name(), logger)
	}
	return hw
}

// desktopSensors binds one Mock analog Source per telemetry channel (spec
// §4.5, §6): this build has no ADS1115/load-cell target binding, matching
// the "printf-mocks on desktop" half of the sensor interface contract. No
// DigitalSource is mocked here; the mass/thermocouple push path has no
// off-target stand-in to drive it without real data.
func desktopSensors(logger *slog.Logger) ([]sensor.Source, []sensor.DigitalSource) {
	analog := []sensor.Source{
		sensor.NewMock(0, sensor.ChannelPressure, logger),
		sensor.NewMock(1, sensor.ChannelThrust, logger),
		sensor.NewMock(0, sensor.ChannelTemperature, logger),
		sensor.NewMock(1, sensor.ChannelTemperature, logger),
		sensor.NewMock(0, sensor.ChannelContinuity, logger),
	}
	return analog, nil
}
