package padserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/carletonu/hysim-go/packet"
	"github.com/carletonu/hysim-go/sensor"
)

// RunTelemetry is the telemetry task (spec §4.5): a sensor sampling loop
// publishing analog and digital readings at a fixed cadence, and a
// heartbeat sub-task that publishes the full arm/connection/actuator
// snapshot whenever pad state changes or every HeartbeatTimeout, whichever
// comes first. Both share one UDP socket, serialized through sendMu so
// their datagrams never interleave.
func (s *Server) RunTelemetry(ctx context.Context) error {
	raddr, err := net.ResolveUDPAddr("udp4", s.telemetryAddr)
	if err != nil {
		return fmt.Errorf("padserver: resolve telemetry addr %s: %w", s.telemetryAddr, err)
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return fmt.Errorf("padserver: dial telemetry %s: %w", s.telemetryAddr, err)
	}
	defer conn.Close()

	s.log.Info("telemetry publishing", slog.String("addr", s.telemetryAddr))

	var sendMu sync.Mutex
	send := func(msgs ...packet.Message) error {
		buf, err := packet.EncodeDatagram(msgs...)
		if err != nil {
			return err
		}
		sendMu.Lock()
		defer sendMu.Unlock()
		_, err = conn.Write(buf)
		return err
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if len(s.mockData) > 0 {
			errs <- s.replayMockData(ctx, send)
			return
		}
		errs <- s.runSensorLoop(ctx, send)
	}()
	go func() {
		defer wg.Done()
		errs <- s.runHeartbeat(ctx, send)
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return ctx.Err()
}

// runSensorLoop triggers and reads every registered analog Source on a
// fixed cadence, polls every DigitalSource for a fresh reading, calibrates
// each, and publishes the result (spec §4.5).
func (s *Server) runSensorLoop(ctx context.Context, send func(...packet.Message) error) error {
	if s.tuning.SensorSampleHz <= 0 {
		return fmt.Errorf("padserver: sensor sample rate must be positive, got %f", s.tuning.SensorSampleHz)
	}
	period := time.Duration(float64(time.Second) / s.tuning.SensorSampleHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := s.state.MillisSinceStart()
			for _, src := range s.analog {
				msg, err := s.sampleAnalog(ctx, src, now)
				if err != nil {
					s.log.Error("sensor read failed", slog.Any("err", err))
					continue
				}
				if err := send(msg); err != nil {
					return fmt.Errorf("padserver: send telemetry: %w", err)
				}
			}
			for _, src := range s.digital {
				meas, fresh, err := src.ReadIfFresh(ctx)
				if err != nil {
					s.log.Error("digital sensor read failed", slog.Any("err", err))
					continue
				}
				if !fresh {
					continue
				}
				if err := send(digitalToMessage(now, meas)); err != nil {
					return fmt.Errorf("padserver: send telemetry: %w", err)
				}
			}
		}
	}
}

func (s *Server) sampleAnalog(ctx context.Context, src sensor.Source, now uint32) (packet.Message, error) {
	if err := src.Trigger(ctx); err != nil {
		return nil, fmt.Errorf("trigger sensor %d: %w", src.SensorID(), err)
	}
	volts, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sensor %d: %w", src.SensorID(), err)
	}
	id := src.SensorID()
	switch src.Channel() {
	case sensor.ChannelPressure:
		return packet.Pressure{Time: now, Pressure: sensor.CalibratePressure(volts, id), ID: id}, nil
	case sensor.ChannelThrust:
		return packet.Thrust{Time: now, Thrust: sensor.CalibrateThrust(volts)}, nil
	case sensor.ChannelTemperature:
		coeff := sensor.Thermistor1
		if id != 0 {
			coeff = sensor.Thermistor2
		}
		return packet.Temp{Time: now, Temperature: sensor.CalibrateTemperature(volts, coeff), ID: id}, nil
	case sensor.ChannelContinuity:
		return packet.Cont{Time: now, State: sensor.CalibrateContinuity(volts)}, nil
	default:
		return nil, fmt.Errorf("sensor %d: unknown channel %d", id, src.Channel())
	}
}

func digitalToMessage(now uint32, m sensor.Measurement) packet.Message {
	switch m.Channel {
	case sensor.ChannelPressure:
		return packet.Pressure{Time: now, Pressure: m.PressureMP, ID: m.SensorID}
	case sensor.ChannelThrust:
		return packet.Thrust{Time: now, Thrust: m.ThrustN}
	case sensor.ChannelTemperature:
		return packet.Temp{Time: now, Temperature: m.TempMilliC, ID: m.SensorID}
	case sensor.ChannelContinuity:
		return packet.Cont{Time: now, State: m.Continuous}
	default:
		return packet.Mass{Time: now, Mass: int32(m.PressureMP), ID: m.SensorID}
	}
}

// runHeartbeat blocks on the pad state update signal and, on every wake
// (change or HeartbeatTimeout elapsing, spec §4.5), publishes a full
// snapshot: arm level, connection status, and every actuator's state.
func (s *Server) runHeartbeat(ctx context.Context, send func(...packet.Message) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result := s.state.WaitForUpdate(s.tuning.HeartbeatTimeout)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = result // Updated or TimedOut both publish the same snapshot.

		snap := s.state.Snapshot()
		now := s.state.MillisSinceStart()

		msgs := make([]packet.Message, 0, 2+len(snap.Actuators))
		msgs = append(msgs, packet.ArmState{Time: now, State: snap.ArmLevel})
		msgs = append(msgs, packet.Conn{Time: now, Status: snap.ConnStatus})
		for id, on := range snap.Actuators {
			msgs = append(msgs, packet.ActState{Time: now, ID: id, State: on})
		}

		if err := send(msgs...); err != nil {
			return fmt.Errorf("padserver: send heartbeat: %w", err)
		}
	}
}

// replayMockData publishes a scripted sequence of telemetry records instead
// of sampling live sensors (spec §6 -f flag), honoring each record's delay.
func (s *Server) replayMockData(ctx context.Context, send func(...packet.Message) error) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for _, rec := range s.mockData {
		if !timer.Stop() {
			<-timer.C
		}
		timer.Reset(rec.Delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if err := send(rec.Message); err != nil {
			return fmt.Errorf("padserver: send mock record: %w", err)
		}
	}

	s.log.Info("mock data replay complete")
	<-ctx.Done()
	return ctx.Err()
}
