package padserver_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carletonu/hysim-go/actuator"
	"github.com/carletonu/hysim-go/config"
	"github.com/carletonu/hysim-go/packet"
	"github.com/carletonu/hysim-go/padserver"
	"github.com/carletonu/hysim-go/padstate"
	"github.com/carletonu/hysim-go/sensor"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func freeUDPPort(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())
	return addr
}

func newHardware() map[packet.ActuatorID]actuator.Actuator {
	hw := make(map[packet.ActuatorID]actuator.Actuator)
	for id := packet.ActuatorXV1; id <= packet.ActuatorDump; id++ {
		hw[id] = actuator.NewMock(id.Name(), discardLogger())
	}
	return hw
}

// TestControllerSingleClientRequestAck drives one full ARM_REQ/ACT_REQ round
// trip over a real TCP loopback connection, covering S1 from spec §8.
func TestControllerSingleClientRequestAck(t *testing.T) {
	state := padstate.New(newHardware(), discardLogger())
	tuning := config.Default()
	tuning.AbortTimeout = 2 * time.Second

	ctrlAddr := freePort(t)
	telemAddr := freeUDPPort(t)
	srv := padserver.New(state, tuning, discardLogger(), ctrlAddr, telemAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.RunController(ctx) }()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", ctrlAddr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, packet.ArmReq{Level: packet.ArmedValves}.Encode(conn))
	ack, err := packet.DecodeControl(conn)
	require.NoError(t, err)
	require.Equal(t, packet.ArmAck{Status: packet.ArmOK}, ack)

	require.NoError(t, packet.ActReq{ID: packet.ActuatorXV1, State: 1}.Encode(conn))
	ack2, err := packet.DecodeControl(conn)
	require.NoError(t, err)
	require.Equal(t, packet.ActAck{ID: packet.ActuatorXV1, Status: packet.ActOK}, ack2)

	on, err := state.GetActuator(packet.ActuatorXV1)
	require.NoError(t, err)
	require.True(t, on)

	cancel()
	err = <-done
	require.ErrorIs(t, err, context.Canceled)
}

// TestControllerRejectsActWithoutArming covers S2: XV1 denied below
// ARMED_VALVES.
func TestControllerRejectsActWithoutArming(t *testing.T) {
	state := padstate.New(newHardware(), discardLogger())
	tuning := config.Default()
	tuning.AbortTimeout = 2 * time.Second

	ctrlAddr := freePort(t)
	telemAddr := freeUDPPort(t)
	srv := padserver.New(state, tuning, discardLogger(), ctrlAddr, telemAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunController(ctx)

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", ctrlAddr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, packet.ActReq{ID: packet.ActuatorXV1, State: 1}.Encode(conn))
	ack, err := packet.DecodeControl(conn)
	require.NoError(t, err)
	require.Equal(t, packet.ActAck{ID: packet.ActuatorXV1, Status: packet.ActDenied}, ack)
}

// TestControllerDropsOnAckFromClient covers the protocol-violation path: a
// client that sends an ACK subtype must be disconnected.
func TestControllerDropsOnAckFromClient(t *testing.T) {
	state := padstate.New(newHardware(), discardLogger())
	tuning := config.Default()
	tuning.AbortTimeout = 200 * time.Millisecond

	ctrlAddr := freePort(t)
	telemAddr := freeUDPPort(t)
	srv := padserver.New(state, tuning, discardLogger(), ctrlAddr, telemAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.RunController(ctx) }()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", ctrlAddr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)

	require.NoError(t, packet.ArmAck{Status: packet.ArmOK}.Encode(conn))
	conn.Close()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not abort after re-accept timeout")
	}
}

// TestTelemetryPublishesHeartbeat covers S5/S6: pointing the telemetry task
// at a loopback UDP listener and observing a heartbeat snapshot after
// an arm change, without any sensors registered.
func TestTelemetryPublishesHeartbeat(t *testing.T) {
	state := padstate.New(newHardware(), discardLogger())
	tuning := config.Default()
	tuning.HeartbeatTimeout = 100 * time.Millisecond

	telemLn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer telemLn.Close()

	ctrlAddr := freePort(t)
	srv := padserver.New(state, tuning, discardLogger(), ctrlAddr, telemLn.LocalAddr().String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunTelemetry(ctx)

	state.TrySetArm(packet.ArmedValves)

	buf := make([]byte, 4096)
	require.NoError(t, telemLn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := telemLn.ReadFromUDP(buf)
	require.NoError(t, err)

	msgs, err := packet.DecodeDatagram(buf[:n])
	require.NoError(t, err)
	require.NotEmpty(t, msgs)

	var sawArm bool
	for _, m := range msgs {
		if arm, ok := m.(packet.ArmState); ok {
			sawArm = true
			require.Equal(t, packet.ArmedValves, arm.State)
		}
	}
	require.True(t, sawArm, "expected an ArmState record in the heartbeat datagram")
}

// TestTelemetrySamplesRegisteredSensors covers spec §4.5's sensor-sampling
// loop: a Mock analog Source registered via WithSensors must produce a
// PRESSURE record on the telemetry socket without any control-channel
// activity.
func TestTelemetrySamplesRegisteredSensors(t *testing.T) {
	state := padstate.New(newHardware(), discardLogger())
	tuning := config.Default()
	tuning.SensorSampleHz = 50
	tuning.HeartbeatTimeout = time.Hour

	telemLn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer telemLn.Close()

	ctrlAddr := freePort(t)
	analog := []sensor.Source{sensor.NewMock(0, sensor.ChannelPressure, discardLogger())}
	srv := padserver.New(state, tuning, discardLogger(), ctrlAddr, telemLn.LocalAddr().String(),
		padserver.WithSensors(analog, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunTelemetry(ctx)

	buf := make([]byte, 4096)
	require.NoError(t, telemLn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var sawPressure bool
	for !sawPressure {
		n, _, err := telemLn.ReadFromUDP(buf)
		require.NoError(t, err)
		msgs, err := packet.DecodeDatagram(buf[:n])
		require.NoError(t, err)
		for _, m := range msgs {
			if _, ok := m.(packet.Pressure); ok {
				sawPressure = true
			}
		}
	}
	require.True(t, sawPressure, "expected a Pressure record sampled from the registered Mock sensor")
}
