package padstate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carletonu/hysim-go/actuator"
	"github.com/carletonu/hysim-go/hysimerr"
	"github.com/carletonu/hysim-go/packet"
	"github.com/carletonu/hysim-go/padstate"
)

type fakeActuator struct {
	failOn, failOff bool
	on              bool
}

func (f *fakeActuator) TurnOn(context.Context) error {
	if f.failOn {
		return errors.New("boom")
	}
	f.on = true
	return nil
}

func (f *fakeActuator) TurnOff(context.Context) error {
	if f.failOff {
		return errors.New("boom")
	}
	f.on = false
	return nil
}

var allActuatorIDs = []packet.ActuatorID{
	packet.ActuatorXV1, packet.ActuatorXV2, packet.ActuatorXV3, packet.ActuatorXV4, packet.ActuatorXV5,
	packet.ActuatorXV6, packet.ActuatorXV7, packet.ActuatorXV8, packet.ActuatorXV9, packet.ActuatorXV10,
	packet.ActuatorXV11, packet.ActuatorXV12, packet.ActuatorQuickDisconnect, packet.ActuatorIgniter,
	packet.ActuatorDump,
}

func newHardware() (map[packet.ActuatorID]actuator.Actuator, map[packet.ActuatorID]*fakeActuator) {
	hw := make(map[packet.ActuatorID]actuator.Actuator, len(allActuatorIDs))
	fakes := make(map[packet.ActuatorID]*fakeActuator, len(allActuatorIDs))
	for _, id := range allActuatorIDs {
		f := &fakeActuator{}
		fakes[id] = f
		hw[id] = f
	}
	return hw, fakes
}

func newTestState(t *testing.T) (*padstate.PadState, map[packet.ActuatorID]*fakeActuator) {
	t.Helper()
	hw, fakes := newHardware()
	return padstate.New(hw, nil), fakes
}

func TestInitialState(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, packet.ArmedPad, s.GetArm())
	require.Equal(t, packet.ConnDisconnected, s.GetConnStatus())
	on, err := s.GetActuator(packet.ActuatorXV1)
	require.NoError(t, err)
	require.False(t, on)
}

func TestUnknownActuatorID(t *testing.T) {
	s, _ := newTestState(t)
	_, err := s.GetActuator(packet.ActuatorID(200))
	require.Error(t, err)
	require.True(t, errors.Is(err, hysimerr.ErrUnknownActuator))
}

func TestArmingReachableLevels(t *testing.T) {
	s, _ := newTestState(t)
	seen := map[packet.ArmLevel]bool{s.GetArm(): true}
	for _, lvl := range []packet.ArmLevel{packet.ArmedValves, packet.ArmedIgnition, packet.ArmedDisconnected, packet.ArmedLaunch} {
		status := s.TrySetArm(lvl)
		require.Equal(t, packet.ArmOK, status)
		seen[s.GetArm()] = true
	}
	require.Len(t, seen, 5)
}

func TestDeniedIgnitionBypass(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, packet.ArmDenied, s.TrySetArm(packet.ArmedIgnition))
	require.Equal(t, packet.ArmedPad, s.GetArm())
}

func TestAbortFromFiring(t *testing.T) {
	s, _ := newTestState(t)
	for _, lvl := range []packet.ArmLevel{packet.ArmedValves, packet.ArmedIgnition, packet.ArmedDisconnected, packet.ArmedLaunch} {
		require.Equal(t, packet.ArmOK, s.TrySetArm(lvl))
	}
	require.Equal(t, packet.ArmOK, s.TrySetArm(packet.ArmedValves))
	require.Equal(t, packet.ArmedValves, s.GetArm())
	require.Equal(t, packet.ArmOK, s.TrySetArm(packet.ArmedPad))
	require.Equal(t, packet.ArmedPad, s.GetArm())
}

func TestInvalidArmLevel(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, packet.ArmInv, s.TrySetArm(packet.ArmLevel(200)))
}

func TestValveGateDenied(t *testing.T) {
	s, _ := newTestState(t)
	status, err := s.TryActuate(context.Background(), packet.ActuatorXV1, 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActDenied, status)
}

func TestValveGateAllowedAfterArming(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, packet.ArmOK, s.TrySetArm(packet.ArmedValves))
	status, err := s.TryActuate(context.Background(), packet.ActuatorXV1, 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActOK, status)
	on, err := s.GetActuator(packet.ActuatorXV1)
	require.NoError(t, err)
	require.True(t, on)
}

func TestDumpAlwaysAllowed(t *testing.T) {
	s, _ := newTestState(t)
	status, err := s.TryActuate(context.Background(), packet.ActuatorDump, 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActOK, status)
}

func TestFireValveRequiresLaunch(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, packet.ArmOK, s.TrySetArm(packet.ArmedValves))
	status, err := s.TryActuate(context.Background(), packet.ActuatorFireValve, 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActDenied, status)
}

func TestUnknownActuatorIsDNE(t *testing.T) {
	s, _ := newTestState(t)
	status, err := s.TryActuate(context.Background(), packet.ActuatorID(250), 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActDNE, status)
}

func TestInvalidActuatorState(t *testing.T) {
	s, _ := newTestState(t)
	status, err := s.TryActuate(context.Background(), packet.ActuatorDump, 7)
	require.NoError(t, err)
	require.Equal(t, packet.ActInv, status)
}

func TestQuickDisconnectAdvancesArming(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, packet.ArmOK, s.TrySetArm(packet.ArmedValves))
	require.Equal(t, packet.ArmOK, s.TrySetArm(packet.ArmedIgnition))
	status, err := s.TryActuate(context.Background(), packet.ActuatorQuickDisconnect, 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActOK, status)
	require.Equal(t, packet.ArmedDisconnected, s.GetArm())
}

func TestIgniterOnOffRetreatsArming(t *testing.T) {
	s, _ := newTestState(t)
	for _, lvl := range []packet.ArmLevel{packet.ArmedValves, packet.ArmedIgnition, packet.ArmedDisconnected} {
		require.Equal(t, packet.ArmOK, s.TrySetArm(lvl))
	}
	status, err := s.TryActuate(context.Background(), packet.ActuatorIgniter, 1)
	require.NoError(t, err)
	require.Equal(t, packet.ActOK, status)
	require.Equal(t, packet.ArmedLaunch, s.GetArm())

	status, err = s.TryActuate(context.Background(), packet.ActuatorIgniter, 0)
	require.NoError(t, err)
	require.Equal(t, packet.ActOK, status)
	require.Equal(t, packet.ArmedDisconnected, s.GetArm())
}

func TestHardwareFailureLeavesStateUnchanged(t *testing.T) {
	hw, fakes := newHardware()
	fakes[packet.ActuatorDump].failOn = true
	s := padstate.New(hw, nil)

	status, err := s.TryActuate(context.Background(), packet.ActuatorDump, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, hysimerr.ErrHardware))
	require.Equal(t, packet.ActAckStatus(0), status)

	on, getErr := s.GetActuator(packet.ActuatorDump)
	require.NoError(t, getErr)
	require.False(t, on)
}

func TestWaitForUpdateSignaled(t *testing.T) {
	s, _ := newTestState(t)
	done := make(chan padstate.UpdateResult, 1)
	go func() { done <- s.WaitForUpdate(time.Second) }()
	time.Sleep(20 * time.Millisecond)
	s.SetConnStatus(packet.ConnConnected)
	require.Equal(t, padstate.Updated, <-done)
}

func TestWaitForUpdateTimesOut(t *testing.T) {
	s, _ := newTestState(t)
	require.Equal(t, padstate.TimedOut, s.WaitForUpdate(30*time.Millisecond))
}
