package padstate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carletonu/hysim-go/hysimerr"
	"github.com/carletonu/hysim-go/packet"
)

// requiredLevel reports the minimum arm level needed to actuate id, per the
// actuation gate in spec §4.2. DUMP has no minimum (always allowed).
func requiredLevel(id packet.ActuatorID) (packet.ArmLevel, bool) {
	switch {
	case id == packet.ActuatorDump:
		return packet.ArmedPad, true // always allowed; no effective floor
	case id == packet.ActuatorFireValve: // == ActuatorXV5
		return packet.ArmedLaunch, true
	case id >= packet.ActuatorXV1 && id <= packet.ActuatorXV12:
		return packet.ArmedValves, true
	case id == packet.ActuatorQuickDisconnect:
		return packet.ArmedIgnition, true
	case id == packet.ActuatorIgniter:
		return packet.ArmedDisconnected, true
	default:
		return 0, false
	}
}

func actuationAllowed(cur packet.ArmLevel, id packet.ActuatorID) (packet.ActAckStatus, bool) {
	if id == packet.ActuatorDump {
		return packet.ActOK, true
	}
	required, known := requiredLevel(id)
	if !known {
		return packet.ActDNE, false
	}
	if cur < required {
		return packet.ActDenied, false
	}
	return packet.ActOK, true
}

// TryActuate applies the actuation gate, commands the actuator's hardware,
// records the outcome, and applies any special-actuation arming side effect
// (spec §4.2 "Side-effect ordering of try_actuate").
//
// Ordering: state validity -> id lookup -> gate check -> hardware call ->
// recorded state update -> special arming transition -> signal. If the
// hardware call fails, recorded state is left unchanged and the failure is
// reported instead of an ACK status.
func (p *PadState) TryActuate(ctx context.Context, id packet.ActuatorID, raw packet.RawState) (packet.ActAckStatus, error) {
	if !raw.Valid() {
		return packet.ActInv, nil
	}
	newState := raw.Bool()

	p.mu.Lock()

	slot, ok := p.actuators[id]
	if !ok {
		p.mu.Unlock()
		return packet.ActDNE, nil
	}

	cur := p.armLevel
	status, allowed := actuationAllowed(cur, id)
	if !allowed {
		p.mu.Unlock()
		return status, nil
	}

	var hwErr error
	if newState {
		hwErr = slot.hw.TurnOn(ctx)
	} else {
		hwErr = slot.hw.TurnOff(ctx)
	}
	if hwErr != nil {
		p.mu.Unlock()
		p.log.Error("actuator hardware failure", slog.String("actuator", id.Name()), slog.Any("err", hwErr))
		return 0, fmt.Errorf("padstate: actuate %s: %w: %w", id, hwErr, hysimerr.ErrHardware)
	}

	slot.state = newState
	p.actuators[id] = slot
	p.applySpecialArmingSideEffect(id, newState)

	p.mu.Unlock()
	p.update.signal()
	p.log.Info("actuator changed", slog.String("actuator", id.Name()), slog.Bool("state", newState))
	return packet.ActOK, nil
}

// applySpecialArmingSideEffect implements spec §3 invariant 3 / §4.2(c-d):
// turning the quick disconnect on/off advances/retreats between
// ARMED_IGNITION and ARMED_DISCONNECTED; igniting/de-igniting advances/
// retreats between ARMED_DISCONNECTED and ARMED_LAUNCH. Must be called with
// the exclusive lock already held.
func (p *PadState) applySpecialArmingSideEffect(id packet.ActuatorID, newState bool) {
	switch id {
	case packet.ActuatorQuickDisconnect:
		if newState && p.armLevel < packet.ArmedDisconnected {
			p.setArmLocked(packet.ArmedDisconnected)
		} else if !newState && p.armLevel >= packet.ArmedDisconnected {
			p.setArmLocked(packet.ArmedIgnition)
		}
	case packet.ActuatorIgniter:
		if newState && p.armLevel < packet.ArmedLaunch {
			p.setArmLocked(packet.ArmedLaunch)
		} else if !newState && p.armLevel >= packet.ArmedLaunch {
			p.setArmLocked(packet.ArmedDisconnected)
		}
	}
}
