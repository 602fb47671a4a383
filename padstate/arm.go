package padstate

import (
	"log/slog"

	"github.com/carletonu/hysim-go/packet"
)

// TrySetArm applies the arming gate (spec §4.2) and, on success, updates
// arm_level and signals the update condition.
//
// Accept iff any of:
//  1. req = cur+1 and req <= ARMED_LAUNCH (monotonic one-step increase)
//  2. cur = ARMED_VALVES and req = ARMED_PAD (single permitted decrease)
//  3. req = ARMED_VALVES and cur in {ARMED_IGNITION, ARMED_DISCONNECTED, ARMED_LAUNCH} (abort)
func (p *PadState) TrySetArm(req packet.ArmLevel) packet.ArmAckStatus {
	if !req.Valid() {
		return packet.ArmInv
	}

	p.mu.Lock()
	cur := p.armLevel
	if !armTransitionAllowed(cur, req) {
		p.mu.Unlock()
		return packet.ArmDenied
	}
	p.armLevel = req
	p.mu.Unlock()

	p.update.signal()
	p.log.Info("arm level changed", slog.String("from", cur.String()), slog.String("to", req.String()))
	return packet.ArmOK
}

func armTransitionAllowed(cur, req packet.ArmLevel) bool {
	if req == cur+1 && req <= packet.ArmedLaunch {
		return true
	}
	if cur == packet.ArmedValves && req == packet.ArmedPad {
		return true
	}
	if req == packet.ArmedValves && (cur == packet.ArmedIgnition || cur == packet.ArmedDisconnected || cur == packet.ArmedLaunch) {
		return true
	}
	return false
}

// setArmLocked is used internally by TryActuate's special-actuation side
// effects, which already hold the exclusive lock.
func (p *PadState) setArmLocked(level packet.ArmLevel) {
	p.armLevel = level
}
