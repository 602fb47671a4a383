// Package padstate owns the pad's single, process-wide authoritative state:
// the arm level, every actuator's recorded state, and the control channel's
// connection status. It is created once at process start and borrowed
// (never owned a second time) by the controller task, the telemetry task,
// and the telemetry heartbeat sub-task (spec §4.2, §9).
package padstate

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carletonu/hysim-go/actuator"
	"github.com/carletonu/hysim-go/hysimerr"
	"github.com/carletonu/hysim-go/packet"
)

// UpdateResult is returned by WaitForUpdate.
type UpdateResult int

const (
	Updated UpdateResult = iota
	TimedOut
)

// updateSignal is the condition-variable-plus-dirty-flag pair from spec §5,
// guarded by its own mutex, independent of the state RWMutex so that the
// write path can release the state lock before signalling.
type updateSignal struct {
	mu    sync.Mutex
	cond  *sync.Cond
	dirty bool
}

func newUpdateSignal() *updateSignal {
	s := &updateSignal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *updateSignal) signal() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// wait blocks until dirty is set or timeout elapses, re-checking the flag on
// every wakeup (spurious-wake safe), and clears it before returning Updated.
func (s *updateSignal) wait(timeout time.Duration) UpdateResult {
	deadline := time.Now().Add(timeout)
	done := make(chan struct{})
	timedOut := make(chan struct{})

	go func() {
		select {
		case <-done:
		case <-time.After(time.Until(deadline)):
			// Hold s.mu so the broadcast cannot fall between the waiter's
			// timedOut check and its cond.Wait.
			s.mu.Lock()
			close(timedOut)
			s.cond.Broadcast() // wake the waiter below so it can observe timedOut
			s.mu.Unlock()
		}
	}()
	defer close(done)

	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.dirty {
		select {
		case <-timedOut:
			return TimedOut
		default:
		}
		s.cond.Wait()
	}
	s.dirty = false
	return Updated
}

// PadState is the singleton, guarded state described in spec §3/§5.
type PadState struct {
	mu         sync.RWMutex
	armLevel   packet.ArmLevel
	actuators  map[packet.ActuatorID]actuatorSlot
	connStatus packet.ConnStatus

	update *updateSignal
	start  time.Time
	log    *slog.Logger
}

type actuatorSlot struct {
	hw    actuator.Actuator
	state bool
}

// New creates a PadState at ARMED_PAD with every actuator off and the
// connection DISCONNECTED (spec §3 Lifecycle). hw maps every actuator ID the
// system exposes to its hardware capability.
func New(hw map[packet.ActuatorID]actuator.Actuator, logger *slog.Logger) *PadState {
	if logger == nil {
		logger = slog.Default()
	}
	slots := make(map[packet.ActuatorID]actuatorSlot, len(hw))
	for id, a := range hw {
		slots[id] = actuatorSlot{hw: a, state: false}
	}
	return &PadState{
		armLevel:   packet.ArmedPad,
		actuators:  slots,
		connStatus: packet.ConnDisconnected,
		update:     newUpdateSignal(),
		start:      time.Now(),
		log:        logger,
	}
}

// MillisSinceStart is the monotonic "time" field carried on every telemetry
// record (spec §4.1).
func (p *PadState) MillisSinceStart() uint32 {
	return uint32(time.Since(p.start).Milliseconds())
}

// GetArm returns the current arming level.
func (p *PadState) GetArm() packet.ArmLevel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.armLevel
}

// GetActuator returns an actuator's recorded on/off state.
func (p *PadState) GetActuator(id packet.ActuatorID) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	slot, ok := p.actuators[id]
	if !ok {
		return false, unknownActuatorErr(id)
	}
	return slot.state, nil
}

// GetConnStatus returns the control channel's current connection status.
func (p *PadState) GetConnStatus() packet.ConnStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connStatus
}

// Snapshot is a read-only copy of the full state, used by the telemetry
// heartbeat so it never holds the lock while serializing (spec §4.5).
type Snapshot struct {
	ArmLevel   packet.ArmLevel
	ConnStatus packet.ConnStatus
	Actuators  map[packet.ActuatorID]bool
}

func (p *PadState) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	actuators := make(map[packet.ActuatorID]bool, len(p.actuators))
	for id, slot := range p.actuators {
		actuators[id] = slot.state
	}
	return Snapshot{ArmLevel: p.armLevel, ConnStatus: p.connStatus, Actuators: actuators}
}

// SetConnStatus updates the connection status and signals the update
// condition; used by the controller task on accept/loss/reconnect.
func (p *PadState) SetConnStatus(s packet.ConnStatus) {
	p.mu.Lock()
	p.connStatus = s
	p.mu.Unlock()
	p.update.signal()
	p.log.Info("connection status changed", slog.String("status", s.String()))
}

// WaitForUpdate blocks until any of arm_level, an actuator, or conn_status
// changes, or timeout elapses (spec §4.2, §4.5).
func (p *PadState) WaitForUpdate(timeout time.Duration) UpdateResult {
	return p.update.wait(timeout)
}

func unknownActuatorErr(id packet.ActuatorID) error {
	return fmt.Errorf("padstate: %s: %w", id, hysimerr.ErrUnknownActuator)
}
