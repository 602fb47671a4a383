package packet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/carletonu/hysim-go/hysimerr"
)

// ActuatorID is the stable, 8-bit wire identity of an actuator. The mapping
// is frozen here: FIRE_VALVE is not a sixteenth actuator, it is the human
// name for XV5 (spec Open Question (a)).
type ActuatorID uint8

const (
	ActuatorXV1 ActuatorID = iota + 1
	ActuatorXV2
	ActuatorXV3
	ActuatorXV4
	ActuatorXV5 // also known as FIRE_VALVE
	ActuatorXV6
	ActuatorXV7
	ActuatorXV8
	ActuatorXV9
	ActuatorXV10
	ActuatorXV11
	ActuatorXV12
	ActuatorQuickDisconnect
	ActuatorIgniter
	ActuatorDump

	// ActuatorFireValve is an alias for ActuatorXV5. Implementations must
	// never treat it as a distinct slot.
	ActuatorFireValve = ActuatorXV5

	NumActuators = 15
)

var actuatorNames = map[ActuatorID]string{
	ActuatorXV1: "XV1", ActuatorXV2: "XV2", ActuatorXV3: "XV3", ActuatorXV4: "XV4",
	ActuatorXV5: "XV5/FIRE_VALVE", ActuatorXV6: "XV6", ActuatorXV7: "XV7", ActuatorXV8: "XV8",
	ActuatorXV9: "XV9", ActuatorXV10: "XV10", ActuatorXV11: "XV11", ActuatorXV12: "XV12",
	ActuatorQuickDisconnect: "QUICK_DISCONNECT", ActuatorIgniter: "IGNITER", ActuatorDump: "DUMP",
}

// Name returns the human-readable actuator name used in logs, falling back
// to a numeric rendering for unrecognized IDs.
func (id ActuatorID) Name() string {
	if n, ok := actuatorNames[id]; ok {
		return n
	}
	return fmt.Sprintf("actuator(%d)", uint8(id))
}

func (id ActuatorID) String() string { return id.Name() }

// ArmLevel is the pad's ordered safety gate, 0..4.
type ArmLevel uint8

const (
	ArmedPad ArmLevel = iota
	ArmedValves
	ArmedIgnition
	ArmedDisconnected
	ArmedLaunch
)

var armLevelNames = [...]string{"ARMED_PAD", "ARMED_VALVES", "ARMED_IGNITION", "ARMED_DISCONNECTED", "ARMED_LAUNCH"}

func (a ArmLevel) String() string {
	if int(a) < len(armLevelNames) {
		return armLevelNames[a]
	}
	return fmt.Sprintf("ArmLevel(%d)", uint8(a))
}

// Valid reports whether a is one of the five defined arming levels.
func (a ArmLevel) Valid() bool { return a <= ArmedLaunch }

// ActAckStatus is the outcome of an actuation request.
type ActAckStatus uint8

const (
	ActOK ActAckStatus = iota
	ActDenied
	ActDNE
	ActInv
)

func (s ActAckStatus) String() string {
	switch s {
	case ActOK:
		return "ACT_OK"
	case ActDenied:
		return "ACT_DENIED"
	case ActDNE:
		return "ACT_DNE"
	case ActInv:
		return "ACT_INV"
	default:
		return fmt.Sprintf("ActAckStatus(%d)", uint8(s))
	}
}

// ArmAckStatus is the outcome of an arming request.
type ArmAckStatus uint8

const (
	ArmOK ArmAckStatus = iota
	ArmDenied
	ArmInv
)

func (s ArmAckStatus) String() string {
	switch s {
	case ArmOK:
		return "ARM_OK"
	case ArmDenied:
		return "ARM_DENIED"
	case ArmInv:
		return "ARM_INV"
	default:
		return fmt.Sprintf("ArmAckStatus(%d)", uint8(s))
	}
}

const (
	actReqSize = 2
	actAckSize = 2
	armReqSize = 1
	armAckSize = 1
)

// RawState is the wire-level actuator state byte. Only 0 and 1 are valid;
// anything else must be rejected with ActInv before it is ever converted to
// a bool (spec §4.2: "state ∉ {0,1} → INV").
type RawState uint8

// Valid reports whether the byte is one of the two defined states.
func (s RawState) Valid() bool { return s == 0 || s == 1 }

// Bool converts a valid RawState to its boolean meaning. Callers must check
// Valid first; Bool treats any nonzero value as on.
func (s RawState) Bool() bool { return s != 0 }

// ActReq is CNTRL.ACT_REQ (client -> pad): request actuator id to move to
// State (0 or 1; anything else is invalid, see RawState).
type ActReq struct {
	ID    ActuatorID
	State RawState
}

func (ActReq) header() Header { return Header{TypeCntrl, uint8(CntrlActReq)} }

func (m ActReq) Encode(w io.Writer) error {
	return writeAll(w, m.header(), []byte{uint8(m.ID), uint8(m.State)})
}

func decodeActReq(body []byte) (ActReq, error) {
	if len(body) != actReqSize {
		return ActReq{}, shortBody("ActReq", actReqSize, len(body))
	}
	return ActReq{ID: ActuatorID(body[0]), State: RawState(body[1])}, nil
}

func (m ActReq) String() string {
	return fmt.Sprintf("ActReq{id:%s state:%v}", m.ID, m.State)
}

// ActAck is CNTRL.ACT_ACK (pad -> client).
type ActAck struct {
	ID     ActuatorID
	Status ActAckStatus
}

func (ActAck) header() Header { return Header{TypeCntrl, uint8(CntrlActAck)} }

func (m ActAck) Encode(w io.Writer) error {
	return writeAll(w, m.header(), []byte{uint8(m.ID), uint8(m.Status)})
}

func decodeActAck(body []byte) (ActAck, error) {
	if len(body) != actAckSize {
		return ActAck{}, shortBody("ActAck", actAckSize, len(body))
	}
	return ActAck{ID: ActuatorID(body[0]), Status: ActAckStatus(body[1])}, nil
}

func (m ActAck) String() string {
	return fmt.Sprintf("ActAck{id:%s status:%s}", m.ID, m.Status)
}

// ArmReq is CNTRL.ARM_REQ (client -> pad).
type ArmReq struct {
	Level ArmLevel
}

func (ArmReq) header() Header { return Header{TypeCntrl, uint8(CntrlArmReq)} }

func (m ArmReq) Encode(w io.Writer) error {
	return writeAll(w, m.header(), []byte{uint8(m.Level)})
}

func decodeArmReq(body []byte) (ArmReq, error) {
	if len(body) != armReqSize {
		return ArmReq{}, shortBody("ArmReq", armReqSize, len(body))
	}
	return ArmReq{Level: ArmLevel(body[0])}, nil
}

func (m ArmReq) String() string { return fmt.Sprintf("ArmReq{level:%s}", m.Level) }

// ArmAck is CNTRL.ARM_ACK (pad -> client).
type ArmAck struct {
	Status ArmAckStatus
}

func (ArmAck) header() Header { return Header{TypeCntrl, uint8(CntrlArmAck)} }

func (m ArmAck) Encode(w io.Writer) error {
	return writeAll(w, m.header(), []byte{uint8(m.Status)})
}

func decodeArmAck(body []byte) (ArmAck, error) {
	if len(body) != armAckSize {
		return ArmAck{}, shortBody("ArmAck", armAckSize, len(body))
	}
	return ArmAck{Status: ArmAckStatus(body[0])}, nil
}

func (m ArmAck) String() string { return fmt.Sprintf("ArmAck{status:%s}", m.Status) }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func shortBody(name string, want, got int) error {
	return fmt.Errorf("packet: %s: expected %d body bytes, got %d: %w", name, want, got, hysimerr.ErrMalformedPacket)
}

func writeAll(w io.Writer, h Header, body []byte) error {
	buf := make([]byte, 2+len(body))
	buf[0] = uint8(h.Type)
	buf[1] = h.Subtype
	copy(buf[2:], body)
	_, err := w.Write(buf)
	return err
}

// putU32 / putI32 write little-endian 32-bit fields into buf at offset off.
func putU32(buf []byte, off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }
func putI32(buf []byte, off int, v int32)  { binary.LittleEndian.PutUint32(buf[off:], uint32(v)) }
func getU32(buf []byte, off int) uint32    { return binary.LittleEndian.Uint32(buf[off:]) }
func getI32(buf []byte, off int) int32     { return int32(binary.LittleEndian.Uint32(buf[off:])) }
