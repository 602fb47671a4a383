package packet

import (
	"fmt"
	"io"
)

const (
	tempSize     = 4 + 4 + 1
	pressureSize = 4 + 4 + 1
	massSize     = 4 + 4 + 1
	thrustSize   = 4 + 4
	armStateSize = 4 + 1
	actStateSize = 4 + 1 + 1
	warnSize     = 4 + 1
	contSize     = 4 + 1
	connSize     = 4 + 1
)

// WarnType enumerates the warning codes carried by TELEM.WARN.
type WarnType uint8

const (
	WarnHighPressure WarnType = 0
	WarnHighTemp     WarnType = 1
)

func (w WarnType) String() string {
	switch w {
	case WarnHighPressure:
		return "HIGH_PRESSURE"
	case WarnHighTemp:
		return "HIGH_TEMP"
	default:
		return fmt.Sprintf("WarnType(%d)", uint8(w))
	}
}

// ConnStatus mirrors padstate's connection-status enum on the wire.
type ConnStatus uint8

const (
	ConnConnected ConnStatus = iota
	ConnReconnecting
	ConnDisconnected
)

func (c ConnStatus) String() string {
	switch c {
	case ConnConnected:
		return "CONNECTED"
	case ConnReconnecting:
		return "RECONNECTING"
	case ConnDisconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("ConnStatus(%d)", uint8(c))
	}
}

// Temp is TELEM.TEMP: temperature in millidegrees Celsius.
type Temp struct {
	Time        uint32
	Temperature int32
	ID          uint8
}

func (Temp) header() Header { return Header{TypeTelem, uint8(TelemTemp)} }

func (m Temp) Encode(w io.Writer) error {
	body := make([]byte, tempSize)
	putU32(body, 0, m.Time)
	putI32(body, 4, m.Temperature)
	body[8] = m.ID
	return writeAll(w, m.header(), body)
}

func decodeTemp(body []byte) (Temp, error) {
	if len(body) != tempSize {
		return Temp{}, shortBody("Temp", tempSize, len(body))
	}
	return Temp{Time: getU32(body, 0), Temperature: getI32(body, 4), ID: body[8]}, nil
}

func (m Temp) String() string {
	return fmt.Sprintf("Temp{t:%dms id:%d value:%dm°C}", m.Time, m.ID, m.Temperature)
}

// Pressure is TELEM.PRESSURE: pressure in thousandths of a PSI.
type Pressure struct {
	Time     uint32
	Pressure int32
	ID       uint8
}

func (Pressure) header() Header { return Header{TypeTelem, uint8(TelemPressure)} }

func (m Pressure) Encode(w io.Writer) error {
	body := make([]byte, pressureSize)
	putU32(body, 0, m.Time)
	putI32(body, 4, m.Pressure)
	body[8] = m.ID
	return writeAll(w, m.header(), body)
}

func decodePressure(body []byte) (Pressure, error) {
	if len(body) != pressureSize {
		return Pressure{}, shortBody("Pressure", pressureSize, len(body))
	}
	return Pressure{Time: getU32(body, 0), Pressure: getI32(body, 4), ID: body[8]}, nil
}

func (m Pressure) String() string {
	return fmt.Sprintf("Pressure{t:%dms id:%d value:%dmPSI}", m.Time, m.ID, m.Pressure)
}

// Mass is TELEM.MASS: mass in grams.
type Mass struct {
	Time uint32
	Mass int32
	ID   uint8
}

func (Mass) header() Header { return Header{TypeTelem, uint8(TelemMass)} }

func (m Mass) Encode(w io.Writer) error {
	body := make([]byte, massSize)
	putU32(body, 0, m.Time)
	putI32(body, 4, m.Mass)
	body[8] = m.ID
	return writeAll(w, m.header(), body)
}

func decodeMass(body []byte) (Mass, error) {
	if len(body) != massSize {
		return Mass{}, shortBody("Mass", massSize, len(body))
	}
	return Mass{Time: getU32(body, 0), Mass: getI32(body, 4), ID: body[8]}, nil
}

func (m Mass) String() string {
	return fmt.Sprintf("Mass{t:%dms id:%d value:%dg}", m.Time, m.ID, m.Mass)
}

// Thrust is TELEM.THRUST: thrust in newtons.
type Thrust struct {
	Time   uint32
	Thrust uint32
}

func (Thrust) header() Header { return Header{TypeTelem, uint8(TelemThrust)} }

func (m Thrust) Encode(w io.Writer) error {
	body := make([]byte, thrustSize)
	putU32(body, 0, m.Time)
	putU32(body, 4, m.Thrust)
	return writeAll(w, m.header(), body)
}

func decodeThrust(body []byte) (Thrust, error) {
	if len(body) != thrustSize {
		return Thrust{}, shortBody("Thrust", thrustSize, len(body))
	}
	return Thrust{Time: getU32(body, 0), Thrust: getU32(body, 4)}, nil
}

func (m Thrust) String() string { return fmt.Sprintf("Thrust{t:%dms value:%dN}", m.Time, m.Thrust) }

// ArmState is TELEM.ARM: the current arming level.
type ArmState struct {
	Time  uint32
	State ArmLevel
}

func (ArmState) header() Header { return Header{TypeTelem, uint8(TelemArm)} }

func (m ArmState) Encode(w io.Writer) error {
	body := make([]byte, armStateSize)
	putU32(body, 0, m.Time)
	body[4] = uint8(m.State)
	return writeAll(w, m.header(), body)
}

func decodeArmState(body []byte) (ArmState, error) {
	if len(body) != armStateSize {
		return ArmState{}, shortBody("ArmState", armStateSize, len(body))
	}
	return ArmState{Time: getU32(body, 0), State: ArmLevel(body[4])}, nil
}

func (m ArmState) String() string { return fmt.Sprintf("ArmState{t:%dms state:%s}", m.Time, m.State) }

// ActState is TELEM.ACT: the current state of one actuator.
type ActState struct {
	Time  uint32
	ID    ActuatorID
	State bool
}

func (ActState) header() Header { return Header{TypeTelem, uint8(TelemAct)} }

func (m ActState) Encode(w io.Writer) error {
	body := make([]byte, actStateSize)
	putU32(body, 0, m.Time)
	body[4] = uint8(m.ID)
	body[5] = boolByte(m.State)
	return writeAll(w, m.header(), body)
}

func decodeActState(body []byte) (ActState, error) {
	if len(body) != actStateSize {
		return ActState{}, shortBody("ActState", actStateSize, len(body))
	}
	return ActState{Time: getU32(body, 0), ID: ActuatorID(body[4]), State: body[5] != 0}, nil
}

func (m ActState) String() string {
	return fmt.Sprintf("ActState{t:%dms id:%s state:%v}", m.Time, m.ID, m.State)
}

// Warn is TELEM.WARN: an out-of-range safety warning.
type Warn struct {
	Time uint32
	Type WarnType
}

func (Warn) header() Header { return Header{TypeTelem, uint8(TelemWarn)} }

func (m Warn) Encode(w io.Writer) error {
	body := make([]byte, warnSize)
	putU32(body, 0, m.Time)
	body[4] = uint8(m.Type)
	return writeAll(w, m.header(), body)
}

func decodeWarn(body []byte) (Warn, error) {
	if len(body) != warnSize {
		return Warn{}, shortBody("Warn", warnSize, len(body))
	}
	return Warn{Time: getU32(body, 0), Type: WarnType(body[4])}, nil
}

func (m Warn) String() string { return fmt.Sprintf("Warn{t:%dms type:%s}", m.Time, m.Type) }

// Cont is TELEM.CONT: igniter continuity state.
type Cont struct {
	Time  uint32
	State bool
}

func (Cont) header() Header { return Header{TypeTelem, uint8(TelemCont)} }

func (m Cont) Encode(w io.Writer) error {
	body := make([]byte, contSize)
	putU32(body, 0, m.Time)
	body[4] = boolByte(m.State)
	return writeAll(w, m.header(), body)
}

func decodeCont(body []byte) (Cont, error) {
	if len(body) != contSize {
		return Cont{}, shortBody("Cont", contSize, len(body))
	}
	return Cont{Time: getU32(body, 0), State: body[4] != 0}, nil
}

func (m Cont) String() string { return fmt.Sprintf("Cont{t:%dms continuous:%v}", m.Time, m.State) }

// Conn is TELEM.CONN: the control channel's connection status.
type Conn struct {
	Time   uint32
	Status ConnStatus
}

func (Conn) header() Header { return Header{TypeTelem, uint8(TelemConn)} }

func (m Conn) Encode(w io.Writer) error {
	body := make([]byte, connSize)
	putU32(body, 0, m.Time)
	body[4] = uint8(m.Status)
	return writeAll(w, m.header(), body)
}

func decodeConn(body []byte) (Conn, error) {
	if len(body) != connSize {
		return Conn{}, shortBody("Conn", connSize, len(body))
	}
	return Conn{Time: getU32(body, 0), Status: ConnStatus(body[4])}, nil
}

func (m Conn) String() string { return fmt.Sprintf("Conn{t:%dms status:%s}", m.Time, m.Status) }
