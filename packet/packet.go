// Package packet implements the fixed-layout, little-endian, packed wire
// format shared by the control channel (TCP) and the telemetry channel (UDP
// multicast). Every message is a 2-byte header followed by a fixed-size
// body; bodies never contain a length prefix, so the receiver must already
// know, from the header alone, how many bytes to read next.
package packet

import (
	"fmt"

	"github.com/carletonu/hysim-go/hysimerr"
)

// Type is the outermost message discriminator.
type Type uint8

const (
	TypeCntrl Type = 0
	TypeTelem Type = 1
)

func (t Type) String() string {
	switch t {
	case TypeCntrl:
		return "CNTRL"
	case TypeTelem:
		return "TELEM"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// CntrlSubtype enumerates the control-channel message bodies.
type CntrlSubtype uint8

const (
	CntrlActReq CntrlSubtype = 0
	CntrlActAck CntrlSubtype = 1
	CntrlArmReq CntrlSubtype = 2
	CntrlArmAck CntrlSubtype = 3
)

// TelemSubtype enumerates the telemetry-channel message bodies.
type TelemSubtype uint8

const (
	TelemTemp     TelemSubtype = 0
	TelemPressure TelemSubtype = 1
	TelemMass     TelemSubtype = 2
	TelemThrust   TelemSubtype = 3
	TelemArm      TelemSubtype = 4
	TelemAct      TelemSubtype = 5
	TelemWarn     TelemSubtype = 6
	TelemCont     TelemSubtype = 7
	TelemConn     TelemSubtype = 8
)

// Header is the 2-byte prefix on every message, on both channels.
type Header struct {
	Type    Type
	Subtype uint8
}

// bodySize reports how many additional bytes follow a header with the given
// Type/Subtype, or an error wrapping hysimerr.ErrMalformedPacket if the pair
// is not recognized.
func bodySize(h Header) (int, error) {
	switch h.Type {
	case TypeCntrl:
		switch CntrlSubtype(h.Subtype) {
		case CntrlActReq:
			return actReqSize, nil
		case CntrlActAck:
			return actAckSize, nil
		case CntrlArmReq:
			return armReqSize, nil
		case CntrlArmAck:
			return armAckSize, nil
		}
	case TypeTelem:
		switch TelemSubtype(h.Subtype) {
		case TelemTemp:
			return tempSize, nil
		case TelemPressure:
			return pressureSize, nil
		case TelemMass:
			return massSize, nil
		case TelemThrust:
			return thrustSize, nil
		case TelemArm:
			return armStateSize, nil
		case TelemAct:
			return actStateSize, nil
		case TelemWarn:
			return warnSize, nil
		case TelemCont:
			return contSize, nil
		case TelemConn:
			return connSize, nil
		}
	}
	return 0, fmt.Errorf("packet: header %+v: %w", h, hysimerr.ErrMalformedPacket)
}
