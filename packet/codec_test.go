package packet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carletonu/hysim-go/packet"
)

func roundTrip(t *testing.T, m packet.Message) packet.Message {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	got, err := packet.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), 0, "decode must consume exactly the encoded bytes")
	return got
}

func TestRoundTripControlMessages(t *testing.T) {
	cases := []packet.Message{
		packet.ActReq{ID: packet.ActuatorXV5, State: 1},
		packet.ActAck{ID: packet.ActuatorXV5, Status: packet.ActDenied},
		packet.ArmReq{Level: packet.ArmedIgnition},
		packet.ArmAck{Status: packet.ArmInv},
	}
	for _, c := range cases {
		t.Run(c.String(), func(t *testing.T) {
			got := roundTrip(t, c)
			require.Equal(t, c, got)
		})
	}
}

func TestRoundTripTelemetryMessages(t *testing.T) {
	cases := []packet.Message{
		packet.Temp{Time: 1000, Temperature: -5000, ID: 2},
		packet.Pressure{Time: 2000, Pressure: 450000, ID: 3},
		packet.Mass{Time: 3000, Mass: 1200, ID: 1},
		packet.Thrust{Time: 4000, Thrust: 11120},
		packet.ArmState{Time: 5000, State: packet.ArmedLaunch},
		packet.ActState{Time: 6000, ID: packet.ActuatorDump, State: true},
		packet.Warn{Time: 7000, Type: packet.WarnHighPressure},
		packet.Cont{Time: 8000, State: false},
		packet.Conn{Time: 9000, Status: packet.ConnReconnecting},
	}
	for _, c := range cases {
		t.Run(c.String(), func(t *testing.T) {
			got := roundTrip(t, c)
			require.Equal(t, c, got)
		})
	}
}

func TestDecodeControlRejectsTelemetry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (packet.ArmState{Time: 1, State: packet.ArmedPad}).Encode(&buf))
	_, err := packet.DecodeControl(&buf)
	require.Error(t, err)
}

func TestDecodeControlAcceptsAck(t *testing.T) {
	// ACK subtypes are valid CNTRL bodies in general, but when the
	// *controller* receives one from a client it is a protocol violation;
	// that check lives in padserver, not in the codec (the codec only
	// rejects unknown type/subtype pairs and cross-channel confusion).
	var buf bytes.Buffer
	require.NoError(t, (packet.ActAck{ID: packet.ActuatorXV1, Status: packet.ActOK}).Encode(&buf))
	got, err := packet.DecodeControl(&buf)
	require.NoError(t, err)
	require.IsType(t, packet.ActAck{}, got)
}

func TestDecodeDatagramMultipleRecords(t *testing.T) {
	msgs := []packet.Message{
		packet.ArmState{Time: 10, State: packet.ArmedValves},
		packet.Conn{Time: 10, Status: packet.ConnConnected},
		packet.ActState{Time: 10, ID: packet.ActuatorXV1, State: true},
		packet.ActState{Time: 10, ID: packet.ActuatorXV2, State: false},
	}
	buf, err := packet.EncodeDatagram(msgs...)
	require.NoError(t, err)

	got, err := packet.DecodeDatagram(buf)
	require.NoError(t, err)
	require.Equal(t, msgs, got)
}

func TestDecodeDatagramRejectsTruncatedTrailingRecord(t *testing.T) {
	buf, err := packet.EncodeDatagram(packet.ArmState{Time: 1, State: packet.ArmedPad})
	require.NoError(t, err)
	buf = append(buf, 0x01, uint8(packet.TelemAct)) // header of a second record, no body
	_, err = packet.DecodeDatagram(buf)
	require.Error(t, err)
}

func TestDecodeDatagramRejectsNonTelemetryRecord(t *testing.T) {
	buf, err := packet.EncodeDatagram(packet.ArmState{Time: 1, State: packet.ArmedPad})
	require.NoError(t, err)
	cntrl, err := packet.EncodeDatagram(packet.ArmReq{Level: packet.ArmedValves})
	require.NoError(t, err)
	_, err = packet.DecodeDatagram(append(buf, cntrl...))
	require.Error(t, err)
}

func TestUnknownSubtypeIsMalformed(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{uint8(packet.TypeCntrl), 0xEE})
	_, err := packet.Decode(&buf)
	require.Error(t, err)
}

func TestActuatorFireValveAliasesXV5(t *testing.T) {
	require.Equal(t, packet.ActuatorXV5, packet.ActuatorFireValve)
}
