package packet

import (
	"fmt"
	"io"

	"github.com/carletonu/hysim-go/hysimerr"
)

// Message is the common interface satisfied by every control and telemetry
// body. Encode writes header+body; the header is recovered privately so
// that callers cannot construct a Message whose header disagrees with its
// body layout.
type Message interface {
	fmt.Stringer
	Encode(w io.Writer) error
	header() Header
}

// ReadHeader reads exactly 2 bytes from r, looping until both arrive (a
// short read from a TCP socket is not an error).
func ReadHeader(r io.Reader) (Header, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	return Header{Type: Type(buf[0]), Subtype: buf[1]}, nil
}

// ReadBody reads the exact body size for h from r.
func ReadBody(r io.Reader, h Header) ([]byte, error) {
	n, err := bodySize(h)
	if err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Decode reads one full header+body message from r and returns the decoded
// Message. Control-channel readers use this directly; it is also the
// per-record primitive used by DecodeDatagram.
func Decode(r io.Reader) (Message, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	body, err := ReadBody(r, h)
	if err != nil {
		return nil, err
	}
	return decodeBody(h, body)
}

func decodeBody(h Header, body []byte) (Message, error) {
	switch h.Type {
	case TypeCntrl:
		switch CntrlSubtype(h.Subtype) {
		case CntrlActReq:
			return decodeActReq(body)
		case CntrlActAck:
			return decodeActAck(body)
		case CntrlArmReq:
			return decodeArmReq(body)
		case CntrlArmAck:
			return decodeArmAck(body)
		}
	case TypeTelem:
		switch TelemSubtype(h.Subtype) {
		case TelemTemp:
			return decodeTemp(body)
		case TelemPressure:
			return decodePressure(body)
		case TelemMass:
			return decodeMass(body)
		case TelemThrust:
			return decodeThrust(body)
		case TelemArm:
			return decodeArmState(body)
		case TelemAct:
			return decodeActState(body)
		case TelemWarn:
			return decodeWarn(body)
		case TelemCont:
			return decodeCont(body)
		case TelemConn:
			return decodeConn(body)
		}
	}
	return nil, fmt.Errorf("packet: header %+v: %w", h, hysimerr.ErrMalformedPacket)
}

// DecodeControl decodes exactly one control-channel message from r and
// rejects anything whose type is not CNTRL (any TELEM record is a protocol
// violation on this channel). ACK subtypes are accepted here, since clients
// read their ACKs through this function; the controller rejects an ACK
// arriving from a client itself.
func DecodeControl(r io.Reader) (Message, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Type != TypeCntrl {
		return nil, fmt.Errorf("packet: control channel received type %s: %w", h.Type, hysimerr.ErrProtocolViolation)
	}
	body, err := ReadBody(r, h)
	if err != nil {
		return nil, err
	}
	return decodeBody(h, body)
}

// DecodeDatagram parses every concatenated header+body record out of a
// single UDP datagram's payload, stopping only when the buffer is fully
// consumed. It never reads past the end of buf and never leaves a short
// trailing record unreported: a truncated final record is a malformed-packet
// error, not a silent drop.
func DecodeDatagram(buf []byte) ([]Message, error) {
	var out []Message
	r := newSliceReader(buf)
	for r.remaining() > 0 {
		h, err := ReadHeader(r)
		if err != nil {
			return out, fmt.Errorf("packet: truncated header in datagram: %w: %w", err, hysimerr.ErrMalformedPacket)
		}
		if h.Type != TypeTelem {
			return out, fmt.Errorf("packet: telemetry datagram contains type %s: %w", h.Type, hysimerr.ErrMalformedPacket)
		}
		body, err := ReadBody(r, h)
		if err != nil {
			return out, fmt.Errorf("packet: truncated body in datagram: %w: %w", err, hysimerr.ErrMalformedPacket)
		}
		msg, err := decodeBody(h, body)
		if err != nil {
			return out, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// EncodeDatagram concatenates the encoded form of every msg into a single
// byte slice suitable for one UDP send.
func EncodeDatagram(msgs ...Message) ([]byte, error) {
	w := newByteSliceWriter()
	for _, m := range msgs {
		if err := m.Encode(w); err != nil {
			return nil, fmt.Errorf("packet: encoding %s: %w", m, err)
		}
	}
	return w.bytes(), nil
}

// sliceReader is a minimal io.Reader over a fixed byte slice that never
// returns more than the bytes physically present; used so DecodeDatagram can
// detect truncation precisely instead of blocking.
type sliceReader struct {
	buf []byte
	pos int
}

func newSliceReader(buf []byte) *sliceReader { return &sliceReader{buf: buf} }

func (r *sliceReader) remaining() int { return len(r.buf) - r.pos }

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

type byteSliceWriter struct{ buf []byte }

func newByteSliceWriter() *byteSliceWriter { return &byteSliceWriter{} }

func (w *byteSliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *byteSliceWriter) bytes() []byte { return w.buf }
