// Package transport implements the length-prefixed framed packet protocol
// shared by the three daemons (spec.md §4.1, §6 "Wire framing") and the
// socket manager / reactor pool that drives it (spec.md §4.2).
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxBodyLen is the largest permitted packet body (spec.md §4.1).
const MaxBodyLen = 8192

const headerLen = 4 // 2 bytes body length + 2 bytes opcode

// DecodeError is raised by frame decoding or dispatch when a peer violates
// the framing contract (bad length, opcode out of range). Receiving one
// always closes the socket (spec.md §7).
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "decode error: " + e.Reason }

// Packet is a fully-decoded inbound or outbound frame.
type Packet struct {
	Opcode uint16
	Body   []byte
}

// Encode renders a Packet as its wire frame: big-endian body length,
// big-endian opcode, body bytes.
func (p Packet) Encode() ([]byte, error) {
	if len(p.Body) > MaxBodyLen {
		return nil, &DecodeError{Reason: fmt.Sprintf("body length %d exceeds %d", len(p.Body), MaxBodyLen)}
	}
	buf := make([]byte, headerLen+len(p.Body))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(p.Body)))
	binary.BigEndian.PutUint16(buf[2:4], p.Opcode)
	copy(buf[headerLen:], p.Body)
	return buf, nil
}

// ReadPacket reads one frame from r, validating body length and opcode
// range (numOpcodes, the dense opcode table size for the caller's daemon).
// P1: for any body length in [0, MaxBodyLen] and opcode in [0, numOpcodes),
// this round-trips what Encode produced.
func ReadPacket(r io.Reader, numOpcodes uint16) (Packet, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Packet{}, fmt.Errorf("read frame header: %w", err)
	}

	bodyLen := binary.BigEndian.Uint16(header[0:2])
	opcode := binary.BigEndian.Uint16(header[2:4])

	if bodyLen > MaxBodyLen {
		return Packet{}, &DecodeError{Reason: fmt.Sprintf("body length %d exceeds %d", bodyLen, MaxBodyLen)}
	}
	if opcode >= numOpcodes {
		return Packet{}, &DecodeError{Reason: fmt.Sprintf("opcode %d out of range [0,%d)", opcode, numOpcodes)}
	}

	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return Packet{}, fmt.Errorf("read frame body (%d bytes): %w", bodyLen, err)
		}
	}
	return Packet{Opcode: opcode, Body: body}, nil
}

// WritePacket writes one frame to w.
func WritePacket(w io.Writer, p Packet) error {
	buf, err := p.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
