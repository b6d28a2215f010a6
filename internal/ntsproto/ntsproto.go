// Package ntsproto defines the wire shape of the standalone time-sync
// daemon's request/reply pair (spec.md §4.3 clock sync, carried over the
// same 2+2 framed transport every daemon uses). Unlike the world/auth
// opcode tables, NTS has exactly two opcodes and no session status gating:
// any connected socket may be sync'd.
package ntsproto

import "encoding/binary"

const (
	OpTimeSyncReq   uint16 = 0
	OpTimeSyncReply uint16 = 1
	NumOpcodes      uint16 = 2
)

// EncodeReq builds the TIME_SYNC_REQ body: a 4-byte big-endian counter.
func EncodeReq(counter uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, counter)
	return buf
}

// DecodeReply parses a TIME_SYNC_REPLY body: the echoed 4-byte counter
// followed by an 8-byte big-endian client timestamp (UnixNano).
func DecodeReply(body []byte) (counter uint32, clientUnixNano int64, ok bool) {
	if len(body) != 12 {
		return 0, 0, false
	}
	counter = binary.BigEndian.Uint32(body[0:4])
	clientUnixNano = int64(binary.BigEndian.Uint64(body[4:12]))
	return counter, clientUnixNano, true
}
