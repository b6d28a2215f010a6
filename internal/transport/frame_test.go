package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// P1 (framing roundtrip): for any body length in [0, 8192] and any opcode
// in [0, numOpcodes), framing then parsing yields the same (len, opcode, body).
func TestFrameRoundtrip(t *testing.T) {
	const numOpcodes = 16

	cases := []struct {
		name   string
		bodyLn int
		opcode uint16
	}{
		{"empty body", 0, 0},
		{"max body", MaxBodyLen, 5},
		{"mid body", 37, numOpcodes - 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := bytes.Repeat([]byte{0xAB}, tc.bodyLn)
			pkt := Packet{Opcode: tc.opcode, Body: body}

			var buf bytes.Buffer
			require.NoError(t, WritePacket(&buf, pkt))

			got, err := ReadPacket(&buf, numOpcodes)
			require.NoError(t, err)
			require.Equal(t, tc.opcode, got.Opcode)
			require.Equal(t, body, got.Body)
		})
	}
}

func TestFrameRejectsOversizedBody(t *testing.T) {
	const numOpcodes = 4
	body := bytes.Repeat([]byte{0}, MaxBodyLen+1)

	var buf bytes.Buffer
	buf.Write([]byte{0x20, 0x01, 0x00, 0x00}) // body_len=8193 (MaxBodyLen+1), opcode=0 (hand-built, bypasses Encode's own guard)
	buf.Write(body)

	_, err := ReadPacket(&buf, numOpcodes)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestFrameRejectsOpcodeOutOfRange(t *testing.T) {
	const numOpcodes = 4
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x00, 0x00, 0x04}) // body_len=0, opcode=4 (== numOpcodes)

	_, err := ReadPacket(&buf, numOpcodes)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestEncodeRejectsOversizedBody(t *testing.T) {
	pkt := Packet{Opcode: 1, Body: bytes.Repeat([]byte{0}, MaxBodyLen+1)}
	_, err := pkt.Encode()
	require.Error(t, err)
}
