package session

import (
	"github.com/snowfight-go/battlecore/internal/transport"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

func pkt(opcode uint16, body []byte) transport.Packet {
	return transport.Packet{Opcode: opcode, Body: body}
}
