package session

import (
	"fmt"

	"github.com/snowfight-go/battlecore/internal/transport"
	"go.uber.org/zap"
)

// HandlerFunc processes one decoded packet body for a session already
// known to satisfy the opcode's required status.
type HandlerFunc func(s *Session, body []byte) error

// PacketException wraps a handler error so Dispatch's caller can log and
// skip the packet without tearing down the session (spec.md §7).
type PacketException struct {
	Opcode uint16
	Err    error
}

func (e *PacketException) Error() string {
	return fmt.Sprintf("packet exception (opcode %d): %v", e.Opcode, e.Err)
}

func (e *PacketException) Unwrap() error { return e.Err }

type tableEntry struct {
	required Status
	fn       HandlerFunc
}

// Dispatcher is the static opcode -> (required status, handler) table
// (spec.md §4.3). Opcodes gated by an unmet status are dropped silently;
// handler errors are logged and the packet skipped.
type Dispatcher struct {
	table map[uint16]tableEntry
	log   *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{table: make(map[uint16]tableEntry), log: log}
}

func (d *Dispatcher) Register(opcode uint16, required Status, fn HandlerFunc) {
	d.table[opcode] = tableEntry{required: required, fn: fn}
}

// NumOpcodes reports the dense opcode space this dispatcher covers, which
// callers pass to transport.ReadPacket to bound decoding.
func (d *Dispatcher) NumOpcodes() uint16 {
	var max uint16
	for op := range d.table {
		if op >= max {
			max = op + 1
		}
	}
	return max
}

// Dispatch routes one inbound packet to its handler. Any application
// packet resets the session's timeout (spec.md §4.3) before dispatch is
// attempted, matching the source's "activity implies liveness" contract.
func (d *Dispatcher) Dispatch(s *Session, pkt transport.Packet) {
	s.ResetTimeout()

	entry, ok := d.table[pkt.Opcode]
	if !ok {
		d.log.Debug("未知操作碼，忽略", zap.Uint16("opcode", pkt.Opcode))
		return
	}
	if s.Status() < entry.required {
		d.log.Debug("狀態不符，封包丟棄", zap.Uint16("opcode", pkt.Opcode), zap.Int("status", int(s.Status())))
		return
	}

	if err := d.safeCall(entry.fn, s, pkt); err != nil {
		d.log.Warn("處理器錯誤，略過封包", zap.Uint16("opcode", pkt.Opcode), zap.Error(err))
	}
}

func (d *Dispatcher) safeCall(fn HandlerFunc, s *Session, pkt transport.Packet) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PacketException{Opcode: pkt.Opcode, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	if e := fn(s, pkt.Body); e != nil {
		return &PacketException{Opcode: pkt.Opcode, Err: e}
	}
	return nil
}
