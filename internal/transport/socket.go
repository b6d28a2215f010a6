package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options configures a Socket's TCP-level and queueing behavior
// (spec.md §4.2 "Configurable socket options", §4.1 send queue).
type Options struct {
	NumOpcodes     uint16 // dense opcode table size; bounds ReadPacket
	TCPNoDelay     bool
	SendBufBytes   int // SO_SNDBUF; 0 = OS default
	SendQueueLimit int // 0 = unbounded (spec.md §6 Network.SendQueueLimit)
	WriteBufBytes  int // coalescing buffer size for Update()
}

// OnClosed is invoked exactly once when a socket transitions to closed
// (spec.md §4.1 "onSocketClosed() fires exactly once").
type OnClosed func(s *Socket, reason string)

// OnReceived is invoked for every fully-decoded inbound packet
// (spec.md §4.1 asyncRead -> onReceivedData).
type OnReceived func(s *Socket, pkt Packet)

// Socket wraps one TCP connection with async reads, a bounded outbound
// queue drained by a reactor tick, and idempotent close (spec.md §4.1).
type Socket struct {
	conn net.Conn
	opt  Options
	log  *zap.Logger

	onReceived OnReceived
	onClosed   OnClosed

	mu      sync.Mutex
	outbox  [][]byte
	outLen  int
	closed  bool
	closeCh chan struct{}

	// UserData lets the owning layer (e.g. session.Session) stash its own
	// state on the socket without an import cycle.
	UserData any
}

func NewSocket(conn net.Conn, opt Options, log *zap.Logger, onReceived OnReceived, onClosed OnClosed) *Socket {
	return &Socket{
		conn:       conn,
		opt:        opt,
		log:        log,
		onReceived: onReceived,
		onClosed:   onClosed,
		closeCh:    make(chan struct{}),
	}
}

// ApplyTCPOptions sets TCP_NODELAY / SO_SNDBUF where the connection supports it.
func (s *Socket) ApplyTCPOptions() {
	tc, ok := s.conn.(*net.TCPConn)
	if !ok {
		return
	}
	if s.opt.TCPNoDelay {
		_ = tc.SetNoDelay(true)
	}
	if s.opt.SendBufBytes > 0 {
		_ = tc.SetWriteBuffer(s.opt.SendBufBytes)
	}
}

func (s *Socket) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// AsyncRead launches the read loop in its own goroutine. It decodes frames
// one at a time and delivers each to onReceived; a decode or I/O error
// closes the socket (spec.md §4.1, §7).
func (s *Socket) AsyncRead() {
	go s.readLoop()
}

func (s *Socket) readLoop() {
	for {
		pkt, err := ReadPacket(s.conn, s.opt.NumOpcodes)
		if err != nil {
			var de *DecodeError
			reason := "read error"
			if errors.As(err, &de) {
				reason = de.Error()
			}
			s.Close(reason)
			return
		}
		select {
		case <-s.closeCh:
			return
		default:
		}
		if s.onReceived != nil {
			s.onReceived(s, pkt)
		}
	}
}

// QueuePacket is thread-safe (spec.md §4.1). A packet that would push the
// backlog past SendQueueLimit closes the socket instead of being enqueued
// (I8, P2): no earlier packet is dropped, and the socket closes exactly
// once.
func (s *Socket) QueuePacket(p Packet) {
	buf, err := p.Encode()
	if err != nil {
		s.Close(err.Error())
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.opt.SendQueueLimit > 0 && len(s.outbox)+1 > s.opt.SendQueueLimit {
		s.mu.Unlock()
		s.Close("send queue full")
		return
	}
	s.outbox = append(s.outbox, buf)
	s.outLen += len(buf)
	s.mu.Unlock()
}

// Update is called once per reactor tick (spec.md §4.2, period 10ms). It
// drains the outbound queue into a coalescing buffer (up to WriteBufBytes)
// and issues one write each time the buffer fills plus one for the
// remainder; a packet larger than the buffer is written on its own.
func (s *Socket) Update() {
	s.mu.Lock()
	if s.closed || len(s.outbox) == 0 {
		s.mu.Unlock()
		return
	}
	pending := s.outbox
	s.outbox = nil
	s.outLen = 0
	s.mu.Unlock()

	bufSize := s.opt.WriteBufBytes
	if bufSize <= 0 {
		bufSize = 16 * 1024
	}

	var coalesced []byte
	flush := func() {
		if len(coalesced) == 0 {
			return
		}
		if err := s.writeAll(coalesced); err != nil {
			s.Close(fmt.Sprintf("write error: %v", err))
		}
		coalesced = coalesced[:0]
	}

	for _, buf := range pending {
		if len(buf) > bufSize {
			flush()
			if err := s.writeAll(buf); err != nil {
				s.Close(fmt.Sprintf("write error: %v", err))
				return
			}
			continue
		}
		if len(coalesced)+len(buf) > bufSize {
			flush()
		}
		coalesced = append(coalesced, buf...)
	}
	flush()
}

func (s *Socket) writeAll(buf []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_, err := s.conn.Write(buf)
	return err
}

// Close is idempotent (spec.md §4.1). onClosed fires exactly once.
func (s *Socket) Close(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.closeCh)
	_ = s.conn.Close()
	if s.onClosed != nil {
		s.onClosed(s, reason)
	}
}

func (s *Socket) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// OutboxBacklog reports the number of queued-but-unwritten packets. Used by
// tests verifying P2 and by the reactor's least-loaded accept policy is not
// based on this — that policy uses active connection counts (spec.md §4.2).
func (s *Socket) OutboxBacklog() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outbox)
}
