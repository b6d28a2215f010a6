// Package session implements the world daemon's authenticated client object
// (spec.md §4.3): packet dispatch by opcode, timeout, latency tracking, and
// server<->client clock sync.
package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/snowfight-go/battlecore/internal/transport"
	"go.uber.org/zap"
)

// Status gates which handlers a session may invoke (spec.md §4.3).
type Status int

const (
	StatusNone Status = iota
	StatusAuthed
	StatusLoggedIn
)

// ID is the session's unique 32-bit id: 16-bit random magic + 16-bit counter
// (spec.md §3).
type ID uint32

func NewID(counter uint16) ID {
	magic := uint16(rand.Intn(1 << 16))
	return ID(uint32(magic)<<16 | uint32(counter))
}

// Latency tracks the running latest/min/max/avg across the session
// lifetime (spec.md §3, §4.3).
type Latency struct {
	Latest int32
	Min    int32
	Max    int32
	avgSum int64
	count  int64
}

func (l *Latency) Record(ms int32) {
	l.Latest = ms
	if l.count == 0 || ms < l.Min {
		l.Min = ms
	}
	if ms > l.Max {
		l.Max = ms
	}
	l.avgSum += int64(ms)
	l.count++
}

func (l *Latency) Avg() float64 {
	if l.count == 0 {
		return 0
	}
	return float64(l.avgSum) / float64(l.count)
}

// ClockSync computes the session's server<->client offset (spec.md §4.3).
// Every SyncInterval the server sends a monotone counter; the client
// echoes its current time; clientOffset = serverNow - (clientTime +
// latency/2). Stale replies (mismatched counter) are discarded.
type ClockSync struct {
	SyncInterval time.Duration

	counter      uint32
	pendingSent  time.Time
	clientOffset time.Duration
	lastTickAt   time.Time
}

const defaultSyncInterval = 10 * time.Second

func NewClockSync() *ClockSync {
	return &ClockSync{SyncInterval: defaultSyncInterval}
}

// NextRequest returns the monotone counter to stamp on an outbound
// TIME_SYNC_REQ, advancing it, and records when it was sent.
func (c *ClockSync) NextRequest(now time.Time) uint32 {
	c.counter++
	c.pendingSent = now
	return c.counter
}

// DueForSync reports whether SyncInterval has elapsed since the last tick
// that issued a request.
func (c *ClockSync) DueForSync(now time.Time) bool {
	return now.Sub(c.lastTickAt) >= c.SyncInterval
}

func (c *ClockSync) MarkTick(now time.Time) {
	c.lastTickAt = now
}

// ApplyReply applies a TIME_SYNC reply. replyCounter must match the last
// issued counter or the reply is discarded as stale. clientTime is the
// client-reported timestamp at send; latency is the session's current
// round-trip latency estimate (ms).
func (c *ClockSync) ApplyReply(replyCounter uint32, clientTime time.Time, latencyMS int32, serverNow time.Time) bool {
	if replyCounter != c.counter {
		return false // stale, discarded
	}
	halfLatency := time.Duration(latencyMS/2) * time.Millisecond
	c.clientOffset = serverNow.Sub(clientTime.Add(halfLatency))
	return true
}

// ClientNow returns serverNow adjusted to the client's clock, used to stamp
// outbound timestamps so the client can run client-side prediction.
func (c *ClockSync) ClientNow(serverNow time.Time) time.Time {
	return serverNow.Add(-c.clientOffset)
}

// Session is the authenticated world-daemon client object (spec.md §3, §4.3).
type Session struct {
	ID     ID
	Socket *transport.Socket

	mu             sync.Mutex
	status         Status
	inQueueFlag    bool
	loggingOut     bool
	requiresRestore bool // "allow restore" capability (spec.md §3 Lifecycles)
	gm             bool
	capabilities   uint32

	TimeoutTotal     time.Duration
	timeoutRemaining time.Duration

	Latency   Latency
	Clock     *ClockSync

	PlayerGUID uint32 // 0 if no in-world player yet; set by the owning theater
	log        *zap.Logger
}

func New(id ID, sock *transport.Socket, timeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:               id,
		Socket:           sock,
		status:           StatusNone,
		TimeoutTotal:     timeout,
		timeoutRemaining: timeout,
		Clock:            NewClockSync(),
		log:              log,
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) SetStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Session) IsGM() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gm
}

func (s *Session) SetGM(v bool) {
	s.mu.Lock()
	s.gm = v
	s.mu.Unlock()
}

func (s *Session) RequiresRestoreOnDisconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requiresRestore
}

func (s *Session) SetRequiresRestore(v bool) {
	s.mu.Lock()
	s.requiresRestore = v
	s.mu.Unlock()
}

// ResetTimeout is called whenever any application packet is received
// (spec.md §4.3 "Any received application packet resets the timer").
func (s *Session) ResetTimeout() {
	s.mu.Lock()
	s.timeoutRemaining = s.TimeoutTotal
	s.mu.Unlock()
}

// TickTimeout decrements the remaining timeout by dt and reports whether it
// has expired. TimeoutTotal == 0 disables the timeout entirely.
func (s *Session) TickTimeout(dt time.Duration) (expired bool) {
	if s.TimeoutTotal <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeoutRemaining -= dt
	return s.timeoutRemaining <= 0
}

// SwapSocket atomically replaces the underlying transport socket, used by
// session restore (spec.md §4.4 step 1, P4).
func (s *Session) SwapSocket(newSock *transport.Socket) {
	s.mu.Lock()
	s.Socket = newSock
	s.mu.Unlock()
}

// CopyRestoreState copies the latency and clock-sync fields from an old
// (pre-restore) session, preserving P4's "latency/clock fields equal S1's".
func (s *Session) CopyRestoreState(old *Session) {
	s.mu.Lock()
	s.Latency = old.Latency
	if old.Clock != nil {
		clk := *old.Clock
		s.Clock = &clk
	}
	s.PlayerGUID = old.PlayerGUID
	s.mu.Unlock()
}

func (s *Session) Send(pkt transport.Packet) {
	if s.Socket == nil {
		return
	}
	s.Socket.QueuePacket(pkt)
}
