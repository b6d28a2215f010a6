package transport

import (
	"net"
	"strconv"

	"go.uber.org/zap"
)

// SocketManager owns one acceptor and N reactor threads. The accept loop
// dispatches each new connection to the reactor with the fewest active
// connections (spec.md §4.2). Listen backlog uses the platform max, which
// Go's net package already applies by default.
type SocketManager struct {
	listener net.Listener
	reactors []*Reactor
	opt      Options
	log      *zap.Logger

	onReceived OnReceived
	onAccept   func(*Socket)
	onClosed   OnClosed
}

// NewSocketManager binds (ip, port) and creates numReactors reactor threads.
func NewSocketManager(bindIP string, port int, numReactors int, opt Options, log *zap.Logger, onAccept func(*Socket), onReceived OnReceived, onClosed OnClosed) (*SocketManager, error) {
	if numReactors < 1 {
		numReactors = 1
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(bindIP, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	m := &SocketManager{
		listener:   ln,
		opt:        opt,
		log:        log,
		onAccept:   onAccept,
		onReceived: onReceived,
		onClosed:   onClosed,
	}
	for i := 0; i < numReactors; i++ {
		m.reactors = append(m.reactors, NewReactor(log))
	}
	return m, nil
}

// Start launches every reactor's event loop and the accept loop.
func (m *SocketManager) Start() {
	for _, r := range m.reactors {
		go r.Run()
	}
	go m.acceptLoop()
}

func (m *SocketManager) acceptLoop() {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return // listener closed on Stop()
		}
		sock := NewSocket(conn, m.opt, m.log, m.onReceived, m.onClosed)
		sock.ApplyTCPOptions()

		r := m.leastLoadedReactor()
		r.AddPending(sock)

		sock.AsyncRead()
		if m.onAccept != nil {
			m.onAccept(sock)
		}
	}
}

// leastLoadedReactor implements the §4.2 accept dispatch policy: the
// reactor with the fewest active connections receives the next accept.
// Ties resolve to the first (lowest-index) reactor.
func (m *SocketManager) leastLoadedReactor() *Reactor {
	best := m.reactors[0]
	bestCount := best.ActiveCount()
	for _, r := range m.reactors[1:] {
		if c := r.ActiveCount(); c < bestCount {
			best = r
			bestCount = c
		}
	}
	return best
}

// Stop closes the listener and every reactor.
func (m *SocketManager) Stop() {
	_ = m.listener.Close()
	for _, r := range m.reactors {
		r.Stop()
	}
}

func (m *SocketManager) Addr() net.Addr { return m.listener.Addr() }
