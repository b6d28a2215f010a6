package transport

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickPeriod is the reactor tick period (spec.md §4.2).
const TickPeriod = 10 * time.Millisecond

// Reactor owns one event loop and one timer, and a vector of sockets it
// alone mutates except for the thread-safe "add pending socket" queue
// (spec.md §4.2). Different reactors tick independently and concurrently.
type Reactor struct {
	log *zap.Logger

	pendingMu sync.Mutex
	pending   []*Socket

	sockets []*Socket

	activeMu sync.RWMutex
	active   int // live socket count, read by the manager's dispatch policy

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewReactor(log *zap.Logger) *Reactor {
	return &Reactor{
		log:     log,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		sockets: make([]*Socket, 0, 64),
	}
}

// AddPending enqueues a newly-accepted socket (thread-safe; called from the
// acceptor goroutine, consumed on the reactor's own goroutine at tick time).
func (r *Reactor) AddPending(s *Socket) {
	r.pendingMu.Lock()
	r.pending = append(r.pending, s)
	r.pendingMu.Unlock()

	r.activeMu.Lock()
	r.active++
	r.activeMu.Unlock()
}

// ActiveCount reports the reactor's live connection count, used by the
// socket manager's least-loaded accept policy (spec.md §4.2).
func (r *Reactor) ActiveCount() int {
	r.activeMu.RLock()
	defer r.activeMu.RUnlock()
	return r.active
}

// Run drives the reactor's own event loop: each tick promotes pending
// sockets, evicts closed ones, and calls Update() on every live socket.
func (r *Reactor) Run() {
	defer close(r.doneCh)
	ticker := time.NewTicker(TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Reactor) tick() {
	r.pendingMu.Lock()
	if len(r.pending) > 0 {
		r.sockets = append(r.sockets, r.pending...)
		r.pending = nil
	}
	r.pendingMu.Unlock()

	live := r.sockets[:0]
	for _, s := range r.sockets {
		if s.IsClosed() {
			continue
		}
		s.Update()
		if s.IsClosed() {
			continue
		}
		live = append(live, s)
	}
	evicted := len(r.sockets) - len(live)
	r.sockets = live
	if evicted > 0 {
		r.activeMu.Lock()
		r.active -= evicted
		if r.active < 0 {
			r.active = 0
		}
		r.activeMu.Unlock()
	}
}

// Stop signals the reactor's Run loop to exit and blocks until it has.
func (r *Reactor) Stop() {
	close(r.stopCh)
	<-r.doneCh
}
