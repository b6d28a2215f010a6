package theater

import (
	"sync"

	"github.com/snowfight-go/battlecore/internal/session"
)

// AdmissionVerdict is returned to a pending session by the manager's
// drain pass (spec.md §4.4 step 1).
type AdmissionVerdict int

const (
	VerdictAdmitted AdmissionVerdict = iota
	VerdictQueued
	VerdictRestored
	VerdictExpired
)

// PendingSession is a newly-authenticated socket handed to the manager
// by a reactor thread (spec.md §4.4 step 1: "a lock-free queue receives
// newly-authenticated sockets").
type PendingSession struct {
	Session      *session.Session
	PriorID      session.ID // zero if not attempting restore
	IsGM         bool
	IsTrainee    bool
	CombatPower  int32
	SelectedKind MapKind
}

// ExpiredSession is a pending session whose restore attempt failed; it
// lingers briefly so the client can observe the verdict before the socket
// is force-closed (spec.md §4.4 step 4).
type ExpiredSession struct {
	Session    *session.Session
	ExpiredAtMS int64
}

// QueuedSession is a session waiting for capacity (spec.md §4.4 step 1,
// step 3).
type QueuedSession struct {
	Session    *session.Session
	QueuedAtMS int64
	Position   int
}

// Manager owns admission, queueing, the theater pool, and parallel tick
// (spec.md §4.4 "Theater manager"). Single-threaded except for TickAll's
// bounded worker pool, which runs only inside one Manager.Update call and
// is fully joined before Update returns (I9).
type Manager struct {
	mu sync.Mutex // guards the maps below; the process-global "read-mostly registry" (spec.md §5)

	theaters     map[int32]*Theater
	byPlayer     map[uint32]*Theater // playerGUID -> owning theater (I4)
	nextTheater  int32

	sessionsByID map[session.ID]*Theater

	queued  []*QueuedSession
	expired []*ExpiredSession
	pending []PendingSession

	PlayerLimit         int
	TheaterDeletionDelayMS int64
	QueuedSessionTimeoutMS int64
	ExpiredSessionDelayMS  int64
	WorkerPoolSize         int

	nonGMPlayerCount int
}

func NewManager(playerLimit int, theaterDeletionDelayMS, queuedSessionTimeoutMS, expiredSessionDelayMS int64, workerPoolSize int) *Manager {
	return &Manager{
		theaters:     make(map[int32]*Theater),
		byPlayer:     make(map[uint32]*Theater),
		sessionsByID: make(map[session.ID]*Theater),
		PlayerLimit:  playerLimit,
		TheaterDeletionDelayMS: theaterDeletionDelayMS,
		QueuedSessionTimeoutMS: queuedSessionTimeoutMS,
		ExpiredSessionDelayMS:  expiredSessionDelayMS,
		WorkerPoolSize:         workerPoolSize,
	}
}

// theaterWeight implements spec.md §4.4's additive "Theater selection
// for a new player" formula. online/cap is computed as a float ratio
// folded into the same term the spec adds it to ("combatants < cap ? 1 +
// online/cap : 0").
func theaterWeight(t *Theater, selectedKind MapKind, isTrainee bool) float64 {
	w := 0.0
	if t.Kind == selectedKind {
		w++
	}
	canJoin := t.CanJoinBattle()
	if canJoin {
		online := float64(len(t.Sessions))
		ratio := 0.0
		if t.PopulationCap > 0 {
			ratio = online / float64(t.PopulationCap)
		}
		w += 1 + ratio
	}
	if canJoin {
		w++
	}
	if t.sleeping {
		w++
	} else if !isTrainee && t.Kind != MapTraining {
		w++
	}
	return w
}

// SelectTheater picks the max-weight theater for a new player, per the
// decided Open Question #2 tie-break: equal weight resolves by ascending
// theater.ID (spec.md §4.4, DECIDED OPEN QUESTIONS #2).
func (m *Manager) SelectTheater(selectedKind MapKind, isTrainee bool) (*Theater, bool) {
	var best *Theater
	bestWeight := -1.0
	for _, t := range m.orderedTheaters() {
		w := theaterWeight(t, selectedKind, isTrainee)
		if w > bestWeight {
			best, bestWeight = t, w
		}
	}
	return best, best != nil
}

func (m *Manager) orderedTheaters() []*Theater {
	ids := make([]int32, 0, len(m.theaters))
	for id := range m.theaters {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	out := make([]*Theater, len(ids))
	for i, id := range ids {
		out[i] = m.theaters[id]
	}
	return out
}

// CreateTheater registers a freshly-built theater (map selection and
// construction happen in the caller, per SPEC_FULL.md's catalog-backed
// map template lookup).
func (m *Manager) CreateTheater(t *Theater) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theaters[t.ID] = t
	if t.ID >= m.nextTheater {
		m.nextTheater = t.ID + 1
	}
}

// NextTheaterID allocates an id for a theater the caller is about to
// build from a catalog map template (spec.md §4.4 "Map selection for a
// player"), keeping the counter monotone across both caller-chosen and
// generated ids.
func (m *Manager) NextTheaterID() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTheater++
	return m.nextTheater
}

// Enqueue hands a newly-authenticated socket to the manager's admission
// queue (spec.md §4.4 step 1: "a lock-free queue receives newly-
// authenticated sockets"). The reactor thread that just finished the
// auth handshake calls this; DrainPending consumes it once per world
// tick from the single-threaded admission path.
func (m *Manager) Enqueue(p PendingSession) {
	m.mu.Lock()
	m.pending = append(m.pending, p)
	m.mu.Unlock()
}

// DrainPending removes and returns every socket enqueued since the last
// drain, for the world tick loop to run through Admit/SelectTheater/
// CreateTheater/Join in its own single-threaded pass.
func (m *Manager) DrainPending() []PendingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	out := m.pending
	m.pending = nil
	return out
}

// Admit implements spec.md §4.4 step 1 in full: a prior session id
// attempts restore first; failing that (or absent), GM sessions bypass
// the capacity check, and everyone else is admitted if playerCount <
// playerLimit or else queued in arrival order.
func (m *Manager) Admit(p PendingSession, nowMS int64) AdmissionVerdict {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.PriorID != 0 {
		if m.tryRestore(p) {
			return VerdictRestored
		}
		m.expired = append(m.expired, &ExpiredSession{Session: p.Session, ExpiredAtMS: nowMS})
		return VerdictExpired
	}

	if !p.IsGM && m.nonGMPlayerCount >= m.PlayerLimit {
		m.queued = append(m.queued, &QueuedSession{Session: p.Session, QueuedAtMS: nowMS, Position: len(m.queued) + 1})
		return VerdictQueued
	}
	if !p.IsGM {
		m.nonGMPlayerCount++
	}
	return VerdictAdmitted
}

// tryRestore implements spec.md §4.4 step 1's restore branch. Caller
// holds m.mu. Fails silently (returns false) if no session with that id
// is tracked or its player never made it into the world.
func (m *Manager) tryRestore(p PendingSession) bool {
	th, ok := m.sessionsByID[p.PriorID]
	if !ok {
		return false
	}
	old, ok := th.Sessions[p.PriorID]
	if !ok || old.PlayerGUID == 0 {
		return false
	}

	p.Session.CopyRestoreState(old)
	p.Session.ID = p.PriorID
	th.Sessions[p.PriorID] = p.Session
	if old.Socket != nil {
		old.Socket.Close("restored")
	}
	return true
}

// BindSession records which theater a live session id belongs to, so a
// later restore attempt for that id can find it (spec.md §4.4 step 1).
func (m *Manager) BindSession(id session.ID, t *Theater) {
	m.mu.Lock()
	m.sessionsByID[id] = t
	m.mu.Unlock()
}

func (m *Manager) UnbindSession(id session.ID) {
	m.mu.Lock()
	delete(m.sessionsByID, id)
	m.mu.Unlock()
}

// ExpireGrace destroys any expired (failed-restore) sessions whose grace
// window has elapsed (spec.md §4.4 step 4).
func (m *Manager) ExpireGrace(nowMS int64) []*session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var destroyed []*session.Session
	kept := m.expired[:0]
	for _, e := range m.expired {
		if nowMS-e.ExpiredAtMS >= m.ExpiredSessionDelayMS {
			if e.Session.Socket != nil {
				e.Session.Socket.Close("session expired")
			}
			destroyed = append(destroyed, e.Session)
		} else {
			kept = append(kept, e)
		}
	}
	m.expired = kept
	return destroyed
}

// PromoteQueued advances the head of the queue once capacity frees,
// renumbering remaining positions (spec.md §4.4 step 3).
func (m *Manager) PromoteQueued() (*QueuedSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queued) == 0 || m.nonGMPlayerCount >= m.PlayerLimit {
		return nil, false
	}
	head := m.queued[0]
	m.queued = m.queued[1:]
	m.nonGMPlayerCount++
	for i, q := range m.queued {
		q.Position = i + 1
	}
	return head, true
}

// ExpireQueued drops queued sessions whose queued-timeout elapsed
// (spec.md §4.4 step 3).
func (m *Manager) ExpireQueued(nowMS int64) []*QueuedSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []*QueuedSession
	kept := m.queued[:0]
	for _, q := range m.queued {
		if nowMS-q.QueuedAtMS >= m.QueuedSessionTimeoutMS {
			expired = append(expired, q)
		} else {
			kept = append(kept, q)
		}
	}
	m.queued = kept
	for i, q := range m.queued {
		q.Position = i + 1
	}
	return expired
}

func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

// RegisterPlayer records that a session's player now belongs to a
// theater, maintaining I4.
func (m *Manager) RegisterPlayer(playerGUID uint32, t *Theater) {
	m.mu.Lock()
	m.byPlayer[playerGUID] = t
	m.mu.Unlock()
}

func (m *Manager) UnregisterPlayer(playerGUID uint32) {
	m.mu.Lock()
	delete(m.byPlayer, playerGUID)
	m.mu.Unlock()
}

func (m *Manager) TheaterOfPlayer(playerGUID uint32) (*Theater, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byPlayer[playerGUID]
	return t, ok
}

// AllSessions returns every session bound to a theater, for passes that
// operate per-session rather than per-theater (e.g. the world daemon's
// in-band clock sync tick).
func (m *Manager) AllSessions() []*session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*session.Session, 0, len(m.sessionsByID))
	for id, t := range m.sessionsByID {
		if s, ok := t.Sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// AdvanceAll runs the serial bookkeeping pass over every theater (spec.md
// §4.4 step 5: "The advance pass is serial").
func (m *Manager) AdvanceAll(dtMS int64) {
	for _, t := range m.orderedTheaters() {
		t.Advance(dtMS)
	}
}

// TickAll dispatches each theater's tick to a bounded worker pool and
// blocks until all complete (spec.md §4.4 step 5, P7: the tick pass
// "waits"; I9: each theater's map is mutated only by its own tick call).
func (m *Manager) TickAll(dtSeconds float64) {
	theaters := m.orderedTheaters()
	if len(theaters) == 0 {
		return
	}
	poolSize := m.WorkerPoolSize
	if poolSize < 1 {
		poolSize = 1
	}

	jobs := make(chan *Theater)
	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				t.Tick(dtSeconds)
			}
		}()
	}
	for _, t := range theaters {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
}

// PurgeIdle deletes theaters whose idle-deletion window has expired
// (spec.md §4.4 step 6, I5).
func (m *Manager) PurgeIdle(nowMS int64) []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged []int32
	for id, t := range m.theaters {
		t.MarkIdleIfEmpty(nowMS)
		if t.IdleExpired(nowMS, m.TheaterDeletionDelayMS) {
			purged = append(purged, id)
			delete(m.theaters, id)
		}
	}
	return purged
}

func (m *Manager) TheaterCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.theaters)
}
