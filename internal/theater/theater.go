// Package theater implements one match instance's state machine and the
// theater manager that owns admission, queueing, and parallel tick
// (spec.md §4.4, §4.5).
package theater

import (
	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/snowfight-go/battlecore/internal/scripting"
	"github.com/snowfight-go/battlecore/internal/session"
	"github.com/snowfight-go/battlecore/internal/worldmap"
)

// State is the theater lifecycle state machine (spec.md §4.5).
type State int

const (
	StateIdle State = iota
	StateWaitingForPlayers
	StatePlayersInPlace
	StateActive
)

// MapKind distinguishes the fixed training-ground map from grade-banded
// battle maps (spec.md §4.4 "Map selection").
type MapKind int

const (
	MapTraining MapKind = iota
	MapBattle
)

// Theater is one match instance: owns one map, its session set, state
// machine, and per-theater tick counter (spec.md §3 "Theater").
type Theater struct {
	ID    int32
	Map   *worldmap.Map
	Kind  MapKind

	GradeBandMin, GradeBandMax int32
	PopulationCap              int32
	RobotCount                 int32

	state      State
	waitElapsedMS int64
	waitTimeoutMS int64

	sleeping bool // true until first session ever joined

	Sessions map[session.ID]*session.Session

	// PlayerSessions is the reverse index from in-world player guid to the
	// owning session id, needed by the per-tick simulation pass to push
	// interest-management deltas and combat events to the right socket
	// without a linear Sessions scan (spec.md §4.7).
	PlayerSessions map[guid.ObjectGuid]session.ID

	// Params holds the danger-state and reward constants the simulation
	// pass reads every tick (spec.md §4.6.1, §4.8); set once after
	// NewTheater from config.WorldConfig.
	Params SimParams

	// Scripting is the Lua effects engine item pickups and nature-based
	// AI weighting draw from (spec.md §4.10, §4.9). Nil is valid — the
	// simulation pass falls back to built-in defaults (see simulate.go).
	Scripting *scripting.Engine

	sim *simState // per-theater AI/interest bookkeeping; see simulate.go

	battleCount int64

	idleSinceMS int64 // server clock ms when online count last hit zero; 0 = not idle
}

func NewTheater(id int32, m *worldmap.Map, kind MapKind, waitTimeoutMS int64) *Theater {
	return &Theater{
		ID:             id,
		Map:            m,
		Kind:           kind,
		waitTimeoutMS:  waitTimeoutMS,
		Sessions:       make(map[session.ID]*session.Session),
		PlayerSessions: make(map[guid.ObjectGuid]session.ID),
		sleeping:       true,
		sim:            newSimState(),
	}
}

func (t *Theater) State() State { return t.state }

func (t *Theater) OnlineCount() int { return len(t.Sessions) }

// CanJoinBattle reports whether the map accepts more combatants (spec.md
// §4.5: "map.canJoinBattle()").
func (t *Theater) CanJoinBattle() bool {
	return int32(len(t.Sessions))+t.RobotCount < t.PopulationCap
}

// Accepts implements the admission predicate (spec.md §4.5): capacity,
// canJoinBattle, and either the theater is sleeping (first join) or the
// player fits the grade band. GM sessions bypass the grade-band check
// entirely (SPEC_FULL.md "Supplemented features": GMCommandWorker.cpp's
// canJoin short-circuit on isGM()).
func (t *Theater) Accepts(isGM bool, isTrainee bool, combatPower int32) bool {
	if !t.CanJoinBattle() {
		return false
	}
	if isGM {
		return true
	}
	if t.sleeping {
		return true
	}
	if isTrainee || t.Kind == MapTraining {
		return false
	}
	return combatPower >= t.GradeBandMin && combatPower <= t.GradeBandMax
}

// Join registers a session, clearing the sleeping flag and any pending
// idle-deletion window (spec.md I5: "may be undeleted if a session joins
// within the window").
func (t *Theater) Join(s *session.Session) {
	t.Sessions[s.ID] = s
	t.sleeping = false
	t.idleSinceMS = 0
	if t.state == StateIdle {
		t.state = StateWaitingForPlayers
		t.waitElapsedMS = 0
	}
}

// JoinWithPlayer is Join plus the PlayerSessions bookkeeping a session
// that already has an in-world player needs (spec.md §4.4 step 1's
// admission chain hands a freshly-spawned player guid here).
func (t *Theater) JoinWithPlayer(s *session.Session, playerGUID guid.ObjectGuid) {
	t.Join(s)
	t.PlayerSessions[playerGUID] = s.ID
	s.PlayerGUID = uint32(playerGUID)
}

func (t *Theater) Leave(id session.ID) {
	if s, ok := t.Sessions[id]; ok {
		delete(t.PlayerSessions, guid.ObjectGuid(s.PlayerGUID))
	}
	delete(t.Sessions, id)
}

// Advance runs the serial bookkeeping pass: wait-for-players gate and
// the IDLE/ACTIVE transitions (spec.md §4.5 state machine). dtMS is the
// elapsed time since the previous Advance call.
func (t *Theater) Advance(dtMS int64) {
	switch t.state {
	case StateWaitingForPlayers:
		t.waitElapsedMS += dtMS
		if t.waitElapsedMS >= t.waitTimeoutMS && len(t.Sessions) >= 1 {
			t.state = StatePlayersInPlace
		}
	case StatePlayersInPlace:
		t.battleCount++
		t.state = StateActive
		t.onStart()
	case StateActive:
		if len(t.Sessions) == 0 {
			t.state = StateIdle
			t.onStop()
		}
	}
}

func (t *Theater) onStart() {}
func (t *Theater) onStop()  {}

// BattleCount is the number of times this theater has transitioned into
// ACTIVE (exposed for tests and metrics).
func (t *Theater) BattleCount() int64 { return t.battleCount }

// Tick drives this theater's map update for one world tick (spec.md §9
// I9: "Only the theater's own worker thread mutates that theater's map
// state during a tick"). Callers ensure at most one goroutine calls Tick
// on a given Theater concurrently; see Manager.TickAll.
func (t *Theater) Tick(dtSeconds float64) {
	if t.state != StateActive {
		return
	}
	t.Map.Tick(dtSeconds)
	runSimulation(t, dtSeconds)
}

// MarkIdleIfEmpty records the server clock time this theater first had
// zero online sessions, for the deletion-window check (spec.md I5, §4.4
// step 6). No-op if sessions are present or the window is already
// tracked.
func (t *Theater) MarkIdleIfEmpty(nowMS int64) {
	if len(t.Sessions) > 0 {
		t.idleSinceMS = 0
		return
	}
	if t.idleSinceMS == 0 {
		t.idleSinceMS = nowMS
	}
}

// IdleExpired reports whether this theater has been empty for at least
// deletionDelayMS (spec.md §4.4 step 6, I5).
func (t *Theater) IdleExpired(nowMS, deletionDelayMS int64) bool {
	if t.idleSinceMS == 0 {
		return false
	}
	return nowMS-t.idleSinceMS >= deletionDelayMS
}
