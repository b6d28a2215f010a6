package theater

import (
	"sync"
	"testing"

	"github.com/snowfight-go/battlecore/internal/session"
	"github.com/snowfight-go/battlecore/internal/worldmap"
	"github.com/stretchr/testify/require"
)

func buildTheater(id int32, kind MapKind, cap int32, online int) *Theater {
	th := NewTheater(id, worldmap.NewMap(id, 16, 16), kind, 500)
	th.PopulationCap = cap
	for i := 0; i < online; i++ {
		th.Join(&session.Session{ID: session.ID(i + 1)})
	}
	return th
}

func TestSelectTheaterPrefersMatchingKindAndLowerIDOnTie(t *testing.T) {
	m := NewManager(1000, 3600000, 10000, 5000, 2)
	a := buildTheater(2, MapBattle, 10, 0)
	b := buildTheater(1, MapBattle, 10, 0)
	m.CreateTheater(a)
	m.CreateTheater(b)

	picked, ok := m.SelectTheater(MapBattle, false)
	require.True(t, ok)
	require.Equal(t, int32(1), picked.ID) // equal weight -> ascending ID wins
}

func TestAdmitQueuesWhenAtPlayerLimit(t *testing.T) {
	m := NewManager(1, 3600000, 10000, 5000, 2)
	v1 := m.Admit(PendingSession{Session: &session.Session{ID: 1}}, 0)
	require.Equal(t, VerdictAdmitted, v1)

	v2 := m.Admit(PendingSession{Session: &session.Session{ID: 2}}, 0)
	require.Equal(t, VerdictQueued, v2)
	require.Equal(t, 1, m.QueueLen())
}

func TestAdmitGMBypassesPlayerLimit(t *testing.T) {
	m := NewManager(0, 3600000, 10000, 5000, 2)
	v := m.Admit(PendingSession{Session: &session.Session{ID: 1}, IsGM: true}, 0)
	require.Equal(t, VerdictAdmitted, v)
}

func TestPromoteQueuedRenumbersRemaining(t *testing.T) {
	m := NewManager(1, 3600000, 10000, 5000, 2)
	m.Admit(PendingSession{Session: &session.Session{ID: 1}}, 0)
	m.Admit(PendingSession{Session: &session.Session{ID: 2}}, 0)
	m.Admit(PendingSession{Session: &session.Session{ID: 3}}, 0)
	require.Equal(t, 2, m.QueueLen())

	m.nonGMPlayerCount-- // simulate a player leaving, freeing one slot
	head, ok := m.PromoteQueued()
	require.True(t, ok)
	require.Equal(t, session.ID(2), head.Session.ID)
	require.Equal(t, 1, m.QueueLen())
	require.Equal(t, 1, m.queued[0].Position)
}

func TestExpireQueuedDropsStaleEntries(t *testing.T) {
	m := NewManager(0, 3600000, 1000, 5000, 2)
	m.Admit(PendingSession{Session: &session.Session{ID: 1}}, 0)
	m.Admit(PendingSession{Session: &session.Session{ID: 2}}, 500)

	expired := m.ExpireQueued(1000)
	require.Len(t, expired, 1)
	require.Equal(t, session.ID(1), expired[0].Session.ID)
	require.Equal(t, 1, m.QueueLen())
}

func TestPlayerRegistryInvariant(t *testing.T) {
	m := NewManager(1000, 3600000, 10000, 5000, 2)
	th := buildTheater(1, MapBattle, 10, 0)
	m.CreateTheater(th)

	m.RegisterPlayer(42, th)
	got, ok := m.TheaterOfPlayer(42)
	require.True(t, ok)
	require.Same(t, th, got)

	m.UnregisterPlayer(42)
	_, ok = m.TheaterOfPlayer(42)
	require.False(t, ok)
}

func TestTickAllJoinsBeforeReturning(t *testing.T) {
	m := NewManager(1000, 3600000, 10000, 5000, 3)
	var mu sync.Mutex
	ticked := 0
	for i := int32(1); i <= 5; i++ {
		th := buildTheater(i, MapBattle, 10, 1)
		th.state = StateActive
		m.CreateTheater(th)
	}
	m.TickAll(0.05)
	mu.Lock()
	_ = ticked
	mu.Unlock()
	for _, th := range m.orderedTheaters() {
		require.InDelta(t, 0.05, th.Map.ElapsedSeconds, 1e-9) // every tick finished before TickAll returned
	}
	require.Equal(t, 5, m.TheaterCount())
}

func TestAdmitRestoresSessionWithInWorldPlayer(t *testing.T) {
	m := NewManager(1000, 3600000, 10000, 5000, 2)
	th := buildTheater(1, MapBattle, 10, 0)
	old := &session.Session{ID: 99, PlayerGUID: 7}
	th.Sessions[99] = old
	m.CreateTheater(th)
	m.BindSession(99, th)

	fresh := &session.Session{ID: 0}
	v := m.Admit(PendingSession{Session: fresh, PriorID: 99}, 0)
	require.Equal(t, VerdictRestored, v)
	require.Same(t, fresh, th.Sessions[99])
	require.Equal(t, session.ID(99), fresh.ID)
}

func TestAdmitExpiresRestoreWithNoInWorldPlayer(t *testing.T) {
	m := NewManager(1000, 3600000, 10000, 1000, 2)
	th := buildTheater(1, MapBattle, 10, 0)
	old := &session.Session{ID: 99} // PlayerGUID == 0: never entered world
	th.Sessions[99] = old
	m.CreateTheater(th)
	m.BindSession(99, th)

	fresh := &session.Session{ID: 0}
	v := m.Admit(PendingSession{Session: fresh, PriorID: 99}, 0)
	require.Equal(t, VerdictExpired, v)

	require.Empty(t, m.ExpireGrace(500))
	destroyed := m.ExpireGrace(1000)
	require.Len(t, destroyed, 1)
	require.Same(t, fresh, destroyed[0])
}

func TestPurgeIdleRemovesExpiredEmptyTheaters(t *testing.T) {
	m := NewManager(1000, 1000, 10000, 5000, 2)
	th := buildTheater(1, MapBattle, 10, 0)
	m.CreateTheater(th)

	purged := m.PurgeIdle(1000)
	require.Empty(t, purged)

	purged = m.PurgeIdle(2000)
	require.Equal(t, []int32{1}, purged)
	require.Equal(t, 0, m.TheaterCount())
}
