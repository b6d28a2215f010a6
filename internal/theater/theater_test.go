package theater

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/session"
	"github.com/snowfight-go/battlecore/internal/worldmap"
	"github.com/stretchr/testify/require"
)

func newTestTheater(id int32, cap int32) *Theater {
	m := worldmap.NewMap(id, 32, 32)
	return NewTheater(id, m, MapBattle, 500)
}

func TestTheaterStateMachine(t *testing.T) {
	th := newTestTheater(1, 10)
	th.PopulationCap = 10
	require.Equal(t, StateIdle, th.State())

	s := &session.Session{ID: session.ID(1)}
	th.Join(s)
	require.Equal(t, StateWaitingForPlayers, th.State())

	th.Advance(600) // past waitTimeoutMS=500, >=1 session present
	require.Equal(t, StatePlayersInPlace, th.State())

	th.Advance(0)
	require.Equal(t, StateActive, th.State())
	require.Equal(t, int64(1), th.BattleCount())

	th.Leave(s.ID)
	th.Advance(0)
	require.Equal(t, StateIdle, th.State())
}

func TestAcceptsGMBypassesGradeBand(t *testing.T) {
	th := newTestTheater(1, 10)
	th.PopulationCap = 10
	th.GradeBandMin, th.GradeBandMax = 100, 200
	th.sleeping = false

	require.True(t, th.Accepts(true, false, 0))  // GM bypass
	require.False(t, th.Accepts(false, false, 0)) // out of grade band
	require.True(t, th.Accepts(false, false, 150))
}

func TestAcceptsSleepingTheaterIgnoresGradeBand(t *testing.T) {
	th := newTestTheater(1, 10)
	th.PopulationCap = 10
	th.GradeBandMin, th.GradeBandMax = 100, 200
	require.True(t, th.Accepts(false, false, 0)) // sleeping: first join always accepted
}

func TestIdleExpiredWindow(t *testing.T) {
	th := newTestTheater(1, 10)
	th.MarkIdleIfEmpty(1000)
	require.False(t, th.IdleExpired(1500, 1000))
	require.True(t, th.IdleExpired(2500, 1000))

	s := &session.Session{ID: session.ID(1)}
	th.Join(s)
	th.MarkIdleIfEmpty(3000)
	require.False(t, th.IdleExpired(999999, 1000)) // undeleted by join
}
