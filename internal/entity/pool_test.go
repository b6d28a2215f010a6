package entity

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/stretchr/testify/require"
)

func TestPoolReusesReleasedObjectIdentity(t *testing.T) {
	pool := NewPool[*Robot]()

	r1 := NewRobot(guid.New(guid.TypeRobot, 1))
	r1.Health = 50
	r1.Nature = NatureCowardly
	pool.Release(r1)

	r2, reused := pool.Acquire()
	require.True(t, reused)
	require.Same(t, r1, r2) // identity reused, per Design Notes
	require.Equal(t, int32(0), r2.Health)
	require.Equal(t, NatureAggressive, r2.Nature) // zero value after Reset
}

func TestPoolAcquireOnEmptyReportsNotReused(t *testing.T) {
	pool := NewPool[*Robot]()
	_, reused := pool.Acquire()
	require.False(t, reused)
}

func TestBezierEndpoints(t *testing.T) {
	c := BezierCurve{
		P0: Position{X: 0, Y: 0},
		P1: Position{X: 1, Y: 2},
		P2: Position{X: 3, Y: 2},
		P3: Position{X: 4, Y: 0},
	}
	require.Equal(t, c.P0, c.PointAt(0))
	require.Equal(t, c.P3, c.PointAt(1))
}

func TestUnitCombatInvariant(t *testing.T) {
	attacker := NewUnit(guid.New(guid.TypePlayer, 1))
	target := NewUnit(guid.New(guid.TypeRobot, 1))

	attacker.EnterCombat(&target)
	require.True(t, attacker.IsInCombat())
	_, ok := target.Enemies[attacker.GUID]
	require.True(t, ok) // I2: target's enemy set contains the attacker

	attacker.LeaveCombat(&target)
	require.False(t, attacker.IsInCombat())
	_, ok = target.Enemies[attacker.GUID]
	require.False(t, ok)
}
