package ai

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/entity"
	"github.com/snowfight-go/battlecore/internal/worldmap"
	"github.com/stretchr/testify/require"
)

func TestSelectActionHonorsStrictPriority(t *testing.T) {
	pending := PendingActions{
		ActionExploreArea:  true,
		ActionEngageCombat: true,
		ActionHideAtSpot:   true,
	}
	a, ok := SelectAction(pending)
	require.True(t, ok)
	require.Equal(t, ActionHideAtSpot, a)
}

func TestSelectActionNoneEligible(t *testing.T) {
	_, ok := SelectAction(PendingActions{})
	require.False(t, ok)
}

func TestUnitThreatManagerHighest(t *testing.T) {
	m := NewUnitThreatManager()
	m.Update(1, ThreatContributors{DistanceTerm: 1}, Coefficients{Distance: 1})
	m.Update(2, ThreatContributors{DistanceTerm: 1, HealthTerm: 1}, Coefficients{Distance: 1, Health: 1})
	best, ok := m.Highest()
	require.True(t, ok)
	require.EqualValues(t, 2, best)
}

func TestSubStateEscapesOnLowHealth(t *testing.T) {
	require.Equal(t, entity.SubStateEscape, SubState(10, 0, 20, 2))
	require.Equal(t, entity.SubStateChase, SubState(90, 0, 20, 2))
	require.Equal(t, entity.SubStateEscape, SubState(90, 5, 20, 2))
}

type fakeGrid struct{ blocked map[worldmap.TileCoord]bool }

func (g fakeGrid) InBounds(c worldmap.TileCoord) bool { return true }
func (g fakeGrid) IsPenetrable(c worldmap.TileCoord) bool {
	return !g.blocked[c]
}

func TestNextStepMovesTowardGoal(t *testing.T) {
	grid := fakeGrid{blocked: map[worldmap.TileCoord]bool{}}
	from := worldmap.TileCoord{X: 0, Y: 0}
	goal := worldmap.TileCoord{X: 5, Y: 0}
	step, ok := NextStep(grid, nil, from, goal, false)
	require.True(t, ok)
	require.Equal(t, worldmap.TileCoord{X: 1, Y: 0}, step)
}

func TestNextStepAtGoalReturnsFalse(t *testing.T) {
	grid := fakeGrid{}
	_, ok := NextStep(grid, nil, worldmap.TileCoord{}, worldmap.TileCoord{}, false)
	require.False(t, ok)
}

func TestChooseNextAreaFiltersAndPicksShortest(t *testing.T) {
	candidates := []AdjacentCandidate{
		{Area: 1, SameDistrict: true, Unexplored: true, SafeDistanceOK: true, MoveDistance: 5},
		{Area: 2, SameDistrict: true, Unexplored: true, SafeDistanceOK: true, MoveDistance: 2},
		{Area: 3, SameDistrict: false, Unexplored: true, SafeDistanceOK: true, MoveDistance: 1},
	}
	best, ok := ChooseNextArea(candidates)
	require.True(t, ok)
	require.EqualValues(t, 2, best.Area)
}

func TestExcludedAreasExpire(t *testing.T) {
	e := NewExcludedAreas()
	e.Exclude(1, 0)
	require.True(t, e.IsExcluded(1, 10))
	require.False(t, e.IsExcluded(1, 31))
}
