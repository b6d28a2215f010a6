package worldmap

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestSpawnRobotAssignsMonotoneDistinctGuids(t *testing.T) {
	m := NewMap(1, 64, 64)
	r1 := m.SpawnRobot()
	r2 := m.SpawnRobot()
	require.NotEqual(t, r1.GUID, r2.GUID)
	require.Less(t, r1.GUID.Counter(), r2.GUID.Counter())
}

func TestDespawnRobotReusesPointerButNotGuid(t *testing.T) {
	m := NewMap(1, 64, 64)
	r1 := m.SpawnRobot()
	firstGUID := r1.GUID
	r1.Health = 77
	m.DespawnRobot(firstGUID)

	r2 := m.SpawnRobot()
	require.Same(t, r1, r2)
	require.NotEqual(t, firstGUID, r2.GUID) // I6: counter never repeats
	require.Equal(t, int32(0), r2.Health)   // Reset applied before reuse
}

func TestAddPlayerMaintainsObjectGridInvariant(t *testing.T) {
	m := NewMap(1, 64, 64)
	p := entity.NewPlayer(0x01000001)
	p.Pos = entity.Position{X: 10, Y: 10}
	m.AddPlayer(p)

	loc, ok := m.Objects.Location(p.GUID)
	require.True(t, ok)
	require.Equal(t, PositionToGrid(toWM(p.Pos)), loc)

	p.Pos = entity.Position{X: 500, Y: 500}
	m.MoveObject(p.GUID, p.Pos)
	loc2, ok := m.Objects.Location(p.GUID)
	require.True(t, ok)
	require.NotEqual(t, loc, loc2)

	m.RemovePlayer(p.GUID)
	_, ok = m.Objects.Location(p.GUID)
	require.False(t, ok)
}

func TestMapTickAdvancesSafeZone(t *testing.T) {
	m := NewMap(1, 64, 64)
	m.Zone.SetTimeline([][2]float64{{0, 100}, {60, 50}})
	m.Tick(30)
	require.InDelta(t, 75, m.Zone.Radius, 0.001)
}

func TestDistrictsFloodFillSharesComponentAcrossWaypoints(t *testing.T) {
	grid := NewTileGrid(10, 1)
	for x := 0; x < 10; x++ {
		grid.SetFlags(TileCoord{X: x, Y: 0}, TilePenetrable)
	}
	d := NewDistricts()
	d.AddWaypoint(&Waypoint{ID: 1, Seed: TileCoord{X: 0, Y: 0}})
	d.AddWaypoint(&Waypoint{ID: 2, Seed: TileCoord{X: 9, Y: 0}})
	d.AssignFloodFill(grid)

	require.Equal(t, d.Waypoints[1].District, d.Waypoints[2].District)
	require.Equal(t, d.Waypoints[1].District, d.DistrictOf(TileCoord{X: 5, Y: 0}))
}

func TestWorldToTileRoundtrip(t *testing.T) {
	for _, c := range []TileCoord{{X: 0, Y: 0}, {X: 5, Y: 3}, {X: -2, Y: 7}} {
		wx, wy := TileToWorld(c)
		got := WorldToTile(wx, wy)
		require.Equal(t, c, got)
	}
}
