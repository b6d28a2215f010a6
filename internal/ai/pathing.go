package ai

import "github.com/snowfight-go/battlecore/internal/worldmap"

// TileGrid is the subset of worldmap.TileGrid pathing needs, kept as an
// interface so tests can supply a fake grid without constructing a full
// worldmap.Map.
type TileGrid interface {
	InBounds(c worldmap.TileCoord) bool
	IsPenetrable(c worldmap.TileCoord) bool
}

var neighborOffsets = [4]worldmap.TileCoord{
	{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1},
}

// NextStep produces the next tile-aligned step toward goal (spec.md
// §4.9 "Pathing"): a greedy target-step generator that prefers the
// neighbor reducing Chebyshev distance to goal the most, respecting
// walls and closed tiles. With preferSameDistrict set, a neighbor inside
// the current district replaces an out-of-district best candidate
// regardless of distance; among neighbors on the same side of that test
// the one closer to goal wins.
func NextStep(grid TileGrid, districts *worldmap.Districts, from, goal worldmap.TileCoord, preferSameDistrict bool) (worldmap.TileCoord, bool) {
	if from == goal {
		return from, false
	}
	curDistrict := int32(-1)
	if districts != nil {
		curDistrict = districts.DistrictOf(from)
	}

	best := from
	bestDist := chebyshev(from, goal)
	found := false
	bestSameDistrict := false

	for _, off := range neighborOffsets {
		cand := worldmap.TileCoord{X: from.X + off.X, Y: from.Y + off.Y}
		if !grid.InBounds(cand) || !grid.IsPenetrable(cand) {
			continue
		}
		d := chebyshev(cand, goal)
		sameDistrict := districts == nil || !preferSameDistrict || districts.DistrictOf(cand) == curDistrict

		switch {
		case !found:
			best, bestDist, bestSameDistrict, found = cand, d, sameDistrict, true
		case preferSameDistrict && sameDistrict && !bestSameDistrict:
			best, bestDist, bestSameDistrict = cand, d, sameDistrict
		case sameDistrict == bestSameDistrict && d < bestDist:
			best, bestDist = cand, d
		}
	}
	return best, found
}

func chebyshev(a, b worldmap.TileCoord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// SplineDuration computes move-spline duration as tile-step distance /
// move speed (spec.md §4.9: "Move spline duration = tile-step distance /
// move_speed").
func SplineDuration(stepDistance, moveSpeed float64) float64 {
	if moveSpeed <= 0 {
		return 0
	}
	return stepDistance / moveSpeed
}
