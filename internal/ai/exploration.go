package ai

// ExplorAreaSizeFactor is the bucket side length in sight-distances (spec.md
// §4.9: "tiled by ExplorArea buckets sized 2 x sight-distance").
const ExplorAreaSizeFactor = 2

// ExplorAreaOf buckets a tile coordinate into its ExplorArea id, given
// the sight distance in tiles.
func ExplorAreaOf(tileX, tileY, sightDistance int) int32 {
	size := ExplorAreaSizeFactor * sightDistance
	if size <= 0 {
		size = 1
	}
	bx := floorDivInt(tileX, size)
	by := floorDivInt(tileY, size)
	// pack into one id; bucket coordinates are expected to stay small and
	// non-negative-unbounded within a map's lifetime.
	return int32(bx)<<16 ^ int32(by)
}

func floorDivInt(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ExcludedAreaTTLSeconds is how long an excluded area stays excluded
// (spec.md §4.9: "Excluded areas expire after 30 s").
const ExcludedAreaTTLSeconds = 30.0

// AdjacentCandidate is one candidate area considered by the exploration
// filter chain.
type AdjacentCandidate struct {
	Area           int32
	SameDistrict   bool
	Unexplored     bool
	Excluded       bool
	MoveDistance   float64
	SafeDistanceOK bool
}

// ChooseNextArea implements the filter chain (spec.md §4.9 "Exploration":
// "same district, unexplored, not excluded, safe distance maintained) by
// shortest move distance"). Returns false if no candidate passes.
func ChooseNextArea(candidates []AdjacentCandidate) (AdjacentCandidate, bool) {
	best := AdjacentCandidate{}
	bestDist := -1.0
	found := false
	for _, c := range candidates {
		if !c.SameDistrict || !c.Unexplored || c.Excluded || !c.SafeDistanceOK {
			continue
		}
		if !found || c.MoveDistance < bestDist {
			best, bestDist, found = c, c.MoveDistance, true
		}
	}
	return best, found
}

// ExcludedAreas tracks areas a robot has temporarily excluded from
// exploration (e.g. recently failed a pathing attempt), expiring each
// after ExcludedAreaTTLSeconds (spec.md §4.9).
type ExcludedAreas struct {
	expiry map[int32]float64 // area -> server clock seconds at expiry
}

func NewExcludedAreas() *ExcludedAreas {
	return &ExcludedAreas{expiry: make(map[int32]float64)}
}

func (e *ExcludedAreas) Exclude(area int32, nowSeconds float64) {
	e.expiry[area] = nowSeconds + ExcludedAreaTTLSeconds
}

func (e *ExcludedAreas) IsExcluded(area int32, nowSeconds float64) bool {
	expiry, ok := e.expiry[area]
	if !ok {
		return false
	}
	if nowSeconds >= expiry {
		delete(e.expiry, area)
		return false
	}
	return true
}
