package worldmap

// Waypoint is a TMX-defined seed tile with a directed link to another
// waypoint and an "extent" rectangle (spec.md §4.6.2, GLOSSARY).
type Waypoint struct {
	ID       int32
	Seed     TileCoord
	LinkedID int32   // the waypoint this one links to
	Extent   Rect    // tiles within this waypoint's half-span, up to the link target
	District int32   // assigned by flood fill
}

// Rect is an axis-aligned tile rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

func (r Rect) Contains(c TileCoord) bool {
	return c.X >= r.MinX && c.X <= r.MaxX && c.Y >= r.MinY && c.Y <= r.MaxY
}

// Districts holds the static district partition and waypoint graph
// (spec.md §4.6.2). Districts are connected components of traversable
// tiles, seeded from waypoints and assigned by flood fill.
type Districts struct {
	Waypoints map[int32]*Waypoint
	tileToDistrict map[TileCoord]int32
}

func NewDistricts() *Districts {
	return &Districts{
		Waypoints:      make(map[int32]*Waypoint),
		tileToDistrict: make(map[TileCoord]int32),
	}
}

func (d *Districts) AddWaypoint(w *Waypoint) {
	d.Waypoints[w.ID] = w
}

// AssignFloodFill computes each waypoint's district by flood-filling
// traversable tiles starting from its seed, stopping at walls/concealed
// boundaries per grid. Waypoints whose seeds land in the same connected
// component share a district id (the lower waypoint id wins).
func (d *Districts) AssignFloodFill(grid *TileGrid) {
	visited := make(map[TileCoord]int32)
	var ids []int32
	for id := range d.Waypoints {
		ids = append(ids, id)
	}
	sortInt32s(ids)

	for _, id := range ids {
		w := d.Waypoints[id]
		if _, ok := visited[w.Seed]; ok {
			w.District = visited[w.Seed]
			continue
		}
		district := id
		floodFill(grid, w.Seed, district, visited)
		w.District = district
	}
	d.tileToDistrict = visited
}

func floodFill(grid *TileGrid, start TileCoord, district int32, visited map[TileCoord]int32) {
	if _, ok := visited[start]; ok {
		return
	}
	stack := []TileCoord{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[c]; ok {
			continue
		}
		if !grid.InBounds(c) || !grid.IsPenetrable(c) {
			continue
		}
		visited[c] = district
		stack = append(stack,
			TileCoord{X: c.X + 1, Y: c.Y},
			TileCoord{X: c.X - 1, Y: c.Y},
			TileCoord{X: c.X, Y: c.Y + 1},
			TileCoord{X: c.X, Y: c.Y - 1},
		)
	}
}

// DistrictOf returns the district id for a tile, or -1 if unassigned
// (unreachable from any waypoint).
func (d *Districts) DistrictOf(c TileCoord) int32 {
	if id, ok := d.tileToDistrict[c]; ok {
		return id
	}
	return -1
}

// LinkedWaypoint returns a waypoint's link target, or nil.
func (d *Districts) LinkedWaypoint(w *Waypoint) *Waypoint {
	return d.Waypoints[w.LinkedID]
}

func sortInt32s(s []int32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
