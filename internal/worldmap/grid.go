package worldmap

import "github.com/snowfight-go/battlecore/internal/guid"

// GridCoord is a coarse object-grid bucket coordinate (spec.md §3 "grid
// partition ... coarser than tiles"); one grid cell is sized to
// approximately one visible range (spec.md §4.7).
type GridCoord struct {
	X, Y int
}

// GridCellSize is the tile-space width/height of one object-grid bucket.
const GridCellSize = 16

func PositionToGrid(p Position) GridCoord {
	return GridCoord{X: floorDiv(int(p.X), GridCellSize), Y: floorDiv(int(p.Y), GridCellSize)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Position mirrors entity.Position to avoid an import cycle; worldmap
// converts to/from entity.Position at its call boundaries.
type Position struct{ X, Y float64 }

type bucket struct {
	objects map[guid.ObjectGuid]struct{}
}

func newBucket() *bucket {
	return &bucket{objects: make(map[guid.ObjectGuid]struct{})}
}

// ObjectGrid partitions live world objects into coarse buckets keyed by
// GridCoord, one object list per type (spec.md §3, §4.7). I1: an object is
// in at most one bucket at a time and its GridCoord matches its position.
type ObjectGrid struct {
	buckets  map[GridCoord]*bucket
	location map[guid.ObjectGuid]GridCoord
}

func NewObjectGrid() *ObjectGrid {
	return &ObjectGrid{
		buckets:  make(map[GridCoord]*bucket),
		location: make(map[guid.ObjectGuid]GridCoord),
	}
}

// Insert places an object at pos, creating its bucket if necessary.
// Asserts I1 by construction: Insert always removes any prior placement
// first.
func (g *ObjectGrid) Insert(id guid.ObjectGuid, pos Position) {
	g.Remove(id)
	gc := PositionToGrid(pos)
	b, ok := g.buckets[gc]
	if !ok {
		b = newBucket()
		g.buckets[gc] = b
	}
	b.objects[id] = struct{}{}
	g.location[id] = gc
}

// Move relocates an object, a no-op if it stays within the same bucket.
func (g *ObjectGrid) Move(id guid.ObjectGuid, newPos Position) {
	gc := PositionToGrid(newPos)
	if cur, ok := g.location[id]; ok && cur == gc {
		return
	}
	g.Insert(id, newPos)
}

func (g *ObjectGrid) Remove(id guid.ObjectGuid) {
	gc, ok := g.location[id]
	if !ok {
		return
	}
	if b, ok := g.buckets[gc]; ok {
		delete(b.objects, id)
		if len(b.objects) == 0 {
			delete(g.buckets, gc)
		}
	}
	delete(g.location, id)
}

func (g *ObjectGrid) Location(id guid.ObjectGuid) (GridCoord, bool) {
	gc, ok := g.location[id]
	return gc, ok
}

// QueryRadius returns every object whose bucket lies within radiusGrids of
// the bucket containing center, inclusive (Chebyshev distance over buckets).
func (g *ObjectGrid) QueryRadius(center Position, radiusGrids int) []guid.ObjectGuid {
	c := PositionToGrid(center)
	var out []guid.ObjectGuid
	for gx := c.X - radiusGrids; gx <= c.X+radiusGrids; gx++ {
		for gy := c.Y - radiusGrids; gy <= c.Y+radiusGrids; gy++ {
			if b, ok := g.buckets[GridCoord{X: gx, Y: gy}]; ok {
				for id := range b.objects {
					out = append(out, id)
				}
			}
		}
	}
	return out
}
