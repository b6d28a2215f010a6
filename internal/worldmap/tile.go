// Package worldmap implements the tile-based Map (spec.md §3 "Map", §4.6):
// tile grid with per-tile flags, the coarser object grid partition, the
// safe zone, and the district/waypoint graph.
package worldmap

// TileFlag is an immutable tile-type bit (spec.md §3 "type bits").
type TileFlag uint8

const (
	TilePenetrable TileFlag = 1 << iota
	TileWall
	TileConcealable
)

// TileState is a mutable per-tile flag (spec.md §3 "mutable flags").
type TileState uint8

const (
	TileClosed      TileState = 1 << iota // door/gate closed
	TileItemPlaced                        // an Item currently occupies this tile
)

// TileCoord is an integer tile-space coordinate.
type TileCoord struct {
	X, Y int
}

type tile struct {
	flags TileFlag
	state TileState
}

// TileGrid is the authoritative terrain: width x height tiles plus
// per-tile mutable flags.
type TileGrid struct {
	Width, Height int
	tiles         []tile
}

func NewTileGrid(width, height int) *TileGrid {
	return &TileGrid{Width: width, Height: height, tiles: make([]tile, width*height)}
}

func (g *TileGrid) InBounds(c TileCoord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

func (g *TileGrid) index(c TileCoord) int { return c.Y*g.Width + c.X }

func (g *TileGrid) SetFlags(c TileCoord, f TileFlag) {
	if g.InBounds(c) {
		g.tiles[g.index(c)].flags = f
	}
}

func (g *TileGrid) Flags(c TileCoord) TileFlag {
	if !g.InBounds(c) {
		return TileWall // out-of-bounds behaves as an impassable wall
	}
	return g.tiles[g.index(c)].flags
}

func (g *TileGrid) IsPenetrable(c TileCoord) bool {
	f := g.Flags(c)
	return f&TilePenetrable != 0 && f&TileWall == 0 && g.State(c)&TileClosed == 0
}

func (g *TileGrid) IsConcealable(c TileCoord) bool {
	return g.Flags(c)&TileConcealable != 0
}

func (g *TileGrid) State(c TileCoord) TileState {
	if !g.InBounds(c) {
		return 0
	}
	return g.tiles[g.index(c)].state
}

func (g *TileGrid) SetState(c TileCoord, s TileState, on bool) {
	if !g.InBounds(c) {
		return
	}
	i := g.index(c)
	if on {
		g.tiles[i].state |= s
	} else {
		g.tiles[i].state &^= s
	}
}

// Isometric world<->tile mapping (spec.md §3 "Tile coordinates and
// world-space positions convert via a fixed isometric mapping"). Tile
// width/height are in world units; the standard 2:1 isometric projection.
const (
	tileWidth  = 32.0
	tileHeight = 16.0
)

// WorldToTile converts a world-space position to its containing tile.
func WorldToTile(wx, wy float64) TileCoord {
	x := (wx/ (tileWidth / 2) + wy/(tileHeight/2)) / 2
	y := (wy/(tileHeight/2) - wx/(tileWidth/2)) / 2
	return TileCoord{X: int(x), Y: int(y)}
}

// TileToWorld converts a tile coordinate to its world-space center.
func TileToWorld(c TileCoord) (wx, wy float64) {
	wx = float64(c.X-c.Y) * (tileWidth / 2)
	wy = float64(c.X+c.Y) * (tileHeight / 2)
	return
}
