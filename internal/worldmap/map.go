package worldmap

import (
	"github.com/snowfight-go/battlecore/internal/entity"
	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/snowfight-go/battlecore/internal/itemfx"
)

// toWM converts an entity.Position to the package-local Position used by
// the object grid and safe zone (see grid.go for why this boundary
// conversion exists instead of importing entity here).
func toWM(p entity.Position) Position { return Position{X: p.X, Y: p.Y} }

// Map is the single authoritative world for one running instance: terrain,
// the object index, the safe zone, the district/waypoint graph, and the
// object pools/allocators every spawn draws from (spec.md §3 "Map",
// §4.6). One Map backs one theater instance (spec.md §4.4).
type Map struct {
	ID   int32
	Tiles *TileGrid
	Objects *ObjectGrid
	Zone  *SafeZone
	Districts *Districts

	robotAlloc      *guid.Allocator
	projectileAlloc *guid.Allocator
	itemAlloc       *guid.Allocator
	itemBoxAlloc    *guid.Allocator
	locatorAlloc    *guid.Allocator

	Players     map[guid.ObjectGuid]*entity.Player
	Robots      map[guid.ObjectGuid]*entity.Robot
	Projectiles map[guid.ObjectGuid]*entity.Projectile
	Items       map[guid.ObjectGuid]*entity.Item
	ItemBoxes   map[guid.ObjectGuid]*entity.ItemBox
	Locators    map[guid.ObjectGuid]*entity.UnitLocator

	robotPool      *entity.Pool[*entity.Robot]
	projectilePool *entity.Pool[*entity.Projectile]
	itemPool       *entity.Pool[*entity.Item]
	itemBoxPool    *entity.Pool[*entity.ItemBox]

	// itemEffects holds each unit's item-application bookkeeping, keyed by
	// guid rather than embedded on entity.Unit: itemfx imports entity, so
	// the reverse embedding would cycle (spec.md §4.10).
	itemEffects map[guid.ObjectGuid]*ItemEffects

	ElapsedSeconds float64 // since theater activation; drives zone shrink (§4.6 step 4)
}

// ItemEffects bundles one unit's accumulators, duration timers, and
// per-item cooldowns (spec.md §4.10).
type ItemEffects struct {
	Accumulators *itemfx.Accumulators
	Timers       *itemfx.TimerMap
	Cooldowns    *itemfx.CooldownTracker
}

func newItemEffects() *ItemEffects {
	return &ItemEffects{
		Accumulators: itemfx.NewAccumulators(),
		Timers:       itemfx.NewTimerMap(),
		Cooldowns:    itemfx.NewCooldownTracker(),
	}
}

// ItemEffectsFor returns the unit's effect bundle, creating it on first
// use.
func (m *Map) ItemEffectsFor(id guid.ObjectGuid) *ItemEffects {
	fx, ok := m.itemEffects[id]
	if !ok {
		fx = newItemEffects()
		m.itemEffects[id] = fx
	}
	return fx
}

// TickItemEffects expires every due duration-based effect across all
// tracked units (spec.md §4.10 "expire due effects every tick").
func (m *Map) TickItemEffects(nowMS int64) {
	for _, fx := range m.itemEffects {
		fx.Timers.ExpireDue(fx.Accumulators, nowMS)
	}
}

func NewMap(id int32, width, height int) *Map {
	return &Map{
		ID:        id,
		Tiles:     NewTileGrid(width, height),
		Objects:   NewObjectGrid(),
		Zone:      NewSafeZone(Position{}, 0),
		Districts: NewDistricts(),

		robotAlloc:      guid.NewAllocator(guid.TypeRobot),
		projectileAlloc: guid.NewAllocator(guid.TypeProjectile),
		itemAlloc:       guid.NewAllocator(guid.TypeItem),
		itemBoxAlloc:    guid.NewAllocator(guid.TypeItemBox),
		locatorAlloc:    guid.NewAllocator(guid.TypeUnitLocator),

		Players:     make(map[guid.ObjectGuid]*entity.Player),
		Robots:      make(map[guid.ObjectGuid]*entity.Robot),
		Projectiles: make(map[guid.ObjectGuid]*entity.Projectile),
		Items:       make(map[guid.ObjectGuid]*entity.Item),
		ItemBoxes:   make(map[guid.ObjectGuid]*entity.ItemBox),
		Locators:    make(map[guid.ObjectGuid]*entity.UnitLocator),

		robotPool:      entity.NewPool[*entity.Robot](),
		projectilePool: entity.NewPool[*entity.Projectile](),
		itemPool:       entity.NewPool[*entity.Item](),
		itemBoxPool:    entity.NewPool[*entity.ItemBox](),

		itemEffects: make(map[guid.ObjectGuid]*ItemEffects),
	}
}

// AddPlayer admits a player onto the map, registering it in the object
// grid (I1). Player GUIDs are assigned by the caller from the
// process-global counter (spec.md §3) before calling AddPlayer.
func (m *Map) AddPlayer(p *entity.Player) {
	m.Players[p.GUID] = p
	m.Objects.Insert(p.GUID, toWM(p.Pos))
}

func (m *Map) RemovePlayer(id guid.ObjectGuid) {
	delete(m.Players, id)
	m.Objects.Remove(id)
}

// SpawnRobot acquires a pooled Robot (or constructs one) and assigns it a
// freshly-allocated GUID (I6: the allocator never reuses a counter, even
// though the struct pointer itself may be recycled — see entity.Pool).
func (m *Map) SpawnRobot() *entity.Robot {
	r, reused := m.robotPool.Acquire()
	id := m.robotAlloc.Next()
	if !reused {
		r = entity.NewRobot(id)
	} else {
		r.GUID = id
	}
	m.Robots[id] = r
	m.Objects.Insert(id, toWM(r.Pos))
	return r
}

func (m *Map) DespawnRobot(id guid.ObjectGuid) {
	r, ok := m.Robots[id]
	if !ok {
		return
	}
	delete(m.Robots, id)
	m.Objects.Remove(id)
	m.robotPool.Release(r)
}

func (m *Map) SpawnProjectile(launcher guid.ObjectGuid, curve BezierCurveArg, duration float64, typ entity.ProjectileType) *entity.Projectile {
	p, reused := m.projectilePool.Acquire()
	id := m.projectileAlloc.Next()
	bc := entity.BezierCurve{
		P0: entity.Position{X: curve.P0.X, Y: curve.P0.Y},
		P1: entity.Position{X: curve.P1.X, Y: curve.P1.Y},
		P2: entity.Position{X: curve.P2.X, Y: curve.P2.Y},
		P3: entity.Position{X: curve.P3.X, Y: curve.P3.Y},
	}
	if !reused {
		p = entity.NewProjectile(id, launcher, bc, duration, typ)
	} else {
		p.GUID = id
		p.Launcher = launcher
		p.Curve = bc
		p.Duration = duration
		p.Type = typ
		p.Scale = 1
		p.State = entity.ProjectileActive
	}
	m.Projectiles[id] = p
	m.Objects.Insert(id, toWM(p.Position()))
	return p
}

func (m *Map) DespawnProjectile(id guid.ObjectGuid) {
	p, ok := m.Projectiles[id]
	if !ok {
		return
	}
	delete(m.Projectiles, id)
	m.Objects.Remove(id)
	m.projectilePool.Release(p)
}

// BezierCurveArg mirrors entity.BezierCurve at the worldmap/entity
// boundary (see grid.go's Position for the same pattern).
type BezierCurveArg struct{ P0, P1, P2, P3 Position }

func (m *Map) SpawnItem(templateID, count int32) *entity.Item {
	it, reused := m.itemPool.Acquire()
	id := m.itemAlloc.Next()
	if !reused {
		it = entity.NewItem(id, templateID, count)
	} else {
		it.GUID = id
		it.TemplateID = templateID
		it.Count = count
		it.State = entity.ItemActivating
	}
	m.Items[id] = it
	m.Objects.Insert(id, toWM(it.Pos))
	return it
}

func (m *Map) DespawnItem(id guid.ObjectGuid) {
	it, ok := m.Items[id]
	if !ok {
		return
	}
	delete(m.Items, id)
	m.Objects.Remove(id)
	m.itemPool.Release(it)
}

func (m *Map) SpawnItemBox(templateID, lootID, maxHealth int32) *entity.ItemBox {
	b, reused := m.itemBoxPool.Acquire()
	id := m.itemBoxAlloc.Next()
	if !reused {
		b = entity.NewItemBox(id, templateID, lootID, maxHealth)
	} else {
		b.GUID = id
		b.TemplateID = templateID
		b.LootID = lootID
		b.MaxHealth = maxHealth
		b.Health = maxHealth
		b.Open = entity.BoxLocked
	}
	m.ItemBoxes[id] = b
	m.Objects.Insert(id, toWM(b.Pos))
	return b
}

func (m *Map) DespawnItemBox(id guid.ObjectGuid) {
	b, ok := m.ItemBoxes[id]
	if !ok {
		return
	}
	delete(m.ItemBoxes, id)
	m.Objects.Remove(id)
	m.itemBoxPool.Release(b)
}

// SpawnLocator creates a UnitLocator sibling for a Unit that has gone out
// of full-sight range but stays in tracker range (spec.md §4.7).
// UnitLocators are not pooled: they are cheap and short-lived enough that
// per-spawn allocation matches the teacher's own handling of similarly
// small broadcast-only structs.
func (m *Map) SpawnLocator(displayID int32, pos entity.Position, moveSpeed float64) *entity.UnitLocator {
	id := m.locatorAlloc.Next()
	l := &entity.UnitLocator{GUID: id, Pos: pos, DisplayID: displayID, MoveSpeed: moveSpeed, Alive: true}
	m.Locators[id] = l
	m.Objects.Insert(id, toWM(pos))
	return l
}

func (m *Map) DespawnLocator(id guid.ObjectGuid) {
	delete(m.Locators, id)
	m.Objects.Remove(id)
}

// MoveObject relocates any live object in the index, maintaining I1.
func (m *Map) MoveObject(id guid.ObjectGuid, pos entity.Position) {
	m.Objects.Move(id, toWM(pos))
}

// QueryRadius returns every object within radiusGrids buckets of pos,
// converting at the entity/worldmap boundary the same way toWM does.
func (m *Map) QueryRadius(pos entity.Position, radiusGrids int) []guid.ObjectGuid {
	return m.Objects.QueryRadius(toWM(pos), radiusGrids)
}

// IsInsideZone reports whether pos lies within the current safe zone.
func (m *Map) IsInsideZone(pos entity.Position) bool {
	return m.Zone.IsInside(toWM(pos))
}

// Tick advances map-level state by dt seconds: the safe zone shrink
// timeline (spec.md §4.6 step 4). Per-object simulation (movement,
// combat, AI, item effects) is driven by the owning theater's tick pass
// right after this call; see theater.Tick/runSimulation.
func (m *Map) Tick(dt float64) {
	m.ElapsedSeconds += dt
	m.Zone.Advance(m.ElapsedSeconds)
}
