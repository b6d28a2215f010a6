package entity

import "github.com/snowfight-go/battlecore/internal/guid"

// StatStage tracks a temporary stat-stage modifier (buff/debuff step),
// mirrored from item/skill effects (spec.md §4.10).
type StatStage struct {
	Stat  string
	Stage int
}

// Player is a Unit owned by a session (spec.md §3).
type Player struct {
	Unit

	SessionID uint32 // 0 when no owning session (disconnected, pending destroy)

	ViewportW, ViewportH float64

	// Client-tracked object sets: in-sight (fully visible) vs in-tracker
	// range (locator-only), spec.md §4.7.
	InSight  map[guid.ObjectGuid]struct{}
	Tracked  map[guid.ObjectGuid]struct{}

	AttackCounter       uint32
	ConsumedStaminaTotal int32
	StatStages          []StatStage

	IsGM bool
}

func NewPlayer(id guid.ObjectGuid) *Player {
	return &Player{
		Unit:    NewUnit(id),
		InSight: make(map[guid.ObjectGuid]struct{}),
		Tracked: make(map[guid.ObjectGuid]struct{}),
	}
}

func (p *Player) Reset() {
	p.Unit.Reset()
	*p = Player{
		Unit:    p.Unit,
		InSight: make(map[guid.ObjectGuid]struct{}),
		Tracked: make(map[guid.ObjectGuid]struct{}),
	}
}
