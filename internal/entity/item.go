package entity

import "github.com/snowfight-go/battlecore/internal/guid"

// Item is a ground pickup (spec.md §3).
type Item struct {
	GUID       guid.ObjectGuid
	TemplateID int32
	Count      int32
	Holder     guid.ObjectGuid // who dropped/owns priority pickup, if any
	Origin     Position        // launch origin for the drop animation
	Pos        Position

	Elapsed, Duration float64 // drop animation timing
	State             ItemState

	Pickers    map[guid.ObjectGuid]struct{}
	Collectors map[guid.ObjectGuid]struct{}
}

func NewItem(id guid.ObjectGuid, templateID, count int32) *Item {
	return &Item{
		GUID:       id,
		TemplateID: templateID,
		Count:      count,
		State:      ItemActivating,
		Pickers:    make(map[guid.ObjectGuid]struct{}),
		Collectors: make(map[guid.ObjectGuid]struct{}),
	}
}

func (i *Item) Reset() {
	*i = Item{
		Pickers:    make(map[guid.ObjectGuid]struct{}),
		Collectors: make(map[guid.ObjectGuid]struct{}),
	}
}

// ItemBox is a lootable container (spec.md §3).
type ItemBox struct {
	GUID       guid.ObjectGuid
	TemplateID int32
	LootID     int32
	MaxHealth  int32
	Health     int32
	Direction  int
	Open       OpenState
	Pos        Position

	Unlockers map[guid.ObjectGuid]struct{}
}

func NewItemBox(id guid.ObjectGuid, templateID, lootID, maxHealth int32) *ItemBox {
	return &ItemBox{
		GUID:       id,
		TemplateID: templateID,
		LootID:     lootID,
		MaxHealth:  maxHealth,
		Health:     maxHealth,
		Open:       BoxLocked,
		Unlockers:  make(map[guid.ObjectGuid]struct{}),
	}
}

func (b *ItemBox) Reset() {
	*b = ItemBox{Unlockers: make(map[guid.ObjectGuid]struct{})}
}

// UnitLocator is a lightweight sibling of Unit (spec.md §3).
type UnitLocator struct {
	GUID      guid.ObjectGuid
	Pos       Position
	DisplayID int32
	MoveSpeed float64
	Alive     bool
}

func (l *UnitLocator) Reset() { *l = UnitLocator{} }
