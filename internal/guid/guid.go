// Package guid implements ObjectGuid: the 32-bit identifier every world
// object carries (spec.md §3 "Identifiers").
package guid

import "fmt"

// ObjectType is the 8-bit type tag encoded in the high byte of an ObjectGuid.
type ObjectType uint8

const (
	TypePlayer ObjectType = iota + 1
	TypeRobot
	TypeProjectile
	TypeItemBox
	TypeItem
	TypeUnitLocator
)

func (t ObjectType) String() string {
	switch t {
	case TypePlayer:
		return "Player"
	case TypeRobot:
		return "Robot"
	case TypeProjectile:
		return "Projectile"
	case TypeItemBox:
		return "ItemBox"
	case TypeItem:
		return "Item"
	case TypeUnitLocator:
		return "UnitLocator"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ObjectGuid is a raw 32-bit value: 8-bit type tag + 24-bit spawn counter.
// Equality is raw-value equality (spec.md §3).
type ObjectGuid uint32

const counterMask = 0x00FFFFFF

// New packs a type tag and a spawn counter into a raw ObjectGuid.
// The counter is truncated to 24 bits — callers are responsible for
// never issuing more than 2^24 spawns of a single type on a single map
// (I6 requires monotonicity, not unbounded range).
func New(t ObjectType, counter uint32) ObjectGuid {
	return ObjectGuid(uint32(t)<<24 | (counter & counterMask))
}

func (g ObjectGuid) Type() ObjectType {
	return ObjectType(g >> 24)
}

func (g ObjectGuid) Counter() uint32 {
	return uint32(g) & counterMask
}

func (g ObjectGuid) IsEmpty() bool {
	return g == 0
}

func (g ObjectGuid) String() string {
	return fmt.Sprintf("%s#%d", g.Type(), g.Counter())
}

// Allocator issues strictly monotone-increasing spawn counters for one
// (map, type) pair (I6). Player spawn ids are process-global (spec.md §3)
// and use a separate package-level Allocator below; every other type's
// Allocator lives on the owning Map.
type Allocator struct {
	t       ObjectType
	counter uint32
}

func NewAllocator(t ObjectType) *Allocator {
	return &Allocator{t: t}
}

// Next returns a fresh ObjectGuid. The counter never resets or repeats for
// the lifetime of the Allocator, even if the underlying object slot is
// later reused via a free list (see internal/entity.Pool).
func (a *Allocator) Next() ObjectGuid {
	a.counter++
	return New(a.t, a.counter)
}

// playerCounter is process-global: spec.md §3 singles out the player spawn
// id as the one counter shared across all maps/theaters in the process.
var playerCounter uint32

// NextPlayerGuid issues the next process-global player ObjectGuid.
// Not safe for concurrent use; callers serialize through the theater
// manager's single-threaded admission path (spec.md §5).
func NextPlayerGuid() ObjectGuid {
	playerCounter++
	return New(TypePlayer, playerCounter)
}
