// Package entity implements the world-object hierarchy (spec.md §3):
// Unit (Player, Robot), Projectile, Item, ItemBox, UnitLocator.
package entity

// ConcealmentState (spec.md §3 Unit).
type ConcealmentState int

const (
	Exposed ConcealmentState = iota
	Concealing
	Concealed
)

// DangerState (spec.md §3 Unit, §4.6.1 safe zone).
type DangerState int

const (
	DangerReleased DangerState = iota
	DangerEntering
	DangerEntered
)

// DeathState (spec.md §3 Unit).
type DeathState int

const (
	Alive DeathState = iota
	Dead
)

// WithdrawalState tracks a dead player's timed map exit (spec.md §3
// "Lifecycles: Player").
type WithdrawalState int

const (
	WithdrawalNone WithdrawalState = iota
	WithdrawalPending
	WithdrawalDone
)

// ProjectileState (spec.md §3 Projectile).
type ProjectileState int

const (
	ProjectileActive ProjectileState = iota
	ProjectileCollided
	ProjectileInactivate
	ProjectileInactivating
	ProjectileInactive
)

// ProjectileType (spec.md §3 Projectile, §4.8 damage formula).
type ProjectileType int

const (
	ProjectileNormal ProjectileType = iota
	ProjectileCharged
	ProjectileIntensified
)

// ItemState (spec.md §3 Item).
type ItemState int

const (
	ItemActivating ItemState = iota
	ItemActive
	ItemInactive
)

// OpenState (spec.md §3 ItemBox).
type OpenState int

const (
	BoxLocked OpenState = iota
	BoxOpened
)

// CombatSubState drives AI chase/escape thresholds (spec.md §4.9) and is
// also used to pick a Unit's combat posture.
type CombatSubState int

const (
	SubStateNone CombatSubState = iota
	SubStateChase
	SubStateEscape
)
