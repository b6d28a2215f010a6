package entity

import (
	"github.com/snowfight-go/battlecore/internal/combat"
	"github.com/snowfight-go/battlecore/internal/guid"
)

// ItemSlotCount is the fixed carried-item capacity (spec.md §3 Unit):
// split into equipment and consumable slots.
const (
	EquipmentSlotCount  = 6
	ConsumableSlotCount = 4
	ItemSlotCount       = EquipmentSlotCount + ConsumableSlotCount
)

// Position is a tile-space coordinate pair. Conversion to world-space
// pixel coordinates is handled by worldmap's isometric mapping
// (spec.md §3 Map).
type Position struct {
	X, Y float64
}

// CarriedItem occupies one of a Unit's fixed slots.
type CarriedItem struct {
	TemplateID int32
	Count      int32
	Equipped   bool
}

// StatAccumulator implements the item-application formula from spec.md
// §4.10: final = base * (1 + sum_percent/100) + sum_value.
type StatAccumulator struct {
	Base       float64
	SumPercent float64
	SumValue   float64
}

func (a *StatAccumulator) Final() float64 {
	return a.Base*(1+a.SumPercent/100) + a.SumValue
}

// Unit is the base behavioral type shared by Player and Robot
// (spec.md §3).
type Unit struct {
	GUID     guid.ObjectGuid
	Pos      Position
	Heading  int

	MoveFlags uint32

	Health     int32
	MaxHealth  int32
	Stamina    int32
	MaxStamina int32
	HealthRegenPerTick  int32
	StaminaRegenPerTick int32

	AttackRange float64
	Damage      StatAccumulator
	Defense     StatAccumulator

	Level         int32
	Experience    int64
	CombatPower   int32

	Items      [ItemSlotCount]CarriedItem
	MagicBeans int32
	Money      int64

	// Threat / combat bookkeeping (spec.md §3, I2).
	ThreatList map[guid.ObjectGuid]float64
	Attackers  map[guid.ObjectGuid]struct{}
	Enemies    map[guid.ObjectGuid]struct{}
	CombatTarget guid.ObjectGuid // non-zero iff InCombat

	PickupTarget guid.ObjectGuid // non-zero iff state == PickingUp
	UnlockTarget guid.ObjectGuid

	Concealment ConcealmentState
	Danger      DangerState
	DeathState  DeathState
	Withdrawal  WithdrawalState

	AttackTakesStamina int32 // "a" in the charged-multiplier formula

	// DangerElapsedMS/DangerLossAccumMS drive the outside-safe-zone state
	// machine (spec.md §4.6.1): elapsed time since entering Entering, and
	// accumulated time since the last health-loss tick once Entered.
	DangerElapsedMS   int64
	DangerLossAccumMS int64

	// Rewards tracks damage this unit has taken from each attacker while
	// alive, for proportional kill-XP distribution on death (spec.md
	// §4.8). Nil until the unit first takes combat damage.
	Rewards *combat.RewardManager
}

func NewUnit(id guid.ObjectGuid) Unit {
	return Unit{
		GUID:       id,
		ThreatList: make(map[guid.ObjectGuid]float64),
		Attackers:  make(map[guid.ObjectGuid]struct{}),
		Enemies:    make(map[guid.ObjectGuid]struct{}),
	}
}

// Reset clears all game state for pooled reuse (spec.md Design Notes
// "reload entry point writes into an existing slot"). GUID is cleared
// along with everything else; callers assign a freshly-allocated GUID
// after Reset.
func (u *Unit) Reset() {
	*u = Unit{
		ThreatList: make(map[guid.ObjectGuid]float64),
		Attackers:  make(map[guid.ObjectGuid]struct{}),
		Enemies:    make(map[guid.ObjectGuid]struct{}),
	}
}

// RecordIncomingDamage credits amount against attacker for kill-reward
// settlement, lazily creating the reward manager on first hit.
func (u *Unit) RecordIncomingDamage(attacker guid.ObjectGuid, amount int32) {
	if u.Rewards == nil {
		u.Rewards = combat.NewRewardManager()
	}
	u.Rewards.RecordDamage(attacker, amount)
}

func (u *Unit) IsInCombat() bool { return !u.CombatTarget.IsEmpty() }

func (u *Unit) IsPickingUp() bool { return !u.PickupTarget.IsEmpty() }

// EnterCombat sets target and maintains I2: the target's enemy set
// contains this unit's guid.
func (u *Unit) EnterCombat(target *Unit) {
	u.CombatTarget = target.GUID
	if target.Enemies == nil {
		target.Enemies = make(map[guid.ObjectGuid]struct{})
	}
	target.Enemies[u.GUID] = struct{}{}
}

func (u *Unit) LeaveCombat(target *Unit) {
	if target != nil {
		delete(target.Enemies, u.GUID)
	}
	u.CombatTarget = 0
}
