package combat

import "github.com/snowfight-go/battlecore/internal/guid"

// RewardManager tracks aggregate damage per attacker against one victim,
// for proportional kill-XP distribution (spec.md §4.8 "reward manager").
type RewardManager struct {
	damage map[guid.ObjectGuid]int64
	total  int64
}

func NewRewardManager() *RewardManager {
	return &RewardManager{damage: make(map[guid.ObjectGuid]int64)}
}

func (r *RewardManager) RecordDamage(attacker guid.ObjectGuid, amount int32) {
	if amount <= 0 {
		return
	}
	r.damage[attacker] += int64(amount)
	r.total += int64(amount)
}

// Award is one attacker's share of kill XP.
type Award struct {
	Attacker guid.ObjectGuid
	XP       int64
}

// Settle computes each awardee's share on death (spec.md §4.8: "each
// receives XP proportional to damage_i/total * min(1, total/maxHealth) *
// base_xp_on_kill").
func (r *RewardManager) Settle(maxHealth int32, baseXPOnKill int64) []Award {
	if r.total == 0 || maxHealth <= 0 {
		return nil
	}
	completion := float64(r.total) / float64(maxHealth)
	if completion > 1 {
		completion = 1
	}
	awards := make([]Award, 0, len(r.damage))
	for attacker, dmg := range r.damage {
		share := float64(dmg) / float64(r.total)
		xp := int64(share * completion * float64(baseXPOnKill))
		awards = append(awards, Award{Attacker: attacker, XP: xp})
	}
	return awards
}

// LauncherRef is a weak (type-tag, spawn-id) back-reference to a
// projectile's launching unit (spec.md §9 Design Notes "owner index with
// weak handles"; I7).
type LauncherRef struct {
	GUID guid.ObjectGuid
}

// LauncherLookup resolves a LauncherRef against live units; callers
// supply it (the Map's Players/Robots indices) so this package stays
// free of an entity import cycle.
type LauncherLookup func(guid.ObjectGuid) (exists bool)

// ResolveLauncher reports the launcher's guid and true when ref names a
// launcher that lookup still finds, and (0, false) for an empty ref or a
// dead/despawned launcher; the latter is not an error.
func ResolveLauncher(ref LauncherRef, lookup LauncherLookup) (guid.ObjectGuid, bool) {
	if ref.GUID.IsEmpty() {
		return 0, false
	}
	if !lookup(ref.GUID) {
		return 0, false
	}
	return ref.GUID, true
}
