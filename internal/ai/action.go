package ai

import "github.com/snowfight-go/battlecore/internal/entity"

// AIActionType is a sparring robot's pending-action kind with a strict
// priority ordering (spec.md §4.9): a higher-priority action preempts a
// lower one. Declaration order IS priority order, highest first.
type AIActionType int

const (
	ActionCollectItem AIActionType = iota
	ActionUseCarriedItem
	ActionHideAtSpot
	ActionSeekEnemySpot
	ActionEngageCombat
	ActionUnlockItemBox
	ActionExploreArea
	actionCount
)

// Priority returns a's priority rank; lower is higher priority.
func (a AIActionType) Priority() int { return int(a) }

// PendingActions is the set of actions currently eligible this reaction
// (a robot may have several candidates ready at once; only the
// highest-priority one is selected).
type PendingActions map[AIActionType]bool

// SelectAction returns the highest-priority action among the pending
// set, matching the strict ordering in spec.md §4.9.
func SelectAction(pending PendingActions) (AIActionType, bool) {
	for t := AIActionType(0); t < actionCount; t++ {
		if pending[t] {
			return t, true
		}
	}
	return 0, false
}

// ReactionGate gates how often a sparring robot re-evaluates its action
// (spec.md §4.9: "random within the robot's proficiency's
// [minTargetReactionTime, maxTargetReactionTime]").
type ReactionGate struct {
	MinMS, MaxMS int64
}

// NextDelayMS returns the next reaction delay in milliseconds, using
// rand64 (an injected [0,1) source so callers control determinism in
// tests without this package depending on math/rand directly).
func (g ReactionGate) NextDelayMS(rand64 func() float64) int64 {
	if g.MaxMS <= g.MinMS {
		return g.MinMS
	}
	span := g.MaxMS - g.MinMS
	return g.MinMS + int64(rand64()*float64(span))
}

// SubState chosen by nature-weighted thresholds on health percent and
// enemy count (spec.md §4.9 "Combat sub-state"): a robot escapes once its
// health falls to or below escapeHealthFloor, or once it is outnumbered
// beyond escapeEnemyCeiling — both thresholds nature-weighted by the
// caller (higher for cowardly natures, lower for aggressive ones).
func SubState(healthPercent float64, enemyCount int, escapeHealthFloor float64, escapeEnemyCeiling int) entity.CombatSubState {
	if healthPercent <= escapeHealthFloor || enemyCount > escapeEnemyCeiling {
		return entity.SubStateEscape
	}
	return entity.SubStateChase
}
