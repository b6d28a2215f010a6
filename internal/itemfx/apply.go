// Package itemfx implements item application effects: stat
// accumulators, health adjustments, duration timers, and cooldowns
// (spec.md §4.10). The registered flag names are declared here, but
// Apply never sets a Flag: scripting.ItemEffect has no flag kind, so an
// item application cannot raise one.
package itemfx

import (
	"github.com/snowfight-go/battlecore/internal/entity"
	"github.com/snowfight-go/battlecore/internal/scripting"
)

// Flag is a registered boolean effect (spec.md §4.10: "registered flags
// (e.g. CHARGED_ATTACK_ENABLED, DISCOVER_CONCEALED_UNIT)").
type Flag string

const (
	FlagChargedAttackEnabled Flag = "CHARGED_ATTACK_ENABLED"
	FlagDiscoverConcealedUnit Flag = "DISCOVER_CONCEALED_UNIT"
)

// AppliedEffect is one undo-able outcome of applying an item, stored in
// a per-unit timer map when its source had duration > 0 (spec.md §4.10).
type AppliedEffect struct {
	Stat       string
	Kind       scripting.ItemEffectKind
	Value      float64
	Flag       Flag
	ExpiresAtMS int64 // 0 = instantaneous, already applied and forgotten
}

// Accumulators is the per-unit, per-stat (value, percent) accumulator
// set the persistent stat modifiers feed (spec.md §4.10, entity.Unit's
// Damage/Defense fields are instances of this for the two stats Unit
// tracks directly; Accumulators generalizes to arbitrary named stats for
// item effects that target other attributes).
type Accumulators struct {
	byStat map[string]*entity.StatAccumulator
}

func NewAccumulators() *Accumulators {
	return &Accumulators{byStat: make(map[string]*entity.StatAccumulator)}
}

func (a *Accumulators) ensure(stat string, base float64) *entity.StatAccumulator {
	acc, ok := a.byStat[stat]
	if !ok {
		acc = &entity.StatAccumulator{Base: base}
		a.byStat[stat] = acc
	}
	return acc
}

func (a *Accumulators) Final(stat string) float64 {
	acc, ok := a.byStat[stat]
	if !ok {
		return 0
	}
	return acc.Final()
}

// Apply processes effects in the order returned by the scripting engine:
// percent accumulators before flat before health effects (SPEC_FULL.md
// "Supplemented features": ItemApplicationProcesser.cpp ordering). The
// caller's health delta is returned separately since it applies
// immediately rather than through an accumulator.
func Apply(acc *Accumulators, nowMS int64, effects []scripting.ItemEffect) (healthDelta float64, applied []AppliedEffect) {
	ordered := orderByKind(effects)
	for _, eff := range ordered {
		switch eff.Kind {
		case scripting.EffectPercent:
			a := acc.ensure(eff.Stat, 0)
			a.SumPercent += eff.Value
		case scripting.EffectFlat:
			a := acc.ensure(eff.Stat, 0)
			a.SumValue += eff.Value
		case scripting.EffectHealth:
			healthDelta += eff.Value
		}

		var expires int64
		if eff.DurationMS > 0 {
			expires = nowMS + eff.DurationMS
		}
		applied = append(applied, AppliedEffect{
			Stat:        eff.Stat,
			Kind:        eff.Kind,
			Value:       eff.Value,
			ExpiresAtMS: expires,
		})
	}
	return healthDelta, applied
}

func orderByKind(effects []scripting.ItemEffect) []scripting.ItemEffect {
	out := make([]scripting.ItemEffect, 0, len(effects))
	for _, kind := range []scripting.ItemEffectKind{scripting.EffectPercent, scripting.EffectFlat, scripting.EffectHealth} {
		for _, e := range effects {
			if e.Kind == kind {
				out = append(out, e)
			}
		}
	}
	return out
}

// Undo reverses one applied effect's accumulator contribution (spec.md
// §4.10: "on expiry each effect is undone in reverse").
func Undo(acc *Accumulators, eff AppliedEffect) {
	a, ok := acc.byStat[eff.Stat]
	if !ok {
		return
	}
	switch eff.Kind {
	case scripting.EffectPercent:
		a.SumPercent -= eff.Value
	case scripting.EffectFlat:
		a.SumValue -= eff.Value
	}
}
