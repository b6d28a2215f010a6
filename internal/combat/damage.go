// Package combat implements damage formulas, projectile flight and
// collision, and kill-reward distribution (spec.md §4.8).
package combat

import "math"

// ProjectileKind is the projectile type that selects the damage multiplier (spec.md
// §4.8 "multiplier = 1 for NORMAL; for CHARGED a tangent-based curve;
// for INTENSIFIED 1 + bonus ratio").
type ProjectileKind int

const (
	Normal ProjectileKind = iota
	Charged
	Intensified
)

// ChargeParams holds the inputs to the charged-multiplier formula
// (spec.md §4.8 "Charged multiplier", preserved verbatim as contract).
type ChargeParams struct {
	StaminaAtChargeStart float64 // s
	MaxStamina           float64 // m
	AttackTakesStamina   float64 // a
	BonusRatio           float64
	Precision            float64
}

// ChargedMultiplier implements the exact boundary behavior specified:
// when s <= a, multiplier is 1.0 regardless of the other parameters.
func ChargedMultiplier(p ChargeParams) float64 {
	s, m, a := p.StaminaAtChargeStart, p.MaxStamina, p.AttackTakesStamina
	if s <= a {
		return 1.0
	}
	tan := ((p.BonusRatio*p.Precision+1)*m - a) / (m - a)
	y := tan * (s - a)
	return (y + a) / a
}

// Damage computes the final applied damage (spec.md §4.8 "Damage
// formula"): dmg = floor(multiplier * launcher.damage), reduced by the
// target's defense, minimum 1.
func Damage(multiplier, launcherDamage, targetDefense, damageReductionPercent float64) int32 {
	raw := math.Floor(multiplier * launcherDamage)
	if targetDefense > 0 {
		raw = raw * (raw / (raw + targetDefense))
	}
	if damageReductionPercent > 0 {
		raw = raw * (1 - damageReductionPercent/100)
	}
	dmg := int32(math.Floor(raw))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}
