package combat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChargedMultiplierBoundaryAtStaminaEqualsA(t *testing.T) {
	p := ChargeParams{StaminaAtChargeStart: 10, MaxStamina: 100, AttackTakesStamina: 10, BonusRatio: 0.5, Precision: 1}
	require.Equal(t, 1.0, ChargedMultiplier(p))
}

func TestChargedMultiplierBoundaryBelowA(t *testing.T) {
	p := ChargeParams{StaminaAtChargeStart: 5, MaxStamina: 100, AttackTakesStamina: 10, BonusRatio: 0.5, Precision: 1}
	require.Equal(t, 1.0, ChargedMultiplier(p))
}

func TestChargedMultiplierAboveA(t *testing.T) {
	p := ChargeParams{StaminaAtChargeStart: 50, MaxStamina: 100, AttackTakesStamina: 10, BonusRatio: 0, Precision: 1}
	// bonusRatio=0 -> tan = (m-a)/(m-a) = 1; y = 1*(s-a) = 40; mult=(40+10)/10=5
	require.InDelta(t, 5.0, ChargedMultiplier(p), 0.0001)
}

func TestDamageMinimumOne(t *testing.T) {
	dmg := Damage(1, 1, 10000, 0)
	require.Equal(t, int32(1), dmg)
}

func TestDamageDefenseReduction(t *testing.T) {
	// raw = 100, defense = 100 -> ratio 100/200 = 0.5 -> 50
	dmg := Damage(1, 100, 100, 0)
	require.Equal(t, int32(50), dmg)
}

func TestDamageReductionPercent(t *testing.T) {
	dmg := Damage(1, 100, 0, 50)
	require.Equal(t, int32(50), dmg)
}
