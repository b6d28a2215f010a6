package entity

import "github.com/snowfight-go/battlecore/internal/guid"

// Projectile (spec.md §3, §4.8). Launcher is a weak back-reference: a
// (type-tag, spawn-id) tuple resolved through the owning Map, per spec.md
// §9 Design Notes ("owner index with weak handles"). I7: damage
// attribution uses the cached launcher reference's validity, not its
// liveness at resolve time beyond that check.
type Projectile struct {
	GUID     guid.ObjectGuid
	Launcher guid.ObjectGuid

	Curve    BezierCurve
	Elapsed, Duration float64

	Scale float64
	State ProjectileState
	Type  ProjectileType

	DamageBonusRatio float64 // INTENSIFIED: multiplier = 1 + bonus ratio
}

// BezierCurve is a cubic bezier from launcher origin to landing point
// (spec.md §4.8 "bezier trajectory whose landing is the attack-range
// point along the facing direction").
type BezierCurve struct {
	P0, P1, P2, P3 Position
}

// PointAt samples the curve at t in [0,1] (spec.md §9 Design Notes:
// MathTools.cpp's calcBezierPoint, behavior preserved, not syntax).
func (c BezierCurve) PointAt(t float64) Position {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Position{
		X: b0*c.P0.X + b1*c.P1.X + b2*c.P2.X + b3*c.P3.X,
		Y: b0*c.P0.Y + b1*c.P1.Y + b2*c.P2.Y + b3*c.P3.Y,
	}
}

func NewProjectile(id, launcher guid.ObjectGuid, curve BezierCurve, duration float64, typ ProjectileType) *Projectile {
	return &Projectile{
		GUID:     id,
		Launcher: launcher,
		Curve:    curve,
		Duration: duration,
		Type:     typ,
		Scale:    1,
		State:    ProjectileActive,
	}
}

func (p *Projectile) Reset() {
	*p = Projectile{}
}

// Position returns the projectile's current point along its curve.
func (p *Projectile) Position() Position {
	if p.Duration <= 0 {
		return p.Curve.P3
	}
	return p.Curve.PointAt(p.Elapsed / p.Duration)
}
