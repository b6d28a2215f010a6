// Package ai implements robot AI (spec.md §4.9): threat scoring, strict-
// priority action selection, the reaction-delay gate, pathing, and
// exploration.
package ai

import "github.com/snowfight-go/battlecore/internal/guid"

// ThreatContributors are the four weighted inputs to a unit-threat score
// (spec.md §4.9 "Threat model"): distance, missing health, damage
// received, charged power.
type ThreatContributors struct {
	DistanceTerm float64 // 1 - d/critical
	HealthTerm   float64 // enemy health missing, normalized
	DamageTerm   float64 // damage received, normalized
	ChargeTerm   float64 // enemy charged power, normalized
}

// Coefficients is the per-nature, per-substate weight set (supplemented
// from SparringRobotAI.cpp; see internal/scripting.NatureCoefficients,
// which is the scriptable source of this data).
type Coefficients struct {
	Distance, Health, Damage, Charge float64
}

// ThreatScore combines contributors with their coefficients into one
// scalar threat value (spec.md §4.9).
func ThreatScore(c ThreatContributors, w Coefficients) float64 {
	return c.DistanceTerm*w.Distance + c.HealthTerm*w.Health +
		c.DamageTerm*w.Damage + c.ChargeTerm*w.Charge
}

// DistanceTerm computes "1 - d/critical", clamped to [0,1] (beyond
// critical range a candidate contributes no distance threat).
func DistanceTerm(distance, critical float64) float64 {
	if critical <= 0 {
		return 0
	}
	t := 1 - distance/critical
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// UnitThreatManager tracks per-candidate threat for one robot (spec.md
// §4.9 "unit-threat manager").
type UnitThreatManager struct {
	scores map[guid.ObjectGuid]float64
}

func NewUnitThreatManager() *UnitThreatManager {
	return &UnitThreatManager{scores: make(map[guid.ObjectGuid]float64)}
}

func (m *UnitThreatManager) Update(candidate guid.ObjectGuid, c ThreatContributors, w Coefficients) {
	m.scores[candidate] = ThreatScore(c, w)
}

func (m *UnitThreatManager) Remove(candidate guid.ObjectGuid) {
	delete(m.scores, candidate)
}

// Highest returns the candidate with the greatest threat score, or false
// if no candidates are tracked.
func (m *UnitThreatManager) Highest() (guid.ObjectGuid, bool) {
	var best guid.ObjectGuid
	bestScore := -1.0
	found := false
	for id, score := range m.scores {
		if !found || score > bestScore {
			best, bestScore, found = id, score, true
		}
	}
	return best, found
}

// ProjectileThreatManager tracks incoming projectiles whose predicted
// path intersects the robot (spec.md §4.9 "projectile-threat manager").
type ProjectileThreatManager struct {
	incoming map[guid.ObjectGuid]struct{}
}

func NewProjectileThreatManager() *ProjectileThreatManager {
	return &ProjectileThreatManager{incoming: make(map[guid.ObjectGuid]struct{})}
}

func (m *ProjectileThreatManager) Track(projectile guid.ObjectGuid) {
	m.incoming[projectile] = struct{}{}
}

func (m *ProjectileThreatManager) Clear(projectile guid.ObjectGuid) {
	delete(m.incoming, projectile)
}

func (m *ProjectileThreatManager) Count() int { return len(m.incoming) }
