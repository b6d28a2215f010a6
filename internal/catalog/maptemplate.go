package catalog

import (
	"context"
	"fmt"
)

// MapKind mirrors theater.MapKind without importing the theater package
// (catalog is a startup-time data source; theater depends on worldmap,
// not the other way around).
type MapKind int

const (
	MapTraining MapKind = iota
	MapBattle
)

// MapTemplate is one row of the map catalog spec.md §6 calls an opaque
// static catalog ("map templates... loaded at startup"). §4.4's map
// selection ("weighted-random draw from the catalog filtered by the
// player's combat grade") reads this table.
type MapTemplate struct {
	MapID         int32
	Kind          MapKind
	GradeBandMin  int32
	GradeBandMax  int32
	PopulationCap int32
	Width, Height int
	Weight        float64
}

type MapTemplateRepo struct {
	db *DB
}

func NewMapTemplateRepo(db *DB) *MapTemplateRepo { return &MapTemplateRepo{db: db} }

func (r *MapTemplateRepo) List(ctx context.Context) ([]MapTemplate, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT map_id, kind, grade_band_min, grade_band_max, population_cap, width, height, weight FROM map_templates ORDER BY map_id`)
	if err != nil {
		return nil, fmt.Errorf("query map templates: %w", err)
	}
	defer rows.Close()

	var out []MapTemplate
	for rows.Next() {
		var t MapTemplate
		var kind int16
		if err := rows.Scan(&t.MapID, &kind, &t.GradeBandMin, &t.GradeBandMax, &t.PopulationCap, &t.Width, &t.Height, &t.Weight); err != nil {
			return nil, fmt.Errorf("scan map template row: %w", err)
		}
		t.Kind = MapKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// FilterByGrade returns the battle-map templates whose grade band
// contains combatPower, for §4.4's weighted-random draw.
func FilterByGrade(templates []MapTemplate, combatPower int32) []MapTemplate {
	var out []MapTemplate
	for _, t := range templates {
		if t.Kind == MapBattle && combatPower >= t.GradeBandMin && combatPower <= t.GradeBandMax {
			out = append(out, t)
		}
	}
	return out
}

// WeightedDraw picks one template using its Weight as a relative
// likelihood, via rand64 in [0,1) supplied by the caller so tests can
// inject determinism.
func WeightedDraw(templates []MapTemplate, rand64 func() float64) (MapTemplate, bool) {
	if len(templates) == 0 {
		return MapTemplate{}, false
	}
	total := 0.0
	for _, t := range templates {
		total += t.Weight
	}
	if total <= 0 {
		return templates[0], true
	}
	target := rand64() * total
	acc := 0.0
	for _, t := range templates {
		acc += t.Weight
		if target < acc {
			return t, true
		}
	}
	return templates[len(templates)-1], true
}
