package catalog

import (
	"context"
	"fmt"
)

// LootEntry is one drop-table row keyed by a robot template or item-box
// source id (spec.md §6 "loot tables... opaque static catalogs").
type LootEntry struct {
	SourceID       int32
	ItemID         int32
	MinQty, MaxQty int32
	Chance         float64 // 0..1
}

type LootRepo struct {
	db *DB
}

func NewLootRepo(db *DB) *LootRepo { return &LootRepo{db: db} }

func (r *LootRepo) ForSource(ctx context.Context, sourceID int32) ([]LootEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT source_id, item_id, min_qty, max_qty, chance FROM loot_entries WHERE source_id = $1`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query loot entries: %w", err)
	}
	defer rows.Close()

	var out []LootEntry
	for rows.Next() {
		var e LootEntry
		if err := rows.Scan(&e.SourceID, &e.ItemID, &e.MinQty, &e.MaxQty, &e.Chance); err != nil {
			return nil, fmt.Errorf("scan loot row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Roll evaluates each entry against rand64 (caller-supplied in [0,1) for
// testability) and returns the entries that hit, each with a concrete
// quantity drawn uniformly from [MinQty, MaxQty].
func Roll(entries []LootEntry, rand64 func() float64) []struct {
	ItemID int32
	Qty    int32
} {
	var drops []struct {
		ItemID int32
		Qty    int32
	}
	for _, e := range entries {
		if rand64() >= e.Chance {
			continue
		}
		span := e.MaxQty - e.MinQty + 1
		qty := e.MinQty
		if span > 1 {
			qty += int32(rand64() * float64(span))
		}
		drops = append(drops, struct {
			ItemID int32
			Qty    int32
		}{ItemID: e.ItemID, Qty: qty})
	}
	return drops
}
