package catalog

import (
	"context"
	"fmt"
)

// RealmEntry is one row of the realm list the auth daemon serves
// (spec.md §6 "on-disk embedded-database readers for realm list...
// treated as opaque static catalogs").
type RealmEntry struct {
	RealmID int32
	Name    string
	Host    string
	Port    int32
	Online  bool
}

type RealmRepo struct {
	db *DB
}

func NewRealmRepo(db *DB) *RealmRepo { return &RealmRepo{db: db} }

func (r *RealmRepo) List(ctx context.Context) ([]RealmEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT realm_id, name, host, port, online FROM realms ORDER BY realm_id`)
	if err != nil {
		return nil, fmt.Errorf("query realms: %w", err)
	}
	defer rows.Close()

	var out []RealmEntry
	for rows.Next() {
		var e RealmEntry
		if err := rows.Scan(&e.RealmID, &e.Name, &e.Host, &e.Port, &e.Online); err != nil {
			return nil, fmt.Errorf("scan realm row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reload re-reads the realm list, backing the auth daemon's
// `reload-realm` IPC command (spec.md §6).
func (r *RealmRepo) Reload(ctx context.Context) ([]RealmEntry, error) {
	return r.List(ctx)
}
