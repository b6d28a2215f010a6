package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BanList is an in-memory snapshot of the banned-accounts catalog,
// refreshed wholesale on `reload-banned` (spec.md §6) rather than queried
// per-login, since the teacher's own account lookups
// (persist/account_repo.go) favor an in-memory check over a per-request
// round trip.
type BanList struct {
	mu      sync.RWMutex
	entries map[string]banEntry
}

type banEntry struct {
	reason    string
	expiresAt *time.Time
}

func NewBanList() *BanList {
	return &BanList{entries: make(map[string]banEntry)}
}

// IsBanned reports whether account is currently banned, honoring a
// temporary ban's expiry.
func (b *BanList) IsBanned(account string, now time.Time) (reason string, banned bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[account]
	if !ok {
		return "", false
	}
	if e.expiresAt != nil && now.After(*e.expiresAt) {
		return "", false
	}
	return e.reason, true
}

func (b *BanList) replace(entries map[string]banEntry) {
	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
}

type BanRepo struct {
	db *DB
}

func NewBanRepo(db *DB) *BanRepo { return &BanRepo{db: db} }

// Reload re-reads the full ban table into list, backing the auth
// daemon's `reload-banned` IPC command.
func (r *BanRepo) Reload(ctx context.Context, list *BanList) error {
	rows, err := r.db.Pool.Query(ctx, `SELECT account, reason, expires_at FROM bans`)
	if err != nil {
		return fmt.Errorf("query bans: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]banEntry)
	for rows.Next() {
		var account, reason string
		var expiresAt *time.Time
		if err := rows.Scan(&account, &reason, &expiresAt); err != nil {
			return fmt.Errorf("scan ban row: %w", err)
		}
		entries[account] = banEntry{reason: reason, expiresAt: expiresAt}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	list.replace(entries)
	return nil
}
