// Package catalog loads the opaque static catalogs spec.md §6 treats as
// external collaborators (realm list, ban list, map grade bands, loot
// tables), backed by Postgres instead of the teacher's on-disk YAML
// (see DESIGN.md "Dropped teacher dependency").
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB wraps a pgx connection pool, mirroring the teacher's persist.DB.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

// Config is the connection settings for the catalog store; callers pass
// config.CatalogConfig's fields through (catalog does not import
// internal/config to avoid a dependency cycle with daemons that import
// both).
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewDB(ctx context.Context, cfg Config, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse catalog dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect catalog db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}

	return &DB{Pool: pool, log: log}, nil
}

func (db *DB) Close() { db.Pool.Close() }
