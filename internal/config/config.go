// Package config loads daemon configuration from TOML, mapping each
// spec key table to an equivalently-named, equivalently-defaulted TOML
// table (see SPEC_FULL.md AMBIENT STACK).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the shared shape for worldd, authd, and ntsd; a daemon reads
// only the fields it needs.
type Config struct {
	Network NetworkConfig `toml:"network"`
	World   WorldConfig   `toml:"world"`
	Log     LogConfig     `toml:"log"`
	Catalog CatalogConfig `toml:"catalog"`

	PidFile string `toml:"pid_file"`
}

// CatalogConfig points at the Postgres-backed static catalogs (realm
// list, ban list, map templates, loot tables) spec.md §6 treats as
// external collaborators.
type CatalogConfig struct {
	DSN               string `toml:"dsn"`
	MaxOpenConns      int    `toml:"max_open_conns"`
	MaxIdleConns      int    `toml:"max_idle_conns"`
	ConnMaxLifetimeMS int64  `toml:"conn_max_lifetime_ms"`
}

func (c CatalogConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMS) * time.Millisecond
}

// NetworkConfig covers §6's listen/reactor/queue keys.
type NetworkConfig struct {
	WorldServerPort int    `toml:"world_server_port"`
	AuthServerPort  int    `toml:"auth_server_port"`
	NTSServerPort   int    `toml:"nts_server_port"`
	BindIP          string `toml:"bind_ip"`

	ThreadPool      int  `toml:"thread_pool"`
	TcpNoDelay      bool `toml:"tcp_no_delay"`
	OutKBuff        int  `toml:"out_kbuff"`
	SendQueueLimit  int  `toml:"send_queue_limit"`

	// CipherEnabled is parsed and defaults to off; no daemon reads it, and
	// transport.StreamCipher is not applied to frames either way.
	CipherEnabled bool `toml:"cipher_enabled"`
}

// WorldConfig covers session/theater timing and capacity keys.
type WorldConfig struct {
	SessionTimeoutMS       int64 `toml:"session_timeout_ms"`
	ExpiredSessionDelayMS  int64 `toml:"expired_session_delay_ms"`
	QueuedSessionTimeoutMS int64 `toml:"queued_session_timeout_ms"`
	PlayerLimit            int   `toml:"player_limit"`
	TheaterDeletionDelaySec int64 `toml:"theater_deletion_delay_sec"`
	WaitForPlayersTimeoutMS int64 `toml:"wait_for_players_timeout_ms"`
	TheaterUpdateThreads    int   `toml:"theater_update_threads"`
	WorldUpdateIntervalMS   int64 `toml:"world_update_interval_ms"`

	// Danger-state constants driving the outside-safe-zone health-loss
	// state machine (spec.md §4.6.1).
	EnteringDangerDelayMS int64 `toml:"entering_danger_delay_ms"`
	DangerHealthLoss      int32 `toml:"danger_health_loss"`
	HealthLossIntervalMS  int64 `toml:"health_loss_interval_ms"`

	// BaseXPOnKill seeds RewardManager.Settle's kill-XP pool (spec.md §4.8).
	BaseXPOnKill int64 `toml:"base_xp_on_kill"`

	// ScriptsDir points at the Lua script tree the scripting engine loads
	// "ai" and "itemfx" subdirectories from (spec.md §9 Design Notes: AI
	// nature coefficients and item effects stay script-driven).
	ScriptsDir string `toml:"scripts_dir"`
}

type LogConfig struct {
	AsyncEnable bool `toml:"async_enable"`
}

func (w WorldConfig) SessionTimeout() time.Duration {
	return time.Duration(w.SessionTimeoutMS) * time.Millisecond
}

func (w WorldConfig) ExpiredSessionDelay() time.Duration {
	return time.Duration(w.ExpiredSessionDelayMS) * time.Millisecond
}

func (w WorldConfig) QueuedSessionTimeout() time.Duration {
	return time.Duration(w.QueuedSessionTimeoutMS) * time.Millisecond
}

func (w WorldConfig) TheaterDeletionDelay() time.Duration {
	return time.Duration(w.TheaterDeletionDelaySec) * time.Second
}

func (w WorldConfig) WaitForPlayersTimeout() time.Duration {
	return time.Duration(w.WaitForPlayersTimeoutMS) * time.Millisecond
}

func (w WorldConfig) WorldUpdateInterval() time.Duration {
	return time.Duration(w.WorldUpdateIntervalMS) * time.Millisecond
}

// Load reads and parses a TOML config file, starting from Defaults() so
// any key the file omits keeps its spec-mandated default.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the spec.md §6 default values.
func Defaults() *Config {
	return &Config{
		Network: NetworkConfig{
			WorldServerPort: 18402,
			AuthServerPort:  18401,
			NTSServerPort:   18123,
			BindIP:          "0.0.0.0",
			ThreadPool:      1,
			TcpNoDelay:      false,
			OutKBuff:        -1,
			SendQueueLimit:  0,
			CipherEnabled:   false,
		},
		World: WorldConfig{
			SessionTimeoutMS:        60000,
			ExpiredSessionDelayMS:   5000,
			QueuedSessionTimeoutMS:  10000,
			PlayerLimit:             1000,
			TheaterDeletionDelaySec: 3600,
			WaitForPlayersTimeoutMS: 5000,
			TheaterUpdateThreads:    1,
			WorldUpdateIntervalMS:   50,
			EnteringDangerDelayMS:   5000,
			DangerHealthLoss:        5,
			HealthLossIntervalMS:    1000,
			BaseXPOnKill:            100,
			ScriptsDir:              "scripts",
		},
		Log: LogConfig{AsyncEnable: false},
		Catalog: CatalogConfig{
			DSN:               "postgres://localhost:5432/battlecore?sslmode=disable",
			MaxOpenConns:      10,
			MaxIdleConns:      2,
			ConnMaxLifetimeMS: 1_800_000,
		},
		PidFile: "",
	}
}
