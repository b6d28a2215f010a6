package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchSpec(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, 18402, cfg.Network.WorldServerPort)
	require.Equal(t, 18401, cfg.Network.AuthServerPort)
	require.Equal(t, 18123, cfg.Network.NTSServerPort)
	require.Equal(t, -1, cfg.Network.OutKBuff)
	require.Equal(t, 1000, cfg.World.PlayerLimit)
	require.Equal(t, 60*time.Second, cfg.World.SessionTimeout())
	require.Equal(t, time.Hour, cfg.World.TheaterDeletionDelay())
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.toml")
	content := `
[network]
world_server_port = 20000

[world]
player_limit = 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 20000, cfg.Network.WorldServerPort)
	require.Equal(t, 50, cfg.World.PlayerLimit)
	require.Equal(t, 18401, cfg.Network.AuthServerPort) // untouched default
}
