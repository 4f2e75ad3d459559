package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citykiller/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	conf, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, ":8080", conf.Server.Addr())
	assert.Equal(t, "info", conf.Log.Level)
	assert.Equal(t, 20, conf.Game.MaxCitizens)
	assert.Equal(t, 100, conf.Game.CitizenAttempts)
	assert.Equal(t, 2, conf.Game.BuildingsPerType)
	assert.Zero(t, conf.Game.Seed)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  public_url: http://table.local:9090
log:
  level: debug
game:
  seed: 42
  max_citizens: 12
  strict_placement: true
`)
	conf, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, conf.Server.Port)
	assert.Equal(t, "http://table.local:9090", conf.Server.PublicURL)
	assert.Equal(t, "debug", conf.Log.Level)
	assert.Equal(t, uint64(42), conf.Game.Seed)
	assert.True(t, conf.Game.StrictPlacement)

	placement := conf.Game.Placement()
	assert.Equal(t, 12, placement.MaxCitizens)
	assert.Equal(t, 100, placement.CitizenAttempts)
	assert.Equal(t, 3, placement.SubPositions)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("CITYKILLER_SERVER_PORT", "7070")
	t.Setenv("CITYKILLER_GAME_SEED", "7")

	conf, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, conf.Server.Port)
	assert.Equal(t, uint64(7), conf.Game.Seed)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "server:\n  port: 70000\n"))
	assert.ErrorContains(t, err, "server.port")

	_, err = config.Load(writeConfig(t, "game:\n  max_citizens: -1\n"))
	assert.ErrorContains(t, err, "negative")
}
