package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads values and fills defaults", func(t *testing.T) {
		// Given: a config with bots and a custom time per move
		path := writeConfig(t, `
log-level: debug
match:
  time-per-move: 2s
bots:
  - name: alpha
    command: ./alpha
  - name: beta
    command: builtin:random
`)

		// When: the config is loaded
		conf, err := Load(path)

		// Then: given values are kept and the rest is defaulted
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2*time.Second, conf.Match.TimePerMove)
		assert.Equal(t, 10*time.Second, conf.Match.Timebank)
		assert.Equal(t, 100, conf.Match.MaxRounds)
		assert.Equal(t, []Bot{{Name: "alpha", Command: "./alpha"}, {Name: "beta", Command: "builtin:random"}}, conf.Bots)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		// Given: a redis host in the environment
		t.Setenv("REDIS_HOST", "redis")
		path := writeConfig(t, `
bots:
  - name: alpha
    command: ./alpha
  - name: beta
    command: ./beta
`)

		// When: the config is loaded
		conf, err := Load(path)

		// Then: the environment wins
		require.NoError(t, err)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Error with one bot", func(t *testing.T) {
		path := writeConfig(t, `
bots:
  - name: alpha
    command: ./alpha
`)

		_, err := Load(path)

		require.ErrorIs(t, err, ErrInvalidBots)
	})

	t.Run("Error with a bot without command", func(t *testing.T) {
		path := writeConfig(t, `
bots:
  - name: alpha
    command: ./alpha
  - name: beta
`)

		_, err := Load(path)

		require.ErrorIs(t, err, ErrInvalidBots)
	})

	t.Run("Error on missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
	})
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yml")) })
}
