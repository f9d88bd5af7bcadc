package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// viper state is global, so these tests reset it per case and never run in
// parallel.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		viper.Reset()
		path := writeConfigFile(t, `
DiscordBot:
  Token: "test-token"
PostgreSQL:
  Host: "localhost"
  Port: 5432
  User: "postgres"
  Password: "secret"
  DBName: "settle-up-db"
  Schema: "public"
  PoolMaxConns: 5
SlipVerifier:
  ApiUrl: ""
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "test-token", cfg.DiscordBot.Token)
		assert.Equal(t, "localhost", cfg.PostgreSQL.Host)
		assert.Equal(t, 5432, cfg.PostgreSQL.Port)
		assert.Equal(t, 5, cfg.PostgreSQL.PoolMaxConns)
		assert.Empty(t, cfg.SlipVerifier.ApiUrl)
	})

	t.Run("missing token", func(t *testing.T) {
		viper.Reset()
		path := writeConfigFile(t, `
DiscordBot:
  Token: ""
PostgreSQL:
  Host: "localhost"
  DBName: "settle-up-db"
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token")
	})

	t.Run("incomplete database config", func(t *testing.T) {
		viper.Reset()
		path := writeConfigFile(t, `
DiscordBot:
  Token: "test-token"
PostgreSQL:
  Host: ""
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
	})

	t.Run("missing file", func(t *testing.T) {
		viper.Reset()
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestInitializeAppliesDefaults(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
DiscordBot:
  Token: "test-token"
PostgreSQL:
  Host: "db.internal"
  DBName: "settle-up-db"
`)

	Initialize(path)

	// values from the file
	assert.Equal(t, "test-token", GetString("DiscordBot.Token"))
	assert.Equal(t, "db.internal", GetString("PostgreSQL.Host"))

	// values from defaults
	assert.Equal(t, 5432, GetInt("PostgreSQL.Port"))
	assert.Equal(t, 10, GetInt("PostgreSQL.PoolMaxConns"))
	assert.Equal(t, "public", GetString("PostgreSQL.Schema"))

	// unset keys read as zero values
	assert.Empty(t, GetString("SlipVerifier.ApiUrl"))
	assert.False(t, GetBool("DiscordBot.Debug"))
	assert.Zero(t, GetFloat64("PostgreSQL.ConnTimeout"))
}
