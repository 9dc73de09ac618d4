package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardroom.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, "main", cfg.Tables[0].Name)
}

func TestLoadConfigParsesHCL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

table "main" {
  small_blind = 5
  big_blind   = 10
  max_seats   = 6
  buy_in_min  = 200
  buy_in_max  = 2000
  auto_deal   = true
}

table "high" {
  small_blind = 50
  big_blind   = 100
}

bot "rocky" {
  strategy = "call"
  buy_in   = 500
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	require.Len(t, cfg.Tables, 2)
	main := cfg.Tables[0]
	assert.Equal(t, 5, main.SmallBlind)
	assert.Equal(t, 2000, main.BuyInMax)
	assert.True(t, main.AutoDeal)
	assert.Equal(t, 30, main.ActionTimeout, "timeout defaults when omitted")

	high := cfg.Tables[1]
	assert.Equal(t, 6, high.MaxSeats, "seats default when omitted")
	assert.Equal(t, 100*50, high.BuyInMin, "buy-in floor defaults to 50 big blinds")

	// A bot with no tables listed sits at every table
	require.Len(t, cfg.Bots, 1)
	assert.ElementsMatch(t, []string{"main", "high"}, cfg.Bots[0].Tables)
	assert.Equal(t, []BotConfig{cfg.Bots[0]}, cfg.BotsForTable("high"))
}

func TestLoadConfigRejectsBadHCL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `table "broken" { small_blind = `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		cfg := DefaultConfig()
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables[0].BigBlind = cfg.Tables[0].SmallBlind
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Tables[0].MaxSeats = 11
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Bots = []BotConfig{{Name: "x", Strategy: "cheat", BuyIn: 100}}
	assert.Error(t, cfg.Validate())
}
