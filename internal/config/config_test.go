package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "fundfusion.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.Cooldown)
	assert.Equal(t, 10*time.Second, cfg.WalletTimeout)
	assert.Equal(t, 3, cfg.WalletRetries)
	assert.Equal(t, time.Second, cfg.ConnectLatency)
	assert.Equal(t, 1500*time.Millisecond, cfg.SubmitLatency)
	assert.Equal(t, "0x123...abc", cfg.WalletAddress)
	assert.False(t, cfg.SeedDemo)
	assert.False(t, cfg.DiscordEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FUNDFUSION_HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("FUNDFUSION_COOLDOWN", "90s")
	t.Setenv("FUNDFUSION_SEED_DEMO", "true")
	t.Setenv("FUNDFUSION_WALLET_RETRIES", "5")
	t.Setenv("FUNDFUSION_DISCORD_BOT_TOKEN", "token")
	t.Setenv("FUNDFUSION_DISCORD_CHANNEL_ID", "123")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, 90*time.Second, cfg.Cooldown)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, 5, cfg.WalletRetries)
	assert.True(t, cfg.DiscordEnabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("FUNDFUSION_DB_PATH", "")
	os.Unsetenv("FUNDFUSION_DB_PATH")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FUNDFUSION_DB_PATH=/tmp/ledger.db\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.db", cfg.DBPath)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTPAddr:      ":8080",
			DBPath:        "x.db",
			Cooldown:      time.Minute,
			WalletTimeout: time.Second,
			WalletRetries: 1,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.HTTPAddr = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Second }},
		{"zero wallet timeout", func(c *Config) { c.WalletTimeout = 0 }},
		{"no retries", func(c *Config) { c.WalletRetries = 0 }},
		{"negative latency", func(c *Config) { c.SubmitLatency = -1 }},
		{"token without channel", func(c *Config) { c.DiscordBotToken = "t" }},
		{"channel without token", func(c *Config) { c.DiscordChannelID = "c" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
