package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "FUNDFUSION"

type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`
	DBPath   string `mapstructure:"db_path"`
	Debug    bool   `mapstructure:"debug"`
	SeedDemo bool   `mapstructure:"seed_demo"`

	Cooldown time.Duration `mapstructure:"cooldown"`

	WalletAddress  string        `mapstructure:"wallet_address"`
	WalletTimeout  time.Duration `mapstructure:"wallet_timeout"`
	WalletRetries  int           `mapstructure:"wallet_retries"`
	ConnectLatency time.Duration `mapstructure:"connect_latency"`
	SubmitLatency  time.Duration `mapstructure:"submit_latency"`

	DiscordBotToken  string `mapstructure:"discord_bot_token"`
	DiscordChannelID string `mapstructure:"discord_channel_id"`
}

var defaults = map[string]interface{}{
	"http_addr":          ":8080",
	"db_path":            "fundfusion.db",
	"debug":              false,
	"seed_demo":          false,
	"cooldown":           5 * time.Minute,
	"wallet_address":     "0x123...abc",
	"wallet_timeout":     10 * time.Second,
	"wallet_retries":     3,
	"connect_latency":    time.Second,
	"submit_latency":     1500 * time.Millisecond,
	"discord_bot_token":  "",
	"discord_channel_id": "",
}

// Load reads an optional .env file and then the FUNDFUSION_* environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http_addr is not set")
	}
	if c.DBPath == "" {
		return errors.New("db_path is not set")
	}
	if c.Cooldown < 0 {
		return errors.New("invalid cooldown")
	}
	if c.WalletTimeout <= 0 {
		return errors.New("invalid wallet_timeout")
	}
	if c.WalletRetries < 1 {
		return errors.New("wallet_retries must be at least 1")
	}
	if c.ConnectLatency < 0 || c.SubmitLatency < 0 {
		return errors.New("invalid wallet latency")
	}
	if (c.DiscordBotToken == "") != (c.DiscordChannelID == "") {
		return errors.New("discord bot token and channel ID must be set together")
	}
	return nil
}

// DiscordEnabled reports whether the chat bot should run.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordBotToken != ""
}
