package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine's configuration.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	JWT           JWTConfig           `yaml:"jwt"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Game          GameConfig          `yaml:"game"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL      string `yaml:"url"`
	NKeySeed string `yaml:"nkey_seed"`
}

// JWTConfig holds the signing settings for organizer/player tokens.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// HTTPConfig holds the command gateway settings.
type HTTPConfig struct {
	Address string `yaml:"address"`
	// BuzzerRatePerSecond bounds buzzer presses per player on the gateway.
	BuzzerRatePerSecond float64 `yaml:"buzzer_rate_per_second"`
	BuzzerRateBurst     int     `yaml:"buzzer_rate_burst"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// GameConfig holds gameplay defaults applied when a round leaves a
// parameter unset.
type GameConfig struct {
	DefaultThinkingTime   int `yaml:"default_thinking_time"`
	DefaultMaxTries       int `yaml:"default_max_tries"`
	DefaultRewardPerUnit  int `yaml:"default_reward_per_unit"`
	MaxTeamNameLength     int `yaml:"max_team_name_length"`
	TxMaxAttempts         int `yaml:"tx_max_attempts"`
	TxBaseBackoffMillis   int `yaml:"tx_base_backoff_millis"`
	TxMaxBackoffMillis    int `yaml:"tx_max_backoff_millis"`
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to env-only config.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config
	cfg.applyDefaults()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		cfg.applyDefaults()
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("TX_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Game.TxMaxAttempts = n
		}
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS URL is required (config file or NATS_URL)")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.BuzzerRatePerSecond == 0 {
		c.HTTP.BuzzerRatePerSecond = 5
	}
	if c.HTTP.BuzzerRateBurst == 0 {
		c.HTTP.BuzzerRateBurst = 3
	}
	if c.JWT.DefaultTTL == 0 {
		c.JWT.DefaultTTL = 12 * time.Hour
	}
	if c.Game.DefaultThinkingTime == 0 {
		c.Game.DefaultThinkingTime = 30
	}
	if c.Game.DefaultMaxTries == 0 {
		c.Game.DefaultMaxTries = 1
	}
	if c.Game.DefaultRewardPerUnit == 0 {
		c.Game.DefaultRewardPerUnit = 1
	}
	if c.Game.MaxTeamNameLength == 0 {
		c.Game.MaxTeamNameLength = 40
	}
	if c.Game.TxMaxAttempts == 0 {
		c.Game.TxMaxAttempts = 5
	}
	if c.Game.TxBaseBackoffMillis == 0 {
		c.Game.TxBaseBackoffMillis = 10
	}
	if c.Game.TxMaxBackoffMillis == 0 {
		c.Game.TxMaxBackoffMillis = 250
	}
}
