// Package config defines the server configuration and its validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration. Fields come from a TOML file and are
// then optionally overridden by UNITVALUES_* environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Data     DataConfig     `toml:"data"`
	Trade    TradeConfig    `toml:"trade"`
	Search   SearchConfig   `toml:"search"`
	Redis    RedisConfig    `toml:"redis"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	StaticDir   string   `toml:"static_dir"`
}

// DatabaseConfig points at the SQLite file
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// DataConfig locates the static data files
type DataConfig struct {
	UnitsPath    string `toml:"units_path"`
	CodesPath    string `toml:"codes_path"`
	RaritiesPath string `toml:"rarities_path"` // empty means the built-in table
}

// TradeConfig tunes the trade evaluator
type TradeConfig struct {
	FairThresholdPct float64 `toml:"fair_threshold_pct"`
}

// SearchConfig tunes search-as-you-type
type SearchConfig struct {
	Debounce duration `toml:"debounce"`
	MaxLimit int      `toml:"max_limit"`
}

// RedisConfig enables request rate limiting when Addr is set
type RedisConfig struct {
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
	TLSEnabled bool     `toml:"tls_enabled"`
}

// duration lets TOML values like "300ms" decode into a time.Duration
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a configuration that works for local development
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:*"},
		},
		Database: DatabaseConfig{Path: "./unitvalues.db"},
		Data: DataConfig{
			UnitsPath: "data/units.json",
			CodesPath: "data/codes.json",
		},
		Trade:  TradeConfig{FairThresholdPct: 10},
		Search: SearchConfig{Debounce: duration{300 * time.Millisecond}, MaxLimit: 500},
		Redis: RedisConfig{
			RateLimit:  120,
			RateWindow: duration{time.Minute},
		},
		LogLevel: "info",
	}
}

// DebounceDelay returns the search debounce delay
func (c *Config) DebounceDelay() time.Duration {
	return c.Search.Debounce.Duration
}

// RateWindow returns the rate limiter window
func (c *Config) RateWindow() time.Duration {
	return c.Redis.RateWindow.Duration
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	if c.Trade.FairThresholdPct <= 0 || c.Trade.FairThresholdPct >= 100 {
		problems = append(problems, fmt.Sprintf("trade.fair_threshold_pct %.2f must be between 0 and 100", c.Trade.FairThresholdPct))
	}
	if c.Search.Debounce.Duration < 0 {
		problems = append(problems, "search.debounce must not be negative")
	}
	if c.Search.MaxLimit <= 0 {
		problems = append(problems, "search.max_limit must be positive")
	}
	if c.Redis.Addr != "" {
		if c.Redis.RateLimit <= 0 {
			problems = append(problems, "redis.rate_limit must be positive")
		}
		if c.Redis.RateWindow.Duration <= 0 {
			problems = append(problems, "redis.rate_window must be positive")
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
