package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path on top of Defaults(), then
// applies UNITVALUES_* environment overrides. A missing file is not an
// error; the defaults are used. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setInt(&cfg.Server.Port, "UNITVALUES_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "UNITVALUES_CORS_ORIGINS")
	setStr(&cfg.Server.StaticDir, "UNITVALUES_STATIC_DIR")

	setStr(&cfg.Database.Path, "UNITVALUES_DB_PATH")

	setStr(&cfg.Data.UnitsPath, "UNITVALUES_UNITS_PATH")
	setStr(&cfg.Data.CodesPath, "UNITVALUES_CODES_PATH")
	setStr(&cfg.Data.RaritiesPath, "UNITVALUES_RARITIES_PATH")

	setFloat64(&cfg.Trade.FairThresholdPct, "UNITVALUES_FAIR_THRESHOLD_PCT")

	setDuration(&cfg.Search.Debounce, "UNITVALUES_SEARCH_DEBOUNCE")
	setInt(&cfg.Search.MaxLimit, "UNITVALUES_SEARCH_MAX_LIMIT")

	setStr(&cfg.Redis.Addr, "UNITVALUES_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "UNITVALUES_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "UNITVALUES_REDIS_DB")
	setInt(&cfg.Redis.RateLimit, "UNITVALUES_REDIS_RATE_LIMIT")
	setDuration(&cfg.Redis.RateWindow, "UNITVALUES_REDIS_RATE_WINDOW")
	setBool(&cfg.Redis.TLSEnabled, "UNITVALUES_REDIS_TLS_ENABLED")

	setStr(&cfg.LogLevel, "UNITVALUES_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the variable is
// present and parses.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
