package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Load reads the YAML config at path, applies defaults, then applies
// environment overrides. A missing file is not an error: the built-in
// defaults describe a working single-node setup. .env files are loaded
// first so container setups can ship overrides without exporting them.
func Load(path string) (*Config, error) {
	// Non-fatal when absent.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.SetDefaults()
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies the supported environment variables.
// Env always wins over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRIGGERD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Service.Port = port
		}
	}
	if v := os.Getenv("TRIGGERD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Service.Concurrency = n
		}
	}
	if v := os.Getenv("TRIGGERD_SPOOL_DIR"); v != "" {
		cfg.Service.SpoolDir = v
	}
	if v := os.Getenv("TRIGGERD_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Service.Debug = v == "true" || v == "1" || v == "yes"
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if len(c.Taxonomy) == 0 {
		return fmt.Errorf("config: taxonomy must not be empty")
	}
	for category, phrases := range c.Taxonomy {
		if len(phrases) == 0 {
			return fmt.Errorf("config: taxonomy category %q has no phrases", category)
		}
	}
	switch c.Dedup.Bucket {
	case "day", "week", "month":
	default:
		return fmt.Errorf("config: dedup bucket %q must be day, week, or month", c.Dedup.Bucket)
	}
	if c.Scoring.CategoryBase < 0 || c.Scoring.CategoryRepeat < 0 {
		return fmt.Errorf("config: category scoring weights must not be negative")
	}
	return nil
}
