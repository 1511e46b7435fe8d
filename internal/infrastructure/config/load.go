package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	if err := parseDurations(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

func parseDurations(cfg *Config) error {
	var err error
	if cfg.Server.ShutdownTimeoutStr != "" {
		if cfg.Server.ShutdownTimeout, err = time.ParseDuration(cfg.Server.ShutdownTimeoutStr); err != nil {
			return fmt.Errorf("invalid shutdown_timeout: %w", err)
		}
	}
	if cfg.Monitor.IntervalStr != "" {
		if cfg.Monitor.Interval, err = time.ParseDuration(cfg.Monitor.IntervalStr); err != nil {
			return fmt.Errorf("invalid monitor interval: %w", err)
		}
	}
	if cfg.Monitor.RequestTimeoutStr != "" {
		if cfg.Monitor.RequestTimeout, err = time.ParseDuration(cfg.Monitor.RequestTimeoutStr); err != nil {
			return fmt.Errorf("invalid monitor request_timeout: %w", err)
		}
	}
	if cfg.Ledger.ReconcileIntervalStr != "" {
		if cfg.Ledger.ReconcileInterval, err = time.ParseDuration(cfg.Ledger.ReconcileIntervalStr); err != nil {
			return fmt.Errorf("invalid ledger reconcile_interval: %w", err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Monitor.Interval <= 0 {
		cfg.Monitor.Interval = 120 * time.Second
	}
	if cfg.Monitor.RequestTimeout <= 0 {
		cfg.Monitor.RequestTimeout = 10 * time.Second
	}
	if cfg.Ledger.PageSize <= 0 {
		cfg.Ledger.PageSize = 20
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.PostgreSQL.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.PostgreSQL.Port = port
		}
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.PostgreSQL.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.PostgreSQL.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.PostgreSQL.Database = v
	}

	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("RATE_PRIMARY_URL"); v != "" {
		cfg.Monitor.PrimaryURL = v
	}
	if v := os.Getenv("RATE_FALLBACK_URL"); v != "" {
		cfg.Monitor.FallbackURL = v
	}
}
