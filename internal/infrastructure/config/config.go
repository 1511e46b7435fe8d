package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server struct {
		Port               int    `yaml:"port"`
		ShutdownTimeoutStr string `yaml:"shutdown_timeout"`
		ShutdownTimeout    time.Duration `yaml:"-"`
	} `yaml:"server"`

	Monitor struct {
		IntervalStr       string `yaml:"interval"`
		RequestTimeoutStr string `yaml:"request_timeout"`
		PrimaryURL        string `yaml:"primary_url"`
		FallbackURL       string `yaml:"fallback_url"`
		Interval          time.Duration `yaml:"-"`
		RequestTimeout    time.Duration `yaml:"-"`
	} `yaml:"monitor"`

	Ledger struct {
		PageSize             int    `yaml:"page_size"`
		ReconcileIntervalStr string `yaml:"reconcile_interval"`
		ReconcileInterval    time.Duration `yaml:"-"`
	} `yaml:"ledger"`

	PostgreSQL struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"postgresql"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host, c.PostgreSQL.Port, c.PostgreSQL.User,
		c.PostgreSQL.Password, c.PostgreSQL.Database, c.PostgreSQL.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
