// Package config provides unified configuration for the cast service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. .env file (values never override variables already set)
//  3. YAML config file (discovered or explicitly specified)
//  4. Environment variable overrides (DATABASE_URI, CAST_ prefix)
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import (
	"time"

	"github.com/rhuss/castservice/pkg/debug"
	"github.com/rhuss/castservice/pkg/storage/postgres"
)

// Config holds all configuration for the cast service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 10s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 15s
}

// DatabaseConfig holds connection pool settings.
type DatabaseConfig struct {
	URI                 string        `yaml:"uri"`
	URIFile             string        `yaml:"uri_file"`          // _file variant for uri
	MinConns            int32         `yaml:"min_conns"`         // default: 1
	MaxConns            int32         `yaml:"max_conns"`         // default: 2
	MaxConnLifetime     time.Duration `yaml:"max_conn_lifetime"` // default: 5m
	MaxConnIdleTime     time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout      time.Duration `yaml:"connect_timeout"`
	AcquireTimeout      time.Duration `yaml:"acquire_timeout"` // 0 = wait for the caller's context
	Lazy                bool          `yaml:"lazy"`
	CreateSchemaOnStart bool          `yaml:"create_schema_on_start"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // default: "INFO"
	Format     string `yaml:"format"` // "text" or "json", default: "text"
	Debug      string `yaml:"debug"`  // comma-separated debug categories
	File       string `yaml:"file"`   // optional rotated log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			MinConns:        postgres.DefaultMinConns,
			MaxConns:        postgres.DefaultMaxConns,
			MaxConnLifetime: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Postgres converts the database section into pool settings.
func (c *Config) Postgres() postgres.Config {
	return postgres.Config{
		DSN:             c.Database.URI,
		MinConns:        c.Database.MinConns,
		MaxConns:        c.Database.MaxConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		ConnectTimeout:  c.Database.ConnectTimeout,
		AcquireTimeout:  c.Database.AcquireTimeout,
		Lazy:            c.Database.Lazy,
	}
}

// DebugSettings converts the logging section into debug settings.
func (c *Config) DebugSettings() debug.Settings {
	return debug.Settings{
		Categories: c.Logging.Debug,
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
	}
}
