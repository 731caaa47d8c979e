package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rhuss/castservice/pkg/debug"
	"github.com/rhuss/castservice/pkg/storage"
)

// EnvDatabaseURI names the environment variable holding the connection string.
const EnvDatabaseURI = "DATABASE_URI"

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. .env file (CAST_ENV_FILE or ./.env)
//  3. YAML config file (explicit path, CAST_CONFIG env, ./config.yaml, /etc/cast-service/config.yaml)
//  4. Environment variable overrides
//  5. File reference resolution (_file suffix)
//  6. Validation
//
// Every error returned wraps storage.ErrConfiguration.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: loading .env: %w", storage.ErrConfiguration, err)
	}

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("%w: loading config file %s: %w", storage.ErrConfiguration, filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConfiguration, err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("%w: resolving file references: %w", storage.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads variables from a .env file if one exists. Variables
// already present in the environment are kept.
func loadDotEnv() error {
	path := os.Getenv("CAST_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. CAST_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/cast-service/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("CAST_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/cast-service/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvDatabaseURI); v != "" {
		cfg.Database.URI = v
	}
	if v := os.Getenv("DATABASE_URI_FILE"); v != "" {
		cfg.Database.URIFile = v
	}
	if v := os.Getenv("CAST_DB_POOL_MIN"); v != "" {
		n, err := parseInt32(v)
		if err != nil {
			return fmt.Errorf("CAST_DB_POOL_MIN: %w", err)
		}
		cfg.Database.MinConns = n
	}
	if v := os.Getenv("CAST_DB_POOL_MAX"); v != "" {
		n, err := parseInt32(v)
		if err != nil {
			return fmt.Errorf("CAST_DB_POOL_MAX: %w", err)
		}
		cfg.Database.MaxConns = n
	}
	if v := os.Getenv("CAST_DB_ACQUIRE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CAST_DB_ACQUIRE_TIMEOUT: %w", err)
		}
		cfg.Database.AcquireTimeout = d
	}
	if v := os.Getenv("CAST_DB_LAZY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CAST_DB_LAZY: %w", err)
		}
		cfg.Database.Lazy = b
	}
	if v := os.Getenv("CAST_DB_CREATE_SCHEMA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CAST_DB_CREATE_SCHEMA: %w", err)
		}
		cfg.Database.CreateSchemaOnStart = b
	}
	if v := os.Getenv("CAST_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CAST_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("CAST_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CAST_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	return nil
}

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// The file is only read when the value field is empty.
func resolveFileReferences(cfg *Config) error {
	if cfg.Database.URIFile != "" && cfg.Database.URI == "" {
		val, err := readSecretFile(cfg.Database.URIFile)
		if err != nil {
			return fmt.Errorf("database.uri_file: %w", err)
		}
		cfg.Database.URI = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
