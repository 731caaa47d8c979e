package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rhuss/castservice/pkg/storage"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure; database
// problems wrap storage.ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error

	// database.uri is required.
	if c.Database.URI == "" {
		errs = append(errs, fmt.Errorf("%w: %s (database.uri) is required", storage.ErrConfiguration, EnvDatabaseURI))
	} else if err := validateURI(c.Database.URI); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s (database.uri): %w", storage.ErrConfiguration, EnvDatabaseURI, err))
	}

	if c.Database.MinConns < 0 {
		errs = append(errs, fmt.Errorf("%w: database.min_conns must be >= 0, got %d", storage.ErrConfiguration, c.Database.MinConns))
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("%w: database.max_conns must be >= 1, got %d", storage.ErrConfiguration, c.Database.MaxConns))
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Errorf("%w: database.max_conns (%d) must be >= database.min_conns (%d)",
			storage.ErrConfiguration, c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.AcquireTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: database.acquire_timeout must not be negative", storage.ErrConfiguration))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}

// validateURI accepts postgres:// URLs and libpq key=value strings.
func validateURI(uri string) error {
	if !strings.Contains(uri, "://") {
		if !strings.Contains(uri, "=") {
			return fmt.Errorf("not a connection URI or key=value string")
		}
		return nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}
