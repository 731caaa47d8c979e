package storage

import "errors"

// Sentinel errors for storage setup and connection handling. Adapters wrap
// them with fmt.Errorf("...: %w") so callers can match with errors.Is.
var (
	// ErrConfiguration is returned when the connection string or pool
	// bounds are missing or malformed. No pool is created.
	ErrConfiguration = errors.New("storage configuration error")

	// ErrConnectivity is returned when the database cannot be reached.
	ErrConnectivity = errors.New("database unreachable")

	// ErrPoolExhausted is returned when every pooled connection is in use
	// and the caller stopped waiting for one to be released.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)

// Error kinds reported by Kind.
const (
	KindConfiguration = "configuration"
	KindConnectivity  = "connectivity"
	KindPoolExhausted = "pool_exhausted"
	KindOther         = "other"
)

// Kind classifies err into one of the Kind* labels. It returns the empty
// string for a nil error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrConnectivity):
		return KindConnectivity
	case errors.Is(err, ErrPoolExhausted):
		return KindPoolExhausted
	default:
		return KindOther
	}
}
