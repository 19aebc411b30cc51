package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidGerritPort is returned when the SSH port is out of range.
	ErrInvalidGerritPort = errors.New("invalid Gerrit port: must be in 1..65535")

	// ErrInvalidQueryTimeout is returned when the query timeout is <= 0.
	ErrInvalidQueryTimeout = errors.New("invalid query timeout: must be > 0")

	// ErrInvalidActivityDays is returned when the activity window is <= 0.
	ErrInvalidActivityDays = errors.New("invalid activity days: must be > 0")

	// ErrNoCachePath is returned when no cache file path is configured.
	ErrNoCachePath = errors.New("no cache path configured")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be >= 0")

	// ErrInvalidLogLevel is returned when the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when the log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when the config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when the config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
