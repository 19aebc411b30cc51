// Package config provides configuration management for gerrit-stats.
//
// Configuration is loaded from multiple sources with the following
// precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file
// 3. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Gerrit host: %s\n", cfg.Gerrit.Host)
package config

import (
	"time"
)

// Config represents the complete application configuration.
//
// Invariants:
// - Gerrit.Port must be in (0, 65536)
// - Activity.Days must be > 0
// - Cache.Path must be set.
//
// Gerrit.Host may stay empty; it is only required when a query is
// actually run, which the fetch client enforces.
type Config struct {
	// Gerrit server settings
	Gerrit GerritConfig `yaml:"gerrit" json:"gerrit"`

	// Activity window settings
	Activity ActivityConfig `yaml:"activity" json:"activity"`

	// Query result cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// GerritConfig contains the query transport settings.
type GerritConfig struct {
	// SSH host of the Gerrit server
	Host string `yaml:"host" json:"host"`

	// SSH port of the Gerrit server
	Port int `yaml:"port" json:"port"`

	// Maximum duration of one query run
	QueryTimeout time.Duration `yaml:"query_timeout" json:"query_timeout"`

	// Usernames of automated accounts whose activity is excluded
	TechnicalAccounts []string `yaml:"technical_accounts" json:"technical_accounts"`
}

// ActivityConfig contains the reporting window settings.
type ActivityConfig struct {
	// Number of past days to count activity over
	Days int `yaml:"days" json:"days"`
}

// CacheConfig contains query-cache settings.
type CacheConfig struct {
	// Path to the BoltDB cache file
	Path string `yaml:"path" json:"path"`

	// Maximum age of a cached query result before it is refetched;
	// 0 disables expiry
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Output format (text, json)
	Format string `yaml:"format" json:"format"`

	// Output destination (stdout, stderr, or file path)
	Output string `yaml:"output" json:"output"`
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Gerrit.Port <= 0 || c.Gerrit.Port > 65535 {
		return ErrInvalidGerritPort
	}
	if c.Gerrit.QueryTimeout <= 0 {
		return ErrInvalidQueryTimeout
	}
	if c.Activity.Days <= 0 {
		return ErrInvalidActivityDays
	}
	if c.Cache.Path == "" {
		return ErrNoCachePath
	}
	if c.Cache.TTL < 0 {
		return ErrInvalidCacheTTL
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}
