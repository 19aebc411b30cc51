package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for a config file in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/gerrit-stats/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{configPath: configPath}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	configPath := l.configPath
	if configPath == "" {
		configPath = l.findConfigFile()
	}

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicitly named file must load; a discovered one may
			// be absent.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = mergeConfigs(cfg, fileCfg)
		}
	}

	cfg = applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// findConfigFile searches standard locations for a config file.
func (l *loader) findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		defaultConfigPath(),
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into the defaults. File
// values override defaults only when they are non-zero.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Gerrit.Host != "" {
		result.Gerrit.Host = override.Gerrit.Host
	}
	if override.Gerrit.Port > 0 {
		result.Gerrit.Port = override.Gerrit.Port
	}
	if override.Gerrit.QueryTimeout > 0 {
		result.Gerrit.QueryTimeout = override.Gerrit.QueryTimeout
	}
	if len(override.Gerrit.TechnicalAccounts) > 0 {
		result.Gerrit.TechnicalAccounts = override.Gerrit.TechnicalAccounts
	}

	if override.Activity.Days > 0 {
		result.Activity.Days = override.Activity.Days
	}

	if override.Cache.Path != "" {
		result.Cache.Path = override.Cache.Path
	}
	if override.Cache.TTL > 0 {
		result.Cache.TTL = override.Cache.TTL
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}

	return &result
}

// applyEnvVars applies environment variable overrides.
//
// Supported environment variables:
//   - GERRIT_STATS_HOST: Gerrit SSH host
//   - GERRIT_STATS_PORT: Gerrit SSH port
//   - GERRIT_STATS_DAYS: Activity window in days
//   - GERRIT_STATS_CACHE: Path to the cache file
//   - GERRIT_STATS_LOG_LEVEL: Log level
func applyEnvVars(cfg *Config) *Config {
	result := *cfg

	if host := os.Getenv("GERRIT_STATS_HOST"); host != "" {
		result.Gerrit.Host = host
	}
	if port := os.Getenv("GERRIT_STATS_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			result.Gerrit.Port = n
		}
	}
	if days := os.Getenv("GERRIT_STATS_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			result.Activity.Days = n
		}
	}
	if cachePath := os.Getenv("GERRIT_STATS_CACHE"); cachePath != "" {
		result.Cache.Path = cachePath
	}
	if logLevel := os.Getenv("GERRIT_STATS_LOG_LEVEL"); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	return &result
}

// Load creates a loader with default search paths and loads the
// configuration.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFrom loads configuration using the given file path; an empty
// path falls back to the default search.
func LoadFrom(path string) (*Config, error) {
	return NewLoader(path).Load()
}
