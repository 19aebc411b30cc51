package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gerrit: GerritConfig{
			Port:              29418,
			QueryTimeout:      2 * time.Minute,
			TechnicalAccounts: []string{"jenkins"},
		},
		Activity: ActivityConfig{
			Days: 30,
		},
		Cache: CacheConfig{
			Path: defaultCachePath(),
			TTL:  time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// defaultCachePath returns ~/.config/gerrit-stats/queries.db, falling
// back to the working directory when the home directory is unknown.
func defaultCachePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./queries.db"
	}
	return filepath.Join(homeDir, ".config", "gerrit-stats", "queries.db")
}

// defaultConfigPath returns ~/.config/gerrit-stats/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "gerrit-stats", "config.yaml")
}
