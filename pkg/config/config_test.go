package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Gerrit.Port != 29418 {
		t.Errorf("Gerrit.Port = %d, want 29418", cfg.Gerrit.Port)
	}
	if cfg.Activity.Days <= 0 {
		t.Error("Activity.Days not set")
	}
	if cfg.Cache.Path == "" {
		t.Error("Cache.Path not set")
	}
	if cfg.Logging.Level == "" {
		t.Error("Logging.Level not set")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid default config",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Gerrit.Port = 0 },
			wantErr: ErrInvalidGerritPort,
		},
		{
			name:    "non-positive days",
			mutate:  func(c *Config) { c.Activity.Days = 0 },
			wantErr: ErrInvalidActivityDays,
		},
		{
			name:    "missing cache path",
			mutate:  func(c *Config) { c.Cache.Path = "" },
			wantErr: ErrNoCachePath,
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Cache.TTL = -time.Second },
			wantErr: ErrInvalidCacheTTL,
		},
		{
			name:    "bogus log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bogus log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `gerrit:
  host: review.example.org
  port: 2222
activity:
  days: 7
cache:
  path: /tmp/queries.db
  ttl: 10m
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Gerrit.Host != "review.example.org" {
		t.Errorf("Gerrit.Host = %q", cfg.Gerrit.Host)
	}
	if cfg.Gerrit.Port != 2222 {
		t.Errorf("Gerrit.Port = %d, want 2222", cfg.Gerrit.Port)
	}
	if cfg.Activity.Days != 7 {
		t.Errorf("Activity.Days = %d, want 7", cfg.Activity.Days)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m", cfg.Cache.TTL)
	}
	// Unset values keep their defaults.
	if cfg.Gerrit.QueryTimeout != 2*time.Minute {
		t.Errorf("Gerrit.QueryTimeout = %v, want default", cfg.Gerrit.QueryTimeout)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want default", cfg.Logging.Format)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadFrom() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gerrit: ["), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Fatalf("LoadFrom() error = %v, want ErrInvalidYAML", err)
	}
}

func TestApplyEnvVars(t *testing.T) {
	t.Setenv("GERRIT_STATS_HOST", "review.example.org")
	t.Setenv("GERRIT_STATS_PORT", "2929")
	t.Setenv("GERRIT_STATS_DAYS", "14")
	t.Setenv("GERRIT_STATS_LOG_LEVEL", "DEBUG")

	cfg := applyEnvVars(Default())

	if cfg.Gerrit.Host != "review.example.org" {
		t.Errorf("Gerrit.Host = %q", cfg.Gerrit.Host)
	}
	if cfg.Gerrit.Port != 2929 {
		t.Errorf("Gerrit.Port = %d, want 2929", cfg.Gerrit.Port)
	}
	if cfg.Activity.Days != 14 {
		t.Errorf("Activity.Days = %d, want 14", cfg.Activity.Days)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestJSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	out := string(data)
	for _, key := range []string{
		`"gerrit"`, `"activity"`, `"cache"`, `"logging"`,
		`"query_timeout"`, `"technical_accounts"`, `"ttl"`,
	} {
		if !strings.Contains(out, key) {
			t.Errorf("JSON output missing key %s:\n%s", key, out)
		}
	}
	if strings.Contains(out, `"Gerrit"`) || strings.Contains(out, `"QueryTimeout"`) {
		t.Errorf("JSON output uses Go field names:\n%s", out)
	}
}
