package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: Config{}},
		{name: "debug level", config: Config{Level: "debug"}},
		{name: "json format", config: Config{Format: "json"}},
		{name: "stdout output", config: Config{Output: "stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if log := New(tt.config); log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	log := New(Config{Level: "debug", Output: logFile, Format: "json"})
	log.Info("query finished", "changes", 3)

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "query finished" {
		t.Errorf("msg = %v, want %q", entry["msg"], "query finished")
	}
	if entry["changes"] != float64(3) {
		t.Errorf("changes = %v, want 3", entry["changes"])
	}
}

func TestLevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	log := New(Config{Level: "warn", Output: logFile, Format: "text"})
	log.Debug("dropped")
	log.Info("dropped too")
	log.Warn("kept")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Errorf("output contains filtered messages: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("output missing warn message: %q", out)
	}
}

func TestWith(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	log := New(Config{Output: logFile, Format: "text"})
	log.With("report", "activity").Info("rendered")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "report=activity") {
		t.Errorf("output missing context field: %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNoop(t *testing.T) {
	log := Noop()
	log.Info("discarded")
	log.Error("discarded")
}
