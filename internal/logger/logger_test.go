package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message", "key", "value")
	Error("Test error message")

	if _, err := os.Stat(filepath.Join(logDir, "bloomlet.log")); err != nil {
		t.Errorf("expected log file after a warning: %v", err)
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	Debug("Test debug message in debug mode")
}

func TestWithComponent(t *testing.T) {
	Logger = nil
	if With("companion") == nil {
		t.Fatal("With() returned nil without an initialized logger")
	}

	if err := Init(Config{ConfigDir: t.TempDir(), Console: true}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	child := With("companion")
	if child.GetPrefix() != "bloomlet/companion" {
		t.Errorf("unexpected prefix %q", child.GetPrefix())
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestConfigLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want log.Level
	}{
		{"default", Config{}, log.WarnLevel},
		{"console", Config{Console: true}, log.InfoLevel},
		{"debug wins", Config{Debug: true, Console: true}, log.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.level(); got != tt.want {
				t.Errorf("level() = %v, want %v", got, tt.want)
			}
		})
	}
}
