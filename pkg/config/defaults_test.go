package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestApplyDefaults_Blob(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Blob.Path == "" {
		t.Error("Expected default blob path to be set")
	}
	if cfg.Blob.OffloadThreshold == 0 {
		t.Error("Expected default blob offload threshold to be set")
	}
}

func TestApplyDefaults_Compression(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Compression.Algorithm != "zstd" {
		t.Errorf("Expected default compression algorithm 'zstd', got %q", cfg.Compression.Algorithm)
	}
	if cfg.Compression.MinSize == 0 {
		t.Error("Expected default compression min size to be set")
	}
}

func TestApplyDefaults_Reconnect(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Reconnect.Timeout != 30*time.Second {
		t.Errorf("Expected default reconnect timeout 30s, got %v", cfg.Reconnect.Timeout)
	}
	if cfg.Reconnect.MaxConcurrency != 16 {
		t.Errorf("Expected default reconnect max_concurrency 16, got %d", cfg.Reconnect.MaxConcurrency)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/suitkaise.log",
		},
		Server: ServerConfig{
			ShutdownTimeout: 60 * time.Second,
		},
		Reconnect: ReconnectConfig{
			MaxConcurrency: 4,
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/suitkaise.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.Server.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Reconnect.MaxConcurrency != 4 {
		t.Errorf("Expected explicit max_concurrency to be preserved, got %d", cfg.Reconnect.MaxConcurrency)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Blob.Path == "" {
		t.Error("Default config missing blob path")
	}
	if cfg.Compression.Algorithm == "" {
		t.Error("Default config missing compression algorithm")
	}
}
