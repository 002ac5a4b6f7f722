package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the commented YAML scaffold written by InitConfig and
// InitConfigToPath. It documents every section with its default value so a
// fresh install is editable without consulting the reference docs.
const configTemplate = `# Suitkaise Configuration File
#
# This file configures the ambient concerns around a serialize/deserialize
# run: logging, tracing, metrics, the optional serve HTTP surface, blob
# offload storage, payload compression, and Reconnector defaults.
#
# Environment variables override these values using the SUITKAISE_ prefix,
# e.g. SUITKAISE_LOGGING_LEVEL=DEBUG.

logging:
  level: "INFO"       # DEBUG, INFO, WARN, ERROR
  format: "text"       # text, json
  output: "stdout"     # stdout, stderr, or a file path

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"

metrics:
  enabled: false
  port: 9090

server:
  enabled: false
  port: 8080
  shutdown_timeout: "30s"

blob:
  path: "%s"
  offload_threshold: "64Ki"

compression:
  enabled: false
  algorithm: "zstd"
  min_size: "4Ki"

reconnect:
  timeout: "30s"
  max_concurrency: 16
`

// InitConfig creates a sample configuration file at the default location
// ($XDG_CONFIG_HOME/suitkaise/config.yaml, or ~/.config/suitkaise/config.yaml
// when XDG_CONFIG_HOME is unset).
// It returns the path written to, or an error if the file already exists
// and force is false.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a sample configuration file at the given path.
// If the file already exists and force is false, it returns an error.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	blobPath := filepath.Join(filepath.Dir(GetDefaultConfigPath()), "blobs")
	content := fmt.Sprintf(configTemplate, blobPath)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
