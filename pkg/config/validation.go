package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a loaded Config against its struct tags and a handful of
// cross-field rules the tag syntax can't express (telemetry needs an
// endpoint once enabled).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("config validation: telemetry.endpoint is required when telemetry.enabled is true")
	}

	if cfg.Server.Enabled && cfg.Server.Port == 0 {
		return fmt.Errorf("config validation: server.port is required when server.enabled is true")
	}

	return nil
}
