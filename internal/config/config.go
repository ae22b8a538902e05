package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/fourthdown/gridsim/internal/logger"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Addr   string        `json:"addr" validate:"required"`
	DBPath string        `json:"dbPath" validate:"required"`
	Logger logger.Config `json:"logger"`
}

// Load reads configuration from GRIDSIM_* environment variables, applies
// defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:   getEnv("GRIDSIM_ADDR", ":8080"),
		DBPath: getEnv("GRIDSIM_DB_PATH", "gridsim.db"),
		Logger: logger.Config{
			Level:   getEnv("GRIDSIM_LOG_LEVEL", ""),
			Env:     getEnv("GRIDSIM_ENV", ""),
			Service: "gridsim",
			Version: getEnv("GRIDSIM_VERSION", ""),
		},
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
