package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Config controls logger construction. Defaults suit production: JSON to
// stdout at info level.
type Config struct {
	Level   string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Env     string `json:"env" validate:"omitempty,oneof=dev prod"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// New builds the service logger. In dev the console writer is used; in prod
// JSON goes to stdout.
func New(cfg Config) (zerolog.Logger, error) {
	cfg.setDefaults()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	var logger zerolog.Logger
	if cfg.Env == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stderr}
		logger = zerolog.New(writer)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	logger = logger.Level(level).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Str("version", cfg.Version).
		Logger()

	return logger, nil
}

func (c *Config) setDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}
	if c.Level == "" {
		if c.Env == "dev" {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}
	if c.Service == "" {
		c.Service = "gridsim"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
}
