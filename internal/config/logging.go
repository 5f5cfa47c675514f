package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("unknown level %q", c.Level)
	}
	return nil
}

// MetricsConfig controls the Prometheus textfile the CLI writes after each command.
type MetricsConfig struct {
	// Textfile is left empty to skip the dump.
	Textfile string `json:"textfile"`
}
