// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config carries everything the binaries read from the environment. All
// fields have defaults, so an empty environment yields a working service.
type Config struct {
	// LogLevel selects the diagnostic verbosity: debug, info, warn, error.
	LogLevel string `env:"SEGMENTD_LOG_LEVEL,default=info"`

	// Backend names the segmentation backend to construct at startup.
	Backend string `env:"SEGMENTD_BACKEND,default=color"`

	// MaxLineBytes caps the size of a single request line.
	MaxLineBytes int `env:"SEGMENTD_MAX_LINE_BYTES,default=1048576"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return &cfg, nil
}
