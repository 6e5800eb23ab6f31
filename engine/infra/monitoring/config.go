package monitoring

import (
	"fmt"
	"strings"
)

// Config holds configuration for the monitoring service.
type Config struct {
	Enabled bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `koanf:"path"    json:"path"    yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Path:    "/metrics",
	}
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("monitoring path cannot be empty")
	}
	if c.Path[0] != '/' {
		return fmt.Errorf("monitoring path must start with '/': got %s", c.Path)
	}
	if strings.HasPrefix(c.Path, "/api/") {
		return fmt.Errorf("monitoring path cannot be under /api/")
	}
	if strings.ContainsRune(c.Path, '?') {
		return fmt.Errorf("monitoring path cannot contain query parameters")
	}
	return nil
}
