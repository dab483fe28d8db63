package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProviderLocal selects the local filesystem backend.
const ProviderLocal = "local"

// Config holds scratch storage configuration.
type Config struct {
	Provider string `yaml:"provider" mapstructure:"provider" validate:"required"`

	// BasePath is the scratch directory. Defaults to <tmp>/asr-server.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// SweepOnStart removes files older than SweepAge left behind by a
	// previous process.
	SweepOnStart bool          `yaml:"sweep_on_start" mapstructure:"sweep_on_start"`
	SweepAge     time.Duration `yaml:"sweep_age" mapstructure:"sweep_age"`
}

// DefaultBasePath returns the scratch directory used when none is configured.
func DefaultBasePath() string {
	return filepath.Join(os.TempDir(), "asr-server")
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath()
	}
	if c.SweepAge == 0 {
		c.SweepAge = time.Hour
	}
}

// Validate checks the configuration for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return fmt.Errorf("storage: base_path is required for local provider")
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	if c.SweepAge < 0 {
		return fmt.Errorf("storage: sweep_age must not be negative")
	}
	return nil
}
