package transcription

import (
	"fmt"
	"slices"
	"time"
)

// Config selects and tunes the speech-recognition engine.
type Config struct {
	// Provider is the primary engine: "whisper" or "whispercpp".
	Provider string `yaml:"provider" mapstructure:"provider" validate:"required"`
	// Fallbacks are tried in order when the primary is unavailable.
	Fallbacks []string `yaml:"fallbacks" mapstructure:"fallbacks"`
	// Language is the default language hint. Empty means auto-detect.
	Language string `yaml:"language" mapstructure:"language"`
	// Timeout bounds one engine call. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MaxConcurrent caps simultaneous engine calls. Zero means unbounded.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`
	// MaxWait is how long a call may queue when MaxConcurrent is reached.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	// Engines holds each engine's own settings keyed by engine name.
	Engines map[string]map[string]any `yaml:"engines" mapstructure:"engines"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "whisper"
	}
	if c.Engines == nil {
		c.Engines = make(map[string]map[string]any)
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("transcription.provider is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("transcription.timeout must not be negative")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("transcription.max_concurrent must not be negative")
	}
	if slices.Contains(c.Fallbacks, c.Provider) {
		return fmt.Errorf("transcription.fallbacks must not contain the primary provider %q", c.Provider)
	}
	return nil
}

// Providers returns the primary followed by the fallbacks.
func (c *Config) Providers() []string {
	return append([]string{c.Provider}, c.Fallbacks...)
}

// EngineConfig returns the settings section for name, never nil.
func (c *Config) EngineConfig(name string) map[string]any {
	if section, ok := c.Engines[name]; ok && section != nil {
		return section
	}
	return map[string]any{}
}
