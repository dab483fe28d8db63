package server

import (
	"fmt"

	"github.com/kbukum/asr-server/server/middleware"
	"github.com/kbukum/asr-server/util"
	"github.com/kbukum/asr-server/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	// Timeouts in seconds. Uploads and inference can be slow, so the write
	// timeout must cover the longest expected transcription.
	ReadTimeout     int `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    int `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout     int `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout int `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gte=0"`
	// MaxBodySize caps request bodies, e.g. "25MB". Empty means unlimited.
	MaxBodySize string                     `yaml:"max_body_size" mapstructure:"max_body_size" validate:"omitempty,bytesize"`
	CORS        middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit   middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty trusts none, so the client IP
	// used for rate limiting is always the peer address.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies" validate:"dive,ip|cidr"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 120
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 660
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 15
	}
	c.CORS.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// MaxBodyBytes returns the parsed body cap, or 0 when unlimited.
func (c *Config) MaxBodyBytes() int64 {
	if c.MaxBodySize == "" {
		return 0
	}
	n, err := util.ParseSize(c.MaxBodySize)
	if err != nil {
		return 0
	}
	return n
}

// Addr is the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
