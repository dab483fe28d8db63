package auth

import (
	"fmt"

	"github.com/kbukum/asr-server/auth/jwt"
)

// Config configures bearer authentication for the HTTP API.
//
//	auth:
//	  enabled: true
//	  token: "${ASR_TOKEN}"
//	  jwt:
//	    secret: "signing-secret"
//	    issuer: "asr-clients"
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Token is a static shared secret compared in constant time.
	Token string `yaml:"token" mapstructure:"token"`
	// SkipPaths lists route paths that never require a token. Defaults to
	// DefaultSkipPaths.
	SkipPaths []string    `yaml:"skip_paths" mapstructure:"skip_paths"`
	JWT       *jwt.Config `yaml:"jwt" mapstructure:"jwt"`
}

// DefaultSkipPaths are the probe and scrape routes left open so
// orchestrators and collectors need no credentials.
var DefaultSkipPaths = []string{"/health", "/liveness", "/readiness", "/metrics"}

// ApplyDefaults sets defaults for skip paths and nested configs.
func (c *Config) ApplyDefaults() {
	if c.SkipPaths == nil {
		c.SkipPaths = append([]string(nil), DefaultSkipPaths...)
	}
	if c.JWT != nil {
		c.JWT.ApplyDefaults()
	}
}

// Validate checks that an enabled config has at least one scheme.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	hasJWT := c.JWT != nil && c.JWT.Secret != ""
	if c.Token == "" && !hasJWT {
		return fmt.Errorf("auth: enabled but neither token nor jwt.secret is set")
	}
	if hasJWT {
		if err := c.JWT.Validate(); err != nil {
			return fmt.Errorf("auth.jwt: %w", err)
		}
	}
	return nil
}

// NewTokenValidator builds the validator described by cfg. It returns nil
// when authentication is disabled.
func NewTokenValidator(cfg *Config) (TokenValidator, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	var validators []TokenValidator
	if cfg.Token != "" {
		validators = append(validators, StaticToken(cfg.Token))
	}
	if cfg.JWT != nil && cfg.JWT.Secret != "" {
		svc, err := jwt.NewService(cfg.JWT, jwt.NewClaims)
		if err != nil {
			return nil, err
		}
		validators = append(validators, NewValidator(svc.ValidatorFunc()))
	}
	if len(validators) == 0 {
		return nil, fmt.Errorf("auth: no token scheme configured")
	}
	if len(validators) == 1 {
		return validators[0], nil
	}
	return AnyOf(validators...), nil
}
