// Package config provides JWT configuration functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	RememberMeHours int // longer expiry for "remember me" logins
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24) and
// JWT_REMEMBER_ME_HOURS (default: 720).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours, err := envHours("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, err
	}

	rememberMeHours, err := envHours("JWT_REMEMBER_ME_HOURS", 720)
	if err != nil {
		return nil, err
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
		RememberMeHours: rememberMeHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

func envHours(key string, defaultValue int) (int, error) {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue, nil
	}
	hours, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return hours, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.RememberMeHours < c.ExpirationHours {
		return fmt.Errorf("JWT_REMEMBER_ME_HOURS must not be shorter than JWT_EXPIRATION_HOURS, got: %d", c.RememberMeHours)
	}
	return nil
}
