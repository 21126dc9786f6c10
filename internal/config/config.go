// Package config provides environment-driven configuration for the CareerDesk API.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds server-level configuration loaded from the environment.
type Config struct {
	Port          int
	DatabaseURL   string
	RedisURL      string // optional; counters fall back to direct DB writes
	PublicBaseURL string // used to build logo URLs, e.g. https://api.careerdesk.io

	// Built-in administrator credential. The hash replaces the hard-coded
	// plaintext literal the legacy dashboard shipped with.
	AdminEmail        string
	AdminName         string
	AdminPasswordHash string
}

// Load reads server configuration from environment variables.
// DATABASE_URL, ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required.
func Load() (*Config, error) {
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		port = p
	}

	cfg := &Config{
		Port:              port,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminName:         os.Getenv("ADMIN_NAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.AdminName == "" {
		cfg.AdminName = "Administrator"
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize validates the configuration.
func (c *Config) normalize() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required but not set")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required but not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	return nil
}
