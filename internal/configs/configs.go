/*
Package configs loads and parses the application's configuration settings.

All configuration comes from environment variables: the running environment,
the listen port, and the CORS allowed origins.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig contains every configuration parameter the server needs.
type AppConfig struct {
	// Environment selects logging format and origin policy ("development"
	// relaxes both).
	Environment string

	// Port is the HTTP listen port.
	Port int

	// AllowedOrigins lists the origins accepted for CORS and WebSocket
	// upgrades outside development.
	AllowedOrigins []string
}

// LoadConfig reads the configuration from environment variables, applying
// development defaults and validating values.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Environment:    envOr("ENVIRONMENT", "development"),
		AllowedOrigins: []string{},
	}

	port, err := strconv.Atoi(envOr("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the allowed range (1024-65535)", port)
	}
	cfg.Port = port

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
