// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

// Package config loads and validates process configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables, in increasing order of precedence. Everything is read once at
// startup; there is no hot reload.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the server process.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Media    MediaConfig    `koanf:"media"`
	Admin    AdminConfig    `koanf:"admin"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
	// Environment is "development" or "production". Error responses include
	// stack traces only outside production.
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory store.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads caps DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// AuthConfig holds token and request-throttling settings.
type AuthConfig struct {
	AccessTokenSecret  string        `koanf:"access_token_secret"`
	AccessTokenTTL     time.Duration `koanf:"access_token_ttl"`
	RefreshTokenSecret string        `koanf:"refresh_token_secret"`
	RefreshTokenTTL    time.Duration `koanf:"refresh_token_ttl"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// MediaConfig holds the external media-host settings.
type MediaConfig struct {
	// BaseURL is the media host API endpoint, e.g. https://media.example.com.
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// AdminConfig holds the admin surface settings.
type AdminConfig struct {
	// Emails is the allow-list of admin addresses. An empty list disables
	// the admin surface entirely.
	Emails        []string      `koanf:"emails"`
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	// SessionPath is the badger directory for admin sessions. Empty uses an
	// in-memory store.
	SessionPath string `koanf:"session_path"`
}

// APIConfig holds pagination limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// AdminEnabled reports whether the admin surface is configured.
func (c *Config) AdminEnabled() bool {
	return len(c.Admin.Emails) > 0
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateAdmin(); err != nil {
		return err
	}
	return c.validateAPI()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.Server.Environment) {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateAuth() error {
	if c.Auth.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if c.Auth.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if c.IsProduction() {
		if len(c.Auth.AccessTokenSecret) < 32 {
			return fmt.Errorf("ACCESS_TOKEN_SECRET must be at least 32 characters in production")
		}
		if len(c.Auth.RefreshTokenSecret) < 32 {
			return fmt.Errorf("REFRESH_TOKEN_SECRET must be at least 32 characters in production")
		}
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.Auth.AccessTokenTTL >= c.Auth.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRY must be shorter than REFRESH_TOKEN_EXPIRY")
	}
	if !c.Auth.RateLimitDisabled {
		if c.Auth.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Auth.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.BaseURL == "" {
		// Uploads are rejected at the handler when no media host is set.
		return nil
	}
	u, err := url.Parse(c.Media.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("MEDIA_HOST_URL is not a valid http(s) URL: %q", c.Media.BaseURL)
	}
	if c.Media.Timeout <= 0 {
		return fmt.Errorf("MEDIA_HOST_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateAdmin() error {
	if !c.AdminEnabled() {
		return nil
	}
	for _, e := range c.Admin.Emails {
		if !strings.Contains(e, "@") {
			return fmt.Errorf("ADMIN_EMAILS entry %q is not an email address", e)
		}
	}
	if c.Admin.SessionSecret == "" {
		return fmt.Errorf("ADMIN_COOKIE_SECRET is required when ADMIN_EMAILS is set")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("ADMIN_SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	return nil
}
