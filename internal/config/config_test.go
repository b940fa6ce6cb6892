// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate, for tests to mutate.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Auth.AccessTokenSecret = "test-access-secret"
	cfg.Auth.RefreshTokenSecret = "test-refresh-secret"
	return cfg
}

func TestValidateDefaultsWithSecrets(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing access secret",
			mutate:  func(c *Config) { c.Auth.AccessTokenSecret = "" },
			wantErr: "ACCESS_TOKEN_SECRET",
		},
		{
			name:    "missing refresh secret",
			mutate:  func(c *Config) { c.Auth.RefreshTokenSecret = "" },
			wantErr: "REFRESH_TOKEN_SECRET",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "ENVIRONMENT",
		},
		{
			name: "short secret in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "access ttl not shorter than refresh",
			mutate: func(c *Config) {
				c.Auth.AccessTokenTTL = 48 * time.Hour
				c.Auth.RefreshTokenTTL = 24 * time.Hour
			},
			wantErr: "ACCESS_TOKEN_EXPIRY",
		},
		{
			name:    "bad media url",
			mutate:  func(c *Config) { c.Media.BaseURL = "not-a-url" },
			wantErr: "MEDIA_HOST_URL",
		},
		{
			name: "admin emails without session secret",
			mutate: func(c *Config) {
				c.Admin.Emails = []string{"root@example.com"}
				c.Admin.SessionSecret = ""
			},
			wantErr: "ADMIN_COOKIE_SECRET",
		},
		{
			name: "admin entry not an email",
			mutate: func(c *Config) {
				c.Admin.Emails = []string{"not-an-email"}
				c.Admin.SessionSecret = "secret"
			},
			wantErr: "ADMIN_EMAILS",
		},
		{
			name:    "max page size below default",
			mutate:  func(c *Config) { c.API.MaxPageSize = 1 },
			wantErr: "API_MAX_PAGE_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"ACCESS_TOKEN_SECRET", "auth.access_token_secret"},
		{"REFRESH_TOKEN_EXPIRY", "auth.refresh_token_ttl"},
		{"MEDIA_HOST_URL", "media.base_url"},
		{"ADMIN_EMAILS", "admin.emails"},
		{"CORS_ORIGIN", "auth.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"RANDOM_VARIABLE", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadLayersEnvOverDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "env-access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "env-refresh-secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGIN", "https://a.example.com, https://b.example.com")
	t.Setenv("ADMIN_EMAILS", "root@example.com")
	t.Setenv("ADMIN_COOKIE_SECRET", "admin-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected env port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenSecret != "env-access-secret" {
		t.Errorf("access secret not taken from env")
	}
	if len(cfg.Auth.CORSOrigins) != 2 || cfg.Auth.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("comma-separated CORS origins not split: %v", cfg.Auth.CORSOrigins)
	}
	if !cfg.AdminEnabled() {
		t.Error("admin surface should be enabled when ADMIN_EMAILS is set")
	}
	// Untouched settings keep their defaults.
	if cfg.API.DefaultPageSize != 10 {
		t.Errorf("default page size changed unexpectedly: %d", cfg.API.DefaultPageSize)
	}
}
