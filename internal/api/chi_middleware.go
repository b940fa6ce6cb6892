// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/models"
)

// RateLimitConfig defines rate limit parameters for a route group.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Per-group rate limit tiers. Auth endpoints are throttled hard against
// credential stuffing; reads stay permissive so feeds scroll smoothly.
var (
	// RateLimitAuth covers register/refresh/logout.
	RateLimitAuth = RateLimitConfig{Requests: 5, Window: time.Minute}
	// RateLimitLogin is the strictest tier: 5 attempts per 5 minutes.
	RateLimitLogin = RateLimitConfig{Requests: 5, Window: 5 * time.Minute}
	// RateLimitWrite covers uploads and mutations.
	RateLimitWrite = RateLimitConfig{Requests: 30, Window: time.Minute}
	// RateLimitRead covers feed and detail reads.
	RateLimitRead = RateLimitConfig{Requests: 300, Window: time.Minute}
	// RateLimitHealth stays permissive for monitoring probes.
	RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// ChiMiddleware builds the CORS and throttling middleware for the router.
type ChiMiddleware struct {
	cors     func(http.Handler) http.Handler
	global   *auth.RateLimiter
	disabled bool
}

// NewChiMiddleware derives the middleware set from auth config. Credentials
// are allowed because browser clients carry the token cookies.
func NewChiMiddleware(cfg *config.AuthConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	m := &ChiMiddleware{
		cors:     corsHandler,
		disabled: cfg.RateLimitDisabled,
	}
	if !cfg.RateLimitDisabled && cfg.RateLimitReqs > 0 {
		m.global = auth.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitWindow)
	}
	return m
}

// CORS returns the preflight-handling CORS middleware. Must be global so
// OPTIONS requests never hit auth or throttling first.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// GlobalLimit is the per-IP ceiling across the whole surface, sitting above
// the per-group tiers. Pass-through when unconfigured or disabled.
func (m *ChiMiddleware) GlobalLimit() func(http.Handler) http.Handler {
	if m.global == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return m.global.Limit
}

// Stop halts the global limiter's idle-entry cleanup goroutine.
func (m *ChiMiddleware) Stop() {
	if m.global != nil {
		m.global.Stop()
	}
}

// Throttle returns an IP-keyed httprate limiter for the given tier, or a
// pass-through when rate limiting is disabled.
func (m *ChiMiddleware) Throttle(tier RateLimitConfig) func(http.Handler) http.Handler {
	if m.disabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		tier.Requests,
		tier.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	)
}

// rateLimited writes the 429 in the standard error envelope instead of
// httprate's plain-text default.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(models.APIErrorResponse{
		Success:    false,
		Message:    "too many requests",
		Errors:     []models.FieldError{},
		StatusCode: http.StatusTooManyRequests,
	})
}
