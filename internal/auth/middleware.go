// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/metrics"
	"github.com/clipstream/clipstream/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// AccessTokenCookie is the cookie the login handlers set alongside the
// response body; the middleware accepts either the cookie or a Bearer header.
const AccessTokenCookie = "accessToken"

// RefreshTokenCookie holds the long-lived token for the refresh endpoint.
const RefreshTokenCookie = "refreshToken"

// ErrMissingToken marks a request that carried no credential at all.
var ErrMissingToken = errors.New("missing access token")

// UnauthorizedFunc writes a 401 response. The API layer supplies one so the
// middleware stays independent of the response envelope.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware gates requests on a valid access token and resolves the caller
// to a live user row.
type Middleware struct {
	tokens       *TokenManager
	db           *database.DB
	unauthorized UnauthorizedFunc
}

// NewMiddleware builds the auth gate. unauthorized must not be nil.
func NewMiddleware(tokens *TokenManager, db *database.DB, unauthorized UnauthorizedFunc) *Middleware {
	return &Middleware{tokens: tokens, db: db, unauthorized: unauthorized}
}

// Authenticate rejects requests without a valid access token. On success the
// resolved user is stored in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolveUser(r)
		if err != nil {
			m.unauthorized(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// Optional resolves the caller when a valid token is present but lets
// anonymous requests through. Public read endpoints use it to personalize
// subscription flags.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := m.resolveUser(r); err == nil {
			r = r.WithContext(ContextWithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) resolveUser(r *http.Request) (*models.User, error) {
	token, err := extractToken(r)
	if err != nil {
		return nil, err
	}

	claims, err := m.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	// The token may outlive the account; always resolve against the store.
	user, err := m.db.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

// extractToken pulls the access token from the Authorization header, falling
// back to the cookie for browser clients.
func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", ErrTokenInvalid
		}
		return parts[1], nil
	}

	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingToken
	}
	return cookie.Value, nil
}

// ContextWithUser stashes the authenticated user on ctx.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests on Optional routes.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// RateLimiter implements per-IP limiting with idle-entry cleanup.
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows reqsPerWindow requests per window per IP and starts
// the background cleanup.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window / time.Duration(max(reqsPerWindow, 1))),
		burst:     reqsPerWindow,
		stopClean: make(chan struct{}),
	}
	go rl.startCleanup(5 * time.Minute)
	return rl
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{
			limiter:    rate.NewLimiter(rl.rate, rl.burst),
			lastAccess: time.Now(),
		}
		rl.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup drops limiters idle for over an hour.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Stop halts the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopClean)
}

// Limit is middleware enforcing the per-IP budget.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			metrics.APIRateLimitHits.WithLabelValues(limitEndpoint(r.URL.Path)).Inc()
			logging.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("Rate limit exceeded")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitEndpoint truncates the path to three segments so the rate-limit
// counter's label set stays bounded.
func limitEndpoint(path string) string {
	segments := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 4)
	if len(segments) == 4 {
		return "/" + strings.Join(segments[:3], "/")
	}
	return path
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware runs
// earlier and rewrites RemoteAddr from trusted forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
