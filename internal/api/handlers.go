// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/media"
	"github.com/clipstream/clipstream/internal/models"
)

// maxUploadBytes caps multipart parsing; the media host enforces its own
// per-asset limits on top.
const maxUploadBytes = 2 << 30

// Handlers carries the dependencies every route group shares. Everything is
// constructed in main and injected; no package-level state.
type Handlers struct {
	db        *database.DB
	tokens    *auth.TokenManager
	uploader  media.Uploader
	cfg       *config.Config
	startTime time.Time
}

// NewHandlers wires the handler set.
func NewHandlers(db *database.DB, tokens *auth.TokenManager, uploader media.Uploader, cfg *config.Config) *Handlers {
	return &Handlers{
		db:        db,
		tokens:    tokens,
		uploader:  uploader,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// currentUser returns the authenticated caller. Routes behind Authenticate
// always have one; Optional routes may return nil.
func currentUser(r *http.Request) *models.User {
	return auth.UserFromContext(r.Context())
}

// viewerID is the caller's id, or empty for anonymous requests.
func viewerID(r *http.Request) string {
	if user := currentUser(r); user != nil {
		return user.ID
	}
	return ""
}

// pageParams reads page/limit query params clamped to the configured bounds.
func (h *Handlers) pageParams(r *http.Request) (page, limit int) {
	page = queryInt(r, "page", 1)
	limit = queryInt(r, "limit", h.cfg.API.DefaultPageSize)
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	return page, limit
}

// deleteAsset removes a media-host asset by URL, best-effort. Failures are
// logged and swallowed so a down media host never blocks a store mutation
// that already happened.
func (h *Handlers) deleteAsset(ctx context.Context, assetURL string) {
	if assetURL == "" {
		return
	}
	publicID := media.PublicIDFromURL(assetURL)
	if publicID == "" {
		return
	}
	if err := h.uploader.Delete(ctx, publicID); err != nil {
		logging.Warn().Err(err).Str("public_id", publicID).Msg("Failed to delete media asset")
	}
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("Close failed")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
