// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"
	"time"

	"github.com/clipstream/clipstream/internal/models"
)

// ChannelStats aggregates the caller's channel numbers for the dashboard.
func (h *Handlers) ChannelStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetChannelStats(r.Context(), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "channel stats fetched", stats)
}

// ChannelVideos lists every video the caller owns, drafts included.
func (h *Handlers) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.db.ListChannelVideos(r.Context(), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "channel videos fetched", videos)
}

// Healthcheck reports liveness and uptime. Public and unthrottled.
func (h *Handlers) Healthcheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "ok", models.Health{
		Status:          "ok",
		ServerTime:      time.Now().UTC(),
		UptimeInSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}
