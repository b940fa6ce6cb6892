// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipstream/clipstream/internal/models"
)

// ToggleSubscription subscribes or unsubscribes the caller to a channel.
func (h *Handlers) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	subscribed, err := h.db.ToggleSubscription(r.Context(), currentUser(r).ID, chi.URLParam(r, "channelId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respondJSON(w, http.StatusOK, message, models.ToggleResult{Toggled: true, Active: subscribed})
}

// ListSubscribers returns who subscribes to a channel.
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.db.ListSubscribers(r.Context(), chi.URLParam(r, "channelId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "subscribers fetched", subscribers)
}

// ListSubscribedChannels returns the channels a user subscribes to.
func (h *Handlers) ListSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.db.ListSubscribedChannels(r.Context(), chi.URLParam(r, "subscriberId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "subscribed channels fetched", channels)
}
