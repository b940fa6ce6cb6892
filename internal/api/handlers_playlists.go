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

// CreatePlaylist makes an empty playlist owned by the caller.
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	playlist := &models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     currentUser(r).ID,
	}
	if err := h.db.CreatePlaylist(r.Context(), playlist); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "playlist created", playlist)
}

// GetPlaylist returns a playlist with its videos in position order.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	detail, err := h.db.GetPlaylistDetail(r.Context(), chi.URLParam(r, "playlistId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "playlist fetched", detail)
}

// ListUserPlaylists returns a user's playlists with video counts.
func (h *Handlers) ListUserPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.db.ListUserPlaylists(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "playlists fetched", playlists)
}

// UpdatePlaylist edits name/description; only the owner's rows match.
func (h *Handlers) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	playlist, err := h.db.UpdatePlaylist(r.Context(), chi.URLParam(r, "playlistId"), currentUser(r).ID, req.Name, req.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "playlist updated", playlist)
}

// DeletePlaylist removes a playlist and its memberships.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeletePlaylist(r.Context(), chi.URLParam(r, "playlistId")); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "playlist deleted", nil)
}

// AddPlaylistVideo appends a video to the caller's playlist.
func (h *Handlers) AddPlaylistVideo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.db.AddVideoToPlaylist(r.Context(), chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "video added to playlist", detail)
}

// RemovePlaylistVideo removes a video from the caller's playlist.
func (h *Handlers) RemovePlaylistVideo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.db.RemoveVideoFromPlaylist(r.Context(), chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "video removed from playlist", detail)
}
