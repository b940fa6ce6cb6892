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

// ListComments returns a video's comments, newest first, paginated.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	page, limit := h.pageParams(r)
	result, err := h.db.ListComments(r.Context(), chi.URLParam(r, "videoId"), page, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "comments fetched", result)
}

// CreateComment adds a comment to a video.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	comment := &models.Comment{
		Content: req.Content,
		VideoID: chi.URLParam(r, "videoId"),
		OwnerID: currentUser(r).ID,
	}
	if err := h.db.CreateComment(r.Context(), comment); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "comment added", comment)
}

// UpdateComment edits a comment's content.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	comment, err := h.db.UpdateComment(r.Context(), chi.URLParam(r, "commentId"), req.Content)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "comment updated", comment)
}

// DeleteComment removes a comment and its likes.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteComment(r.Context(), chi.URLParam(r, "commentId")); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "comment deleted", nil)
}
