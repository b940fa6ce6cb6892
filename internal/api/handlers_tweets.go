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

// CreateTweet posts a tweet for the caller.
func (h *Handlers) CreateTweet(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTweetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	tweet := &models.Tweet{
		Content: req.Content,
		OwnerID: currentUser(r).ID,
	}
	if err := h.db.CreateTweet(r.Context(), tweet); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "tweet created", tweet)
}

// ListUserTweets returns a user's tweets with like counts, newest first.
func (h *Handlers) ListUserTweets(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.db.ListUserTweets(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "tweets fetched", tweets)
}

// UpdateTweet edits a tweet; only the owner's rows match.
func (h *Handlers) UpdateTweet(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTweetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	tweet, err := h.db.UpdateTweet(r.Context(), chi.URLParam(r, "tweetId"), currentUser(r).ID, req.Content)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "tweet updated", tweet)
}

// DeleteTweet removes the caller's tweet and its likes.
func (h *Handlers) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteTweet(r.Context(), chi.URLParam(r, "tweetId"), currentUser(r).ID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "tweet deleted", nil)
}
