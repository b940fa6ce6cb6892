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

// ToggleVideoLike flips the caller's like on a video.
func (h *Handlers) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.LikeTarget{
		Kind: models.LikeTargetVideo,
		ID:   chi.URLParam(r, "videoId"),
	})
}

// ToggleCommentLike flips the caller's like on a comment.
func (h *Handlers) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.LikeTarget{
		Kind: models.LikeTargetComment,
		ID:   chi.URLParam(r, "commentId"),
	})
}

// ToggleTweetLike flips the caller's like on a tweet.
func (h *Handlers) ToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, models.LikeTarget{
		Kind: models.LikeTargetTweet,
		ID:   chi.URLParam(r, "tweetId"),
	})
}

func (h *Handlers) toggleLike(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	liked, err := h.db.ToggleLike(r.Context(), target, currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "unliked"
	if liked {
		message = "liked"
	}
	respondJSON(w, http.StatusOK, message, models.ToggleResult{Toggled: true, Active: liked})
}

// ListLikedVideos returns the videos the caller has liked, drafts included;
// an unpublish after the like does not drop it from the list.
func (h *Handlers) ListLikedVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.db.ListLikedVideos(r.Context(), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "liked videos fetched", videos)
}
