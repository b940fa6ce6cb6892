// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/models"
)

// ListVideos serves the public catalogue: published videos only, with
// pagination, free-text search, and allow-listed sorting.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	page, limit := h.pageParams(r)
	params := database.ListVideosParams{
		Page:     page,
		Limit:    limit,
		Query:    r.URL.Query().Get("query"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDesc: !strings.EqualFold(r.URL.Query().Get("sortType"), "asc"),
	}

	result, err := h.db.ListVideos(r.Context(), params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "videos fetched", result)
}

// PublishVideo accepts a multipart upload with videoFile and thumbnail parts,
// pushes both through the media host, and records the video. Duration comes
// from the media host's probe of the uploaded file.
func (h *Handlers) PublishVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondError(w, r, badRequest("invalid multipart form"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		h.respondError(w, r, badRequest("title is required"))
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		h.respondError(w, r, badRequest("videoFile is required"))
		return
	}
	defer closeQuietly(videoFile)

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		h.respondError(w, r, badRequest("thumbnail is required"))
		return
	}
	defer closeQuietly(thumbFile)

	videoAsset, err := h.uploader.Upload(r.Context(), "video", videoHeader.Filename, videoFile)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	thumbAsset, err := h.uploader.Upload(r.Context(), "thumbnail", thumbHeader.Filename, thumbFile)
	if err != nil {
		// The video asset is already uploaded; reclaim it.
		h.deleteAsset(r.Context(), videoAsset.URL)
		h.respondError(w, r, err)
		return
	}

	owner := currentUser(r)
	video := &models.Video{
		Title:        title,
		Description:  description,
		VideoURL:     videoAsset.URL,
		ThumbnailURL: thumbAsset.URL,
		Duration:     videoAsset.Duration,
		OwnerID:      owner.ID,
		IsPublished:  true,
	}
	if err := h.db.CreateVideo(r.Context(), video); err != nil {
		h.deleteAsset(r.Context(), videoAsset.URL)
		h.deleteAsset(r.Context(), thumbAsset.URL)
		h.respondError(w, r, err)
		return
	}

	logging.Info().Str("video_id", video.ID).Str("owner", owner.Username).Msg("Video published")
	respondJSON(w, http.StatusCreated, "video published", video)
}

// GetVideo returns a video's detail view and records the watch.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.db.GetVideoDetail(r.Context(), chi.URLParam(r, "videoId"), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "video fetched", detail)
}

// UpdateVideo edits title/description and optionally swaps the thumbnail.
// Only the owner's rows match; anyone else gets a 404.
func (h *Handlers) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")

	var title, description, thumbnailURL string
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.respondError(w, r, badRequest("invalid multipart form"))
			return
		}
		title = strings.TrimSpace(r.FormValue("title"))
		description = strings.TrimSpace(r.FormValue("description"))

		if file, header, err := r.FormFile("thumbnail"); err == nil {
			defer closeQuietly(file)
			asset, upErr := h.uploader.Upload(r.Context(), "thumbnail", header.Filename, file)
			if upErr != nil {
				h.respondError(w, r, upErr)
				return
			}
			thumbnailURL = asset.URL
		}
	} else {
		var req models.UpdateVideoRequest
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, r, err)
			return
		}
		title, description = req.Title, req.Description
	}

	previous, err := h.db.GetVideoByID(r.Context(), videoID)
	if err != nil {
		h.deleteAsset(r.Context(), thumbnailURL)
		h.respondError(w, r, err)
		return
	}

	video, err := h.db.UpdateVideo(r.Context(), videoID, currentUser(r).ID, title, description, thumbnailURL)
	if err != nil {
		h.deleteAsset(r.Context(), thumbnailURL)
		h.respondError(w, r, err)
		return
	}
	if thumbnailURL != "" {
		h.deleteAsset(r.Context(), previous.ThumbnailURL)
	}
	respondJSON(w, http.StatusOK, "video updated", video)
}

// DeleteVideo removes the row (cascading comments, likes, playlist
// memberships, watch history) and then the media assets.
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.db.DeleteVideo(r.Context(), chi.URLParam(r, "videoId"), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.deleteAsset(r.Context(), video.VideoURL)
	h.deleteAsset(r.Context(), video.ThumbnailURL)
	respondJSON(w, http.StatusOK, "video deleted", nil)
}

// TogglePublish flips a video between draft and published.
func (h *Handlers) TogglePublish(w http.ResponseWriter, r *http.Request) {
	video, err := h.db.TogglePublish(r.Context(), chi.URLParam(r, "videoId"), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "video unpublished"
	if video.IsPublished {
		message = "video published"
	}
	respondJSON(w, http.StatusOK, message, video)
}
