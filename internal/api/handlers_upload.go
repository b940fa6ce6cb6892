// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"
	"strings"

	"github.com/clipstream/clipstream/internal/logging"
)

// AdminUpload is the raw pass-through to the media host for operators: a
// single multipart file goes up, the asset descriptor comes back. No store
// row is written.
func (h *Handlers) AdminUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondError(w, r, badRequest("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, badRequest("file is required"))
		return
	}
	defer closeQuietly(file)

	kind := strings.TrimSpace(r.FormValue("kind"))
	if kind == "" {
		kind = "raw"
	}

	result, err := h.uploader.Upload(r.Context(), kind, header.Filename, file)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	logging.Info().Str("public_id", result.PublicID).Str("kind", kind).Msg("Admin upload")
	respondJSON(w, http.StatusCreated, "file uploaded", result)
}
