// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

// Package api provides the HTTP surface: chi routing, the response envelope,
// and one handler file per route group.
package api

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/goccy/go-json"

	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/models"
	"github.com/clipstream/clipstream/internal/validation"
)

// apiError pairs a status code with a client-safe message. Handlers return
// it when they need a status the central mapping cannot infer.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

// badRequest builds a 400 with an explicit message.
func badRequest(message string) error {
	return &apiError{status: http.StatusBadRequest, message: message}
}

// notFound builds a 404 with an explicit message.
func notFound(message string) error {
	return &apiError{status: http.StatusNotFound, message: message}
}

// respondJSON writes the success envelope.
func respondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError maps err to the error envelope. Unrecognized errors become
// 500s; their details are logged but never sent to the client.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	fieldErrors := []models.FieldError{}

	var ae *apiError
	var verr *validation.RequestValidationError

	switch {
	case errors.As(err, &ae):
		status = ae.status
		message = ae.message

	case errors.As(err, &verr):
		status = http.StatusBadRequest
		message = "invalid request"
		for _, f := range verr.Fields() {
			fieldErrors = append(fieldErrors, models.FieldError{Field: f.Field, Message: f.Message})
		}

	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		message = "resource not found"

	case errors.Is(err, database.ErrDuplicate):
		status = http.StatusBadRequest
		message = err.Error()

	case errors.Is(err, database.ErrNothingToUpdate):
		status = http.StatusBadRequest
		message = "nothing to update"

	case errors.Is(err, database.ErrInvalidSortField):
		status = http.StatusBadRequest
		message = "invalid sort field"

	case errors.Is(err, database.ErrSelfSubscription):
		status = http.StatusBadRequest
		message = "cannot subscribe to your own channel"

	case errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
		message = "unauthorized request"

	case errors.Is(err, auth.ErrTokenExpired):
		status = http.StatusUnauthorized
		message = "access token expired"

	case errors.Is(err, auth.ErrTokenInvalid):
		status = http.StatusUnauthorized
		message = "invalid access token"

	default:
		logging.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	payload := models.APIErrorResponse{
		Success:    false,
		Message:    message,
		Errors:     fieldErrors,
		StatusCode: status,
	}
	if status == http.StatusInternalServerError && !h.cfg.IsProduction() {
		payload.Stack = string(debug.Stack())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode error response")
	}
}

// Unauthorized writes auth failures in the standard envelope. It is handed
// to auth.Middleware so the auth package stays decoupled from the envelope.
func (h *Handlers) Unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.respondError(w, r, err)
}

// decodeJSON parses and validates a JSON request body.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid request body")
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}
