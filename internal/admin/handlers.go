// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/database"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/models"
	"github.com/clipstream/clipstream/internal/validation"
)

// SessionCookie is the admin surface's own cookie, separate from the API's
// access token.
const SessionCookie = "adminSession"

// Handler serves /admin: login/logout, the resource descriptor table, and
// the generic CRUD API.
type Handler struct {
	db       *database.DB
	sessions *SessionStore
	cfg      *config.AdminConfig
	secure   bool
}

// NewHandler wires the admin surface. secure controls the cookie Secure flag.
func NewHandler(db *database.DB, sessions *SessionStore, cfg *config.AdminConfig, secure bool) *Handler {
	return &Handler{db: db, sessions: sessions, cfg: cfg, secure: secure}
}

// Routes mounts the admin surface on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Get("/resources", h.ListResources)
		r.Route("/api/{resource}", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
	return r
}

// Login checks the email allow-list, verifies the password against the user
// row, and issues the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	if !h.emailAllowed(req.Email) {
		logging.Warn().Str("email", req.Email).Msg("Admin login rejected: not in allow-list")
		h.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session, cookieValue, err := h.sessions.Create(r.Context(), req.Email)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create admin session")
		h.respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	// Path "/" so the cookie also reaches the admin upload pass-through
	// under /api/v1/admin.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  session.ExpiresAt,
	})
	h.respondData(w, http.StatusOK, map[string]interface{}{
		"email":     session.Email,
		"expiresAt": session.ExpiresAt,
	})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil &&
			!errors.Is(err, ErrSessionNotFound) {
			logging.Warn().Err(err).Msg("Failed to delete admin session")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	h.respondData(w, http.StatusOK, map[string]interface{}{"loggedOut": true})
}

// RequireSession gates a subtree on a live admin session.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		if _, err := h.sessions.Get(r.Context(), cookie.Value); err != nil {
			h.respondError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListResources returns the field-visibility table so a generic UI can
// render itself.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources := make([]*Resource, 0, len(Resources))
	for _, name := range resourceNames() {
		resources = append(resources, Resources[name])
	}
	h.respondData(w, http.StatusOK, resources)
}

// List returns one page of rows with list-visible columns.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.resource(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	records, total, err := h.db.AdminList(r.Context(), resource.Table,
		resource.readColumns(true), resource.OrderBy, page, limit)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]interface{}{
		"records":    records,
		"pagination": models.NewPaginationInfo(page, limit, total),
	})
}

// Get returns one row with show-visible columns.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.resource(w, r)
	if !ok {
		return
	}

	record, err := h.db.AdminGet(r.Context(), resource.Table,
		resource.readColumns(false), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, record)
}

// Create inserts a row from the create-visible fields of the body. The id
// and timestamps are always server-assigned.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.resource(w, r)
	if !ok {
		return
	}

	body, err := h.decodeFields(r, resource, true)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(body) == 0 {
		h.respondError(w, http.StatusBadRequest, "no writable fields in request")
		return
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	columns := []string{"id", "created_at"}
	values := []interface{}{id, now}
	if resourceHasColumn(resource, "updated_at") {
		columns = append(columns, "updated_at")
		values = append(values, now)
	}
	for col, val := range body {
		columns = append(columns, col)
		values = append(values, val)
	}

	if err := h.db.AdminInsert(r.Context(), resource.Table, columns, values); err != nil {
		h.storeError(w, err)
		return
	}
	record, err := h.db.AdminGet(r.Context(), resource.Table, resource.readColumns(false), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.respondData(w, http.StatusCreated, record)
}

// Update edits a row's edit-visible fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.resource(w, r)
	if !ok {
		return
	}

	body, err := h.decodeFields(r, resource, false)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(body) == 0 {
		h.respondError(w, http.StatusBadRequest, "no writable fields in request")
		return
	}

	id := chi.URLParam(r, "id")
	columns := []string{}
	values := []interface{}{}
	for col, val := range body {
		columns = append(columns, col)
		values = append(values, val)
	}
	if resourceHasColumn(resource, "updated_at") {
		columns = append(columns, "updated_at")
		values = append(values, time.Now().UTC())
	}

	if err := h.db.AdminUpdate(r.Context(), resource.Table, columns, values, id); err != nil {
		h.storeError(w, err)
		return
	}
	record, err := h.db.AdminGet(r.Context(), resource.Table, resource.readColumns(false), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, record)
}

// Delete removes a row by id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	resource, ok := h.resource(w, r)
	if !ok {
		return
	}

	if err := h.db.AdminDelete(r.Context(), resource.Table, chi.URLParam(r, "id")); err != nil {
		h.storeError(w, err)
		return
	}
	h.respondData(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// decodeFields parses the JSON body and keeps only fields writable for the
// action; any other field is an error so hidden columns cannot be smuggled in.
func (h *Handler) decodeFields(r *http.Request, resource *Resource, create bool) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid request body")
	}
	defer closeQuietly(r.Body)

	fields := make(map[string]interface{}, len(body))
	for name, value := range body {
		// The users form takes a plaintext password and stores the hash.
		if create && resource.Name == "users" && name == "password" {
			hash, err := auth.HashPassword(fmt.Sprint(value))
			if err != nil {
				return nil, err
			}
			fields["password_hash"] = hash
			continue
		}
		if !resource.writableField(name, create) {
			return nil, fmt.Errorf("field %q is not writable", name)
		}
		fields[name] = value
	}
	return fields, nil
}

func (h *Handler) resource(w http.ResponseWriter, r *http.Request) (*Resource, bool) {
	name := strings.ToLower(chi.URLParam(r, "resource"))
	resource, ok := Resources[name]
	if !ok {
		h.respondError(w, http.StatusNotFound, "unknown resource")
		return nil, false
	}
	return resource, true
}

func (h *Handler) emailAllowed(email string) bool {
	for _, allowed := range h.cfg.Emails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, database.ErrDuplicate):
		h.respondError(w, http.StatusBadRequest, "record violates a unique constraint")
	default:
		logging.Error().Err(err).Msg("Admin store operation failed")
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := models.APIResponse{
		Success:   true,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode admin response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := models.APIErrorResponse{
		Success:    false,
		Message:    message,
		Errors:     []models.FieldError{},
		StatusCode: status,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode admin error")
	}
}

func resourceNames() []string {
	return []string{"users", "videos", "comments", "likes", "subscriptions", "playlists", "tweets"}
}

func resourceHasColumn(resource *Resource, name string) bool {
	for _, f := range resource.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
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
