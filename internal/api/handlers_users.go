// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/models"
)

// Register creates an account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondError(w, r, badRequest(err.Error()))
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		h.respondError(w, r, err)
		return
	}

	logging.Info().Str("username", user.Username).Msg("User registered")
	respondJSON(w, http.StatusCreated, "user registered", user)
}

// Login authenticates by email or username, mints both tokens, persists the
// refresh token, and sets the cookie pair.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Email == "" && req.Username == "" {
		h.respondError(w, r, badRequest("email or username is required"))
		return
	}

	user, err := h.lookupLoginUser(r, &req)
	if err != nil {
		// Identical message for unknown account and wrong password.
		h.respondError(w, r, badRequest("invalid credentials"))
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.respondError(w, r, badRequest("invalid credentials"))
		return
	}

	pair, err := h.tokens.MintPair(user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.db.UpdateRefreshToken(r.Context(), user.ID, pair.RefreshToken); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	respondJSON(w, http.StatusOK, "login successful", models.LoginResponse{
		User:         *user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handlers) lookupLoginUser(r *http.Request, req *models.LoginRequest) (*models.User, error) {
	if req.Email != "" {
		return h.db.GetUserByEmail(r.Context(), req.Email)
	}
	return h.db.GetUserByUsername(r.Context(), req.Username)
}

// Logout clears the stored refresh token and expires both cookies.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.db.UpdateRefreshToken(r.Context(), user.ID, ""); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, "logged out", nil)
}

// RefreshToken rotates the token pair. The presented refresh token must both
// verify and match the stored copy; rotation invalidates the old one.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	presented := h.presentedRefreshToken(r)
	if presented == "" {
		h.respondError(w, r, auth.ErrMissingToken)
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(presented)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.db.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		h.respondError(w, r, auth.ErrTokenInvalid)
		return
	}
	if user.RefreshToken == "" || user.RefreshToken != presented {
		h.respondError(w, r, auth.ErrTokenInvalid)
		return
	}

	pair, err := h.tokens.MintPair(user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.db.UpdateRefreshToken(r.Context(), user.ID, pair.RefreshToken); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	respondJSON(w, http.StatusOK, "token refreshed", pair)
}

// presentedRefreshToken prefers the request body, falling back to the cookie.
func (h *Handlers) presentedRefreshToken(r *http.Request) string {
	var req models.RefreshTokenRequest
	// The body is optional; decode errors just mean "not in the body".
	_ = decodeJSON(r, &req)
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// CurrentUser returns the caller.
func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "current user fetched", currentUser(r))
}

// UpdateAccount edits fullName/email.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.db.UpdateAccount(r.Context(), currentUser(r).ID, req.FullName, req.Email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "account updated", user)
}

// ChangePassword verifies the old password and stores the new hash.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user := currentUser(r)
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		h.respondError(w, r, badRequest("old password is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.respondError(w, r, badRequest(err.Error()))
		return
	}
	if err := h.db.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "password changed", nil)
}

// UpdateAvatar uploads a new avatar and best-effort deletes the old asset.
func (h *Handlers) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateUserAsset(w, r, "avatar")
}

// UpdateCoverImage uploads a new cover image.
func (h *Handlers) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateUserAsset(w, r, "cover")
}

func (h *Handlers) updateUserAsset(w http.ResponseWriter, r *http.Request, kind string) {
	fieldName := "avatar"
	if kind == "cover" {
		fieldName = "coverImage"
	}

	file, header, err := r.FormFile(fieldName)
	if err != nil {
		h.respondError(w, r, badRequest(fieldName+" file is required"))
		return
	}
	defer closeQuietly(file)

	result, err := h.uploader.Upload(r.Context(), kind, header.Filename, file)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user := currentUser(r)
	var previous string
	if kind == "avatar" {
		previous, err = h.db.UpdateAvatar(r.Context(), user.ID, result.URL)
	} else {
		previous, err = h.db.UpdateCoverImage(r.Context(), user.ID, result.URL)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.deleteAsset(r.Context(), previous)

	fresh, err := h.db.GetUserByID(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, kind+" updated", fresh)
}

// ChannelProfile returns the public channel page for a username. Anonymous
// callers see isSubscribed=false.
func (h *Handlers) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		h.respondError(w, r, badRequest("username is required"))
		return
	}

	profile, err := h.db.GetChannelProfile(r.Context(), username, viewerID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "channel fetched", profile)
}

// WatchHistory lists the caller's watched videos, most recent first.
func (h *Handlers) WatchHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.db.GetWatchHistory(r.Context(), currentUser(r).ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "watch history fetched", history)
}

// setAuthCookies mirrors the token pair into httpOnly cookies for browser
// clients. API clients read the body instead.
func (h *Handlers) setAuthCookies(w http.ResponseWriter, pair *models.TokenPair) {
	secure := h.cfg.IsProduction()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.cfg.Auth.AccessTokenTTL),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.cfg.Auth.RefreshTokenTTL),
	})
}

func (h *Handlers) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
}
