// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package models

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest authenticates by email or username plus password.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,min=3,max=32"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UpdateAccountRequest edits profile fields.
type UpdateAccountRequest struct {
	FullName string `json:"fullName" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

// RefreshTokenRequest carries the refresh credential when it is not sent as
// a cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateVideoRequest edits a video's metadata. The thumbnail travels as a
// multipart file alongside, when present.
type UpdateVideoRequest struct {
	Title       string `json:"title" validate:"omitempty,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// CreateCommentRequest adds a comment to a video.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// UpdateCommentRequest edits a comment's content.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// CreateTweetRequest posts a tweet.
type CreateTweetRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateTweetRequest edits a tweet.
type UpdateTweetRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CreatePlaylistRequest creates a playlist.
type CreatePlaylistRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdatePlaylistRequest edits a playlist. At least one field must be set;
// the handler enforces that since validator tags cannot express it.
type UpdatePlaylistRequest struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// AdminLoginRequest opens an admin-surface session.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
