// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package models

import "time"

// APIResponse is the envelope every successful endpoint returns.
//
//	{
//	  "success": true,
//	  "message": "video fetched",
//	  "data": {...},
//	  "timestamp": "2026-08-30T12:00:00Z"
//	}
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIErrorResponse is the envelope every failed endpoint returns. Stack is
// populated only outside production.
//
//	{
//	  "success": false,
//	  "message": "video not found",
//	  "errors": [],
//	  "statusCode": 404
//	}
type APIErrorResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors"`
	StatusCode int          `json:"statusCode"`
	Stack      string       `json:"stack,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PaginationInfo describes a page of a listing.
type PaginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNextPage"`
	HasPrev    bool  `json:"hasPrevPage"`
}

// NewPaginationInfo computes page metadata from a total row count.
func NewPaginationInfo(page, limit int, total int64) PaginationInfo {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return PaginationInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1 && int64(page-1) <= totalPages,
	}
}

// VideoPage is the paginated video listing payload.
type VideoPage struct {
	Videos     []VideoListItem `json:"videos"`
	Pagination PaginationInfo  `json:"pagination"`
}

// CommentPage is the paginated comment listing payload.
type CommentPage struct {
	Comments   []CommentView  `json:"comments"`
	Pagination PaginationInfo `json:"pagination"`
}

// TokenPair carries freshly minted credentials.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is the login payload: the user plus both tokens.
type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UploadResult is the media-host pass-through payload.
type UploadResult struct {
	URL      string  `json:"url"`
	PublicID string  `json:"publicId"`
	Duration float64 `json:"duration,omitempty"`
}

// ToggleResult reports the outcome of a like or subscription toggle.
type ToggleResult struct {
	Toggled bool `json:"toggled"`
	// Active is true when the relation exists after the toggle.
	Active bool `json:"active"`
}
