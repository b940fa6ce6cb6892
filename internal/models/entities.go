// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

// Package models defines the persisted entities, the composed read models
// returned by list/detail endpoints, and the request/response envelope types
// shared by every handler.
package models

import (
	"fmt"
	"time"
)

// User is an account. PasswordHash and RefreshToken never serialize.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	AvatarURL    string    `json:"avatar,omitempty"`
	CoverURL     string    `json:"coverImage,omitempty"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the owner/channel projection embedded in composed reads.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar,omitempty"`
}

// Summary projects a User to its embeddable form.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// Video is a published or draft video. The viewer set and derived counts
// live in separate tables and are computed on read.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment belongs to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTargetKind discriminates what a like points at.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// Valid reports whether the kind is one of the three known targets.
func (k LikeTargetKind) Valid() bool {
	switch k {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// LikeTarget is the tagged reference a like points at: exactly one kind and
// the id of an entity of that kind.
type LikeTarget struct {
	Kind LikeTargetKind `json:"kind"`
	ID   string         `json:"id"`
}

func (t LikeTarget) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}

// Like records that a user liked a target. At most one like exists per
// (target, liked_by) pair.
type Like struct {
	ID        string     `json:"id"`
	Target    LikeTarget `json:"target"`
	LikedBy   string     `json:"likedBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Subscription records that subscriber follows channel. Self-subscription is
// rejected before the write.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an ordered, duplicate-free collection of videos.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tweet is a short text post by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
