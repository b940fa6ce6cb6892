// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package models

import "time"

// VideoListItem is one row of the paginated video listing: the video joined
// with its owner summary and the materialized view count.
type VideoListItem struct {
	Video
	Owner UserSummary `json:"ownerDetails"`
	Views int64       `json:"views"`
}

// ChannelSummary is an owner summary enriched with subscription facts,
// embedded in the video detail response.
type ChannelSummary struct {
	UserSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoDetail is the single-video read model.
type VideoDetail struct {
	Video
	Views      int64          `json:"views"`
	LikesCount int64          `json:"likesCount"`
	Channel    ChannelSummary `json:"channel"`
}

// CommentView is a comment joined with its owner summary and like count.
type CommentView struct {
	Comment
	Owner      UserSummary `json:"ownerDetails"`
	LikesCount int64       `json:"likesCount"`
}

// TweetView is a tweet annotated with its like count.
type TweetView struct {
	Tweet
	LikesCount int64 `json:"likesCount"`
}

// LikedVideo is a video the caller liked, with the owning channel's summary.
type LikedVideo struct {
	Video
	Owner UserSummary `json:"ownerDetails"`
}

// PlaylistVideo is a playlist member with its owner summary and view count.
type PlaylistVideo struct {
	Video
	Owner UserSummary `json:"ownerDetails"`
	Views int64       `json:"views"`
}

// PlaylistDetail is a playlist with owner summary and composed videos.
type PlaylistDetail struct {
	Playlist
	Owner  UserSummary     `json:"ownerDetails"`
	Videos []PlaylistVideo `json:"videos"`
}

// PlaylistSummary is a playlist row in the per-user listing.
type PlaylistSummary struct {
	Playlist
	VideoCount int64 `json:"totalVideos"`
}

// ChannelProfile is the public channel page for a user.
type ChannelProfile struct {
	UserSummary
	FullName        string `json:"fullName"`
	CoverURL        string `json:"coverImage,omitempty"`
	SubscriberCount int64  `json:"subscribersCount"`
	SubscribedTo    int64  `json:"channelsSubscribedToCount"`
	IsSubscribed    bool   `json:"isSubscribed"`
}

// ChannelStats is the dashboard aggregate for a channel.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalViews       int64 `json:"totalViews"`
}

// WatchHistoryEntry is one watched video with its owner summary.
type WatchHistoryEntry struct {
	Video
	Owner     UserSummary `json:"ownerDetails"`
	WatchedAt time.Time   `json:"watchedAt"`
}

// Health is the liveness payload.
type Health struct {
	Status          string    `json:"status"`
	ServerTime      time.Time `json:"serverTime"`
	UptimeInSeconds int64     `json:"uptimeInSeconds"`
}
