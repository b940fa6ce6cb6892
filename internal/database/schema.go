// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema operations so a wedged startup fails loudly.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			cover_url TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			video_url TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			duration DOUBLE NOT NULL DEFAULT 0,
			is_published BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// Viewer set: view count is the row count per video, never stored.
		`CREATE TABLE IF NOT EXISTS video_views (
			video_id UUID NOT NULL,
			viewer_id UUID NOT NULL,
			viewed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (video_id, viewer_id)
		)`,

		`CREATE TABLE IF NOT EXISTS watch_history (
			user_id UUID NOT NULL,
			video_id UUID NOT NULL,
			watched_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, video_id)
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			video_id UUID NOT NULL,
			owner_id UUID NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// Tagged-union like target: one kind plus the id of an entity of
		// that kind. The unique constraint makes the toggle atomic.
		`CREATE TABLE IF NOT EXISTS likes (
			id UUID PRIMARY KEY,
			target_kind TEXT NOT NULL CHECK (target_kind IN ('video', 'comment', 'tweet')),
			target_id UUID NOT NULL,
			liked_by UUID NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (target_kind, target_id, liked_by)
		)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			subscriber_id UUID NOT NULL,
			channel_id UUID NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (subscriber_id, channel_id)
		)`,

		`CREATE TABLE IF NOT EXISTS playlists (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// Membership is deduplicated by the primary key; position preserves
		// insertion order.
		`CREATE TABLE IF NOT EXISTS playlist_videos (
			playlist_id UUID NOT NULL,
			video_id UUID NOT NULL,
			position INTEGER NOT NULL,
			added_at TIMESTAMP NOT NULL,
			PRIMARY KEY (playlist_id, video_id)
		)`,

		`CREATE TABLE IF NOT EXISTS tweets (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_created ON videos (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_video ON comments (video_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_target ON likes (target_kind, target_id)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_user ON likes (liked_by)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions (channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_playlists_owner ON playlists (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tweets_owner ON tweets (owner_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_history_user ON watch_history (user_id, watched_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
