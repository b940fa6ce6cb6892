// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/metrics"
	"github.com/clipstream/clipstream/internal/models"
)

// likeTargetTables maps a target kind to the table its id must exist in.
var likeTargetTables = map[models.LikeTargetKind]string{
	models.LikeTargetVideo:   "videos",
	models.LikeTargetComment: "comments",
	models.LikeTargetTweet:   "tweets",
}

// ToggleLike flips the like relation for (target, userID) and reports whether
// the like exists afterwards. The unique constraint on likes makes the flip
// atomic: the insert either lands or hits the existing row, and in the latter
// case the row is deleted.
func (db *DB) ToggleLike(ctx context.Context, target models.LikeTarget, userID string) (bool, error) {
	table, ok := likeTargetTables[target.Kind]
	if !ok {
		return false, fmt.Errorf("unknown like target kind %q", target.Kind)
	}

	var exists int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, target.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like target: %w", err)
	}
	if exists == 0 {
		return false, ErrNotFound
	}

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (id, target_kind, target_id, liked_by, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		uuid.New().String(), string(target.Kind), target.ID, userID, time.Now().UTC())
	metrics.RecordDBQuery("insert", "likes", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read toggle outcome: %w", err)
	}
	if inserted > 0 {
		metrics.RecordToggle("like", true)
		return true, nil
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE target_kind = ? AND target_id = ? AND liked_by = ?`,
		string(target.Kind), target.ID, userID); err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	metrics.RecordToggle("like", false)
	return false, nil
}

// ListLikedVideos returns the videos userID has liked, newest like first,
// each with the owning channel's summary.
func (db *DB) ListLikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.is_published, v.created_at, v.updated_at,
			o.id, o.username, o.avatar_url
		FROM likes l
		JOIN videos v ON v.id = l.target_id
		JOIN users o ON o.id = v.owner_id
		WHERE l.target_kind = 'video' AND l.liked_by = ?
		ORDER BY l.created_at DESC`, userID)
	metrics.RecordDBQuery("select", "likes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked videos: %w", err)
	}
	defer closeWithLog(rows, "liked video rows")

	videos := []models.LikedVideo{}
	for rows.Next() {
		var lv models.LikedVideo
		if err := rows.Scan(&lv.ID, &lv.OwnerID, &lv.Title, &lv.Description, &lv.VideoURL,
			&lv.ThumbnailURL, &lv.Duration, &lv.IsPublished, &lv.CreatedAt, &lv.UpdatedAt,
			&lv.Owner.ID, &lv.Owner.Username, &lv.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan liked video: %w", err)
		}
		videos = append(videos, lv)
	}
	return videos, rows.Err()
}
