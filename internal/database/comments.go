// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/metrics"
	"github.com/clipstream/clipstream/internal/models"
)

// ListComments returns one page of a video's comments, newest first, each
// with owner summary and like count.
func (db *DB) ListComments(ctx context.Context, videoID string, page, limit int) (*models.CommentPage, error) {
	if _, err := db.GetVideoByID(ctx, videoID); err != nil {
		return nil, err
	}

	var total int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE video_id = ?`, videoID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at,
			o.id, o.username, o.avatar_url,
			(SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'comment' AND l.target_id = c.id) AS likes
		FROM comments c
		JOIN users o ON o.id = c.owner_id
		WHERE c.video_id = ?
		ORDER BY c.created_at DESC, c.id
		LIMIT ? OFFSET ?`, videoID, limit, (page-1)*limit)
	metrics.RecordDBQuery("select", "comments", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer closeWithLog(rows, "comment rows")

	comments := []models.CommentView{}
	for rows.Next() {
		var c models.CommentView
		if err := rows.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt,
			&c.UpdatedAt, &c.Owner.ID, &c.Owner.Username, &c.Owner.AvatarURL,
			&c.LikesCount); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.CommentPage{
		Comments:   comments,
		Pagination: models.NewPaginationInfo(page, limit, total),
	}, nil
}

// CreateComment adds a comment to an existing video.
func (db *DB) CreateComment(ctx context.Context, c *models.Comment) error {
	if _, err := db.GetVideoByID(ctx, c.VideoID); err != nil {
		return err
	}

	c.ID = uuid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.VideoID, c.OwnerID, c.Content, c.CreatedAt, c.UpdatedAt)
	metrics.RecordDBQuery("insert", "comments", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetCommentByID fetches a comment row.
func (db *DB) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, video_id, owner_id, content, created_at, updated_at FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch comment: %w", err)
	}
	return &c, nil
}

// UpdateComment replaces a comment's content by id. Matches the shipped
// behavior of the comment endpoints: any authenticated caller may edit, not
// just the owner.
func (db *DB) UpdateComment(ctx context.Context, commentID, content string) (*models.Comment, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetCommentByID(ctx, commentID)
}

// DeleteComment removes a comment and its likes by id, again without an
// ownership filter.
func (db *DB) DeleteComment(ctx context.Context, commentID string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE target_kind = 'comment' AND target_id = ?`, commentID); err != nil {
		return fmt.Errorf("failed to delete comment likes: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireRowsAffected(res)
}
