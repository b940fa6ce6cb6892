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

// CreateTweet inserts a tweet owned by t.OwnerID.
func (db *DB) CreateTweet(ctx context.Context, t *models.Tweet) error {
	t.ID = uuid.New().String()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Content, t.CreatedAt, t.UpdatedAt)
	metrics.RecordDBQuery("insert", "tweets", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create tweet: %w", err)
	}
	return nil
}

// GetTweetByID fetches a tweet row.
func (db *DB) GetTweetByID(ctx context.Context, id string) (*models.Tweet, error) {
	var t models.Tweet
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id = ?`, id).
		Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tweet: %w", err)
	}
	return &t, nil
}

// ListUserTweets returns userID's tweets, newest first, each annotated with
// its like count.
func (db *DB) ListUserTweets(ctx context.Context, userID string) ([]models.TweetView, error) {
	if _, err := db.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT t.id, t.owner_id, t.content, t.created_at, t.updated_at,
			(SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'tweet' AND l.target_id = t.id) AS likes
		FROM tweets t
		WHERE t.owner_id = ?
		ORDER BY t.created_at DESC, t.id`, userID)
	metrics.RecordDBQuery("select", "tweets", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list tweets: %w", err)
	}
	defer closeWithLog(rows, "tweet rows")

	tweets := []models.TweetView{}
	for rows.Next() {
		var t models.TweetView
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt,
			&t.LikesCount); err != nil {
			return nil, fmt.Errorf("failed to scan tweet: %w", err)
		}
		tweets = append(tweets, t)
	}
	return tweets, rows.Err()
}

// UpdateTweet replaces content, owner-filtered: a non-owner matches zero
// rows and gets ErrNotFound.
func (db *DB) UpdateTweet(ctx context.Context, tweetID, ownerID, content string) (*models.Tweet, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE tweets SET content = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		content, time.Now().UTC(), tweetID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update tweet: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetTweetByID(ctx, tweetID)
}

// DeleteTweet removes a tweet and its likes, owner-filtered.
func (db *DB) DeleteTweet(ctx context.Context, tweetID, ownerID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM tweets WHERE id = ? AND owner_id = ?`, tweetID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete tweet: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return err
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE target_kind = 'tweet' AND target_id = ?`, tweetID); err != nil {
		return fmt.Errorf("failed to delete tweet likes: %w", err)
	}
	return nil
}
