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

// ToggleSubscription flips subscriberID's subscription to channelID and
// reports whether it exists afterwards. Self-subscription is rejected with
// ErrSelfSubscription regardless of current state.
func (db *DB) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	if _, err := db.GetUserByID(ctx, channelID); err != nil {
		return false, err
	}

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		uuid.New().String(), subscriberID, channelID, time.Now().UTC())
	metrics.RecordDBQuery("insert", "subscriptions", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to toggle subscription: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read toggle outcome: %w", err)
	}
	if inserted > 0 {
		metrics.RecordToggle("subscription", true)
		return true, nil
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`,
		subscriberID, channelID); err != nil {
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}
	metrics.RecordToggle("subscription", false)
	return false, nil
}

// ListSubscribers returns the users subscribed to channelID.
func (db *DB) ListSubscribers(ctx context.Context, channelID string) ([]models.UserSummary, error) {
	if _, err := db.GetUserByID(ctx, channelID); err != nil {
		return nil, err
	}
	return db.listSubscriptionUsers(ctx,
		`SELECT u.id, u.username, u.avatar_url
		 FROM subscriptions s
		 JOIN users u ON u.id = s.subscriber_id
		 WHERE s.channel_id = ?
		 ORDER BY s.created_at DESC`, channelID)
}

// ListSubscribedChannels returns the channels subscriberID follows.
func (db *DB) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error) {
	if _, err := db.GetUserByID(ctx, subscriberID); err != nil {
		return nil, err
	}
	return db.listSubscriptionUsers(ctx,
		`SELECT u.id, u.username, u.avatar_url
		 FROM subscriptions s
		 JOIN users u ON u.id = s.channel_id
		 WHERE s.subscriber_id = ?
		 ORDER BY s.created_at DESC`, subscriberID)
}

func (db *DB) listSubscriptionUsers(ctx context.Context, query, id string) ([]models.UserSummary, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, id)
	metrics.RecordDBQuery("select", "subscriptions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer closeWithLog(rows, "subscription rows")

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan subscription user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
