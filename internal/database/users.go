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

const userColumns = `id, username, email, full_name, avatar_url, cover_url, password_hash, refresh_token, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.AvatarURL,
		&u.CoverURL, &u.PasswordHash, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new account. The caller supplies the hashed password;
// id and timestamps are assigned here. Username/email collisions return
// ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.New().String()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, full_name, avatar_url, cover_url, password_hash, refresh_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FullName, u.AvatarURL, u.CoverURL,
		u.PasswordHash, u.RefreshToken, u.CreatedAt, u.UpdatedAt)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username or email already in use: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID fetches a user row.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByUsername fetches a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// UpdateRefreshToken stores the user's current refresh token. An empty token
// logs the user out.
func (db *DB) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return requireRowsAffected(res)
}

// UpdateAccount edits profile fields and returns the fresh row.
func (db *DB) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`,
		fullName, email, time.Now().UTC(), userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email already in use: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetUserByID(ctx, userID)
}

// UpdatePassword stores a new password hash.
func (db *DB) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRowsAffected(res)
}

// UpdateAvatar replaces the avatar URL, returning the previous one so the
// caller can clean up the old asset.
func (db *DB) UpdateAvatar(ctx context.Context, userID, avatarURL string) (previous string, err error) {
	return db.swapUserAsset(ctx, userID, "avatar_url", avatarURL)
}

// UpdateCoverImage replaces the cover URL, returning the previous one.
func (db *DB) UpdateCoverImage(ctx context.Context, userID, coverURL string) (previous string, err error) {
	return db.swapUserAsset(ctx, userID, "cover_url", coverURL)
}

// swapUserAsset updates one of the two asset columns. The column name is a
// compile-time constant at both call sites, never caller input.
func (db *DB) swapUserAsset(ctx context.Context, userID, column, url string) (string, error) {
	var previous string
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+column+` FROM users WHERE id = ?`, userID).Scan(&previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read current %s: %w", column, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		url, time.Now().UTC(), userID)
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", column, err)
	}
	return previous, nil
}

// GetChannelProfile composes the public channel page for username, with
// subscription facts relative to viewerID (may be empty for anonymous).
func (db *DB) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.avatar_url, u.full_name, u.cover_url,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS viewer_subscribed
		FROM users u
		WHERE u.username = ?`, viewerID, username)

	var p models.ChannelProfile
	var viewerSubscribed int64
	err := row.Scan(&p.ID, &p.Username, &p.AvatarURL, &p.FullName, &p.CoverURL,
		&p.SubscriberCount, &p.SubscribedTo, &viewerSubscribed)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load channel profile: %w", err)
	}
	p.IsSubscribed = viewerSubscribed > 0
	return &p, nil
}

// GetWatchHistory lists the user's watched videos, most recent first, each
// with the owning channel's summary.
func (db *DB) GetWatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.is_published, v.created_at, v.updated_at,
			o.id, o.username, o.avatar_url,
			h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = ?
		ORDER BY h.watched_at DESC`, userID)
	metrics.RecordDBQuery("select", "watch_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer closeWithLog(rows, "watch history rows")

	entries := []models.WatchHistoryEntry{}
	for rows.Next() {
		var e models.WatchHistoryEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.VideoURL,
			&e.ThumbnailURL, &e.Duration, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt,
			&e.Owner.ID, &e.Owner.Username, &e.Owner.AvatarURL, &e.WatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// requireRowsAffected translates a zero-row mutation into ErrNotFound.
func requireRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
