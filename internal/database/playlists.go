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

// CreatePlaylist inserts a playlist owned by p.OwnerID.
func (db *DB) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	metrics.RecordDBQuery("insert", "playlists", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

// GetPlaylistByID fetches the bare playlist row.
func (db *DB) GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error) {
	var p models.Playlist
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at FROM playlists WHERE id = ?`, id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	return &p, nil
}

// GetPlaylistDetail composes the playlist with its owner summary and the
// contained videos in insertion order, each with owner summary and view count.
func (db *DB) GetPlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
			o.id, o.username, o.avatar_url
		FROM playlists p
		JOIN users o ON o.id = p.owner_id
		WHERE p.id = ?`, id)

	var d models.PlaylistDetail
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt,
		&d.Owner.ID, &d.Owner.Username, &d.Owner.AvatarURL)
	metrics.RecordDBQuery("select", "playlists", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.is_published, v.created_at, v.updated_at,
			vo.id, vo.username, vo.avatar_url,
			(SELECT COUNT(*) FROM video_views vv WHERE vv.video_id = v.id) AS views
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id
		JOIN users vo ON vo.id = v.owner_id
		WHERE pv.playlist_id = ?
		ORDER BY pv.position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist videos: %w", err)
	}
	defer closeWithLog(rows, "playlist video rows")

	d.Videos = []models.PlaylistVideo{}
	for rows.Next() {
		var pv models.PlaylistVideo
		if err := rows.Scan(&pv.ID, &pv.OwnerID, &pv.Title, &pv.Description, &pv.VideoURL,
			&pv.ThumbnailURL, &pv.Duration, &pv.IsPublished, &pv.CreatedAt, &pv.UpdatedAt,
			&pv.Owner.ID, &pv.Owner.Username, &pv.Owner.AvatarURL, &pv.Views); err != nil {
			return nil, fmt.Errorf("failed to scan playlist video: %w", err)
		}
		d.Videos = append(d.Videos, pv)
	}
	return &d, rows.Err()
}

// ListUserPlaylists returns a user's playlists with their video counts.
func (db *DB) ListUserPlaylists(ctx context.Context, userID string) ([]models.PlaylistSummary, error) {
	if _, err := db.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id) AS video_count
		FROM playlists p
		WHERE p.owner_id = ?
		ORDER BY p.created_at DESC`, userID)
	metrics.RecordDBQuery("select", "playlists", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer closeWithLog(rows, "playlist rows")

	playlists := []models.PlaylistSummary{}
	for rows.Next() {
		var p models.PlaylistSummary
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt,
			&p.UpdatedAt, &p.VideoCount); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// UpdatePlaylist edits name/description, owner-filtered. At least one field
// must be non-empty or ErrNothingToUpdate is returned before any write.
func (db *DB) UpdatePlaylist(ctx context.Context, playlistID, ownerID, name, description string) (*models.Playlist, error) {
	if name == "" && description == "" {
		return nil, ErrNothingToUpdate
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	if name != "" {
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if description != "" {
		sets = append(sets, "description = ?")
		args = append(args, description)
	}
	args = append(args, playlistID, ownerID)

	query := "UPDATE playlists SET " + sets[0]
	for _, s := range sets[1:] {
		query += ", " + s
	}
	query += " WHERE id = ? AND owner_id = ?"

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetPlaylistByID(ctx, playlistID)
}

// DeletePlaylist removes a playlist and its membership rows by id. As with
// comments, the shipped behavior has no ownership filter here.
func (db *DB) DeletePlaylist(ctx context.Context, playlistID string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("failed to clear playlist videos: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, playlistID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return requireRowsAffected(res)
}

// AddVideoToPlaylist appends a video, owner-filtered on the playlist. Adding
// a video that is already present is a no-op; the membership stays unique.
func (db *DB) AddVideoToPlaylist(ctx context.Context, playlistID, videoID, ownerID string) (*models.PlaylistDetail, error) {
	p, err := db.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	if _, err := db.GetVideoByID(ctx, videoID); err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO playlist_videos (playlist_id, video_id, position, added_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_videos WHERE playlist_id = ?), ?)
		ON CONFLICT DO NOTHING`,
		playlistID, videoID, playlistID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to add video to playlist: %w", err)
	}
	return db.GetPlaylistDetail(ctx, playlistID)
}

// RemoveVideoFromPlaylist removes a membership row, owner-filtered on the
// playlist. A video not in the playlist is ErrNotFound.
func (db *DB) RemoveVideoFromPlaylist(ctx context.Context, playlistID, videoID, ownerID string) (*models.PlaylistDetail, error) {
	p, err := db.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`,
		playlistID, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove video from playlist: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetPlaylistDetail(ctx, playlistID)
}
