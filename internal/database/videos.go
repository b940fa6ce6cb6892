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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/metrics"
	"github.com/clipstream/clipstream/internal/models"
)

// videoSortColumns is the sort-field allow-list for the video listing. The
// values are SQL expressions over the listing query's aliases; anything not
// in this map is rejected before a query is built.
var videoSortColumns = map[string]string{
	"created_at": "v.created_at",
	"title":      "v.title",
	"duration":   "v.duration",
	"views":      "views",
}

// ErrInvalidSortField rejects a sortBy value outside the allow-list.
var ErrInvalidSortField = errors.New("invalid sort field")

// ListVideosParams selects and orders a page of the video listing.
type ListVideosParams struct {
	Page  int
	Limit int
	// Query is a case-insensitive substring match on the title.
	Query    string
	SortBy   string
	SortDesc bool
	// OwnerID restricts the listing to one channel when set.
	OwnerID string
	// IncludeUnpublished lifts the is_published filter (dashboard only).
	IncludeUnpublished bool
}

// ListVideos returns one page of videos joined with owner summaries and view
// counts, plus pagination metadata.
func (db *DB) ListVideos(ctx context.Context, p ListVideosParams) (*models.VideoPage, error) {
	sortExpr, ok := videoSortColumns[p.SortBy]
	if p.SortBy == "" {
		sortExpr = videoSortColumns["created_at"]
		p.SortDesc = true
	} else if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, p.SortBy)
	}

	direction := "ASC"
	if p.SortDesc {
		direction = "DESC"
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if !p.IncludeUnpublished {
		where = append(where, "v.is_published")
	}
	if p.Query != "" {
		where = append(where, `v.title ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(p.Query)+"%")
	}
	if p.OwnerID != "" {
		where = append(where, "v.owner_id = ?")
		args = append(args, p.OwnerID)
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countStart := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos v WHERE `+whereClause, args...).Scan(&total)
	metrics.RecordDBQuery("count", "videos", time.Since(countStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}

	// Secondary sort on id keeps pages disjoint when the sort key ties.
	query := fmt.Sprintf(`
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.is_published, v.created_at, v.updated_at,
			o.id, o.username, o.avatar_url,
			(SELECT COUNT(*) FROM video_views vv WHERE vv.video_id = v.id) AS views
		FROM videos v
		JOIN users o ON o.id = v.owner_id
		WHERE %s
		ORDER BY %s %s, v.id
		LIMIT ? OFFSET ?`, whereClause, sortExpr, direction)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "videos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer closeWithLog(rows, "video listing rows")

	items := []models.VideoListItem{}
	for rows.Next() {
		var item models.VideoListItem
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description,
			&item.VideoURL, &item.ThumbnailURL, &item.Duration, &item.IsPublished,
			&item.CreatedAt, &item.UpdatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.AvatarURL,
			&item.Views); err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.VideoPage{
		Videos:     items,
		Pagination: models.NewPaginationInfo(p.Page, p.Limit, total),
	}, nil
}

// CreateVideo inserts a video owned by v.OwnerID.
func (db *DB) CreateVideo(ctx context.Context, v *models.Video) error {
	v.ID = uuid.New().String()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration, is_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL,
		v.Duration, v.IsPublished, v.CreatedAt, v.UpdatedAt)
	metrics.RecordDBQuery("insert", "videos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// GetVideoByID fetches the bare video row.
func (db *DB) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, video_url, thumbnail_url, duration, is_published, created_at, updated_at
		 FROM videos WHERE id = ?`, id).
		Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
			&v.Duration, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch video: %w", err)
	}
	return &v, nil
}

// GetVideoDetail records viewerID as a unique viewer, upserts the video into
// their watch history, and returns the composed detail: view and like counts
// plus the channel summary with subscription facts.
//
// Both writes are conflict-ignoring inserts on set-like tables, so a repeat
// visit changes nothing.
func (db *DB) GetVideoDetail(ctx context.Context, videoID, viewerID string) (*models.VideoDetail, error) {
	// A malformed id would fail the UUID cast inside the insert; an unknown
	// id would land view/history rows behind a not-found. Both checks run
	// before the first write so the error path leaves no trace.
	if uuid.Validate(videoID) != nil {
		return nil, ErrNotFound
	}
	var exists bool
	if err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM videos WHERE id = ?)`, videoID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check video: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO video_views (video_id, viewer_id, viewed_at) VALUES (?, ?, ?)
		 ON CONFLICT DO NOTHING`, videoID, viewerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		metrics.VideoViewsRecorded.Inc()
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO watch_history (user_id, video_id, watched_at) VALUES (?, ?, ?)
		 ON CONFLICT DO NOTHING`, viewerID, videoID, now); err != nil {
		return nil, fmt.Errorf("failed to record watch history: %w", err)
	}

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration, v.is_published, v.created_at, v.updated_at,
			(SELECT COUNT(*) FROM video_views vv WHERE vv.video_id = v.id) AS views,
			(SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS likes,
			o.id, o.username, o.avatar_url,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = o.id) AS subscribers,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = o.id AND s.subscriber_id = ?) AS viewer_subscribed
		FROM videos v
		JOIN users o ON o.id = v.owner_id
		WHERE v.id = ?`, viewerID, videoID)

	var d models.VideoDetail
	var viewerSubscribed int64
	err = row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Description, &d.VideoURL,
		&d.ThumbnailURL, &d.Duration, &d.IsPublished, &d.CreatedAt, &d.UpdatedAt,
		&d.Views, &d.LikesCount,
		&d.Channel.ID, &d.Channel.Username, &d.Channel.AvatarURL,
		&d.Channel.SubscribersCount, &viewerSubscribed)
	metrics.RecordDBQuery("select", "videos", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load video detail: %w", err)
	}
	d.Channel.IsSubscribed = viewerSubscribed > 0
	return &d, nil
}

// UpdateVideo edits title/description/thumbnail, owner-filtered: a non-owner
// matches zero rows and gets ErrNotFound. Empty fields keep their values.
// Returns the fresh row.
func (db *DB) UpdateVideo(ctx context.Context, videoID, ownerID, title, description, thumbnailURL string) (*models.Video, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	if title != "" {
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if description != "" {
		sets = append(sets, "description = ?")
		args = append(args, description)
	}
	if thumbnailURL != "" {
		sets = append(sets, "thumbnail_url = ?")
		args = append(args, thumbnailURL)
	}
	if len(sets) == 1 {
		return nil, ErrNothingToUpdate
	}
	args = append(args, videoID, ownerID)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE videos SET `+strings.Join(sets, ", ")+` WHERE id = ? AND owner_id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetVideoByID(ctx, videoID)
}

// DeleteVideo removes the video and its dependent rows (views, history,
// comments, likes on the video and its comments, playlist membership),
// owner-filtered. The deleted row is returned so the caller can release the
// hosted assets.
func (db *DB) DeleteVideo(ctx context.Context, videoID, ownerID string) (*models.Video, error) {
	v, err := db.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if v.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	start := time.Now()
	cleanups := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM likes WHERE target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = ?)`, []interface{}{videoID}},
		{`DELETE FROM likes WHERE target_kind = 'video' AND target_id = ?`, []interface{}{videoID}},
		{`DELETE FROM comments WHERE video_id = ?`, []interface{}{videoID}},
		{`DELETE FROM playlist_videos WHERE video_id = ?`, []interface{}{videoID}},
		{`DELETE FROM video_views WHERE video_id = ?`, []interface{}{videoID}},
		{`DELETE FROM watch_history WHERE video_id = ?`, []interface{}{videoID}},
		{`DELETE FROM videos WHERE id = ? AND owner_id = ?`, []interface{}{videoID, ownerID}},
	}
	for _, c := range cleanups {
		if _, err := db.conn.ExecContext(ctx, c.query, c.args...); err != nil {
			metrics.RecordDBQuery("delete", "videos", time.Since(start), err)
			return nil, fmt.Errorf("failed to delete video: %w", err)
		}
	}
	metrics.RecordDBQuery("delete", "videos", time.Since(start), nil)
	return v, nil
}

// TogglePublish flips is_published, owner-filtered. Returns the fresh row.
func (db *DB) TogglePublish(ctx context.Context, videoID, ownerID string) (*models.Video, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE videos SET is_published = NOT is_published, updated_at = ? WHERE id = ? AND owner_id = ?`,
		time.Now().UTC(), videoID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle publish state: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return nil, err
	}
	return db.GetVideoByID(ctx, videoID)
}

// escapeLike neutralizes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
