// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/clipstream/clipstream/internal/metrics"
	"github.com/clipstream/clipstream/internal/models"
)

// GetChannelStats aggregates the dashboard numbers for one channel: video
// count, subscriber count, likes across the channel's videos, and total views
// as the sum of per-video viewer-set sizes.
func (db *DB) GetChannelStats(ctx context.Context, ownerID string) (*models.ChannelStats, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM videos v WHERE v.owner_id = ?) AS total_videos,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = ?) AS total_subscribers,
			(SELECT COUNT(*) FROM likes l
				JOIN videos v ON v.id = l.target_id
				WHERE l.target_kind = 'video' AND v.owner_id = ?) AS total_likes,
			(SELECT COUNT(*) FROM video_views vv
				JOIN videos v ON v.id = vv.video_id
				WHERE v.owner_id = ?) AS total_views`,
		ownerID, ownerID, ownerID, ownerID)

	var s models.ChannelStats
	err := row.Scan(&s.TotalVideos, &s.TotalSubscribers, &s.TotalLikes, &s.TotalViews)
	metrics.RecordDBQuery("select", "dashboard", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel stats: %w", err)
	}
	return &s, nil
}

// ListChannelVideos returns every video of the channel, drafts included,
// newest first with view counts.
func (db *DB) ListChannelVideos(ctx context.Context, ownerID string) ([]models.VideoListItem, error) {
	page, err := db.ListVideos(ctx, ListVideosParams{
		Page:               1,
		Limit:              10000,
		SortBy:             "created_at",
		SortDesc:           true,
		OwnerID:            ownerID,
		IncludeUnpublished: true,
	})
	if err != nil {
		return nil, err
	}
	return page.Videos, nil
}
