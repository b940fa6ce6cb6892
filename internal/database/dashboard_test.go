// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"testing"

	"github.com/clipstream/clipstream/internal/models"
)

func TestGetChannelStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	fan := createTestUser(t, db)

	v1 := createTestVideo(t, db, owner, "one")
	v2 := createTestVideo(t, db, owner, "two")

	if _, err := db.ToggleSubscription(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	for _, v := range []*models.Video{v1, v2} {
		if _, err := db.GetVideoDetail(ctx, v.ID, fan.ID); err != nil {
			t.Fatalf("view: %v", err)
		}
	}
	if _, err := db.ToggleLike(ctx, models.LikeTarget{Kind: models.LikeTargetVideo, ID: v1.ID}, fan.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	stats, err := db.GetChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVideos != 2 {
		t.Errorf("totalVideos = %d, want 2", stats.TotalVideos)
	}
	if stats.TotalSubscribers != 1 {
		t.Errorf("totalSubscribers = %d, want 1", stats.TotalSubscribers)
	}
	if stats.TotalLikes != 1 {
		t.Errorf("totalLikes = %d, want 1", stats.TotalLikes)
	}
	if stats.TotalViews != 2 {
		t.Errorf("totalViews = %d, want 2", stats.TotalViews)
	}
}

func TestGetChannelStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db)

	stats, err := db.GetChannelStats(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVideos != 0 || stats.TotalSubscribers != 0 || stats.TotalLikes != 0 || stats.TotalViews != 0 {
		t.Errorf("empty channel stats not zero: %+v", stats)
	}
}

func TestListChannelVideosIncludesDrafts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	other := createTestUser(t, db)

	createTestVideo(t, db, other, "not mine")
	v := createTestVideo(t, db, owner, "draft")
	if _, err := db.TogglePublish(ctx, v.ID, owner.ID); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	videos, err := db.ListChannelVideos(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != v.ID {
		t.Errorf("channel listing wrong: %+v", videos)
	}
	if videos[0].IsPublished {
		t.Error("draft should be listed unpublished")
	}
}
