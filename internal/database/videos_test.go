// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/models"
)

func TestListVideosPaginationDisjoint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)

	for i := 0; i < 25; i++ {
		createTestVideo(t, db, owner, fmt.Sprintf("video-%02d", i))
	}

	page1, err := db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10, SortBy: "title"})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page2, err := db.ListVideos(ctx, ListVideosParams{Page: 2, Limit: 10, SortBy: "title"})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}

	if len(page1.Videos) != 10 || len(page2.Videos) != 10 {
		t.Fatalf("expected 10+10 rows, got %d+%d", len(page1.Videos), len(page2.Videos))
	}

	seen := map[string]bool{}
	for _, v := range page1.Videos {
		seen[v.ID] = true
	}
	for _, v := range page2.Videos {
		if seen[v.ID] {
			t.Errorf("video %s appears on both pages", v.ID)
		}
	}

	if page1.Pagination.Total != 25 {
		t.Errorf("total = %d, want 25", page1.Pagination.Total)
	}
	if page1.Pagination.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", page1.Pagination.TotalPages)
	}
	if !page1.Pagination.HasNext || page1.Pagination.HasPrev {
		t.Errorf("page 1 flags wrong: %+v", page1.Pagination)
	}
}

func TestListVideosSortAllowList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10, SortBy: "password_hash"})
	if !errors.Is(err, ErrInvalidSortField) {
		t.Errorf("unknown sort field should be rejected, got %v", err)
	}

	for _, field := range []string{"created_at", "title", "duration", "views"} {
		if _, err := db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10, SortBy: field}); err != nil {
			t.Errorf("allow-listed field %q rejected: %v", field, err)
		}
	}
}

func TestListVideosTitleFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)

	createTestVideo(t, db, owner, "Golang Tutorial Part 1")
	createTestVideo(t, db, owner, "Cooking with Gas")
	createTestVideo(t, db, owner, "golang tips")

	page, err := db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10, Query: "GOLANG"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(page.Videos) != 2 {
		t.Errorf("case-insensitive substring filter matched %d videos, want 2", len(page.Videos))
	}

	// LIKE wildcards in the query are literals, not patterns.
	page, err = db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10, Query: "%"})
	if err != nil {
		t.Fatalf("wildcard query: %v", err)
	}
	if len(page.Videos) != 0 {
		t.Errorf("literal %% matched %d videos, want 0", len(page.Videos))
	}
}

func TestListVideosExcludesUnpublished(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)

	v := createTestVideo(t, db, owner, "draft")
	if _, err := db.TogglePublish(ctx, v.ID, owner.ID); err != nil {
		t.Fatalf("toggle publish: %v", err)
	}

	page, err := db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Videos) != 0 {
		t.Errorf("unpublished video visible in public listing")
	}

	page, err = db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10, IncludeUnpublished: true})
	if err != nil {
		t.Fatalf("list with drafts: %v", err)
	}
	if len(page.Videos) != 1 {
		t.Errorf("draft missing from dashboard listing")
	}
}

func TestGetVideoDetailRecordsUniqueView(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	viewer := createTestUser(t, db)
	v := createTestVideo(t, db, owner, "watched")

	d1, err := db.GetVideoDetail(ctx, v.ID, viewer.ID)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if d1.Views != 1 {
		t.Errorf("views after first fetch = %d, want 1", d1.Views)
	}

	// The viewer set is a set: refetching does not inflate the count.
	d2, err := db.GetVideoDetail(ctx, v.ID, viewer.ID)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if d2.Views != 1 {
		t.Errorf("views after repeat fetch = %d, want 1", d2.Views)
	}

	history, err := db.GetWatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 1 || history[0].ID != v.ID {
		t.Errorf("watch history wrong: %+v", history)
	}
}

func TestGetVideoDetailMalformedID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	viewer := createTestUser(t, db)

	_, err := db.GetVideoDetail(ctx, "not-a-uuid", viewer.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("malformed id: got %v, want ErrNotFound", err)
	}

	history, err := db.GetWatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("malformed id left watch history rows: %+v", history)
	}
}

func TestGetVideoDetailMissingLeavesNoTrace(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	viewer := createTestUser(t, db)
	ghost := uuid.New().String()

	_, err := db.GetVideoDetail(ctx, ghost, viewer.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing video: got %v, want ErrNotFound", err)
	}

	// The not-found path must not land view or history rows.
	var views, history int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM video_views WHERE video_id = ?`, ghost).Scan(&views); err != nil {
		t.Fatalf("count views: %v", err)
	}
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM watch_history WHERE video_id = ?`, ghost).Scan(&history); err != nil {
		t.Fatalf("count history: %v", err)
	}
	if views != 0 || history != 0 {
		t.Errorf("orphan rows after not-found: views=%d history=%d", views, history)
	}

	entries, err := db.GetWatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("watch history references a missing video: %+v", entries)
	}
}

func TestGetVideoDetailSubscriptionFacts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	fan := createTestUser(t, db)
	v := createTestVideo(t, db, owner, "channel-video")

	if _, err := db.ToggleSubscription(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	d, err := db.GetVideoDetail(ctx, v.ID, fan.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Channel.SubscribersCount != 1 {
		t.Errorf("subscribersCount = %d, want 1", d.Channel.SubscribersCount)
	}
	if !d.Channel.IsSubscribed {
		t.Error("isSubscribed should be true for the fan")
	}

	d, err = db.GetVideoDetail(ctx, v.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner detail: %v", err)
	}
	if d.Channel.IsSubscribed {
		t.Error("isSubscribed should be false for the owner")
	}
}

func TestUpdateVideoOwnerFiltered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)
	v := createTestVideo(t, db, owner, "original")

	if _, err := db.UpdateVideo(ctx, v.ID, stranger.ID, "hijacked", "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner update should be ErrNotFound, got %v", err)
	}

	updated, err := db.UpdateVideo(ctx, v.ID, owner.ID, "renamed", "", "")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("title = %q, want renamed", updated.Title)
	}
	if updated.Description != "test video" {
		t.Errorf("empty field overwrote description: %q", updated.Description)
	}
}

func TestDeleteVideoCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	viewer := createTestUser(t, db)
	v := createTestVideo(t, db, owner, "doomed")

	if _, err := db.GetVideoDetail(ctx, v.ID, viewer.ID); err != nil {
		t.Fatalf("view: %v", err)
	}
	comment := &models.Comment{VideoID: v.ID, OwnerID: viewer.ID, Content: "first"}
	if err := db.CreateComment(ctx, comment); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := db.ToggleLike(ctx, models.LikeTarget{Kind: models.LikeTargetComment, ID: comment.ID}, viewer.ID); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	deleted, err := db.DeleteVideo(ctx, v.ID, owner.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.VideoURL == "" || deleted.ThumbnailURL == "" {
		t.Error("deleted row should carry asset URLs for media cleanup")
	}

	if _, err := db.GetVideoByID(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("video still fetchable after delete: %v", err)
	}
	page, err := db.ListVideos(ctx, ListVideosParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Videos) != 0 {
		t.Error("deleted video still listed")
	}
	history, err := db.GetWatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Error("deleted video still in watch history")
	}
}

func TestDeleteVideoNonOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)
	v := createTestVideo(t, db, owner, "safe")

	if _, err := db.DeleteVideo(ctx, v.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner delete should be ErrNotFound, got %v", err)
	}
	if _, err := db.GetVideoByID(ctx, v.ID); err != nil {
		t.Errorf("video should survive non-owner delete: %v", err)
	}
}
