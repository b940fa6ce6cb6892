// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/clipstream/clipstream/internal/models"
)

func createTestPlaylist(t *testing.T, db *DB, owner *models.User, name string) *models.Playlist {
	t.Helper()

	p := &models.Playlist{OwnerID: owner.ID, Name: name, Description: "test playlist"}
	if err := db.CreatePlaylist(context.Background(), p); err != nil {
		t.Fatalf("failed to create test playlist: %v", err)
	}
	return p
}

func TestAddVideoToPlaylistDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "watch later")
	v := createTestVideo(t, db, owner, "clip")

	if _, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, owner.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	detail, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, owner.ID)
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if len(detail.Videos) != 1 {
		t.Errorf("playlist has %d occurrences of the video, want 1", len(detail.Videos))
	}
}

func TestPlaylistVideoOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "ordered")

	titles := []string{"one", "two", "three"}
	for _, title := range titles {
		v := createTestVideo(t, db, owner, title)
		if _, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, owner.ID); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}

	detail, err := db.GetPlaylistDetail(ctx, p.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Videos) != 3 {
		t.Fatalf("playlist has %d videos, want 3", len(detail.Videos))
	}
	for i, title := range titles {
		if detail.Videos[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, detail.Videos[i].Title, title)
		}
	}
	if detail.Owner.Username != owner.Username {
		t.Errorf("owner summary wrong: %+v", detail.Owner)
	}
}

func TestAddVideoToPlaylistNonOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "private")
	v := createTestVideo(t, db, stranger, "clip")

	if _, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner add should be ErrNotFound, got %v", err)
	}
}

func TestRemoveVideoFromPlaylist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "pruned")
	v := createTestVideo(t, db, owner, "clip")

	if _, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, owner.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	detail, err := db.RemoveVideoFromPlaylist(ctx, p.ID, v.ID, owner.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(detail.Videos) != 0 {
		t.Errorf("playlist still has %d videos", len(detail.Videos))
	}

	if _, err := db.RemoveVideoFromPlaylist(ctx, p.ID, v.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("removing an absent video should be ErrNotFound, got %v", err)
	}
}

func TestUpdatePlaylist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "old name")

	if _, err := db.UpdatePlaylist(ctx, p.ID, owner.ID, "", ""); !errors.Is(err, ErrNothingToUpdate) {
		t.Errorf("empty update should be ErrNothingToUpdate, got %v", err)
	}
	if _, err := db.UpdatePlaylist(ctx, p.ID, stranger.ID, "stolen", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner update should be ErrNotFound, got %v", err)
	}

	updated, err := db.UpdatePlaylist(ctx, p.ID, owner.ID, "new name", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "new name" {
		t.Errorf("name = %q, want new name", updated.Name)
	}
	if updated.Description != "test playlist" {
		t.Errorf("description clobbered: %q", updated.Description)
	}
}

func TestDeletePlaylistIgnoresOwnership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "doomed")
	v := createTestVideo(t, db, owner, "clip")
	if _, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, owner.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Delete takes only the playlist id; any authenticated caller may remove it.
	if err := db.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetPlaylistByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("playlist still fetchable: %v", err)
	}
	if _, err := db.GetVideoByID(ctx, v.ID); err != nil {
		t.Errorf("member video should survive playlist delete: %v", err)
	}
}

func TestListUserPlaylists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db)
	p := createTestPlaylist(t, db, owner, "counted")
	for _, title := range []string{"a", "b"} {
		v := createTestVideo(t, db, owner, title)
		if _, err := db.AddVideoToPlaylist(ctx, p.ID, v.ID, owner.ID); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	lists, err := db.ListUserPlaylists(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 1 || lists[0].VideoCount != 2 {
		t.Errorf("playlist listing wrong: %+v", lists)
	}
}
