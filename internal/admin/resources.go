// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package admin

// Field declares one column's visibility on the admin surface. Hidden fields
// are stripped from reads and rejected on writes.
type Field struct {
	Name   string `json:"name"`
	List   bool   `json:"list"`
	Show   bool   `json:"show"`
	Create bool   `json:"create"`
	Edit   bool   `json:"edit"`
}

// Resource maps one store table onto the admin CRUD API.
type Resource struct {
	Name    string  `json:"name"`
	Table   string  `json:"-"`
	OrderBy string  `json:"-"`
	Fields  []Field `json:"fields"`
}

// readColumns returns the columns visible for list or show.
func (r *Resource) readColumns(list bool) []string {
	cols := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if (list && f.List) || (!list && f.Show) {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// writableField reports whether name may be set on create or edit.
func (r *Resource) writableField(name string, create bool) bool {
	for _, f := range r.Fields {
		if f.Name != name {
			continue
		}
		if create {
			return f.Create
		}
		return f.Edit
	}
	return false
}

// rw is shorthand for a fully visible, fully writable field.
func rw(name string) Field {
	return Field{Name: name, List: true, Show: true, Create: true, Edit: true}
}

// ro is shorthand for a read-only field (ids, timestamps).
func ro(name string) Field {
	return Field{Name: name, List: true, Show: true}
}

// Resources is the declarative per-entity field-visibility table. The table
// and column names here are the only identifiers that ever reach the store's
// generic CRUD queries; request input selects among them but never extends
// them.
var Resources = map[string]*Resource{
	"users": {
		Name:    "users",
		Table:   "users",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("username"),
			rw("email"),
			rw("full_name"),
			rw("avatar_url"),
			rw("cover_url"),
			// Settable on create only, never read back.
			{Name: "password_hash", Create: true},
			// refresh_token is hidden everywhere.
			ro("created_at"),
			ro("updated_at"),
		},
	},
	"videos": {
		Name:    "videos",
		Table:   "videos",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("owner_id"),
			rw("title"),
			rw("description"),
			rw("video_url"),
			rw("thumbnail_url"),
			rw("duration"),
			rw("is_published"),
			ro("created_at"),
			ro("updated_at"),
		},
	},
	"comments": {
		Name:    "comments",
		Table:   "comments",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("video_id"),
			rw("owner_id"),
			rw("content"),
			ro("created_at"),
			ro("updated_at"),
		},
	},
	"likes": {
		Name:    "likes",
		Table:   "likes",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("target_kind"),
			rw("target_id"),
			rw("liked_by"),
			ro("created_at"),
		},
	},
	"subscriptions": {
		Name:    "subscriptions",
		Table:   "subscriptions",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("subscriber_id"),
			rw("channel_id"),
			ro("created_at"),
		},
	},
	"playlists": {
		Name:    "playlists",
		Table:   "playlists",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("owner_id"),
			rw("name"),
			rw("description"),
			ro("created_at"),
			ro("updated_at"),
		},
	},
	"tweets": {
		Name:    "tweets",
		Table:   "tweets",
		OrderBy: "created_at DESC",
		Fields: []Field{
			ro("id"),
			rw("owner_id"),
			rw("content"),
			ro("created_at"),
			ro("updated_at"),
		},
	},
}
