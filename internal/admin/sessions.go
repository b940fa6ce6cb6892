// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

// Package admin implements the operator surface: a badger-backed session
// store, an email allow-list login, and a generic CRUD API driven by a
// declarative per-entity field-visibility table.
package admin

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/metrics"
)

const sessionKeyPrefix = "session:"

var (
	// ErrSessionNotFound marks an unknown or deleted session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired marks a session past its TTL.
	ErrSessionExpired = errors.New("session expired")
)

// Session is one live admin login.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session TTL has lapsed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionStore keeps admin sessions in badger so logins survive restarts.
type SessionStore struct {
	db     *badger.DB
	secret []byte
	ttl    time.Duration
	stopGC chan struct{}
}

// OpenSessionStore opens (or creates) the badger store at path. An empty
// path opens an in-memory store for tests.
func OpenSessionStore(path, secret string, ttl time.Duration) (*SessionStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	s := &SessionStore{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		stopGC: make(chan struct{}),
	}
	go s.runGC()
	return s, nil
}

// Close stops GC and closes badger.
func (s *SessionStore) Close() error {
	close(s.stopGC)
	return s.db.Close()
}

// Create issues a new session for email and returns it with a signed cookie
// value.
func (s *SessionStore) Create(ctx context.Context, email string) (*Session, string, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(sessionKeyPrefix+session.ID), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	metrics.AdminSessionsActive.Inc()
	return session, s.signCookie(session.ID), nil
}

// Get resolves a signed cookie value to a live session.
func (s *SessionStore) Get(ctx context.Context, cookieValue string) (*Session, error) {
	id, err := s.verifyCookie(cookieValue)
	if err != nil {
		return nil, err
	}

	var session Session
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Delete removes a session; missing sessions are a no-op.
func (s *SessionStore) Delete(ctx context.Context, cookieValue string) error {
	id, err := s.verifyCookie(cookieValue)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	metrics.AdminSessionsActive.Dec()
	return nil
}

// signCookie binds the session id to the configured secret so a forged
// cookie cannot probe session ids.
func (s *SessionStore) signCookie(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	return id + "." + hex.EncodeToString(mac.Sum(nil))
}

func (s *SessionStore) verifyCookie(value string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok {
		return "", ErrSessionNotFound
	}
	if !hmac.Equal([]byte(s.signCookie(id)), []byte(id+"."+sig)) {
		return "", ErrSessionNotFound
	}
	return id, nil
}

// runGC runs badger value-log GC on a slow cadence. Expired session entries
// are dropped by their badger TTL; this reclaims the space.
func (s *SessionStore) runGC() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				if err := s.db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
		case <-s.stopGC:
			return
		}
	}
}

// closeQuietly is used by handlers for deferred body closes.
func closeQuietly(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("Close failed")
	}
}
