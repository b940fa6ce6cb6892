// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/clipstream/clipstream/internal/logging"
)

var (
	// ErrNotFound is returned when an entity does not exist, or when an
	// owner-filtered mutation matched zero rows.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrSelfSubscription is returned when a user toggles a subscription to
	// their own channel.
	ErrSelfSubscription = errors.New("cannot subscribe to own channel")

	// ErrNothingToUpdate is returned when an update request carries no fields.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// isUniqueViolation reports whether err is a DuckDB unique/primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "PRIMARY KEY or UNIQUE constraint")
}

// closeWithLog closes a resource and logs any error. For cleanup paths where
// a failure should be acknowledged but not propagate.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error. For error
// paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
