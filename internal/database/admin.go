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

	"github.com/clipstream/clipstream/internal/metrics"
)

// Generic row operations backing the admin surface. Table and column names
// come from the static resource descriptors in internal/admin, never from
// request input, so interpolating them is safe.

// AdminList returns one page of rows projected to columns, plus the total
// row count.
func (db *DB) AdminList(ctx context.Context, table string, columns []string, orderBy string, page, limit int) ([]map[string]interface{}, int64, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?`,
		strings.Join(columns, ", "), table, orderBy)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit, (page-1)*limit)
	metrics.RecordDBQuery("select", table, time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer closeWithLog(rows, "admin list rows")

	records := []map[string]interface{}{}
	for rows.Next() {
		record, err := scanRecord(rows, columns)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

// AdminGet returns one row projected to columns.
func (db *DB) AdminGet(ctx context.Context, table string, columns []string, id string) (map[string]interface{}, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, strings.Join(columns, ", "), table)

	rows, err := db.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s row: %w", table, err)
	}
	defer closeWithLog(rows, "admin get rows")

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanRecord(rows, columns)
}

// AdminInsert creates a row from parallel column/value slices.
func (db *DB) AdminInsert(ctx context.Context, table string, columns []string, values []interface{}) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table, strings.Join(columns, ", "), placeholders)

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, values...)
	metrics.RecordDBQuery("insert", table, time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("row violates a unique constraint: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// AdminUpdate edits a row's columns by id.
func (db *DB) AdminUpdate(ctx context.Context, table string, columns []string, values []interface{}, id string) error {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, strings.Join(sets, ", "))

	args := append(append([]interface{}{}, values...), id)
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("row violates a unique constraint: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return requireRowsAffected(res)
}

// AdminDelete removes a row by id.
func (db *DB) AdminDelete(ctx context.Context, table, id string) error {
	res, err := db.conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireRowsAffected(res)
}

// scanRecord reads the current row into a column-keyed map.
func scanRecord(rows *sql.Rows, columns []string) (map[string]interface{}, error) {
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	record := make(map[string]interface{}, len(columns))
	for i, c := range columns {
		record[c] = values[i]
	}
	return record, nil
}
