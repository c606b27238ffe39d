// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/daylog-go/internal/model"
)

// SetSetting upserts a settings row.
func (q *Queries) SetSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("upserting setting %q: %w", key, err)
	}
	return nil
}

// GetSetting fetches a settings row. Returns ErrNotFound for unknown keys.
func (q *Queries) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	err := q.db.QueryRowContext(ctx,
		`SELECT key, value FROM settings WHERE key = ?`, key).Scan(&s.Key, &s.Value)
	if err == sql.ErrNoRows {
		return model.Setting{}, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return model.Setting{}, fmt.Errorf("reading setting %q: %w", key, err)
	}
	return s, nil
}

// ListSettings returns all settings ordered by key.
func (q *Queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return settings, nil
}
