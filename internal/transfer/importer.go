// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olegiv/daylog-go/internal/store"
)

// Importer writes a Snapshot back into the database. Import is an upsert, not
// a merge: rows with duplicate primary keys are overwritten verbatim.
type Importer struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewImporter creates a new Importer instance.
func NewImporter(db *sql.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// Import applies the snapshot inside a single transaction. Events are written
// in snapshot order, so their store insertion order (the same-timestamp
// tie-break) matches the exported order.
func (i *Importer) Import(ctx context.Context, snap *Snapshot) error {
	if snap.Version == "" {
		return fmt.Errorf("snapshot has no version")
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := store.New(tx)

	for _, ev := range snap.Events {
		if err := q.UpsertEvent(ctx, ev); err != nil {
			return fmt.Errorf("importing event %s: %w", ev.ID, err)
		}
	}
	for _, day := range snap.Weather {
		if err := q.PutWeatherDay(ctx, day); err != nil {
			return fmt.Errorf("importing weather day %s: %w", day.Key(), err)
		}
	}
	for _, s := range snap.Settings {
		if err := q.SetSetting(ctx, s.Key, s.Value); err != nil {
			return fmt.Errorf("importing setting %q: %w", s.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	i.logger.Info("imported snapshot",
		"version", snap.Version,
		"events", len(snap.Events),
		"weather_days", len(snap.Weather),
		"settings", len(snap.Settings))
	return nil
}
