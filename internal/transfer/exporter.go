// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/daylog-go/internal/store"
)

// Exporter reads all three collections into a Snapshot.
type Exporter struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewExporter creates a new Exporter instance.
func NewExporter(queries *store.Queries, logger *slog.Logger) *Exporter {
	return &Exporter{queries: queries, logger: logger}
}

// Export produces a full snapshot. Events are exported in timestamp order
// (insertion order on ties) so re-importing preserves the store iteration
// order the cycle builder depends on.
func (e *Exporter) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
	}

	events, err := e.queries.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	snap.Events = events

	weather, err := e.queries.ListWeatherDays(ctx)
	if err != nil {
		return nil, err
	}
	snap.Weather = weather

	settings, err := e.queries.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	snap.Settings = settings

	e.logger.Info("exported snapshot",
		"events", len(snap.Events),
		"weather_days", len(snap.Weather),
		"settings", len(snap.Settings))
	return snap, nil
}
