// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/daylog-go/internal/model"
)

const eventColumns = "id, seq, type, ts, date_key, payload, weather_temp, weather_hum"

// CreateEvent persists a new event. A missing ID is assigned here; the date
// key is always recomputed from the timestamp. No other event is touched.
func (q *Queries) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.DateKey = model.DateKeyFor(ev.TS)

	payload, err := model.EncodePayload(ev.Payload)
	if err != nil {
		return model.Event{}, err
	}
	temp, hum := weatherColumns(ev.Weather)

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (id, type, ts, date_key, payload, weather_temp, weather_hum)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Type, ev.TS, ev.DateKey, payload, temp, hum)
	if err != nil {
		return model.Event{}, fmt.Errorf("inserting event: %w", err)
	}
	if ev.Seq, err = res.LastInsertId(); err != nil {
		return model.Event{}, fmt.Errorf("reading event seq: %w", err)
	}
	return ev, nil
}

// UpdateEvent fully replaces the stored event with the same ID, preserving the
// insertion order. The date key is recomputed from the (possibly changed)
// timestamp. Returns ErrNotFound when the ID is unknown.
func (q *Queries) UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	ev.DateKey = model.DateKeyFor(ev.TS)

	payload, err := model.EncodePayload(ev.Payload)
	if err != nil {
		return model.Event{}, err
	}
	temp, hum := weatherColumns(ev.Weather)

	res, err := q.db.ExecContext(ctx,
		`UPDATE events
		 SET type = ?, ts = ?, date_key = ?, payload = ?, weather_temp = ?, weather_hum = ?
		 WHERE id = ?`,
		ev.Type, ev.TS, ev.DateKey, payload, temp, hum, ev.ID)
	if err != nil {
		return model.Event{}, fmt.Errorf("updating event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Event{}, fmt.Errorf("updating event: %w", err)
	}
	if affected == 0 {
		return model.Event{}, fmt.Errorf("event %s: %w", ev.ID, ErrNotFound)
	}
	return q.GetEventByID(ctx, ev.ID)
}

// UpsertEvent inserts an event under its existing ID, overwriting any stored
// event with the same ID. Used by snapshot import, where duplicate keys
// overwrite rather than merge.
func (q *Queries) UpsertEvent(ctx context.Context, ev model.Event) error {
	if ev.ID == "" {
		return fmt.Errorf("upserting event: missing id")
	}
	ev.DateKey = model.DateKeyFor(ev.TS)

	payload, err := model.EncodePayload(ev.Payload)
	if err != nil {
		return err
	}
	temp, hum := weatherColumns(ev.Weather)

	_, err = q.db.ExecContext(ctx,
		`INSERT INTO events (id, type, ts, date_key, payload, weather_temp, weather_hum)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   type = excluded.type, ts = excluded.ts, date_key = excluded.date_key,
		   payload = excluded.payload, weather_temp = excluded.weather_temp,
		   weather_hum = excluded.weather_hum`,
		ev.ID, ev.Type, ev.TS, ev.DateKey, payload, temp, hum)
	if err != nil {
		return fmt.Errorf("upserting event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event. Idempotent: deleting an unknown ID is a no-op.
func (q *Queries) DeleteEvent(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// GetEventByID fetches a single event.
func (q *Queries) GetEventByID(ctx context.Context, id string) (model.Event, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return model.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return ev, err
}

// ListEvents returns all events ordered by timestamp ascending. Events that
// share a timestamp keep their insertion order.
func (q *Queries) ListEvents(ctx context.Context) ([]model.Event, error) {
	return q.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY ts, seq`)
}

// ListEventsBetween returns events with from <= ts <= to, ordered by timestamp
// ascending with insertion-order tie-break.
func (q *Queries) ListEventsBetween(ctx context.Context, from, to int64) ([]model.Event, error) {
	return q.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE ts >= ? AND ts <= ? ORDER BY ts, seq`,
		from, to)
}

// ListEventsByDateKey returns all events of one local calendar day.
func (q *Queries) ListEventsByDateKey(ctx context.Context, dateKey string) ([]model.Event, error) {
	return q.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date_key = ? ORDER BY ts, seq`,
		dateKey)
}

// CountEvents returns the total number of stored events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

func (q *Queries) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var (
		ev      model.Event
		payload sql.NullString
		temp    sql.NullFloat64
		hum     sql.NullFloat64
	)
	err := row.Scan(&ev.ID, &ev.Seq, &ev.Type, &ev.TS, &ev.DateKey, &payload, &temp, &hum)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Event{}, err
		}
		return model.Event{}, fmt.Errorf("scanning event: %w", err)
	}
	if payload.Valid {
		if ev.Payload, err = model.DecodePayload(ev.Type, []byte(payload.String)); err != nil {
			return model.Event{}, fmt.Errorf("decoding payload for event %s: %w", ev.ID, err)
		}
	}
	if temp.Valid && hum.Valid {
		ev.Weather = &model.Reading{Temp: temp.Float64, Hum: hum.Float64}
	}
	return ev, nil
}

func weatherColumns(r *model.Reading) (temp, hum any) {
	if r == nil {
		return nil, nil
	}
	return r.Temp, r.Hum
}
