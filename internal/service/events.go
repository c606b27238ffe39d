// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic layer: event writes with
// best-effort weather enrichment, cycle derivation and per-cycle statistics.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/olegiv/daylog-go/internal/cycle"
	"github.com/olegiv/daylog-go/internal/model"
	"github.com/olegiv/daylog-go/internal/store"
	"github.com/olegiv/daylog-go/internal/weather"
)

// EventService owns all reads and writes of the event log.
type EventService struct {
	queries *store.Queries
	weather *weather.Service
	logger  *slog.Logger
}

// NewEventService creates a new EventService. The weather service may be nil,
// in which case no enrichment is attempted.
func NewEventService(db *sql.DB, weatherSvc *weather.Service, logger *slog.Logger) *EventService {
	return &EventService{
		queries: store.New(db),
		weather: weatherSvc,
		logger:  logger,
	}
}

// Append validates and stores a new event. Sleep-boundary and wake events get
// a weather reading attached when one can be resolved; enrichment failures
// never block the write.
func (s *EventService) Append(ctx context.Context, ev model.Event) (model.Event, error) {
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	s.enrich(ctx, &ev)
	return s.queries.CreateEvent(ctx, ev)
}

// Update validates and fully replaces a stored event, re-running weather
// enrichment against the (possibly edited) timestamp. Returns
// store.ErrNotFound when the id is unknown.
func (s *EventService) Update(ctx context.Context, ev model.Event) (model.Event, error) {
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	s.enrich(ctx, &ev)
	return s.queries.UpdateEvent(ctx, ev)
}

// Delete removes an event; unknown ids are a no-op.
func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.queries.DeleteEvent(ctx, id)
}

// List returns all events ordered by timestamp.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.queries.ListEvents(ctx)
}

// ListBetween returns events in the inclusive [from, to] range.
func (s *EventService) ListBetween(ctx context.Context, from, to int64) ([]model.Event, error) {
	return s.queries.ListEventsBetween(ctx, from, to)
}

// Cycles re-derives the full cycle list from all stored events.
func (s *EventService) Cycles(ctx context.Context, now time.Time) ([]cycle.Cycle, error) {
	events, err := s.queries.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return cycle.Build(events, now), nil
}

// StatsFor computes the statistics of one cycle from a fresh range query over
// [StartTS, EndTS ?? now]. Nothing is cached.
func (s *EventService) StatsFor(ctx context.Context, c cycle.Cycle, now time.Time) (cycle.Stats, error) {
	end := now.UnixMilli()
	if c.EndTS != nil {
		end = *c.EndTS
	}
	events, err := s.queries.ListEventsBetween(ctx, c.StartTS, end)
	if err != nil {
		return cycle.Stats{}, err
	}
	return cycle.Compute(c, events), nil
}

// enrich attaches a weather reading to weather-eligible events. Weather is
// populated at write time only: any previously attached reading is replaced,
// or dropped when no reading resolves.
func (s *EventService) enrich(ctx context.Context, ev *model.Event) {
	ev.Weather = nil
	if s.weather == nil || !ev.Type.WeatherEligible() {
		return
	}

	reading, err := s.weather.ReadingForTimestamp(ctx, ev.TS)
	if err != nil {
		s.logger.Warn("weather enrichment failed",
			"event_type", ev.Type, "ts", ev.TS, "error", err)
		return
	}
	if reading != nil {
		ev.Weather = reading.Reading()
	}
}
