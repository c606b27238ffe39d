// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package weather

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/daylog-go/internal/cache"
	"github.com/olegiv/daylog-go/internal/location"
	"github.com/olegiv/daylog-go/internal/model"
	"github.com/olegiv/daylog-go/internal/store"
)

// PointReading is the result of a timestamp lookup: the nearest hourly sample
// plus the coordinates it was resolved for.
type PointReading struct {
	Temp float64 `json:"temp"`
	Hum  float64 `json:"hum"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Reading converts to the attachable event form.
func (p PointReading) Reading() *model.Reading {
	return &model.Reading{Temp: p.Temp, Hum: p.Hum}
}

// Service combines the Open-Meteo client, the durable weather_cache
// collection and an in-memory/Redis front cache.
type Service struct {
	queries  *store.Queries
	client   *Client
	front    cache.Cacher
	resolver location.Resolver
	logger   *slog.Logger
}

// NewService creates a weather service.
func NewService(queries *store.Queries, client *Client, front cache.Cacher, resolver location.Resolver, logger *slog.Logger) *Service {
	return &Service{
		queries:  queries,
		client:   client,
		front:    front,
		resolver: resolver,
		logger:   logger,
	}
}

// DailySeries returns the cached weather day for (dateKey, lat, lon), fetching
// and persisting it on first use. A key that already holds a non-empty record
// is final and is never refetched. Upstream failures surface as *FetchError.
func (s *Service) DailySeries(ctx context.Context, dateKey string, lat, lon float64) (model.WeatherDay, error) {
	lat, lon = model.RoundCoord(lat), model.RoundCoord(lon)
	key := model.WeatherCacheKey(dateKey, lat, lon)

	if day, ok := s.fromFront(ctx, key); ok && !day.Empty() {
		return day, nil
	}

	day, err := s.queries.GetWeatherDay(ctx, key)
	switch {
	case err == nil && !day.Empty():
		s.toFront(ctx, key, day)
		return day, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return model.WeatherDay{}, err
	}

	day, err = s.client.FetchDay(ctx, dateKey, lat, lon)
	if err != nil {
		return model.WeatherDay{}, err
	}

	if err := s.queries.PutWeatherDay(ctx, day); err != nil {
		return model.WeatherDay{}, err
	}
	s.toFront(ctx, key, day)

	s.logger.Info("cached weather day",
		"date_key", dateKey, "lat", lat, "lon", lon, "hours", len(day.Hours))
	return day, nil
}

// ReadingForTimestamp resolves the current location, loads the weather day
// containing ts and returns the nearest hourly sample. A nil result (no
// location, no sample) is a normal outcome; only fetch and storage problems
// are errors.
func (s *Service) ReadingForTimestamp(ctx context.Context, ts int64) (*PointReading, error) {
	coords, err := s.resolver.Resolve(ctx)
	if err != nil || coords == nil {
		return nil, nil
	}

	day, err := s.DailySeries(ctx, model.DateKeyFor(ts), coords.Lat, coords.Lon)
	if err != nil {
		return nil, err
	}

	reading := day.NearestReading(ts)
	if reading == nil {
		return nil, nil
	}
	return &PointReading{
		Temp: reading.Temp,
		Hum:  reading.Hum,
		Lat:  coords.Lat,
		Lon:  coords.Lon,
	}, nil
}

// WarmToday prefetches today's weather day for the resolved location so that
// sleep events written tonight hit a warm cache.
func (s *Service) WarmToday(ctx context.Context, now time.Time) error {
	coords, err := s.resolver.Resolve(ctx)
	if err != nil || coords == nil {
		return nil
	}
	_, err = s.DailySeries(ctx, model.DateKeyFor(now.UnixMilli()), coords.Lat, coords.Lon)
	return err
}

func (s *Service) fromFront(ctx context.Context, key string) (model.WeatherDay, bool) {
	if s.front == nil {
		return model.WeatherDay{}, false
	}
	raw, err := s.front.Get(ctx, key)
	if err != nil {
		return model.WeatherDay{}, false
	}
	var day model.WeatherDay
	if err := json.Unmarshal(raw, &day); err != nil {
		return model.WeatherDay{}, false
	}
	return day, true
}

func (s *Service) toFront(ctx context.Context, key string, day model.WeatherDay) {
	if s.front == nil {
		return
	}
	raw, err := json.Marshal(day)
	if err != nil {
		return
	}
	if err := s.front.Set(ctx, key, raw, 0); err != nil {
		s.logger.Debug("front cache set failed", "key", key, "error", err)
	}
}
