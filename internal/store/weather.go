// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/olegiv/daylog-go/internal/model"
)

const weatherColumnsList = "cache_key, date_key, lat, lon, hours, temps, hums, min_temp, max_temp, min_hum, max_hum, fetched_at"

// PutWeatherDay upserts a cached weather day under its composite key.
func (q *Queries) PutWeatherDay(ctx context.Context, day model.WeatherDay) error {
	hours, err := json.Marshal(day.Hours)
	if err != nil {
		return fmt.Errorf("encoding hours: %w", err)
	}
	temps, err := json.Marshal(day.Temps)
	if err != nil {
		return fmt.Errorf("encoding temps: %w", err)
	}
	hums, err := json.Marshal(day.Hums)
	if err != nil {
		return fmt.Errorf("encoding hums: %w", err)
	}

	_, err = q.db.ExecContext(ctx,
		`INSERT INTO weather_cache (`+weatherColumnsList+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   date_key = excluded.date_key, lat = excluded.lat, lon = excluded.lon,
		   hours = excluded.hours, temps = excluded.temps, hums = excluded.hums,
		   min_temp = excluded.min_temp, max_temp = excluded.max_temp,
		   min_hum = excluded.min_hum, max_hum = excluded.max_hum,
		   fetched_at = excluded.fetched_at`,
		day.Key(), day.DateKey, day.Lat, day.Lon,
		string(hours), string(temps), string(hums),
		day.MinTemp, day.MaxTemp, day.MinHum, day.MaxHum, day.FetchedAt)
	if err != nil {
		return fmt.Errorf("upserting weather day: %w", err)
	}
	return nil
}

// GetWeatherDay fetches a cached weather day by its composite key.
// Returns ErrNotFound when the key has never been cached.
func (q *Queries) GetWeatherDay(ctx context.Context, cacheKey string) (model.WeatherDay, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+weatherColumnsList+` FROM weather_cache WHERE cache_key = ?`, cacheKey)
	day, err := scanWeatherDay(row)
	if err == sql.ErrNoRows {
		return model.WeatherDay{}, fmt.Errorf("weather day %s: %w", cacheKey, ErrNotFound)
	}
	return day, err
}

// ListWeatherDays returns every cached weather day, ordered by key.
func (q *Queries) ListWeatherDays(ctx context.Context) ([]model.WeatherDay, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+weatherColumnsList+` FROM weather_cache ORDER BY cache_key`)
	if err != nil {
		return nil, fmt.Errorf("querying weather days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []model.WeatherDay
	for rows.Next() {
		day, err := scanWeatherDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading weather days: %w", err)
	}
	return days, nil
}

func scanWeatherDay(row rowScanner) (model.WeatherDay, error) {
	var (
		day               model.WeatherDay
		cacheKey          string
		hours, temps, hum string
	)
	err := row.Scan(&cacheKey, &day.DateKey, &day.Lat, &day.Lon,
		&hours, &temps, &hum,
		&day.MinTemp, &day.MaxTemp, &day.MinHum, &day.MaxHum, &day.FetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.WeatherDay{}, err
		}
		return model.WeatherDay{}, fmt.Errorf("scanning weather day: %w", err)
	}
	if err := json.Unmarshal([]byte(hours), &day.Hours); err != nil {
		return model.WeatherDay{}, fmt.Errorf("decoding hours for %s: %w", cacheKey, err)
	}
	if err := json.Unmarshal([]byte(temps), &day.Temps); err != nil {
		return model.WeatherDay{}, fmt.Errorf("decoding temps for %s: %w", cacheKey, err)
	}
	if err := json.Unmarshal([]byte(hum), &day.Hums); err != nil {
		return model.WeatherDay{}, fmt.Errorf("decoding hums for %s: %w", cacheKey, err)
	}
	return day, nil
}
