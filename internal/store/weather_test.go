// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/daylog-go/internal/model"
	"github.com/olegiv/daylog-go/internal/store"
)

func fptr(v float64) *float64 { return &v }

func sampleDay(dateKey string) model.WeatherDay {
	day := model.WeatherDay{
		DateKey:   dateKey,
		Lat:       41.387,
		Lon:       2.169,
		Hours:     []int64{0, 3600_000, 7200_000},
		Temps:     []*float64{fptr(10), fptr(12.5), nil},
		Hums:      []*float64{fptr(80), nil, fptr(60)},
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	day.ComputeExtrema()
	return day
}

func TestWeatherDayRoundTrip(t *testing.T) {
	q, _ := newQueries(t)
	ctx := context.Background()

	day := sampleDay("2026-03-15")
	if err := q.PutWeatherDay(ctx, day); err != nil {
		t.Fatalf("PutWeatherDay: %v", err)
	}

	got, err := q.GetWeatherDay(ctx, day.Key())
	if err != nil {
		t.Fatalf("GetWeatherDay: %v", err)
	}
	if got.DateKey != day.DateKey || got.Lat != day.Lat || got.Lon != day.Lon {
		t.Errorf("identity = %s/%v/%v, want %s/%v/%v",
			got.DateKey, got.Lat, got.Lon, day.DateKey, day.Lat, day.Lon)
	}
	if len(got.Hours) != 3 || got.Hours[1] != 3600_000 {
		t.Errorf("hours = %v", got.Hours)
	}
	if got.Temps[2] != nil {
		t.Error("nil temperature sample not preserved")
	}
	if got.Temps[1] == nil || *got.Temps[1] != 12.5 {
		t.Errorf("temps[1] = %v, want 12.5", got.Temps[1])
	}
	if got.MinTemp != 10 || got.MaxTemp != 12.5 {
		t.Errorf("temp extrema = %v/%v", got.MinTemp, got.MaxTemp)
	}
}

func TestPutWeatherDayOverwrites(t *testing.T) {
	q, _ := newQueries(t)
	ctx := context.Background()

	day := sampleDay("2026-03-15")
	if err := q.PutWeatherDay(ctx, day); err != nil {
		t.Fatalf("first put: %v", err)
	}

	day.Temps = []*float64{fptr(5), fptr(6), fptr(7)}
	day.ComputeExtrema()
	if err := q.PutWeatherDay(ctx, day); err != nil {
		t.Fatalf("second put: %v", err)
	}

	days, err := q.ListWeatherDays(ctx)
	if err != nil {
		t.Fatalf("ListWeatherDays: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
	if days[0].MaxTemp != 7 {
		t.Errorf("maxTemp = %v, want 7 after overwrite", days[0].MaxTemp)
	}
}

func TestGetWeatherDayMissing(t *testing.T) {
	q, _ := newQueries(t)

	_, err := q.GetWeatherDay(context.Background(), "2026-01-01:0.000:0.000")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	q, _ := newQueries(t)
	ctx := context.Background()

	if err := q.SetSetting(ctx, "theme", "dark"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := q.SetSetting(ctx, "theme", "light"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	if err := q.SetSetting(ctx, "units", "metric"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	s, err := q.GetSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if s.Value != "light" {
		t.Errorf("theme = %q, want light", s.Value)
	}

	all, err := q.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d settings, want 2", len(all))
	}

	if _, err := q.GetSetting(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing key err = %v, want ErrNotFound", err)
	}
}
