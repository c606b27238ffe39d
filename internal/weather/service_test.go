// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package weather_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/daylog-go/internal/cache"
	"github.com/olegiv/daylog-go/internal/location"
	"github.com/olegiv/daylog-go/internal/store"
	"github.com/olegiv/daylog-go/internal/testutil"
	"github.com/olegiv/daylog-go/internal/weather"
)

// fakeForecast serves a minimal Open-Meteo hourly payload and counts requests.
func fakeForecast(t *testing.T, status int, hours []int64) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("hourly"); got != "temperature_2m,relative_humidity_2m" {
			t.Errorf("hourly = %q", got)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		times, temps, hums := "", "", ""
		for i, h := range hours {
			if i > 0 {
				times, temps, hums = times+",", temps+",", hums+","
			}
			times += fmt.Sprintf("%d", h/1000)
			temps += fmt.Sprintf("%g", 10.0+float64(i))
			hums += fmt.Sprintf("%g", 70.0-float64(i))
		}
		fmt.Fprintf(w, `{"hourly":{"time":[%s],"temperature_2m":[%s],"relative_humidity_2m":[%s]}}`,
			times, temps, hums)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newService(t *testing.T, baseURL string, resolver location.Resolver) *weather.Service {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	front := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = front.Close() })
	return weather.NewService(store.New(db), weather.NewClient(baseURL),
		front, resolver, testutil.TestLoggerSilent())
}

func TestDailySeriesFetchesOnceThenCaches(t *testing.T) {
	hour := int64(3600_000)
	srv, calls := fakeForecast(t, http.StatusOK, []int64{0, hour, 2 * hour})
	svc := newService(t, srv.URL, location.Static{})
	ctx := context.Background()

	day, err := svc.DailySeries(ctx, "2026-03-15", 41.387, 2.169)
	require.NoError(t, err)
	require.Len(t, day.Hours, 3)
	assert.Equal(t, hour, day.Hours[1])
	require.NotNil(t, day.Temps[1])
	assert.Equal(t, 11.0, *day.Temps[1])
	assert.Equal(t, 10.0, day.MinTemp)
	assert.Equal(t, 12.0, day.MaxTemp)

	// A non-empty cached day is final: no second upstream call.
	_, err = svc.DailySeries(ctx, "2026-03-15", 41.387, 2.169)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// A different coordinate bucket is a distinct key and fetches again.
	_, err = svc.DailySeries(ctx, "2026-03-15", 48.857, 2.352)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDailySeriesUpstreamFailure(t *testing.T) {
	srv, _ := fakeForecast(t, http.StatusInternalServerError, nil)
	svc := newService(t, srv.URL, location.Static{})

	_, err := svc.DailySeries(context.Background(), "2026-03-15", 41.387, 2.169)
	require.Error(t, err)

	var fetchErr *weather.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

func TestReadingForTimestamp(t *testing.T) {
	hour := int64(3600_000)
	srv, _ := fakeForecast(t, http.StatusOK, []int64{0, hour, 2 * hour})
	coords := location.Coordinates{Lat: 41.387, Lon: 2.169}
	svc := newService(t, srv.URL, location.Static{Coords: coords})

	// 10 minutes past hour 1; the fake serves the same hours regardless of
	// the requested date.
	r, err := svc.ReadingForTimestamp(context.Background(), hour+600_000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 11.0, r.Temp)
	assert.Equal(t, 69.0, r.Hum)
	assert.Equal(t, coords.Lat, r.Lat)
	assert.Equal(t, coords.Lon, r.Lon)
}

func TestReadingForTimestampNoLocation(t *testing.T) {
	srv, calls := fakeForecast(t, http.StatusOK, []int64{0})
	svc := newService(t, srv.URL, location.Chain{})

	r, err := svc.ReadingForTimestamp(context.Background(), 1000)
	require.NoError(t, err, "missing location is not an error")
	assert.Nil(t, r)
	assert.Equal(t, int32(0), calls.Load(), "no fetch without a position")
}

func TestWarmToday(t *testing.T) {
	srv, calls := fakeForecast(t, http.StatusOK, []int64{0, 3600_000})
	svc := newService(t, srv.URL, location.Static{Coords: location.Coordinates{Lat: 1, Lon: 2}})

	require.NoError(t, svc.WarmToday(context.Background(), time.Now()))
	assert.Equal(t, int32(1), calls.Load())

	// Warming again is a cache hit.
	require.NoError(t, svc.WarmToday(context.Background(), time.Now()))
	assert.Equal(t, int32(1), calls.Load())
}
