// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package weather fetches and caches per-day hourly weather series and
// answers nearest-sample lookups for event timestamps.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/daylog-go/internal/model"
)

const (
	// DefaultBaseURL is the public Open-Meteo endpoint.
	DefaultBaseURL = "https://api.open-meteo.com"

	fetchTimeout = 10 * time.Second
)

// FetchError reports a failed upstream weather call (transport error or
// non-2xx status). Callers attaching weather to events must catch it and
// degrade to "no weather" instead of failing the write.
type FetchError struct {
	StatusCode int
	Err        error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("weather fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("weather fetch failed: status %d", e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client talks to the Open-Meteo forecast API. Outbound calls share a rate
// limiter so cache misses cannot hammer the public endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given base URL (empty = DefaultBaseURL).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: fetchTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// forecastResponse matches the Open-Meteo hourly forecast payload with
// timeformat=unixtime. Hours without data arrive as null.
type forecastResponse struct {
	Hourly struct {
		Time             []int64    `json:"time"`
		Temperature2m    []*float64 `json:"temperature_2m"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
}

// FetchDay retrieves one calendar day of hourly temperature and relative
// humidity for the rounded coordinates and computes the day's extrema.
func (c *Client) FetchDay(ctx context.Context, dateKey string, lat, lon float64) (model.WeatherDay, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.WeatherDay{}, &FetchError{Err: err}
	}

	lat, lon = model.RoundCoord(lat), model.RoundCoord(lon)

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.3f", lat))
	q.Set("longitude", fmt.Sprintf("%.3f", lon))
	q.Set("hourly", "temperature_2m,relative_humidity_2m")
	q.Set("start_date", dateKey)
	q.Set("end_date", dateKey)
	q.Set("timeformat", "unixtime")
	q.Set("timezone", "auto")

	reqURL := c.baseURL + "/v1/forecast?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.WeatherDay{}, &FetchError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.WeatherDay{}, &FetchError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.WeatherDay{}, &FetchError{StatusCode: resp.StatusCode}
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.WeatherDay{}, &FetchError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	day := model.WeatherDay{
		DateKey:   dateKey,
		Lat:       lat,
		Lon:       lon,
		Hours:     make([]int64, len(payload.Hourly.Time)),
		Temps:     payload.Hourly.Temperature2m,
		Hums:      payload.Hourly.RelativeHumidity,
		FetchedAt: time.Now().UTC(),
	}
	for i, sec := range payload.Hourly.Time {
		day.Hours[i] = sec * 1000
	}
	day.ComputeExtrema()
	return day, nil
}
