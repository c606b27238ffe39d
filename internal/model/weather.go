// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"math"
	"time"
)

// CoordPrecision is the number of decimal places coordinates are rounded to
// before they take part in a weather cache key.
const CoordPrecision = 3

// RoundCoord rounds a coordinate to CoordPrecision decimal places.
func RoundCoord(v float64) float64 {
	scale := math.Pow10(CoordPrecision)
	return math.Round(v*scale) / scale
}

// WeatherCacheKey builds the composite key of a cached weather day.
func WeatherCacheKey(dateKey string, lat, lon float64) string {
	return fmt.Sprintf("%s:%.3f:%.3f", dateKey, RoundCoord(lat), RoundCoord(lon))
}

// WeatherDay is one calendar day of cached hourly weather for one location.
// Hours, Temps and Hums are parallel, index-aligned sequences; a nil entry in
// Temps or Hums means the provider had no sample for that hour.
type WeatherDay struct {
	DateKey   string     `json:"dateKey"`
	Lat       float64    `json:"lat"`
	Lon       float64    `json:"lon"`
	Hours     []int64    `json:"hours"` // ascending, hour-aligned epoch ms
	Temps     []*float64 `json:"temps"`
	Hums      []*float64 `json:"hums"`
	MinTemp   float64    `json:"minTemp"`
	MaxTemp   float64    `json:"maxTemp"`
	MinHum    float64    `json:"minHum"`
	MaxHum    float64    `json:"maxHum"`
	FetchedAt time.Time  `json:"fetchedAt"` // diagnostics only, no TTL eviction
}

// Key returns the composite cache key of this record.
func (d WeatherDay) Key() string {
	return WeatherCacheKey(d.DateKey, d.Lat, d.Lon)
}

// Empty reports whether the record has no hourly samples. Empty records are
// not treated as complete and may be refetched.
func (d WeatherDay) Empty() bool {
	return len(d.Hours) == 0
}

// ComputeExtrema recalculates the min/max temperature and humidity over the
// non-nil samples of the day.
func (d *WeatherDay) ComputeExtrema() {
	d.MinTemp, d.MaxTemp = extrema(d.Temps)
	d.MinHum, d.MaxHum = extrema(d.Hums)
}

func extrema(vals []*float64) (minV, maxV float64) {
	first := true
	for _, v := range vals {
		if v == nil {
			continue
		}
		if first {
			minV, maxV = *v, *v
			first = false
			continue
		}
		minV = math.Min(minV, *v)
		maxV = math.Max(maxV, *v)
	}
	return minV, maxV
}

// NearestReading returns the hourly sample closest in time to ts, or nil when
// the day has no hours or the closest sample lacks a temperature or humidity
// value.
func (d WeatherDay) NearestReading(ts int64) *Reading {
	if len(d.Hours) == 0 {
		return nil
	}
	best := 0
	bestDist := absDiff(d.Hours[0], ts)
	for i := 1; i < len(d.Hours); i++ {
		if dist := absDiff(d.Hours[i], ts); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= len(d.Temps) || best >= len(d.Hums) || d.Temps[best] == nil || d.Hums[best] == nil {
		return nil
	}
	return &Reading{Temp: *d.Temps[best], Hum: *d.Hums[best]}
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Setting is a single row of the settings collection. The core does not read
// settings; they are carried for the export/import surface.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
