// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package location resolves the device position used to key the weather
// cache. Resolution is best-effort: an unavailable position is a normal
// outcome reported as a nil result, never a hard error.
package location

import (
	"context"
	"time"

	"github.com/olegiv/daylog-go/internal/model"
)

// ResolveTimeout bounds a full resolution attempt. A resolver that has not
// produced a position by then counts as unavailable.
const ResolveTimeout = 8 * time.Second

// Coordinates is a device position rounded to model.CoordPrecision decimals.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Round returns the coordinates rounded to cache-key precision.
func (c Coordinates) Round() Coordinates {
	return Coordinates{Lat: model.RoundCoord(c.Lat), Lon: model.RoundCoord(c.Lon)}
}

// Resolver obtains the current position. Implementations return (nil, nil)
// when no position is available; errors are reserved for unexpected platform
// failures and are swallowed by Chain.
type Resolver interface {
	Resolve(ctx context.Context) (*Coordinates, error)
}

// Static always returns a fixed position from configuration.
type Static struct {
	Coords Coordinates
}

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context) (*Coordinates, error) {
	c := s.Coords.Round()
	return &c, nil
}

// Chain tries resolvers in order and returns the first position found.
// The whole chain shares one ResolveTimeout; exhaustion, denial and timeout
// all resolve to (nil, nil).
type Chain []Resolver

// Resolve implements Resolver.
func (ch Chain) Resolve(ctx context.Context) (*Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, ResolveTimeout)
	defer cancel()

	for _, r := range ch {
		coords, err := r.Resolve(ctx)
		if err != nil || coords == nil {
			continue
		}
		rounded := coords.Round()
		return &rounded, nil
	}
	return nil, nil
}
