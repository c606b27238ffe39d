// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package location

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	geoclueService    = "org.freedesktop.GeoClue2"
	geoclueManager    = "/org/freedesktop/GeoClue2/Manager"
	geoclueClientIfce = "org.freedesktop.GeoClue2.Client"
	geoclueLocIfce    = "org.freedesktop.GeoClue2.Location"

	// GCLUE_ACCURACY_LEVEL_CITY is enough for weather lookups.
	geoclueAccuracyCity = uint32(4)
)

// GeoClue resolves the device position through the GeoClue2 D-Bus service,
// the platform location capability on Linux desktops.
type GeoClue struct {
	DesktopID string
}

// NewGeoClue creates a GeoClue resolver registering under the given desktop id.
func NewGeoClue(desktopID string) *GeoClue {
	return &GeoClue{DesktopID: desktopID}
}

// Resolve implements Resolver. Denial (no agent, no service) and timeout are
// reported as (nil, nil); only malformed D-Bus traffic is an error.
func (g *GeoClue) Resolve(ctx context.Context) (*Coordinates, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		// No system bus: position unavailable, not a failure.
		return nil, nil
	}

	manager := conn.Object(geoclueService, geoclueManager)
	var clientPath dbus.ObjectPath
	if err := manager.CallWithContext(ctx, "org.freedesktop.GeoClue2.Manager.GetClient", 0).Store(&clientPath); err != nil {
		return nil, nil
	}

	client := conn.Object(geoclueService, clientPath)
	if err := client.SetProperty(geoclueClientIfce+".DesktopId", dbus.MakeVariant(g.DesktopID)); err != nil {
		return nil, nil
	}
	if err := client.SetProperty(geoclueClientIfce+".RequestedAccuracyLevel", dbus.MakeVariant(geoclueAccuracyCity)); err != nil {
		return nil, nil
	}

	if err := conn.AddMatchSignalContext(ctx,
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(geoclueClientIfce),
		dbus.WithMatchMember("LocationUpdated"),
	); err != nil {
		return nil, fmt.Errorf("subscribing to location updates: %w", err)
	}
	defer func() {
		_ = conn.RemoveMatchSignal(
			dbus.WithMatchObjectPath(clientPath),
			dbus.WithMatchInterface(geoclueClientIfce),
			dbus.WithMatchMember("LocationUpdated"),
		)
	}()

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	if err := client.CallWithContext(ctx, geoclueClientIfce+".Start", 0).Err; err != nil {
		return nil, nil
	}
	defer func() { _ = client.Call(geoclueClientIfce+".Stop", 0).Err }()

	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case sig, ok := <-signals:
			if !ok {
				return nil, nil
			}
			if sig.Name != geoclueClientIfce+".LocationUpdated" || len(sig.Body) < 2 {
				continue
			}
			locPath, ok := sig.Body[1].(dbus.ObjectPath)
			if !ok {
				continue
			}
			return g.readLocation(conn, locPath)
		}
	}
}

func (g *GeoClue) readLocation(conn *dbus.Conn, path dbus.ObjectPath) (*Coordinates, error) {
	loc := conn.Object(geoclueService, path)

	lat, err := loc.GetProperty(geoclueLocIfce + ".Latitude")
	if err != nil {
		return nil, fmt.Errorf("reading latitude: %w", err)
	}
	lon, err := loc.GetProperty(geoclueLocIfce + ".Longitude")
	if err != nil {
		return nil, fmt.Errorf("reading longitude: %w", err)
	}

	latV, okLat := lat.Value().(float64)
	lonV, okLon := lon.Value().(float64)
	if !okLat || !okLon {
		return nil, fmt.Errorf("unexpected location property types %T/%T", lat.Value(), lon.Value())
	}

	coords := Coordinates{Lat: latV, Lon: lonV}.Round()
	return &coords, nil
}

var _ Resolver = (*GeoClue)(nil)
