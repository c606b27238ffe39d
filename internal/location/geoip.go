// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package location

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/maxminddb-golang"
)

// privateCIDRs contains parsed CIDR blocks for private IP ranges.
// Initialized once at package load time for efficiency.
var privateCIDRs []*net.IPNet

func init() {
	privateBlocks := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",  // IPv6 unique local
		"fe80::/10", // IPv6 link-local
	}

	for _, block := range privateBlocks {
		_, cidr, err := net.ParseCIDR(block)
		if err == nil {
			privateCIDRs = append(privateCIDRs, cidr)
		}
	}
}

// GeoIP resolves an approximate position from the caller's IP address using a
// MaxMind GeoLite2-City database. It is the fallback when no platform
// location source is available; the HTTP layer feeds it the request IP.
type GeoIP struct {
	mu sync.RWMutex
	db *maxminddb.Reader
	ip string
}

// cityRecord matches the GeoLite2-City database structure.
type cityRecord struct {
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// NewGeoIP opens a MaxMind database. An empty path disables the resolver
// (graceful degradation, no error).
func NewGeoIP(dbPath string) (*GeoIP, error) {
	g := &GeoIP{}
	if dbPath == "" {
		return g, nil
	}

	db, err := maxminddb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening GeoIP database: %w", err)
	}
	g.db = db
	return g, nil
}

// Enabled reports whether a database is loaded.
func (g *GeoIP) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db != nil
}

// SetIP records the IP address the next Resolve call will look up.
func (g *GeoIP) SetIP(ip string) {
	g.mu.Lock()
	g.ip = ip
	g.mu.Unlock()
}

// Resolve implements Resolver. Unknown, private or unset IPs resolve to
// (nil, nil).
func (g *GeoIP) Resolve(_ context.Context) (*Coordinates, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lookupLocked(g.ip)
}

func (g *GeoIP) lookupLocked(ipStr string) (*Coordinates, error) {
	if g.db == nil || ipStr == "" {
		return nil, nil
	}

	ip := net.ParseIP(ipStr)
	if ip == nil || isPrivateIP(ip) {
		return nil, nil
	}

	var rec cityRecord
	if err := g.db.Lookup(ip, &rec); err != nil {
		return nil, fmt.Errorf("looking up %s: %w", ipStr, err)
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		// No location data for this IP.
		return nil, nil
	}

	coords := Coordinates{Lat: rec.Location.Latitude, Lon: rec.Location.Longitude}.Round()
	return &coords, nil
}

// Close releases the database reader.
func (g *GeoIP) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}

func isPrivateIP(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return ip.IsLoopback()
}

var _ Resolver = (*GeoIP)(nil)
