// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package location

import (
	"context"
	"errors"
	"net"
	"testing"
)

type stubResolver struct {
	coords *Coordinates
	err    error
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context) (*Coordinates, error) {
	s.calls++
	return s.coords, s.err
}

func TestStaticRounds(t *testing.T) {
	r := Static{Coords: Coordinates{Lat: 41.38654, Lon: 2.16891}}

	coords, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coords == nil {
		t.Fatal("no coordinates")
	}
	if coords.Lat != 41.387 || coords.Lon != 2.169 {
		t.Errorf("coords = %+v, want rounded 41.387/2.169", coords)
	}
}

func TestChainFirstHitWins(t *testing.T) {
	miss := &stubResolver{}
	failing := &stubResolver{err: errors.New("platform failure")}
	hit := &stubResolver{coords: &Coordinates{Lat: 1.23456, Lon: 2}}
	after := &stubResolver{coords: &Coordinates{Lat: 9, Lon: 9}}

	coords, err := Chain{miss, failing, hit, after}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coords == nil {
		t.Fatal("no coordinates")
	}
	if coords.Lat != 1.235 {
		t.Errorf("lat = %v, want rounded 1.235", coords.Lat)
	}
	if after.calls != 0 {
		t.Error("resolver after the first hit was called")
	}
	if miss.calls != 1 || failing.calls != 1 {
		t.Error("earlier resolvers not tried in order")
	}
}

func TestChainExhaustion(t *testing.T) {
	coords, err := Chain{&stubResolver{}, &stubResolver{err: errors.New("x")}}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coords != nil {
		t.Errorf("exhausted chain returned %+v", coords)
	}

	coords, err = Chain{}.Resolve(context.Background())
	if err != nil || coords != nil {
		t.Errorf("empty chain = %+v, %v", coords, err)
	}
}

func TestGeoIPDisabled(t *testing.T) {
	g, err := NewGeoIP("")
	if err != nil {
		t.Fatalf("NewGeoIP: %v", err)
	}
	defer func() { _ = g.Close() }()

	if g.Enabled() {
		t.Error("empty path reported as enabled")
	}

	g.SetIP("203.0.113.1")
	coords, err := g.Resolve(context.Background())
	if err != nil || coords != nil {
		t.Errorf("disabled resolver = %+v, %v, want nil, nil", coords, err)
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.1.2.3", "172.16.0.1", "192.168.1.1", "127.0.0.1", "fe80::1", "::1"}
	public := []string{"203.0.113.1", "8.8.8.8", "2001:4860:4860::8888"}

	for _, s := range private {
		if !isPrivateIP(net.ParseIP(s)) {
			t.Errorf("%s not detected as private", s)
		}
	}
	for _, s := range public {
		if isPrivateIP(net.ParseIP(s)) {
			t.Errorf("%s detected as private", s)
		}
	}
}
