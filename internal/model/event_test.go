// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEventJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
	}{
		{"water", Event{ID: "a", Type: TypeWater, TS: 1000, Payload: DrinkPayload{AmountML: 510}}},
		{"isotonic subtype", Event{ID: "b", Type: TypeIsotonic, TS: 1000, Payload: DrinkPayload{AmountML: 330, Subtype: "lemon"}}},
		{"food note", Event{ID: "c", Type: TypeFood, TS: 1000, Payload: NotePayload{Note: "pasta"}}},
		{"glicemia", Event{ID: "d", Type: TypeGlicemia, TS: 1000, Payload: GlicemiaPayload{Level: 102}}},
		{"sol", Event{ID: "e", Type: TypeSol, TS: 1000, Payload: SolPayload{DurationMin: 15}}},
		{"bare wake with weather", Event{ID: "f", Type: TypeWake, TS: 1000, Weather: &Reading{Temp: 21.5, Hum: 60}}},
		{"bare coffee", Event{ID: "g", Type: TypeCoffee, TS: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ev)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got Event
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.ID != tt.ev.ID || got.Type != tt.ev.Type || got.TS != tt.ev.TS {
				t.Errorf("got %+v, want %+v", got, tt.ev)
			}
			if got.Payload != tt.ev.Payload {
				t.Errorf("payload = %#v, want %#v", got.Payload, tt.ev.Payload)
			}
			switch {
			case got.Weather == nil && tt.ev.Weather == nil:
			case got.Weather != nil && tt.ev.Weather != nil && *got.Weather == *tt.ev.Weather:
			default:
				t.Errorf("weather = %v, want %v", got.Weather, tt.ev.Weather)
			}
		})
	}
}

func TestEventMarshalZeroAmountKept(t *testing.T) {
	// An explicit zero amount must survive the wire form; only absence drops
	// the field.
	ev := Event{ID: "a", Type: TypeWater, TS: 1000, Payload: DrinkPayload{AmountML: 0}}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, ok := raw["amount"]; !ok {
		t.Error("amount field missing for zero-amount drink")
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		ev      Event
		wantErr bool
	}{
		{"valid water", Event{Type: TypeWater, TS: 1, Payload: DrinkPayload{AmountML: 500}}, false},
		{"valid bare", Event{Type: TypeUrinate, TS: 1}, false},
		{"unknown type", Event{Type: "nap", TS: 1}, true},
		{"missing ts", Event{Type: TypeWater, TS: 0}, true},
		{"negative amount", Event{Type: TypeWater, TS: 1, Payload: DrinkPayload{AmountML: -1}}, true},
		{"amount on coffee", Event{Type: TypeCoffee, TS: 1, Payload: DrinkPayload{AmountML: 100}}, true},
		{"zero glicemia level", Event{Type: TypeGlicemia, TS: 1, Payload: GlicemiaPayload{}}, true},
		{"note on water", Event{Type: TypeWater, TS: 1, Payload: NotePayload{Note: "x"}}, true},
		{"negative sol duration", Event{Type: TypeSol, TS: 1, Payload: SolPayload{DurationMin: -5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDateKeyFor(t *testing.T) {
	ts := time.Date(2026, 3, 15, 23, 50, 0, 0, time.Local).UnixMilli()
	if got := DateKeyFor(ts); got != "2026-03-15" {
		t.Errorf("DateKeyFor = %q, want 2026-03-15", got)
	}
	// Ten minutes later crosses into the next local day.
	if got := DateKeyFor(ts + 10*60*1000); got != "2026-03-16" {
		t.Errorf("DateKeyFor = %q, want 2026-03-16", got)
	}
}

func TestPayloadStorageRoundTrip(t *testing.T) {
	for _, p := range []Payload{
		DrinkPayload{AmountML: 250, Subtype: "sparkling"},
		NotePayload{Note: "late dinner"},
		GlicemiaPayload{Level: 88},
		SolPayload{DurationMin: 40},
	} {
		v, err := EncodePayload(p)
		if err != nil {
			t.Fatalf("encode %T: %v", p, err)
		}
		s, ok := v.(string)
		if !ok {
			t.Fatalf("encoded %T is %T, want string", p, v)
		}
		var typ EventType
		switch p.(type) {
		case DrinkPayload:
			typ = TypeWater
		case NotePayload:
			typ = TypeFood
		case GlicemiaPayload:
			typ = TypeGlicemia
		case SolPayload:
			typ = TypeSol
		}
		got, err := DecodePayload(typ, []byte(s))
		if err != nil {
			t.Fatalf("decode %T: %v", p, err)
		}
		if got != p {
			t.Errorf("round trip %T: got %#v", p, got)
		}
	}
}

func TestEncodePayloadNil(t *testing.T) {
	v, err := EncodePayload(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if v != nil {
		t.Errorf("encoded nil payload = %v, want NULL", v)
	}
	got, err := DecodePayload(TypeWake, nil)
	if err != nil {
		t.Fatalf("decode nil: %v", err)
	}
	if got != nil {
		t.Errorf("decoded nil payload = %#v, want nil", got)
	}
}

func TestWeatherEligible(t *testing.T) {
	eligible := map[EventType]bool{
		TypeSleepStart: true, TypeSleepEnd: true, TypeWake: true,
		TypeWater: false, TypeFood: false, TypeGlicemia: false,
	}
	for typ, want := range eligible {
		if got := typ.WeatherEligible(); got != want {
			t.Errorf("%s.WeatherEligible() = %v, want %v", typ, got, want)
		}
	}
}
