// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records shared across the daylog core:
// logged events, weather readings and cached weather days.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks malformed user input (non-numeric amounts, levels or
// durations). It is raised before anything reaches the store.
var ErrInvalidInput = errors.New("invalid input")

// EventType enumerates the closed set of loggable event types.
type EventType string

// Event types.
const (
	TypeWater      EventType = "water"
	TypeExercise   EventType = "exercise"
	TypeUrinate    EventType = "urinate"
	TypeFood       EventType = "food"
	TypeCoffee     EventType = "coffee"
	TypeGlicemia   EventType = "glicemia"
	TypeSol        EventType = "sol"
	TypeSweet      EventType = "sweet"
	TypeAlcool     EventType = "alcool"
	TypeIsotonic   EventType = "isotonic"
	TypeWake       EventType = "wake"
	TypeSleepStart EventType = "sleep_start"
	TypeSleepEnd   EventType = "sleep_end"
)

var eventTypes = map[EventType]struct{}{
	TypeWater: {}, TypeExercise: {}, TypeUrinate: {}, TypeFood: {},
	TypeCoffee: {}, TypeGlicemia: {}, TypeSol: {}, TypeSweet: {},
	TypeAlcool: {}, TypeIsotonic: {}, TypeWake: {}, TypeSleepStart: {},
	TypeSleepEnd: {},
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	_, ok := eventTypes[t]
	return ok
}

// SleepBoundary reports whether t opens or closes a cycle.
// Only sleep_start and sleep_end affect cycle phase.
func (t EventType) SleepBoundary() bool {
	return t == TypeSleepStart || t == TypeSleepEnd
}

// WeatherEligible reports whether events of this type get a weather reading
// attached at write time.
func (t EventType) WeatherEligible() bool {
	return t == TypeSleepStart || t == TypeSleepEnd || t == TypeWake
}

// Reading is a point-in-time weather sample attached to sleep-boundary events.
type Reading struct {
	Temp float64 `json:"temp"` // °C
	Hum  float64 `json:"hum"`  // relative humidity, %
}

// Payload carries the type-specific fields of an event. Exactly one concrete
// payload kind is legal per event type; events without extra fields carry nil.
type Payload interface {
	payload()
}

// DrinkPayload belongs to water and isotonic events.
type DrinkPayload struct {
	AmountML int    `json:"amount"`
	Subtype  string `json:"subtype,omitempty"`
}

// NotePayload belongs to food, sweet and alcool events.
type NotePayload struct {
	Note string `json:"note"`
}

// GlicemiaPayload belongs to glicemia events.
type GlicemiaPayload struct {
	Level int `json:"level"` // mg/dL
}

// SolPayload belongs to sol (sun exposure) events.
type SolPayload struct {
	DurationMin int `json:"duration"`
}

func (DrinkPayload) payload()    {}
func (NotePayload) payload()     {}
func (GlicemiaPayload) payload() {}
func (SolPayload) payload()      {}

// Event is a single logged record. Events are immutable-by-replacement: edits
// fully replace the stored row under the same ID.
type Event struct {
	ID      string
	Type    EventType
	TS      int64 // epoch milliseconds, user-editable observation time
	DateKey string
	Payload Payload
	Weather *Reading

	// Seq is the store insertion order, used to keep same-timestamp events
	// in stable order. Assigned by the store, not serialized.
	Seq int64
}

// DateKeyFor derives the local calendar-day key for a timestamp.
// Must be recomputed whenever TS changes.
func DateKeyFor(ts int64) string {
	return time.UnixMilli(ts).In(time.Local).Format("2006-01-02")
}

// Validate checks type membership, payload kind and value ranges.
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, e.Type)
	}
	if e.TS <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidInput)
	}
	switch p := e.Payload.(type) {
	case nil:
	case DrinkPayload:
		if e.Type != TypeWater && e.Type != TypeIsotonic {
			return fmt.Errorf("%w: %s event cannot carry an amount", ErrInvalidInput, e.Type)
		}
		if p.AmountML < 0 {
			return fmt.Errorf("%w: negative amount", ErrInvalidInput)
		}
	case NotePayload:
		if e.Type != TypeFood && e.Type != TypeSweet && e.Type != TypeAlcool {
			return fmt.Errorf("%w: %s event cannot carry a note", ErrInvalidInput, e.Type)
		}
	case GlicemiaPayload:
		if e.Type != TypeGlicemia {
			return fmt.Errorf("%w: %s event cannot carry a glucose level", ErrInvalidInput, e.Type)
		}
		if p.Level <= 0 {
			return fmt.Errorf("%w: glucose level must be positive", ErrInvalidInput)
		}
	case SolPayload:
		if e.Type != TypeSol {
			return fmt.Errorf("%w: %s event cannot carry a duration", ErrInvalidInput, e.Type)
		}
		if p.DurationMin < 0 {
			return fmt.Errorf("%w: negative duration", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unsupported payload %T", ErrInvalidInput, p)
	}
	return nil
}

// eventJSON is the flat wire form of an Event, shared by the HTTP API and the
// export/import snapshot format.
type eventJSON struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	TS       int64     `json:"ts"`
	DateKey  string    `json:"dateKey,omitempty"`
	AmountML *int      `json:"amount,omitempty"`
	Subtype  string    `json:"subtype,omitempty"`
	Note     string    `json:"note,omitempty"`
	Level    *int      `json:"level,omitempty"`
	Duration *int      `json:"duration,omitempty"`
	Weather  *Reading  `json:"weather,omitempty"`
}

// MarshalJSON flattens the typed payload into per-type optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		ID:      e.ID,
		Type:    e.Type,
		TS:      e.TS,
		DateKey: e.DateKey,
		Weather: e.Weather,
	}
	switch p := e.Payload.(type) {
	case DrinkPayload:
		amount := p.AmountML
		out.AmountML = &amount
		out.Subtype = p.Subtype
	case NotePayload:
		out.Note = p.Note
	case GlicemiaPayload:
		level := p.Level
		out.Level = &level
	case SolPayload:
		duration := p.DurationMin
		out.Duration = &duration
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the typed payload from the flat wire form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Event{
		ID:      in.ID,
		Type:    in.Type,
		TS:      in.TS,
		DateKey: in.DateKey,
		Weather: in.Weather,
	}
	switch in.Type {
	case TypeWater, TypeIsotonic:
		if in.AmountML != nil || in.Subtype != "" {
			p := DrinkPayload{Subtype: in.Subtype}
			if in.AmountML != nil {
				p.AmountML = *in.AmountML
			}
			e.Payload = p
		}
	case TypeFood, TypeSweet, TypeAlcool:
		if in.Note != "" {
			e.Payload = NotePayload{Note: in.Note}
		}
	case TypeGlicemia:
		if in.Level != nil {
			e.Payload = GlicemiaPayload{Level: *in.Level}
		}
	case TypeSol:
		if in.Duration != nil {
			e.Payload = SolPayload{DurationMin: *in.Duration}
		}
	}
	return nil
}

// EncodePayload serializes a payload for storage. Nil payloads encode as NULL.
func EncodePayload(p Payload) (sqlValue any, err error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return string(b), nil
}

// DecodePayload deserializes a stored payload for the given event type.
func DecodePayload(t EventType, raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch t {
	case TypeWater, TypeIsotonic:
		var p DrinkPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeFood, TypeSweet, TypeAlcool:
		var p NotePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeGlicemia:
		var p GlicemiaPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeSol:
		var p SolPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, nil
	}
}
