// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cycle derives alternating DAY/NIGHT cycles from an ordered event
// stream and computes per-cycle statistics. Cycles are transient: rebuilt
// wholesale on every read, never persisted.
package cycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/daylog-go/internal/model"
)

// Phase classifies a cycle as waking day or sleeping night.
type Phase string

// Cycle phases.
const (
	Day   Phase = "DAY"
	Night Phase = "NIGHT"
)

// EmptyLogCycleID is the constant id of the synthetic cycle emitted when the
// log holds no events at all.
const EmptyLogCycleID = "cycle-empty-log"

// Cycle is one contiguous span of time classified as DAY or NIGHT. Boundary
// events are referenced by id, never by pointer: the cycle list is rebuilt on
// every read and must not alias mutable store rows.
type Cycle struct {
	ID           string `json:"id"`
	Type         Phase  `json:"type"`
	StartTS      int64  `json:"startTs"`
	EndTS        *int64 `json:"endTs"`                  // nil while the cycle is still open
	StartEventID string `json:"startEventId,omitempty"` // empty when synthetic
	EndEventID   string `json:"endEventId,omitempty"`
}

// Open reports whether the cycle is still ongoing.
func (c Cycle) Open() bool {
	return c.EndTS == nil
}

// Build derives the full cycle list from events ordered by timestamp
// ascending (same-timestamp events in store iteration order). Cycles are
// non-overlapping and the last one is always open. Consecutive cycles
// normally share a boundary timestamp; the one exception is the stray
// sleep_end reset below, which moves the running day's start forward and can
// leave a gap after the previously closed cycle.
//
// Two deliberate policy quirks are kept for behavior compatibility:
//   - a sleep_start while already in NIGHT closes the running night at that
//     timestamp without an end-event reference and opens a new night there
//     (sleep restarted without an intervening wake);
//   - a sleep_end while already in DAY resets the running day's start to that
//     timestamp without emitting a closed cycle.
func Build(events []model.Event, now time.Time) []Cycle {
	var firstStart, firstEnd *model.Event
	for i := range events {
		switch events[i].Type {
		case model.TypeSleepStart:
			if firstStart == nil {
				firstStart = &events[i]
			}
		case model.TypeSleepEnd:
			if firstEnd == nil {
				firstEnd = &events[i]
			}
		}
	}

	var (
		phase        Phase
		segStart     *int64
		segStartEvID string
	)
	switch {
	case firstStart != nil && (firstEnd == nil || firstEnd.TS > firstStart.TS):
		phase = Night
	case firstEnd != nil:
		phase = Day
	case len(events) > 0:
		// No boundary events: a single day anchored at the first event,
		// with no boundary reference.
		phase = Day
		ts := events[0].TS
		segStart = &ts
	default:
		return []Cycle{{
			ID:      EmptyLogCycleID,
			Type:    Day,
			StartTS: now.UnixMilli(),
		}}
	}

	var cycles []Cycle
	closeSegment := func(endTS int64, endEventID string) {
		end := endTS
		cycles = append(cycles, Cycle{
			ID:           uuid.NewString(),
			Type:         phase,
			StartTS:      *segStart,
			EndTS:        &end,
			StartEventID: segStartEvID,
			EndEventID:   endEventID,
		})
	}

	for i := range events {
		ev := &events[i]
		switch ev.Type {
		case model.TypeSleepStart:
			if segStart != nil {
				if phase == Day {
					closeSegment(ev.TS, ev.ID)
				} else {
					// Re-entrant sleep_start: close the running night here
					// with no end-event reference.
					closeSegment(ev.TS, "")
				}
			}
			phase = Night
			ts := ev.TS
			segStart = &ts
			segStartEvID = ev.ID
		case model.TypeSleepEnd:
			if phase == Night {
				if segStart != nil {
					closeSegment(ev.TS, ev.ID)
				}
				phase = Day
			}
			// Stray sleep_end in DAY: reset the segment start only.
			ts := ev.TS
			segStart = &ts
			segStartEvID = ev.ID
		}
	}

	// Terminal open cycle of the current phase.
	cycles = append(cycles, Cycle{
		ID:           uuid.NewString(),
		Type:         phase,
		StartTS:      *segStart,
		StartEventID: segStartEvID,
	})
	return cycles
}
