// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cycle

import (
	"github.com/olegiv/daylog-go/internal/model"
)

// Stats summarizes the events falling inside one cycle's time span.
// WakeCount is reported only for NIGHT cycles; FoodCount and Exercised only
// for DAY cycles.
type Stats struct {
	WaterML        int   `json:"waterMl"`
	UrinateCount   int   `json:"urinateCount"`
	GlicemiaCount  int   `json:"glicemiaCount"`
	SolCount       int   `json:"solCount"`
	SolMinutes     int   `json:"solMinutes"`
	GlicemiaLevels []int `json:"glicemiaLevels,omitempty"`
	WakeCount      *int  `json:"wakeCount,omitempty"`
	FoodCount      *int  `json:"foodCount,omitempty"`
	Exercised      *bool `json:"exercised,omitempty"`
}

// Compute aggregates the bounded event list of a cycle. Callers query the
// store for [StartTS, EndTS ?? now] and pass the result; nothing is cached.
func Compute(c Cycle, events []model.Event) Stats {
	var s Stats
	var wakes, foods int
	var exercised bool

	for _, ev := range events {
		switch ev.Type {
		case model.TypeWater:
			if p, ok := ev.Payload.(model.DrinkPayload); ok {
				s.WaterML += p.AmountML
			}
		case model.TypeUrinate:
			s.UrinateCount++
		case model.TypeGlicemia:
			s.GlicemiaCount++
			if p, ok := ev.Payload.(model.GlicemiaPayload); ok {
				s.GlicemiaLevels = append(s.GlicemiaLevels, p.Level)
			}
		case model.TypeSol:
			s.SolCount++
			if p, ok := ev.Payload.(model.SolPayload); ok {
				s.SolMinutes += p.DurationMin
			}
		case model.TypeWake:
			wakes++
		case model.TypeFood:
			foods++
		case model.TypeExercise:
			exercised = true
		}
	}

	switch c.Type {
	case Night:
		s.WakeCount = &wakes
	case Day:
		s.FoodCount = &foods
		s.Exercised = &exercised
	}
	return s
}
