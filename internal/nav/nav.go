// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav tracks which derived cycle is currently selected. State is an
// explicit value passed to and returned from operations; there is no ambient
// singleton.
package nav

import (
	"github.com/olegiv/daylog-go/internal/cycle"
)

// State holds the selected cycle index and the cycle list it was clamped
// against.
type State struct {
	Index  int
	Cycles []cycle.Cycle
}

// Refresh replaces the cycle list and clamps the index to [0, len-1].
// Call after every event mutation, since the list is rebuilt wholesale.
func (s State) Refresh(cycles []cycle.Cycle) State {
	s.Cycles = cycles
	return s.clamp()
}

// Prev selects the previous cycle, stopping at the first (no wraparound).
func (s State) Prev() State {
	s.Index--
	return s.clamp()
}

// Next selects the next cycle, stopping at the last (no wraparound).
func (s State) Next() State {
	s.Index++
	return s.clamp()
}

// Latest jumps to the last cycle in the list.
func (s State) Latest() State {
	s.Index = len(s.Cycles) - 1
	return s.clamp()
}

// Current returns the selected cycle, or false when the list is empty.
func (s State) Current() (cycle.Cycle, bool) {
	if len(s.Cycles) == 0 {
		return cycle.Cycle{}, false
	}
	return s.Cycles[s.Index], true
}

func (s State) clamp() State {
	if s.Index < 0 {
		s.Index = 0
	}
	if max := len(s.Cycles) - 1; s.Index > max {
		s.Index = max
	}
	if s.Index < 0 {
		s.Index = 0
	}
	return s
}
