// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/daylog-go/internal/cycle"
	"github.com/olegiv/daylog-go/internal/nav"
)

// cycleResponse pairs a derived cycle with its freshly computed statistics.
type cycleResponse struct {
	Index int         `json:"index"`
	Of    int         `json:"of"` // total number of cycles
	Cycle cycle.Cycle `json:"cycle"`
	Stats cycle.Stats `json:"stats"`
}

func (h *Handler) listCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.events.Cycles(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed to derive cycles", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to derive cycles")
		return
	}
	WriteSuccess(w, cycles)
}

func (h *Handler) currentCycle(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	cycles, err := h.events.Cycles(r.Context(), now)
	if err != nil {
		h.logger.Error("failed to derive cycles", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to derive cycles")
		return
	}

	// The terminal cycle is always the open, current one.
	st := nav.State{}.Refresh(cycles).Latest()
	h.writeCycleWithStats(w, r, st, now)
}

func (h *Handler) cycleByIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		WriteError(w, http.StatusUnprocessableEntity, codeInvalidInput, "cycle index must be a non-negative number")
		return
	}

	now := time.Now()
	cycles, err := h.events.Cycles(r.Context(), now)
	if err != nil {
		h.logger.Error("failed to derive cycles", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to derive cycles")
		return
	}
	if idx >= len(cycles) {
		WriteError(w, http.StatusNotFound, codeNotFound, "cycle index out of range")
		return
	}

	st := nav.State{Index: idx}.Refresh(cycles)
	h.writeCycleWithStats(w, r, st, now)
}

// navigateCycles applies a prev/next/latest step to a caller-held index and
// returns the newly selected cycle. The index is clamped against the live
// cycle list, never wrapped.
func (h *Handler) navigateCycles(w http.ResponseWriter, r *http.Request) {
	op := r.URL.Query().Get("op")
	idx, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		idx = 0
	}

	now := time.Now()
	cycles, err := h.events.Cycles(r.Context(), now)
	if err != nil {
		h.logger.Error("failed to derive cycles", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to derive cycles")
		return
	}

	st := nav.State{Index: idx}.Refresh(cycles)
	switch op {
	case "prev":
		st = st.Prev()
	case "next":
		st = st.Next()
	case "latest", "":
		st = st.Latest()
	default:
		WriteError(w, http.StatusUnprocessableEntity, codeInvalidInput, "op must be prev, next or latest")
		return
	}

	h.writeCycleWithStats(w, r, st, now)
}

func (h *Handler) writeCycleWithStats(w http.ResponseWriter, r *http.Request, st nav.State, now time.Time) {
	current, ok := st.Current()
	if !ok {
		WriteError(w, http.StatusNotFound, codeNotFound, "no cycles")
		return
	}

	stats, err := h.events.StatsFor(r.Context(), current, now)
	if err != nil {
		h.logger.Error("failed to compute cycle stats", "cycle_id", current.ID, "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to compute cycle stats")
		return
	}

	WriteSuccess(w, cycleResponse{
		Index: st.Index,
		Of:    len(st.Cycles),
		Cycle: current,
		Stats: stats,
	})
}
