// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/daylog-go/internal/model"
	"github.com/olegiv/daylog-go/internal/store"
)

// notePolicy strips all markup from free-text notes before they are stored.
var notePolicy = bluemonday.StrictPolicy()

// eventRequest is the write-side form of an event. Numeric fields arrive as
// free-form strings (they come from text inputs) and are parsed here;
// malformed values are rejected before anything reaches the store.
type eventRequest struct {
	Type     string `json:"type"`
	TS       int64  `json:"ts"`
	Amount   string `json:"amount,omitempty"`
	Subtype  string `json:"subtype,omitempty"`
	Note     string `json:"note,omitempty"`
	Level    string `json:"level,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// toEvent parses and validates the request into a domain event.
func (req eventRequest) toEvent() (model.Event, error) {
	ev := model.Event{
		Type: model.EventType(req.Type),
		TS:   req.TS,
	}

	switch ev.Type {
	case model.TypeWater, model.TypeIsotonic:
		if req.Amount != "" || req.Subtype != "" {
			amount, err := parseIntField("amount", req.Amount)
			if err != nil {
				return model.Event{}, err
			}
			ev.Payload = model.DrinkPayload{AmountML: amount, Subtype: strings.TrimSpace(req.Subtype)}
		}
	case model.TypeFood, model.TypeSweet, model.TypeAlcool:
		if note := strings.TrimSpace(notePolicy.Sanitize(req.Note)); note != "" {
			ev.Payload = model.NotePayload{Note: note}
		}
	case model.TypeGlicemia:
		if req.Level != "" {
			level, err := parseIntField("level", req.Level)
			if err != nil {
				return model.Event{}, err
			}
			ev.Payload = model.GlicemiaPayload{Level: level}
		}
	case model.TypeSol:
		if req.Duration != "" {
			duration, err := parseIntField("duration", req.Duration)
			if err != nil {
				return model.Event{}, err
			}
			ev.Payload = model.SolPayload{DurationMin: duration}
		}
	}

	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

func parseIntField(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", model.ErrInvalidInput, name, value)
	}
	return n, nil
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	var (
		events []model.Event
		err    error
	)

	fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fromStr != "" || toStr != "" {
		var from, to int64
		if from, err = parseTSParam(fromStr, 0); err != nil {
			WriteError(w, http.StatusUnprocessableEntity, codeInvalidInput, err.Error())
			return
		}
		if to, err = parseTSParam(toStr, int64(1)<<62); err != nil {
			WriteError(w, http.StatusUnprocessableEntity, codeInvalidInput, err.Error())
			return
		}
		events, err = h.events.ListBetween(r.Context(), from, to)
	} else {
		events, err = h.events.List(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to list events")
		return
	}

	if events == nil {
		events = []model.Event{}
	}
	WriteSuccess(w, events)
}

func parseTSParam(value string, fallback int64) (int64, error) {
	if value == "" {
		return fallback, nil
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: timestamp %q is not a number", model.ErrInvalidInput, value)
	}
	return ts, nil
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	ev, err := req.toEvent()
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, codeInvalidInput, err.Error())
		return
	}

	h.bindRequestLocation(r)

	stored, err := h.events.Append(r.Context(), ev)
	if err != nil {
		h.logger.Error("failed to append event", "type", ev.Type, "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to store event")
		return
	}
	WriteCreated(w, stored)
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	ev, err := req.toEvent()
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, codeInvalidInput, err.Error())
		return
	}
	ev.ID = id

	h.bindRequestLocation(r)

	updated, err := h.events.Update(r.Context(), ev)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, codeNotFound, "event not found")
			return
		}
		h.logger.Error("failed to update event", "event_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to update event")
		return
	}
	WriteSuccess(w, updated)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.events.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete event", "event_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "failed to delete event")
		return
	}
	WriteJSON(w, http.StatusOK, Response{Data: map[string]string{"deleted": id}})
}

func decodeEventRequest(w http.ResponseWriter, r *http.Request) (eventRequest, bool) {
	var req eventRequest
	if err := decodeJSONBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidInput, "malformed request body")
		return eventRequest{}, false
	}
	return req, true
}

// bindRequestLocation points the GeoIP fallback resolver at the caller's IP
// so weather enrichment can resolve a position when no platform source is
// available. Writes are serialized by the single-user UI, so the shared slot
// is safe.
func (h *Handler) bindRequestLocation(r *http.Request) {
	if h.geoip != nil && h.geoip.Enabled() {
		h.geoip.SetIP(remoteIP(r))
	}
}
