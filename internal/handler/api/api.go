// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST surface of the daylog service. Handlers stay
// thin: validation and weather enrichment live in the service layer, cycle
// derivation in the cycle package.
package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/daylog-go/internal/location"
	"github.com/olegiv/daylog-go/internal/service"
	"github.com/olegiv/daylog-go/internal/store"
	"github.com/olegiv/daylog-go/internal/transfer"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db      *sql.DB
	queries *store.Queries
	events  *service.EventService
	geoip   *location.GeoIP // optional per-request location fallback
	logger  *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, events *service.EventService, geoip *location.GeoIP, logger *slog.Logger) *Handler {
	return &Handler{
		db:      db,
		queries: store.New(db),
		events:  events,
		geoip:   geoip,
		logger:  logger,
	}
}

// Routes mounts all API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/events", h.listEvents)
	r.Post("/events", h.createEvent)
	r.Put("/events/{id}", h.updateEvent)
	r.Delete("/events/{id}", h.deleteEvent)

	r.Get("/cycles", h.listCycles)
	r.Get("/cycles/current", h.currentCycle)
	r.Get("/cycles/nav", h.navigateCycles)
	r.Get("/cycles/{index}", h.cycleByIndex)

	r.Get("/export", h.exportSnapshot)
	r.Post("/import", h.importSnapshot)
}

// Response is the standard API response wrapper.
type Response struct {
	Data any `json:"data,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeNotFound     = "not_found"
	codeInvalidInput = "invalid_input"
	codeInternal     = "internal_error"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// maxBodyBytes bounds request bodies; snapshots with years of events stay
// well under this.
const maxBodyBytes = 32 << 20

func decodeJSONBody(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v)
}

// remoteIP extracts the client IP from the request. chi's RealIP middleware
// has already rewritten RemoteAddr when forwarding headers are present.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Exporter returns the transfer exporter bound to this handler's store.
func (h *Handler) Exporter() *transfer.Exporter {
	return transfer.NewExporter(h.queries, h.logger)
}

// Importer returns the transfer importer bound to this handler's database.
func (h *Handler) Importer() *transfer.Importer {
	return transfer.NewImporter(h.db, h.logger)
}
