// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"
)

// healthResponse reports service liveness and database reachability.
type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Time   string `json:"time"`
}

// Health responds to liveness probes. Mounted outside the /api prefix.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		DB:     "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.DB = "unreachable"
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, status, resp)
}
