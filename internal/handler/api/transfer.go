// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/daylog-go/internal/transfer"
)

func (h *Handler) exportSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Exporter().Export(r.Context())
	if err != nil {
		h.logger.Error("export failed", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="daylog-export.json"`)
	WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap transfer.Snapshot
	if err := decodeJSONBody(r, &snap); err != nil {
		WriteError(w, http.StatusBadRequest, codeInvalidInput, "malformed snapshot")
		return
	}

	if err := h.Importer().Import(r.Context(), &snap); err != nil {
		h.logger.Error("import failed", "error", err)
		WriteError(w, http.StatusInternalServerError, codeInternal, "import failed")
		return
	}

	WriteSuccess(w, map[string]int{
		"events":       len(snap.Events),
		"weather_days": len(snap.Weather),
		"settings":     len(snap.Settings),
	})
}
