package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rfoley/parkwatch/internal/auth"
	"github.com/rfoley/parkwatch/internal/store"
)

type PreferenceHandler struct {
	prefs  *store.PreferenceStore
	logger *slog.Logger
}

func NewPreferenceHandler(ps *store.PreferenceStore, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefs: ps, logger: logger}
}

type preferenceRequest struct {
	RideID         string `json:"ride_id"`
	RideName       string `json:"ride_name"`
	Enabled        bool   `json:"enabled"`
	MaxWaitMinutes int    `json:"max_wait_minutes"`
}

// List handles GET /api/preferences
func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.prefs.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list preferences")
		return
	}
	if prefs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// Upsert handles PUT /api/preferences
func (h *PreferenceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.RideID = strings.TrimSpace(req.RideID)
	if req.RideID == "" {
		writeError(w, http.StatusBadRequest, "ride_id is required")
		return
	}
	if req.MaxWaitMinutes < 0 {
		writeError(w, http.StatusBadRequest, "max_wait_minutes must not be negative")
		return
	}

	pref, err := h.prefs.Upsert(auth.UserID(r.Context()), req.RideID, req.RideName, req.Enabled, req.MaxWaitMinutes)
	if err != nil {
		h.logger.Error("upsert preference", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// Delete handles DELETE /api/preferences/{rideID}
func (h *PreferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("rideID")
	if rideID == "" {
		writeError(w, http.StatusBadRequest, "ride id is required")
		return
	}

	if err := h.prefs.Delete(auth.UserID(r.Context()), rideID); err != nil {
		h.logger.Error("delete preference", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete preference")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
