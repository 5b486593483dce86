package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rfoley/parkwatch/internal/auth"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/store"
)

type ScheduleHandler struct {
	schedules *store.ScheduleStore
	clock     *parkday.Clock
	logger    *slog.Logger
}

func NewScheduleHandler(ss *store.ScheduleStore, clock *parkday.Clock, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: ss, clock: clock, logger: logger}
}

type scheduleItemRequest struct {
	Label             string `json:"label"`
	TargetTime        string `json:"target_time"`
	TravelTimeMinutes int    `json:"travel_time_minutes"`
}

type laneRequest struct {
	RideID            string `json:"ride_id"`
	Label             string `json:"label"`
	TargetTime        string `json:"target_time"`
	TravelTimeMinutes int    `json:"travel_time_minutes"`
}

// parseTarget validates the request timing and derives the park-local
// date the item belongs to.
func (h *ScheduleHandler) parseTarget(raw string, travelMinutes int) (time.Time, string, string) {
	if travelMinutes < 0 {
		return time.Time{}, "", "travel_time_minutes must not be negative"
	}
	target, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, "", "target_time must be RFC 3339"
	}
	return target, h.clock.DateOf(target), ""
}

// dateParam returns the requested date, defaulting to the park's today.
func (h *ScheduleHandler) dateParam(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return h.clock.Today(), nil
	}
	if _, err := h.clock.ParseDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// ListShows handles GET /api/shows?date=YYYY-MM-DD
func (h *ScheduleHandler) ListShows(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	shows, err := h.schedules.ListShows(auth.UserID(r.Context()), date)
	if err != nil {
		h.logger.Error("list shows", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shows")
		return
	}
	if shows == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

// CreateShow handles POST /api/shows
func (h *ScheduleHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req scheduleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	target, date, msg := h.parseTarget(req.TargetTime, req.TravelTimeMinutes)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	show, err := h.schedules.CreateShow(auth.UserID(r.Context()), date, strings.TrimSpace(req.Label), target, req.TravelTimeMinutes)
	if err != nil {
		h.logger.Error("create show", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create show")
		return
	}
	writeJSON(w, http.StatusCreated, show)
}

// UpdateShow handles PUT /api/shows/{id}
func (h *ScheduleHandler) UpdateShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req scheduleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	target, date, msg := h.parseTarget(req.TargetTime, req.TravelTimeMinutes)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	show, err := h.schedules.UpdateShow(auth.UserID(r.Context()), id, date, strings.TrimSpace(req.Label), target, req.TravelTimeMinutes)
	if err != nil {
		h.logger.Error("update show", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update show")
		return
	}
	if show == nil {
		writeError(w, http.StatusNotFound, "show not found")
		return
	}
	writeJSON(w, http.StatusOK, show)
}

// DeleteShow handles DELETE /api/shows/{id}
func (h *ScheduleHandler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.schedules.DeleteShow(auth.UserID(r.Context()), id); err != nil {
		h.logger.Error("delete show", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete show")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDining handles GET /api/dining?date=YYYY-MM-DD
func (h *ScheduleHandler) ListDining(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	dining, err := h.schedules.ListDining(auth.UserID(r.Context()), date)
	if err != nil {
		h.logger.Error("list dining", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	if dining == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, dining)
}

// CreateDining handles POST /api/dining
func (h *ScheduleHandler) CreateDining(w http.ResponseWriter, r *http.Request) {
	var req scheduleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	target, date, msg := h.parseTarget(req.TargetTime, req.TravelTimeMinutes)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	dining, err := h.schedules.CreateDining(auth.UserID(r.Context()), date, strings.TrimSpace(req.Label), target, req.TravelTimeMinutes)
	if err != nil {
		h.logger.Error("create dining", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reservation")
		return
	}
	writeJSON(w, http.StatusCreated, dining)
}

// UpdateDining handles PUT /api/dining/{id}
func (h *ScheduleHandler) UpdateDining(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req scheduleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	target, date, msg := h.parseTarget(req.TargetTime, req.TravelTimeMinutes)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	dining, err := h.schedules.UpdateDining(auth.UserID(r.Context()), id, date, strings.TrimSpace(req.Label), target, req.TravelTimeMinutes)
	if err != nil {
		h.logger.Error("update dining", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reservation")
		return
	}
	if dining == nil {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}
	writeJSON(w, http.StatusOK, dining)
}

// DeleteDining handles DELETE /api/dining/{id}
func (h *ScheduleHandler) DeleteDining(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.schedules.DeleteDining(auth.UserID(r.Context()), id); err != nil {
		h.logger.Error("delete dining", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLanes handles GET /api/lightning-lanes?date=YYYY-MM-DD
func (h *ScheduleHandler) ListLanes(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	lanes, err := h.schedules.MapLanes(auth.UserID(r.Context()), date)
	if err != nil {
		h.logger.Error("list lanes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list lightning lanes")
		return
	}
	writeJSON(w, http.StatusOK, lanes)
}

// UpsertLane handles PUT /api/lightning-lanes
func (h *ScheduleHandler) UpsertLane(w http.ResponseWriter, r *http.Request) {
	var req laneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.RideID = strings.TrimSpace(req.RideID)
	if req.RideID == "" {
		writeError(w, http.StatusBadRequest, "ride_id is required")
		return
	}
	target, date, msg := h.parseTarget(req.TargetTime, req.TravelTimeMinutes)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	lane, err := h.schedules.UpsertLane(auth.UserID(r.Context()), date, req.RideID, strings.TrimSpace(req.Label), target, req.TravelTimeMinutes)
	if err != nil {
		h.logger.Error("upsert lane", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save lightning lane")
		return
	}
	writeJSON(w, http.StatusOK, lane)
}

// DeleteLane handles DELETE /api/lightning-lanes/{rideID}?date=YYYY-MM-DD
func (h *ScheduleHandler) DeleteLane(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("rideID")
	if rideID == "" {
		writeError(w, http.StatusBadRequest, "ride id is required")
		return
	}
	date, err := h.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	if err := h.schedules.DeleteLane(auth.UserID(r.Context()), date, rideID); err != nil {
		h.logger.Error("delete lane", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete lightning lane")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
