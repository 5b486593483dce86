package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rfoley/parkwatch/internal/auth"
	"github.com/rfoley/parkwatch/internal/model"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/store"
)

// DayExporter reads and deletes archive days held in external storage.
// Implemented by export.Service. A nil exporter disables the fallback.
type DayExporter interface {
	FetchDay(ctx context.Context, userID int64, date string) (*model.ArchiveContents, error)
	DeleteDay(ctx context.Context, userID int64, date string) error
}

type ArchiveHandler struct {
	archives *store.ArchiveStore
	exporter DayExporter
	clock    *parkday.Clock
	logger   *slog.Logger
}

// NewArchiveHandler serves archived park days. exporter may be nil when
// S3 export is not configured.
func NewArchiveHandler(as *store.ArchiveStore, exporter DayExporter, clock *parkday.Clock, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{archives: as, exporter: exporter, clock: clock, logger: logger}
}

// ListDates handles GET /api/archive
func (h *ArchiveHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.archives.ListDates(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list archive dates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}
	if dates == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

// GetDay handles GET /api/archive/{date}
func (h *ArchiveHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	date := r.PathValue("date")
	if _, err := h.clock.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	arch, err := h.archives.GetByDate(userID, date)
	if err != nil {
		h.logger.Error("get archive", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load archive")
		return
	}
	if arch == nil {
		// The local row may have been lost (restored database, pruned
		// disk). Fall back to the exported copy when one exists.
		if h.exporter != nil {
			contents, err := h.exporter.FetchDay(r.Context(), userID, date)
			if err == nil && contents != nil {
				writeJSON(w, http.StatusOK, model.DayArchive{
					UserID:   userID,
					Date:     date,
					Contents: *contents,
				})
				return
			}
		}
		writeError(w, http.StatusNotFound, "no archive for that date")
		return
	}
	writeJSON(w, http.StatusOK, arch)
}

// DeleteDay handles DELETE /api/archive/{date}
func (h *ArchiveHandler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	date := r.PathValue("date")
	if _, err := h.clock.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	if err := h.archives.Delete(userID, date); err != nil {
		h.logger.Error("delete archive", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete archive")
		return
	}
	if h.exporter != nil {
		if err := h.exporter.DeleteDay(r.Context(), userID, date); err != nil {
			h.logger.Warn("delete exported archive", "user_id", userID, "date", date, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
