package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rfoley/parkwatch/internal/livedata"
)

type WaitsHandler struct {
	live   *livedata.Service
	logger *slog.Logger
}

func NewWaitsHandler(live *livedata.Service, logger *slog.Logger) *WaitsHandler {
	return &WaitsHandler{live: live, logger: logger}
}

type waitsResponse struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Stale     bool             `json:"stale"`
	Entries   []livedata.Entry `json:"entries"`
}

// List handles GET /api/waits. Stale data is served with a flag rather
// than dropped, so one bad poll does not blank the board.
func (h *WaitsHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, errs := h.live.GetAll(r.Context())
	for _, err := range errs {
		h.logger.Warn("live wait fetch", "error", err)
	}

	resp := waitsResponse{
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
		Entries:   snap.Entries,
	}
	if resp.Entries == nil {
		resp.Entries = []livedata.Entry{}
	}
	writeJSON(w, http.StatusOK, resp)
}
