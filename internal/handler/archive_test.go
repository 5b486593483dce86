package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rfoley/parkwatch/internal/auth"
	"github.com/rfoley/parkwatch/internal/database"
	"github.com/rfoley/parkwatch/internal/model"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/store"
)

type fakeDayExporter struct {
	days    map[string]model.ArchiveContents
	deleted []string
}

func dayKey(userID int64, date string) string {
	return fmt.Sprintf("%d/%s", userID, date)
}

func (f *fakeDayExporter) FetchDay(ctx context.Context, userID int64, date string) (*model.ArchiveContents, error) {
	if c, ok := f.days[dayKey(userID, date)]; ok {
		return &c, nil
	}
	return nil, errors.New("object not found")
}

func (f *fakeDayExporter) DeleteDay(ctx context.Context, userID int64, date string) error {
	f.deleted = append(f.deleted, dayKey(userID, date))
	return nil
}

func setupArchiveHandler(t *testing.T, exporter DayExporter) (*ArchiveHandler, *store.ArchiveStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	as := store.NewArchiveStore(db)

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	clock := parkday.NewFixed(time.Date(2026, 7, 4, 10, 0, 0, 0, loc))
	return NewArchiveHandler(as, exporter, clock, slog.New(slog.DiscardHandler)), as
}

func archiveRequest(method, target string, userID int64, date string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.SetPathValue("date", date)
	ctx := auth.WithAuth(req.Context(), auth.AuthContext{UserID: userID})
	return req.WithContext(ctx)
}

func TestGetDayReturnsLocalArchive(t *testing.T) {
	h, as := setupArchiveHandler(t, nil)
	contents := model.ArchiveContents{Shows: []model.Show{{Label: "Fireworks"}}}
	if err := as.Create(7, "2026-07-02", contents); err != nil {
		t.Fatalf("seed archive: %v", err)
	}

	rec := httptest.NewRecorder()
	h.GetDay(rec, archiveRequest("GET", "/api/archive/2026-07-02", 7, "2026-07-02"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var arch model.DayArchive
	if err := json.Unmarshal(rec.Body.Bytes(), &arch); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(arch.Contents.Shows) != 1 || arch.Contents.Shows[0].Label != "Fireworks" {
		t.Errorf("contents = %+v", arch.Contents)
	}
}

func TestGetDayFallsBackToExportedCopy(t *testing.T) {
	exporter := &fakeDayExporter{days: map[string]model.ArchiveContents{
		dayKey(7, "2026-07-02"): {Shows: []model.Show{{Label: "Fireworks"}}},
	}}
	h, _ := setupArchiveHandler(t, exporter)

	rec := httptest.NewRecorder()
	h.GetDay(rec, archiveRequest("GET", "/api/archive/2026-07-02", 7, "2026-07-02"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var arch model.DayArchive
	if err := json.Unmarshal(rec.Body.Bytes(), &arch); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if arch.Date != "2026-07-02" || arch.UserID != 7 {
		t.Errorf("date = %q, user = %d", arch.Date, arch.UserID)
	}
	if len(arch.Contents.Shows) != 1 || arch.Contents.Shows[0].Label != "Fireworks" {
		t.Errorf("contents = %+v", arch.Contents)
	}
}

func TestGetDayMissingEverywhere(t *testing.T) {
	h, _ := setupArchiveHandler(t, &fakeDayExporter{})

	rec := httptest.NewRecorder()
	h.GetDay(rec, archiveRequest("GET", "/api/archive/2026-07-02", 7, "2026-07-02"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetDayMissingWithoutExporter(t *testing.T) {
	h, _ := setupArchiveHandler(t, nil)

	rec := httptest.NewRecorder()
	h.GetDay(rec, archiveRequest("GET", "/api/archive/2026-07-02", 7, "2026-07-02"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteDayRemovesExportedCopy(t *testing.T) {
	exporter := &fakeDayExporter{}
	h, as := setupArchiveHandler(t, exporter)
	if err := as.Create(7, "2026-07-02", model.ArchiveContents{}); err != nil {
		t.Fatalf("seed archive: %v", err)
	}

	rec := httptest.NewRecorder()
	h.DeleteDay(rec, archiveRequest("DELETE", "/api/archive/2026-07-02", 7, "2026-07-02"))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(exporter.deleted) != 1 || exporter.deleted[0] != dayKey(7, "2026-07-02") {
		t.Errorf("deleted = %v", exporter.deleted)
	}
}
