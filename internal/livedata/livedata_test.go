package livedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const liveJSON = `{
	"id": "park-1",
	"name": "Magic Kingdom",
	"liveData": [
		{"id": "r1", "name": "Space Mountain", "entityType": "ATTRACTION", "status": "OPERATING", "queue": {"STANDBY": {"waitTime": 25}}},
		{"id": "s1", "name": "Evening Parade", "entityType": "SHOW", "status": "OPERATING"},
		{"id": "r2", "name": "Haunted Mansion", "entityType": "ATTRACTION", "status": "DOWN", "queue": {"STANDBY": {"waitTime": 0}}},
		{"id": "r3", "name": "Tiki Room", "entityType": "ATTRACTION", "status": "WEIRD_NEW_STATE"}
	]
}`

func TestGetSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entity/park-1/live" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(liveJSON))
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, ParkIDs: []string{"park-1"}})
	snap, err := s.GetSnapshot(context.Background(), "park-1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}

	// Shows are filtered out; order follows the upstream document.
	if len(snap.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(snap.Entries))
	}
	if snap.Entries[0].RideID != "r1" || snap.Entries[1].RideID != "r2" {
		t.Errorf("entry order = %s, %s; want r1, r2", snap.Entries[0].RideID, snap.Entries[1].RideID)
	}
	if snap.Entries[0].WaitMinutes != 25 {
		t.Errorf("r1 wait = %d, want 25", snap.Entries[0].WaitMinutes)
	}
	if snap.ByID["r2"].Status != StatusDown {
		t.Errorf("r2 status = %s, want DOWN", snap.ByID["r2"].Status)
	}
	if snap.ByID["r3"].Status != StatusUnknown {
		t.Errorf("unrecognized status = %s, want UNKNOWN", snap.ByID["r3"].Status)
	}
	if snap.Stale {
		t.Error("fresh snapshot should not be stale")
	}
}

func TestGetSnapshotLastKnownGood(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(liveJSON))
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, ParkIDs: []string{"park-1"}})

	if _, err := s.GetSnapshot(context.Background(), "park-1"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	fail.Store(true)
	snap, err := s.GetSnapshot(context.Background(), "park-1")
	if err != nil {
		t.Fatalf("expected last-known-good fallback, got error: %v", err)
	}
	if !snap.Stale {
		t.Error("fallback snapshot should be marked stale")
	}
	if len(snap.Entries) != 3 {
		t.Errorf("fallback entries = %d, want 3", len(snap.Entries))
	}
}

func TestGetSnapshotNoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, ParkIDs: []string{"park-1"}})
	if _, err := s.GetSnapshot(context.Background(), "park-1"); err == nil {
		t.Fatal("expected error when no cached snapshot exists")
	}
}

func TestGetAllSkipsFailedPark(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/entity/park-2/live" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(liveJSON))
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, ParkIDs: []string{"park-1", "park-2"}})
	merged, errs := s.GetAll(context.Background())
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if len(merged.Entries) != 3 {
		t.Errorf("merged entries = %d, want 3 from the healthy park", len(merged.Entries))
	}
}
