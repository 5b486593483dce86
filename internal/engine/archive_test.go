package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rfoley/parkwatch/internal/database"
	"github.com/rfoley/parkwatch/internal/model"
	"github.com/rfoley/parkwatch/internal/store"
)

type recordingExporter struct {
	keys []string
}

func (e *recordingExporter) ExportDay(_ context.Context, userID int64, date string, _ model.ArchiveContents) error {
	e.keys = append(e.keys, date)
	return nil
}

func setupArchiver(t *testing.T) (*Archiver, *store.ScheduleStore, *store.ArchiveStore, *store.UserStore, *recordingExporter) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	schedules := store.NewScheduleStore(db)
	archives := store.NewArchiveStore(db)
	users := store.NewUserStore(db)
	exporter := &recordingExporter{}
	a := newArchiver(schedules, archives, exporter, newUserLocks(), discardLogger())
	return a, schedules, archives, users, exporter
}

func archiveTestUser(t *testing.T, users *store.UserStore) int64 {
	t.Helper()
	u, err := users.Create("sweep@example.com", "Sweep", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func TestSweepArchivesPastDates(t *testing.T) {
	a, schedules, archives, users, exporter := setupArchiver(t)
	userID := archiveTestUser(t, users)

	loc := time.UTC
	oldShow, err := schedules.CreateShow(userID, "2026-07-02", "Fantasmic", time.Date(2026, 7, 2, 20, 0, 0, 0, loc), 15)
	if err != nil {
		t.Fatalf("create show: %v", err)
	}
	if _, err := schedules.CreateDining(userID, "2026-07-02", "Oga's Cantina", time.Date(2026, 7, 2, 12, 0, 0, 0, loc), 10); err != nil {
		t.Fatalf("create dining: %v", err)
	}
	if _, err := schedules.UpsertLane(userID, "2026-07-02", "R1", "Space Mountain", time.Date(2026, 7, 2, 14, 0, 0, 0, loc), 8); err != nil {
		t.Fatalf("upsert lane: %v", err)
	}
	todayShow, err := schedules.CreateShow(userID, "2026-07-04", "Parade", time.Date(2026, 7, 4, 15, 0, 0, 0, loc), 5)
	if err != nil {
		t.Fatalf("create today's show: %v", err)
	}

	a.Sweep(context.Background(), "2026-07-04")

	arch, err := archives.GetByDate(userID, "2026-07-02")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	if arch == nil {
		t.Fatal("archive row missing for swept date")
	}
	if len(arch.Contents.Shows) != 1 || arch.Contents.Shows[0].ID != oldShow.ID {
		t.Errorf("archived shows = %+v", arch.Contents.Shows)
	}
	if len(arch.Contents.Dining) != 1 || arch.Contents.Dining[0].Label != "Oga's Cantina" {
		t.Errorf("archived dining = %+v", arch.Contents.Dining)
	}
	if _, ok := arch.Contents.LightningLanes["R1"]; !ok {
		t.Errorf("archived lanes = %+v", arch.Contents.LightningLanes)
	}

	// All live rows for swept dates are gone; today's remain.
	stale, err := schedules.DatesBefore("2026-07-04")
	if err != nil {
		t.Fatalf("dates before: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale dates remain after sweep: %v", stale)
	}
	kept, err := schedules.GetShow(userID, todayShow.ID)
	if err != nil {
		t.Fatalf("get today's show: %v", err)
	}
	if kept == nil {
		t.Error("today's show was swept")
	}

	if len(exporter.keys) != 1 || exporter.keys[0] != "2026-07-02" {
		t.Errorf("exporter calls = %v", exporter.keys)
	}
}

func TestSweepSkipsDayEmptiedByDeletes(t *testing.T) {
	a, schedules, archives, users, _ := setupArchiver(t)
	userID := archiveTestUser(t, users)

	show, err := schedules.CreateShow(userID, "2026-07-01", "Cancelled", time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC), 15)
	if err != nil {
		t.Fatalf("create show: %v", err)
	}
	if err := schedules.DeleteShow(userID, show.ID); err != nil {
		t.Fatalf("delete show: %v", err)
	}

	a.Sweep(context.Background(), "2026-07-04")

	dates, err := archives.ListDates(userID)
	if err != nil {
		t.Fatalf("list archive dates: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("empty day produced an archive: %v", dates)
	}
}

func TestSweepCatchesUpAcrossMultipleDays(t *testing.T) {
	a, schedules, archives, users, _ := setupArchiver(t)
	userID := archiveTestUser(t, users)

	for _, date := range []string{"2026-06-30", "2026-07-01", "2026-07-02"} {
		target := time.Date(2026, 7, 2, 20, 0, 0, 0, time.UTC)
		if _, err := schedules.CreateShow(userID, date, "Show "+date, target, 10); err != nil {
			t.Fatalf("create show for %s: %v", date, err)
		}
	}

	a.Sweep(context.Background(), "2026-07-04")

	dates, err := archives.ListDates(userID)
	if err != nil {
		t.Fatalf("list archive dates: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("got %d archives, want 3: %v", len(dates), dates)
	}
}

func TestSweepDoesNotOverwriteExistingArchive(t *testing.T) {
	a, schedules, archives, users, _ := setupArchiver(t)
	userID := archiveTestUser(t, users)

	original := model.ArchiveContents{Shows: []model.Show{{Label: "Original"}}}
	if err := archives.Create(userID, "2026-07-02", original); err != nil {
		t.Fatalf("seed archive: %v", err)
	}
	if _, err := schedules.CreateShow(userID, "2026-07-02", "Straggler", time.Date(2026, 7, 2, 20, 0, 0, 0, time.UTC), 10); err != nil {
		t.Fatalf("create show: %v", err)
	}

	a.Sweep(context.Background(), "2026-07-04")

	arch, err := archives.GetByDate(userID, "2026-07-02")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	if len(arch.Contents.Shows) != 1 || arch.Contents.Shows[0].Label != "Original" {
		t.Errorf("existing archive was replaced: %+v", arch.Contents)
	}
	stale, err := schedules.DatesBefore("2026-07-04")
	if err != nil {
		t.Fatalf("dates before: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("live rows remain after re-sweep: %v", stale)
	}
}
