package store

import (
	"testing"
	"time"

	"github.com/rfoley/parkwatch/internal/database"
	"github.com/rfoley/parkwatch/internal/model"
)

func setupArchiveTestDB(t *testing.T) (*ArchiveStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("archive@example.com", "Archive", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewArchiveStore(db), u.ID
}

func sampleContents() model.ArchiveContents {
	return model.ArchiveContents{
		Shows: []model.Show{{
			ID:         1,
			Label:      "Fantasmic",
			TargetTime: time.Date(2026, 7, 2, 20, 0, 0, 0, time.UTC),
		}},
		LightningLanes: map[string]model.LightningLane{
			"R1": {RideID: "R1", Label: "Space Mountain"},
		},
	}
}

func TestArchiveCreateAndGet(t *testing.T) {
	as, uid := setupArchiveTestDB(t)

	if err := as.Create(uid, "2026-07-02", sampleContents()); err != nil {
		t.Fatalf("create archive: %v", err)
	}

	arch, err := as.GetByDate(uid, "2026-07-02")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	if arch == nil {
		t.Fatal("archive not found")
	}
	if len(arch.Contents.Shows) != 1 || arch.Contents.Shows[0].Label != "Fantasmic" {
		t.Errorf("shows = %+v", arch.Contents.Shows)
	}
	if arch.Contents.LightningLanes["R1"].Label != "Space Mountain" {
		t.Errorf("lanes = %+v", arch.Contents.LightningLanes)
	}
}

func TestArchiveCreateIgnoresDuplicate(t *testing.T) {
	as, uid := setupArchiveTestDB(t)

	if err := as.Create(uid, "2026-07-02", sampleContents()); err != nil {
		t.Fatalf("create archive: %v", err)
	}
	second := model.ArchiveContents{Shows: []model.Show{{Label: "Replacement"}}}
	if err := as.Create(uid, "2026-07-02", second); err != nil {
		t.Fatalf("duplicate create should be a no-op, got: %v", err)
	}

	arch, err := as.GetByDate(uid, "2026-07-02")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	if arch.Contents.Shows[0].Label != "Fantasmic" {
		t.Errorf("first archive was overwritten: %+v", arch.Contents)
	}
}

func TestArchiveListDatesNewestFirst(t *testing.T) {
	as, uid := setupArchiveTestDB(t)

	for _, d := range []string{"2026-07-01", "2026-07-03", "2026-07-02"} {
		if err := as.Create(uid, d, model.ArchiveContents{}); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}

	dates, err := as.ListDates(uid)
	if err != nil {
		t.Fatalf("list dates: %v", err)
	}
	want := []string{"2026-07-03", "2026-07-02", "2026-07-01"}
	if len(dates) != 3 {
		t.Fatalf("dates = %v", dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestArchiveGetMissing(t *testing.T) {
	as, uid := setupArchiveTestDB(t)

	arch, err := as.GetByDate(uid, "2026-01-01")
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	if arch != nil {
		t.Errorf("expected nil, got %+v", arch)
	}
}
