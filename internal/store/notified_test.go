package store

import (
	"testing"

	"github.com/rfoley/parkwatch/internal/database"
)

func setupNotifiedTestDB(t *testing.T) (*NotifiedStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := NewUserStore(db).Create("notified@example.com", "Notified", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewNotifiedStore(db), u.ID
}

func TestNotifiedEmptyByDefault(t *testing.T) {
	ns, uid := setupNotifiedTestDB(t)

	set, err := ns.Get(uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}

func TestNotifiedReplace(t *testing.T) {
	ns, uid := setupNotifiedTestDB(t)

	if err := ns.Replace(uid, map[string]struct{}{"R1": {}, "R2": {}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	set, err := ns.Get(uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("set = %v", set)
	}

	// A later replacement drops entries no longer ready.
	if err := ns.Replace(uid, map[string]struct{}{"R2": {}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	set, err = ns.Get(uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := set["R1"]; ok {
		t.Error("R1 should have been dropped")
	}
	if _, ok := set["R2"]; !ok {
		t.Error("R2 should remain")
	}
}

func TestNotifiedReplaceWithEmptyClears(t *testing.T) {
	ns, uid := setupNotifiedTestDB(t)

	if err := ns.Replace(uid, map[string]struct{}{"R1": {}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := ns.Replace(uid, nil); err != nil {
		t.Fatalf("replace with nil: %v", err)
	}
	set, err := ns.Get(uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected cleared set, got %v", set)
	}
}
