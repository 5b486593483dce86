package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rfoley/parkwatch/internal/database"
	"github.com/rfoley/parkwatch/internal/middleware"
	"github.com/rfoley/parkwatch/internal/store"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *store.UserStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	us := store.NewUserStore(db)
	ss := store.NewSessionStore(db)
	h := NewAuthHandler(us, ss, slog.New(slog.DiscardHandler))
	return h, us, ss
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest("POST", "/api/register",
		strings.NewReader(`{"email":"a@example.com","name":"A","password":"short"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLogoutRevokesHeaderSession(t *testing.T) {
	h, us, ss := setupAuthHandler(t)

	u, err := us.Create("alice@example.com", "Alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	handler := middleware.RequireAuth(ss)(http.HandlerFunc(h.Logout))
	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Error("session should be deleted after logout")
	}
}

func TestLogoutRevokesQueryTokenSession(t *testing.T) {
	h, us, ss := setupAuthHandler(t)

	u, err := us.Create("ws@example.com", "WS", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// No Authorization header, as with clients that authenticated via
	// the query token. Logout must still revoke this session.
	handler := middleware.RequireAuth(ss)(http.HandlerFunc(h.Logout))
	req := httptest.NewRequest("POST", "/api/logout?token="+sess.Token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Error("session should be deleted after logout")
	}
}
