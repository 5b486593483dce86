package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rfoley/parkwatch/internal/engine"
	"github.com/rfoley/parkwatch/internal/export"
	"github.com/rfoley/parkwatch/internal/handler"
	"github.com/rfoley/parkwatch/internal/livedata"
	"github.com/rfoley/parkwatch/internal/middleware"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/push"
	"github.com/rfoley/parkwatch/internal/store"
	ws "github.com/rfoley/parkwatch/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	preferenceH  *handler.PreferenceHandler
	scheduleH    *handler.ScheduleHandler
	archiveH     *handler.ArchiveHandler
	pushH        *handler.PushHandler
	waitsH       *handler.WaitsHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	scheduler    *engine.Scheduler
	pushService  *push.Service
	logger       *slog.Logger
}

func New(db *sql.DB, clock *parkday.Clock, live *livedata.Service, pushCfg push.Config, exportCfg export.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	prefStore := store.NewPreferenceStore(db)
	notifiedStore := store.NewNotifiedStore(db)
	scheduleStore := store.NewScheduleStore(db)
	archiveStore := store.NewArchiveStore(db)
	pushStore := store.NewPushStore(db)

	var pushSvc *push.Service
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg)
	}

	exporter := export.NewService(exportCfg)

	stores := engine.Stores{
		Users:     userStore,
		Prefs:     prefStore,
		Notified:  notifiedStore,
		Schedules: scheduleStore,
		PushSubs:  pushStore,
		Archives:  archiveStore,
	}

	var gateway engine.Gateway
	if pushSvc != nil {
		gateway = pushSvc
	}
	var eng engine.Exporter
	var dayExporter handler.DayExporter
	if exporter != nil {
		eng = exporter
		dayExporter = exporter
	}
	scheduler := engine.NewScheduler(clock, live, stores, gateway, eng, func(snap *livedata.Snapshot) {
		hub.Broadcast(ws.WaitUpdate(snap))
	}, logger.With("component", "engine"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		preferenceH:  handler.NewPreferenceHandler(prefStore, logger.With("component", "preference")),
		scheduleH:    handler.NewScheduleHandler(scheduleStore, clock, logger.With("component", "schedule")),
		archiveH:     handler.NewArchiveHandler(archiveStore, dayExporter, clock, logger.With("component", "archive")),
		pushH:        handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		waitsH:       handler.NewWaitsHandler(live, logger.With("component", "waits")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(10, time.Minute),
		scheduler:    scheduler,
		pushService:  pushSvc,
		logger:       logger,
	}
}

// Scheduler returns the notification engine for lifecycle management.
func (s *Server) Scheduler() *engine.Scheduler {
	return s.scheduler
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Ride readiness preferences
	mux.HandleFunc("GET /api/preferences", s.preferenceH.List)
	mux.HandleFunc("PUT /api/preferences", s.preferenceH.Upsert)
	mux.HandleFunc("DELETE /api/preferences/{rideID}", s.preferenceH.Delete)

	// Scheduled events
	mux.HandleFunc("GET /api/shows", s.scheduleH.ListShows)
	mux.HandleFunc("POST /api/shows", s.scheduleH.CreateShow)
	mux.HandleFunc("PUT /api/shows/{id}", s.scheduleH.UpdateShow)
	mux.HandleFunc("DELETE /api/shows/{id}", s.scheduleH.DeleteShow)
	mux.HandleFunc("GET /api/dining", s.scheduleH.ListDining)
	mux.HandleFunc("POST /api/dining", s.scheduleH.CreateDining)
	mux.HandleFunc("PUT /api/dining/{id}", s.scheduleH.UpdateDining)
	mux.HandleFunc("DELETE /api/dining/{id}", s.scheduleH.DeleteDining)
	mux.HandleFunc("GET /api/lightning-lanes", s.scheduleH.ListLanes)
	mux.HandleFunc("PUT /api/lightning-lanes", s.scheduleH.UpsertLane)
	mux.HandleFunc("DELETE /api/lightning-lanes/{rideID}", s.scheduleH.DeleteLane)

	// Archived days
	mux.HandleFunc("GET /api/archive", s.archiveH.ListDates)
	mux.HandleFunc("GET /api/archive/{date}", s.archiveH.GetDay)
	mux.HandleFunc("DELETE /api/archive/{date}", s.archiveH.DeleteDay)

	// Push registration
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)

	// Live wait times
	mux.HandleFunc("GET /api/waits", s.waitsH.List)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
