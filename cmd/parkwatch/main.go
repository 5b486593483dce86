package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rfoley/parkwatch/internal/config"
	"github.com/rfoley/parkwatch/internal/database"
	"github.com/rfoley/parkwatch/internal/export"
	"github.com/rfoley/parkwatch/internal/livedata"
	"github.com/rfoley/parkwatch/internal/logging"
	"github.com/rfoley/parkwatch/internal/parkday"
	"github.com/rfoley/parkwatch/internal/push"
	"github.com/rfoley/parkwatch/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info").Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	clock, err := parkday.New(cfg.Timezone)
	if err != nil {
		logger.Error("load park timezone", "tz", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	live := livedata.NewService(livedata.Config{
		BaseURL: cfg.LiveBaseURL,
		ParkIDs: cfg.ParkIDs,
	})

	pushCfg := push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subscriber:      cfg.VAPIDSubscriber,
	}
	if !cfg.PushConfigured() {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}

	exportCfg := export.Config{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}

	srv := server.New(db, clock, live, pushCfg, exportCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Scheduler().Start(ctx)
	defer srv.Scheduler().Stop()

	// Hourly housekeeping: expired sessions and idle rate-limit entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("delete expired sessions", "error", err)
				}
				srv.RateLimiter().Cleanup(time.Hour)
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("parkwatch listening", "port", cfg.Port, "parks", len(cfg.ParkIDs))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
